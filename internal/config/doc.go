// Package config loads, normalizes, and validates arforge configuration from
// a TOML file with environment overrides for deployment-level settings.
package config
