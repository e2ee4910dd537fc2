// Package logging wraps log/slog with the handlers, attribute helpers, and
// standardized field names used across the service.
package logging
