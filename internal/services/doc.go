// Package services defines the shared error taxonomy and context annotation
// helpers used by pipeline stages and external tool clients.
package services
