// Package errors provides the structured error type shared by lazykit
// packages. Every error carries a machine-readable code, a human-readable
// message, a retryable flag and optional details, and wraps its cause so
// errors.Is / errors.As keep working across package boundaries.
package errors
