package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidLoggingConfigs indicates invalid trace logging settings
	// (for example, a negative max body length).
	ErrInvalidLoggingConfigs = errors.New("invalid logging configuration")
	// ErrInvalidSQLConfigs indicates invalid statement timing settings.
	ErrInvalidSQLConfigs = errors.New("invalid sql configuration")
	// ErrInvalidServerConfigs indicates that neither an HTTP nor a gRPC
	// address is configured.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidStorageConfigs indicates an empty DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidFlags wraps command-line parsing failures.
	ErrInvalidFlags = errors.New("invalid command-line flags")
)
