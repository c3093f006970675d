// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-trace-keeper application. It aggregates all sub-configurations and is
// populated by merging built-in defaults, environment variables,
// command-line flags, and an optional JSON or YAML file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
//   - json/yaml: keys used when the config file is decoded.
type StructuredConfig struct {
	// Logging holds the request/response trace logging settings.
	Logging Logging `envPrefix:"LOGGING_" json:"logging" yaml:"logging"`

	// SQL holds the statement timing settings used by the sqltrace package.
	SQL SQL `envPrefix:"SQL_" json:"sql" yaml:"sql"`

	// Server holds network address and timeout settings for the HTTP and
	// gRPC servers.
	Server Server `envPrefix:"SERVER_" json:"server" yaml:"server"`

	// Storage holds configuration for the demo user store.
	Storage Storage `envPrefix:"STORAGE_" json:"storage" yaml:"storage"`

	// Metrics holds prometheus exposition settings.
	Metrics Metrics `envPrefix:"METRICS_" json:"metrics" yaml:"metrics"`

	// ConfigFilePath is the optional path to a JSON or YAML configuration
	// file. The format is chosen by the file extension.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	ConfigFilePath string `env:"CONFIG" json:"-" yaml:"-"`
}

// Logging controls the trace logging middleware.
//
// Boolean switches are pointers so that an explicit "false" from a later
// source overrides a "true" default during the merge.
type Logging struct {
	// Enabled turns trace logging on or off.
	// Env: LOGGING_ENABLED
	Enabled *bool `env:"ENABLED" json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// IncludeErrorStacktrace adds a stackTrace field to ERROR records.
	// Env: LOGGING_INCLUDE_ERROR_STACKTRACE
	IncludeErrorStacktrace *bool `env:"INCLUDE_ERROR_STACKTRACE" json:"includeErrorStacktrace,omitempty" yaml:"includeErrorStacktrace,omitempty"`

	// LogRequests writes an additional REQUEST line when a call starts.
	// Env: LOGGING_LOG_REQUESTS
	LogRequests *bool `env:"LOG_REQUESTS" json:"logRequests,omitempty" yaml:"logRequests,omitempty"`

	// ExcludedHeaders lists header names (case-insensitive) that never enter a record.
	// Env: LOGGING_EXCLUDED_HEADERS (comma separated)
	ExcludedHeaders []string `env:"EXCLUDED_HEADERS" envSeparator:"," json:"excludedHeaders,omitempty" yaml:"excludedHeaders,omitempty"`

	// ExcludedParameterTypes lists declared argument types that are skipped.
	// Env: LOGGING_EXCLUDED_PARAMETER_TYPES (comma separated)
	ExcludedParameterTypes []string `env:"EXCLUDED_PARAMETER_TYPES" envSeparator:"," json:"excludedParameterTypes,omitempty" yaml:"excludedParameterTypes,omitempty"`

	// SensitiveKeyMarkers are substrings that force a value to be masked.
	// Env: LOGGING_SENSITIVE_KEY_MARKERS (comma separated)
	SensitiveKeyMarkers []string `env:"SENSITIVE_KEY_MARKERS" envSeparator:"," json:"sensitiveKeyMarkers,omitempty" yaml:"sensitiveKeyMarkers,omitempty"`

	// ExcludedPaths lists URL path prefixes that are not traced at all.
	// Env: LOGGING_EXCLUDED_PATHS (comma separated)
	ExcludedPaths []string `env:"EXCLUDED_PATHS" envSeparator:"," json:"excludedPaths,omitempty" yaml:"excludedPaths,omitempty"`

	// MaxBodyLength bounds logged bodies, in characters. Zero disables the bound.
	// Env: LOGGING_MAX_BODY_LENGTH
	MaxBodyLength int `env:"MAX_BODY_LENGTH" json:"maxBodyLength,omitempty" yaml:"maxBodyLength,omitempty"`
}

// SQL controls statement timing and logging.
type SQL struct {
	// Enabled turns statement logging on or off.
	// Env: SQL_ENABLED
	Enabled *bool `env:"ENABLED" json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// SlowQueryThresholdMs marks statements at or above it as slow.
	// Env: SQL_SLOW_QUERY_THRESHOLD_MS
	SlowQueryThresholdMs int `env:"SLOW_QUERY_THRESHOLD_MS" json:"slowQueryThresholdMs,omitempty" yaml:"slowQueryThresholdMs,omitempty"`

	// ShowParams logs sanitized statement arguments.
	// Env: SQL_SHOW_PARAMS
	ShowParams *bool `env:"SHOW_PARAMS" json:"showParams,omitempty" yaml:"showParams,omitempty"`

	// ShowResults logs rows affected for exec statements.
	// Env: SQL_SHOW_RESULTS
	ShowResults *bool `env:"SHOW_RESULTS" json:"showResults,omitempty" yaml:"showResults,omitempty"`

	// MaxResultLength bounds the logged statement and argument text.
	// Env: SQL_MAX_RESULT_LENGTH
	MaxResultLength int `env:"MAX_RESULT_LENGTH" json:"maxResultLength,omitempty" yaml:"maxResultLength,omitempty"`

	// ExcludedStatementIDs are statement ids that are executed but not logged.
	// Env: SQL_EXCLUDED_STATEMENT_IDS (comma separated)
	ExcludedStatementIDs []string `env:"EXCLUDED_STATEMENT_IDS" envSeparator:"," json:"excludedStatementIds,omitempty" yaml:"excludedStatementIds,omitempty"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS" json:"httpAddress,omitempty" yaml:"httpAddress,omitempty"`

	// GRPCAddress is the TCP address on which the gRPC server listens,
	// in "host:port" format (e.g. "0.0.0.0:9090").
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS" json:"grpcAddress,omitempty" yaml:"grpcAddress,omitempty"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout Duration `env:"REQUEST_TIMEOUT" json:"requestTimeout,omitempty" yaml:"requestTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	// Env: SERVER_SHUTDOWN_TIMEOUT
	ShutdownTimeout Duration `env:"SHUTDOWN_TIMEOUT" json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

// Storage groups the configuration for the demo user store.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_" json:"db" yaml:"db"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the data source name. A postgres:// or postgresql:// DSN selects
	// the pgx driver, anything else is opened with sqlite3.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI" json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// Metrics holds prometheus settings.
type Metrics struct {
	// Enabled exposes /metrics and records trace metrics.
	// Env: METRICS_ENABLED
	Enabled *bool `env:"ENABLED" json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	// Env: METRICS_NAMESPACE
	Namespace string `env:"NAMESPACE" json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// IsEnabled reports whether trace logging is on. Nil means enabled.
func (l Logging) IsEnabled() bool { return l.Enabled == nil || *l.Enabled }

// StacktraceIncluded reports whether ERROR records carry a stack trace.
func (l Logging) StacktraceIncluded() bool {
	return l.IncludeErrorStacktrace != nil && *l.IncludeErrorStacktrace
}

// RequestsLogged reports whether REQUEST lines are written.
func (l Logging) RequestsLogged() bool { return l.LogRequests != nil && *l.LogRequests }

// IsEnabled reports whether statement logging is on. Nil means enabled.
func (s SQL) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// ParamsShown reports whether statement arguments are logged. Nil means shown.
func (s SQL) ParamsShown() bool { return s.ShowParams == nil || *s.ShowParams }

// ResultsShown reports whether exec results are logged. Nil means shown.
func (s SQL) ResultsShown() bool { return s.ShowResults == nil || *s.ShowResults }

// SlowQueryThreshold returns the threshold as a duration.
func (s SQL) SlowQueryThreshold() time.Duration {
	return time.Duration(s.SlowQueryThresholdMs) * time.Millisecond
}

// IsEnabled reports whether metrics are exposed. Nil means enabled.
func (m Metrics) IsEnabled() bool { return m.Enabled == nil || *m.Enabled }

// Bool returns a pointer to v. It is used to fill the optional switches.
func Bool(v bool) *bool { return &v }

// Defaults returns the configuration used when no source sets a value.
func Defaults() *StructuredConfig {
	return &StructuredConfig{
		Logging: Logging{
			Enabled:                Bool(true),
			IncludeErrorStacktrace: Bool(false),
			LogRequests:            Bool(false),
			ExcludedHeaders:        []string{"authorization", "cookie"},
			ExcludedParameterTypes: []string{"context.Context", "*http.Request", "http.ResponseWriter"},
			SensitiveKeyMarkers:    []string{"password", "secret"},
			ExcludedPaths:          []string{"/health", "/metrics"},
			MaxBodyLength:          2000,
		},
		SQL: SQL{
			Enabled:              Bool(true),
			SlowQueryThresholdMs: 500,
			ShowParams:           Bool(true),
			ShowResults:          Bool(true),
			MaxResultLength:      1000,
		},
		Server: Server{
			HTTPAddress:     "localhost:8080",
			RequestTimeout:  Duration(30 * time.Second),
			ShutdownTimeout: Duration(5 * time.Second),
		},
		Storage: Storage{
			DB: DB{DSN: "file:tracekeeper.db?_foreign_keys=on"},
		},
		Metrics: Metrics{
			Enabled:   Bool(true),
			Namespace: "tracekeeper",
		},
	}
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (later non-zero values win):
//  0. Built-in defaults
//  1. Environment variables
//  2. Command-line flags
//  3. Config file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withFile().
		build()
}
