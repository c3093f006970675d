// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	var err error

	if cfg.Logging.MaxBodyLength < 0 {
		err = errors.Join(err, ErrInvalidLoggingConfigs)
	}

	if cfg.SQL.SlowQueryThresholdMs < 0 || cfg.SQL.MaxResultLength < 0 {
		err = errors.Join(err, ErrInvalidSQLConfigs)
	}

	if cfg.Server.HTTPAddress == "" && cfg.Server.GRPCAddress == "" {
		err = errors.Join(err, ErrInvalidServerConfigs)
	}

	if cfg.Storage.DB.DSN == "" {
		err = errors.Join(err, ErrInvalidStorageConfigs)
	}

	return err
}
