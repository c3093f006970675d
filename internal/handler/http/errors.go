// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors reported by the demo endpoints when a request cannot be
// decoded. They map to 400 Bad Request.
var (
	// ErrInvalidJSON is returned when a JSON body cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrInvalidForm is returned when a form body cannot be parsed or lacks a
	// required field.
	ErrInvalidForm = errors.New("invalid form data")

	// ErrInvalidParam is returned when a path or query parameter is missing
	// or has the wrong type.
	ErrInvalidParam = errors.New("invalid request parameter")
)
