package tracelog

import (
	"github.com/MKhiriev/go-trace-keeper/internal/config"
)

// DefaultShortStringLimit is the longest string passed through as a scalar.
// Longer strings are bounded like bodies.
const DefaultShortStringLimit = 256

// Policy decides what is dropped, masked and bounded before a value reaches
// a record.
type Policy struct {
	// ExcludedHeaders are matched case-insensitively and never logged.
	ExcludedHeaders []string
	// ExcludedParamTypes are declared argument types that are skipped.
	ExcludedParamTypes []string
	// SensitiveKeyMarkers force a value to [Mask] when found in its name or
	// text, case-insensitively.
	SensitiveKeyMarkers []string
	// MaxBodyLength bounds bodies in characters. Zero or less disables it.
	MaxBodyLength int
	// ShortStringLimit is the longest string treated as a scalar.
	ShortStringLimit int
}

// PolicyFromConfig builds a Policy from the logging configuration.
func PolicyFromConfig(cfg config.Logging) Policy {
	return Policy{
		ExcludedHeaders:     cfg.ExcludedHeaders,
		ExcludedParamTypes:  cfg.ExcludedParameterTypes,
		SensitiveKeyMarkers: cfg.SensitiveKeyMarkers,
		MaxBodyLength:       cfg.MaxBodyLength,
		ShortStringLimit:    DefaultShortStringLimit,
	}
}
