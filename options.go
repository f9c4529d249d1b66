package hl7validator

import (
	"runtime"
	"time"
)

// Option configures the Validator.
type Option func(*Options)

// Options holds all configuration for the Validator.
type Options struct {
	// Validation flags. Each reference-data layer is also disabled
	// automatically when its backing file is absent from the schema directory.
	ValidateFormats         bool
	ValidateCodeTables      bool
	ValidateFieldLengths    bool
	ValidateDataTypeLengths bool
	ValidateValueSets       bool
	StrictMode              bool

	// Performance
	MaxErrors      int
	ParallelPhases bool
	WorkerCount    int
	PhaseTimeout   time.Duration
	EnablePooling  bool

	// Cache sizes
	StructureCacheSize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		// All validation layers on by default; layers backed by optional
		// reference files silently no-op when the file is missing.
		ValidateFormats:         true,
		ValidateCodeTables:      true,
		ValidateFieldLengths:    true,
		ValidateDataTypeLengths: true,
		ValidateValueSets:       true,

		// Performance defaults
		MaxErrors:      0, // unlimited
		ParallelPhases: true,
		WorkerCount:    runtime.NumCPU(),
		PhaseTimeout:   0, // no timeout
		EnablePooling:  true,

		StructureCacheSize: 64,
	}
}

// --- Validation Options ---

// WithFormats enables or disables primitive data type format validation.
func WithFormats(enable bool) Option {
	return func(o *Options) {
		o.ValidateFormats = enable
	}
}

// WithCodeTables enables or disables HL7/User table code validation.
func WithCodeTables(enable bool) Option {
	return func(o *Options) {
		o.ValidateCodeTables = enable
	}
}

// WithFieldLengths enables or disables field maximum length validation.
func WithFieldLengths(enable bool) Option {
	return func(o *Options) {
		o.ValidateFieldLengths = enable
	}
}

// WithDataTypeLengths enables or disables data type length validation.
func WithDataTypeLengths(enable bool) Option {
	return func(o *Options) {
		o.ValidateDataTypeLengths = enable
	}
}

// WithValueSets enables or disables value set validation of coded elements.
func WithValueSets(enable bool) Option {
	return func(o *Options) {
		o.ValidateValueSets = enable
	}
}

// WithStrictMode treats warnings as errors.
func WithStrictMode(enable bool) Option {
	return func(o *Options) {
		o.StrictMode = enable
	}
}

// --- Performance Options ---

// WithMaxErrors stops validation after the given number of errors.
// Zero means unlimited.
func WithMaxErrors(n int) Option {
	return func(o *Options) {
		o.MaxErrors = n
	}
}

// WithParallelPhases enables running independent leaf phases concurrently.
func WithParallelPhases(enable bool) Option {
	return func(o *Options) {
		o.ParallelPhases = enable
	}
}

// WithWorkerCount sets the number of workers for batch validation.
func WithWorkerCount(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.WorkerCount = n
		}
	}
}

// WithPhaseTimeout sets the maximum duration for a single phase.
func WithPhaseTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.PhaseTimeout = d
	}
}

// WithPooling enables or disables sync.Pool reuse of reports and contexts.
func WithPooling(enable bool) Option {
	return func(o *Options) {
		o.EnablePooling = enable
	}
}

// WithStructureCacheSize sets the capacity of the message structure grammar cache.
func WithStructureCacheSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.StructureCacheSize = n
		}
	}
}
