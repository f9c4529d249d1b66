package context

import hl7validator "github.com/gohl7/validator"

// Options configures how a VersionContext discovers and builds
// validators.
type Options struct {
	// Preload builds a validator for every discovered version during New
	// instead of on first use.
	Preload bool

	// Versions restricts discovery to the listed versions. Empty means
	// every version-labelled directory under the root is accepted.
	Versions []hl7validator.HL7Version

	// ValidatorOptions are passed through to every validator built by
	// this context.
	ValidatorOptions []hl7validator.Option
}

// DefaultOptions returns Options with lazy loading and no version
// filter.
func DefaultOptions() Options {
	return Options{}
}

// WithPreload returns Options that build all validators eagerly.
func WithPreload() Options {
	opts := DefaultOptions()
	opts.Preload = true
	return opts
}

// WithVersions returns Options restricted to the given versions.
func WithVersions(versions ...hl7validator.HL7Version) Options {
	opts := DefaultOptions()
	opts.Versions = versions
	return opts
}

// WithValidatorOptions returns Options that apply the given validator
// options to every version.
func WithValidatorOptions(vopts ...hl7validator.Option) Options {
	opts := DefaultOptions()
	opts.ValidatorOptions = vopts
	return opts
}
