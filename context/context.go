package context

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/engine"
)

// versionDirPattern matches schema directory names like "2.4", "v2.5.1".
var versionDirPattern = regexp.MustCompile(`^v?(2\.\d(?:\.\d)?)$`)

// VersionContext holds one validator per HL7 version, backed by schema
// directories discovered under a common root. Validators are built on
// first use and shared afterwards; a VersionContext is safe for
// concurrent use.
type VersionContext struct {
	root    string
	options Options

	// dirs maps each discovered version to its schema directory.
	dirs map[hl7validator.HL7Version]string

	mu         sync.RWMutex
	validators map[hl7validator.HL7Version]*engine.Validator
}

// New creates a VersionContext over rootDir. Each subdirectory whose name
// is a version label (with or without a leading "v") and which contains
// an xsd/ folder becomes an available version. With opts.Preload all
// validators are built eagerly; otherwise each is built on first request.
func New(ctx context.Context, rootDir string, opts Options) (*VersionContext, error) {
	vc := &VersionContext{
		root:       rootDir,
		options:    opts,
		dirs:       make(map[hl7validator.HL7Version]string),
		validators: make(map[hl7validator.HL7Version]*engine.Validator),
	}

	if err := vc.discover(); err != nil {
		return nil, err
	}
	if len(vc.dirs) == 0 {
		return nil, fmt.Errorf("no schema directories found under %s", rootDir)
	}

	if opts.Preload {
		for version := range vc.dirs {
			if _, err := vc.Validator(ctx, version); err != nil {
				return nil, err
			}
		}
	}
	return vc, nil
}

// discover scans the root directory for version-labelled schema folders.
func (vc *VersionContext) discover() error {
	entries, err := os.ReadDir(vc.root)
	if err != nil {
		return fmt.Errorf("reading schema root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := versionDirPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		version := hl7validator.HL7Version(m[1])
		if !vc.wanted(version) {
			continue
		}

		dir := filepath.Join(vc.root, entry.Name())
		if info, err := os.Stat(filepath.Join(dir, "xsd")); err != nil || !info.IsDir() {
			continue
		}
		vc.dirs[version] = dir
	}
	return nil
}

// wanted reports whether a discovered version passes the option filter.
func (vc *VersionContext) wanted(version hl7validator.HL7Version) bool {
	if len(vc.options.Versions) == 0 {
		return true
	}
	for _, v := range vc.options.Versions {
		if v == version {
			return true
		}
	}
	return false
}

// Versions returns the available versions in ascending order.
func (vc *VersionContext) Versions() []hl7validator.HL7Version {
	versions := make([]hl7validator.HL7Version, 0, len(vc.dirs))
	for v := range vc.dirs {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions
}

// Has reports whether a schema directory was discovered for the version.
func (vc *VersionContext) Has(version hl7validator.HL7Version) bool {
	_, ok := vc.dirs[version]
	return ok
}

// SchemaDir returns the schema directory backing the version, or "" when
// the version is not available.
func (vc *VersionContext) SchemaDir(version hl7validator.HL7Version) string {
	return vc.dirs[version]
}

// Validator returns the validator for the version, building it on first
// use.
func (vc *VersionContext) Validator(ctx context.Context, version hl7validator.HL7Version) (*engine.Validator, error) {
	vc.mu.RLock()
	v, ok := vc.validators[version]
	vc.mu.RUnlock()
	if ok {
		return v, nil
	}

	dir, ok := vc.dirs[version]
	if !ok {
		return nil, fmt.Errorf("no schema directory for HL7 version %s", version)
	}

	vc.mu.Lock()
	defer vc.mu.Unlock()
	// A concurrent caller may have built it while we waited for the lock.
	if v, ok := vc.validators[version]; ok {
		return v, nil
	}

	v, err := engine.New(ctx, dir, vc.options.ValidatorOptions...)
	if err != nil {
		return nil, fmt.Errorf("building validator for HL7 version %s: %w", version, err)
	}
	vc.validators[version] = v
	return v, nil
}

// Validate validates one message against the schemas of the given
// version.
func (vc *VersionContext) Validate(ctx context.Context, version hl7validator.HL7Version, raw []byte) (*hl7validator.Report, error) {
	v, err := vc.Validator(ctx, version)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, raw)
}

// IsLoaded reports whether the version's validator has already been
// built.
func (vc *VersionContext) IsLoaded(version hl7validator.HL7Version) bool {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	_, ok := vc.validators[version]
	return ok
}
