// Package context provides the VersionContext, which manages validators
// for multiple HL7 v2.x releases side by side.
//
// A VersionContext points at a root directory containing one schema
// directory per version (v2.3, v2.4, v2.5.1, ...). Validators are built
// lazily the first time a version is requested and cached for reuse.
//
// Usage:
//
//	ctx := context.Background()
//	vc, err := hl7context.New(ctx, "/etc/hl7/schemas", hl7context.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//
//	report, err := vc.Validate(ctx, hl7validator.V24, raw)
package context
