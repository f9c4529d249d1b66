// Package hl7validator validates HL7 v2.x vertical-bar messages against the
// HL7 v2.xml XML Schemas, augmented with optional reference tables for codes,
// lengths and value sets.
//
// # Quick Start
//
//	import (
//	    hv "github.com/gohl7/validator"
//	    "github.com/gohl7/validator/engine"
//	)
//
//	validator, err := engine.New(ctx, "schema/v2.4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := validator.Validate(ctx, messageText)
//	if report.HasErrors() {
//	    for _, f := range report.Errors() {
//	        fmt.Println(f)
//	    }
//	}
//	report.Release() // Return to pool for better performance
//
// # Validation Phases
//
// Validation is performed in phases, each handling one aspect of conformance:
//
//   - Structure: segment ordering, grouping and cardinality against the
//     message structure grammar, plus field/component/subcomponent shape
//   - Format: primitive data type grammars (DT, DTM, TM, NM, SI, TN, ED, ...)
//   - Code tables: membership in HL7 and User tables (hl7Tables.csv)
//   - Lengths: field maxima (hl7Fields.csv) and data type maxima (hl7DataTypes.csv)
//   - Value sets: coded element subsets per locator and coding system (valueSets.csv)
//
// The structure phase runs first and binds every terminal value to its schema
// leaf; the four reference layers then run independently over those bindings.
// Each optional reference file silently disables exactly its layer when absent.
//
// # Concurrency
//
// The schema model and reference tables are built once and are immutable for
// the lifetime of the run, so a single Validator may be shared across
// goroutines without locking. Batch validation distributes messages over a
// worker pool; every message gets its own pooled context and Report.
//
// # Functional Options
//
//	validator, err := engine.New(ctx, schemaDir,
//	    hv.WithValueSets(true),
//	    hv.WithParallelPhases(true),
//	    hv.WithWorkerCount(runtime.NumCPU()),
//	    hv.WithMaxErrors(100),
//	)
package hl7validator
