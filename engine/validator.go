// Package engine provides the main HL7 v2 message validation engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/hl7"
	"github.com/gohl7/validator/phase"
	"github.com/gohl7/validator/pipeline"
	"github.com/gohl7/validator/refdata"
	"github.com/gohl7/validator/schema"
	"github.com/gohl7/validator/service"
	"github.com/gohl7/validator/stream"
)

// Validator is the main HL7 v2 message validator. It owns the schema model,
// the reference tables and the phase pipeline, all of which are built once
// in New and read-only afterwards; a single Validator is safe for concurrent
// use from multiple goroutines.
type Validator struct {
	options *hl7validator.Options

	model    *schema.Model
	tables   *refdata.Tables
	resolver *service.StructureResolver

	pipe    *pipeline.Pipeline
	metrics *hl7validator.Metrics

	// Worker pool for batch validation
	workerPool     chan struct{}
	workerPoolOnce sync.Once
}

// New creates a Validator from the schema directory. The directory must
// contain an xsd/ subfolder with the segment, field, datatype and message
// structure definitions, plus the trigger-event map; the four optional
// reference files enable their validation layers when present.
func New(ctx context.Context, schemaDir string, opts ...hl7validator.Option) (*Validator, error) {
	options := hl7validator.DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	model, err := schema.Load(schemaDir, options.StructureCacheSize)
	if err != nil {
		return nil, fmt.Errorf("loading schema model: %w", err)
	}
	tables, err := refdata.Load(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}

	v := &Validator{
		options:  options,
		model:    model,
		tables:   tables,
		resolver: service.NewStructureResolver(tables.Triggers),
		metrics:  hl7validator.NewMetrics(),
	}
	v.buildPipeline()
	return v, nil
}

// buildPipeline constructs the validation pipeline based on options and the
// loaded reference tables.
func (v *Validator) buildPipeline() {
	pipelineOpts := &pipeline.PipelineOptions{
		ParallelExecution: v.options.ParallelPhases,
		MaxErrors:         v.options.MaxErrors,
		FailFast:          v.options.MaxErrors == 1,
		PhaseTimeout:      v.options.PhaseTimeout,
		CollectMetrics:    true,
	}

	v.pipe = pipeline.NewPipeline(pipelineOpts)
	v.pipe.SetMetrics(v.metrics)
	v.addPhases()
}

// addPhases registers the structural phase and whichever leaf phases have
// their reference tables loaded. A layer whose optional file was absent or
// malformed is simply never registered.
func (v *Validator) addPhases() {
	v.pipe.Register(pipeline.PhaseIDStructure, phase.NewStructure(v.model),
		pipeline.WithPriority(pipeline.PriorityFirst),
		pipeline.WithRequired(true))

	v.pipe.Register(pipeline.PhaseIDFormat, phase.NewFormat(),
		pipeline.WithParallel(true),
		pipeline.WithDependsOn(pipeline.PhaseIDStructure))

	if v.tables.Codes != nil {
		v.pipe.Register(pipeline.PhaseIDCodeTable, phase.NewCodeTable(v.tables.Codes),
			pipeline.WithParallel(true),
			pipeline.WithDependsOn(pipeline.PhaseIDStructure))
	}
	if v.tables.FieldLengths != nil {
		v.pipe.Register(pipeline.PhaseIDFieldLength, phase.NewFieldLength(v.tables.FieldLengths),
			pipeline.WithParallel(true),
			pipeline.WithDependsOn(pipeline.PhaseIDStructure))
	}
	if v.tables.DataTypeLengths != nil {
		v.pipe.Register(pipeline.PhaseIDDataTypeLength, phase.NewDataTypeLength(v.tables.DataTypeLengths),
			pipeline.WithParallel(true),
			pipeline.WithDependsOn(pipeline.PhaseIDStructure))
	}
	if v.tables.ValueSets != nil {
		v.pipe.Register(pipeline.PhaseIDValueSet, phase.NewValueSet(v.tables.ValueSets),
			pipeline.WithParallel(true),
			pipeline.WithDependsOn(pipeline.PhaseIDStructure))
	}
}

// Validate validates one raw HL7 v2 message. Findings are returned in the
// Report; a non-nil error means the message could not be validated at all
// (malformed header, unparsable content, unresolvable structure), in which
// case the Report carries a single fatal finding describing the failure.
func (v *Validator) Validate(ctx context.Context, raw []byte) (*hl7validator.Report, error) {
	start := time.Now()

	text := hl7.StripMLLP(string(raw))

	delims, err := hl7.ResolveDelimiters(text)
	if err != nil {
		return v.fatal(start, err)
	}
	msg, err := hl7.Parse(text, delims)
	if err != nil {
		return v.fatal(start, err)
	}

	structureID, err := v.resolver.Resolve(msg)
	if err != nil {
		return v.fatal(start, err)
	}
	structure, err := v.model.Structure(structureID)
	if err != nil {
		if errors.Is(err, schema.ErrUnknownStructure) {
			err = fmt.Errorf("message structure %s: %w", structureID, err)
		}
		return v.fatal(start, err)
	}

	pctx := v.acquireContext()
	pctx.Raw = text
	pctx.Delimiters = delims
	pctx.Message = msg
	pctx.StructureID = structureID
	pctx.Structure = structure
	pctx.Options = v.options

	v.pipe.Execute(ctx, pctx)

	report := pctx.Report
	report.Structure = structureID
	pctx.Report = nil
	v.releaseContext(pctx)

	if v.options.StrictMode && len(report.Warnings()) > 0 {
		report.Valid = false
	}

	v.metrics.RecordFindings(report.Findings)
	return report, nil
}

// ValidateBatch validates multiple messages in parallel. Reports are
// returned in input order; a message that could not be validated yields its
// fatal report.
func (v *Validator) ValidateBatch(ctx context.Context, messages [][]byte) []*hl7validator.Report {
	reports := make([]*hl7validator.Report, len(messages))

	v.workerPoolOnce.Do(func() {
		workers := v.options.WorkerCount
		if workers <= 0 {
			workers = 4
		}
		v.workerPool = make(chan struct{}, workers)
	})

	var wg sync.WaitGroup
	for i, msg := range messages {
		wg.Add(1)
		go func(idx int, raw []byte) {
			defer wg.Done()

			v.workerPool <- struct{}{}
			defer func() { <-v.workerPool }()

			report, _ := v.Validate(ctx, raw)
			reports[idx] = report
		}(i, msg)
	}

	wg.Wait()
	return reports
}

// ValidateStream validates every message read from r, emitting results in
// stream order. Set parallel to validate messages concurrently on
// WorkerCount workers; ordering is preserved either way.
func (v *Validator) ValidateStream(ctx context.Context, r io.Reader, parallel bool) <-chan *stream.MessageResult {
	sv := stream.NewMessageValidator(v.Validate).
		WithWorkerCount(v.options.WorkerCount)
	if parallel {
		return sv.ValidateStreamParallel(ctx, r)
	}
	return sv.ValidateStream(ctx, r)
}

// fatal builds the single-finding report for a message that could not be
// validated, and returns it alongside the error.
func (v *Validator) fatal(start time.Time, err error) (*hl7validator.Report, error) {
	report := v.acquireReport()
	report.Add(hl7validator.Finding{
		Severity:    hl7validator.SeverityFatal,
		Type:        hl7validator.FindingProcessing,
		Diagnostics: err.Error(),
	})
	v.metrics.RecordValidation(time.Since(start), false)
	return report, err
}

func (v *Validator) acquireContext() *pipeline.Context {
	if v.options.EnablePooling {
		pctx := pipeline.AcquireContext()
		pctx.Report = v.acquireReport()
		return pctx
	}
	pctx := pipeline.NewContext()
	pctx.Report = hl7validator.NewReport()
	return pctx
}

func (v *Validator) releaseContext(pctx *pipeline.Context) {
	if v.options.EnablePooling {
		pctx.Release()
	}
}

func (v *Validator) acquireReport() *hl7validator.Report {
	if v.options.EnablePooling {
		return hl7validator.AcquireReport()
	}
	return hl7validator.NewReport()
}

// Metrics returns the validator's metrics.
func (v *Validator) Metrics() *hl7validator.Metrics {
	return v.metrics
}

// Options returns the validator's options.
func (v *Validator) Options() *hl7validator.Options {
	return v.options
}

// Tables exposes the loaded reference tables, including any load warnings
// for malformed optional files.
func (v *Validator) Tables() *refdata.Tables {
	return v.tables
}
