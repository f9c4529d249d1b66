package worker

import (
	"context"
	"runtime"
	"sync"
	"time"

	hl7validator "github.com/gohl7/validator"
)

// BatchValidator provides a simple interface for batch validation without
// managing a long-lived pool.
type BatchValidator struct {
	validate BatchValidatorFunc
	workers  int
}

// BatchValidatorFunc is the function signature for validating one message.
type BatchValidatorFunc func(ctx context.Context, raw []byte) (*hl7validator.Report, error)

// NewBatchValidator creates a batch validator.
func NewBatchValidator(validate BatchValidatorFunc, workers int) *BatchValidator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BatchValidator{
		validate: validate,
		workers:  workers,
	}
}

// ValidateBatch validates multiple messages and returns results in input
// order. Small batches run sequentially.
func (bv *BatchValidator) ValidateBatch(ctx context.Context, messages [][]byte) *BatchResult {
	if len(messages) == 0 {
		return &BatchResult{Results: make([]*JobResult, 0)}
	}
	if len(messages) <= 2 {
		return bv.validateSequential(ctx, messages)
	}
	return bv.validateParallel(ctx, messages)
}

func (bv *BatchValidator) validateSequential(ctx context.Context, messages [][]byte) *BatchResult {
	results := make([]*JobResult, 0, len(messages))

	for _, msg := range messages {
		select {
		case <-ctx.Done():
			return aggregate(results, len(messages))
		default:
		}
		results = append(results, bv.validateOne(ctx, msg))
	}
	return aggregate(results, len(messages))
}

func (bv *BatchValidator) validateParallel(ctx context.Context, messages [][]byte) *BatchResult {
	results := make([]*JobResult, len(messages))
	sem := make(chan struct{}, bv.workers)

	var wg sync.WaitGroup
	for i, msg := range messages {
		wg.Add(1)
		go func(idx int, raw []byte) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = bv.validateOne(ctx, raw)
		}(i, msg)
	}
	wg.Wait()

	return aggregate(results, len(messages))
}

func (bv *BatchValidator) validateOne(ctx context.Context, raw []byte) *JobResult {
	job := NewJob(raw)
	start := time.Now()

	report, err := bv.validate(ctx, raw)
	if report != nil {
		report.JobID = job.ID
	}

	return &JobResult{
		ID:       job.ID,
		Report:   report,
		Err:      err,
		Duration: time.Since(start).Nanoseconds(),
	}
}

func aggregate(results []*JobResult, total int) *BatchResult {
	br := &BatchResult{
		Results:       results,
		TotalJobs:     total,
		CompletedJobs: len(results),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			br.FailedJobs++
		}
		br.TotalDuration += r.Duration
	}
	return br
}
