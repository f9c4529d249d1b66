package worker

import (
	"github.com/google/uuid"

	hl7validator "github.com/gohl7/validator"
)

// Job is one message validation job.
type Job struct {
	// ID is a unique identifier for this job.
	ID string

	// Message is the raw HL7 v2 message text.
	Message []byte

	// Source names where the message came from (a file path, a queue),
	// for report naming. May be empty.
	Source string
}

// NewJob wraps a raw message in a Job with a generated ID.
func NewJob(message []byte) Job {
	return Job{ID: uuid.NewString(), Message: message}
}

// JobResult is the outcome of one validation job.
type JobResult struct {
	// ID matches the Job.ID that produced this result.
	ID string

	// Source carries the Job.Source through.
	Source string

	// Report contains the validation findings. Non-nil even when Err is
	// set; a failed message yields a report with a single fatal finding.
	Report *hl7validator.Report

	// Err is set when the message could not be validated at all.
	Err error

	// Duration is the time taken to validate.
	Duration int64
}

// BatchResult aggregates results from multiple jobs.
type BatchResult struct {
	// Results contains all job results.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed (including failures).
	CompletedJobs int

	// FailedJobs is the number of jobs that could not be validated.
	FailedJobs int

	// TotalDuration is the total validation time in nanoseconds.
	TotalDuration int64
}

// HasErrors reports whether any job failed or produced error findings.
func (br *BatchResult) HasErrors() bool {
	for _, r := range br.Results {
		if r.Err != nil {
			return true
		}
		if r.Report != nil && r.Report.ErrorCount() > 0 {
			return true
		}
	}
	return false
}

// ErrorCount returns the total number of error findings across all results.
func (br *BatchResult) ErrorCount() int {
	count := 0
	for _, r := range br.Results {
		if r.Report != nil {
			count += r.Report.ErrorCount()
		}
	}
	return count
}
