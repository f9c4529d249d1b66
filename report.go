package hl7validator

import (
	"sync"
)

// Report contains the outcome of validating a single HL7 message.
// Use Release() to return it to the pool when done for better performance.
type Report struct {
	// Valid is true if no errors were found (warnings are allowed)
	Valid bool `json:"valid"`

	// Findings contains all validation findings in the order produced
	Findings []Finding `json:"findings,omitempty"`

	// JobID is set when using batch validation to correlate results
	JobID string `json:"jobId,omitempty"`

	// Structure is the message structure identifier the message was matched against
	Structure string `json:"structure,omitempty"`

	// mu protects concurrent access to Findings
	mu sync.Mutex
}

// reportPool holds reusable Report instances.
var reportPool = sync.Pool{
	New: func() any {
		return &Report{
			Findings: make([]Finding, 0, 32),
		}
	},
}

// AcquireReport gets a Report from the pool.
// The report starts as valid with no findings.
func AcquireReport() *Report {
	r := reportPool.Get().(*Report)
	r.Reset()
	return r
}

// Release returns the Report to the pool.
// After calling Release, the Report should not be used.
func (r *Report) Release() {
	if r == nil {
		return
	}
	// Don't return reports with oversized finding slices
	if cap(r.Findings) <= 1024 {
		reportPool.Put(r)
	}
}

// Reset clears the report for reuse.
func (r *Report) Reset() {
	r.Valid = true
	r.Findings = r.Findings[:0]
	r.JobID = ""
	r.Structure = ""
}

// Add appends a validation finding to the report.
// This method is thread-safe.
func (r *Report) Add(f Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Findings = append(r.Findings, f)
	if f.IsError() {
		r.Valid = false
	}
}

// AddAll appends multiple findings to the report.
// This method is thread-safe.
func (r *Report) AddAll(findings []Finding) {
	if len(findings) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Findings = append(r.Findings, findings...)
	for _, f := range findings {
		if f.IsError() {
			r.Valid = false
			break
		}
	}
}

// AddError is a convenience method to add an error finding.
func (r *Report) AddError(typ FindingType, diagnostics string, loc Location) {
	r.Add(Finding{
		Severity:    SeverityError,
		Type:        typ,
		Diagnostics: diagnostics,
		Location:    loc,
	})
}

// AddWarning is a convenience method to add a warning finding.
func (r *Report) AddWarning(typ FindingType, diagnostics string, loc Location) {
	r.Add(Finding{
		Severity:    SeverityWarning,
		Type:        typ,
		Diagnostics: diagnostics,
		Location:    loc,
	})
}

// HasErrors returns true if there are any error or fatal findings.
func (r *Report) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.Findings {
		if f.IsError() {
			return true
		}
	}
	return false
}

// HasWarnings returns true if there are any warning findings.
func (r *Report) HasWarnings() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.Findings {
		if f.IsWarning() {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error and fatal findings.
func (r *Report) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, f := range r.Findings {
		if f.IsError() {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning findings.
func (r *Report) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, f := range r.Findings {
		if f.IsWarning() {
			count++
		}
	}
	return count
}

// Errors returns all error and fatal findings.
func (r *Report) Errors() []Finding {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []Finding
	for _, f := range r.Findings {
		if f.IsError() {
			errs = append(errs, f)
		}
	}
	return errs
}

// Warnings returns all warning findings.
func (r *Report) Warnings() []Finding {
	r.mu.Lock()
	defer r.mu.Unlock()

	var warnings []Finding
	for _, f := range r.Findings {
		if f.IsWarning() {
			warnings = append(warnings, f)
		}
	}
	return warnings
}

// Merge combines another report into this one.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}

	other.mu.Lock()
	findings := make([]Finding, len(other.Findings))
	copy(findings, other.Findings)
	other.mu.Unlock()

	r.AddAll(findings)
}

// Clone creates a copy of the report (not pooled).
func (r *Report) Clone() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := &Report{
		Valid:     r.Valid,
		Findings:  make([]Finding, len(r.Findings)),
		JobID:     r.JobID,
		Structure: r.Structure,
	}
	copy(clone.Findings, r.Findings)
	return clone
}

// NewReport creates a new (non-pooled) report.
// Prefer AcquireReport() for better performance.
func NewReport() *Report {
	return &Report{
		Valid:    true,
		Findings: make([]Finding, 0, 8),
	}
}
