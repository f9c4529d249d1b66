package hl7validator

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks validation performance metrics using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Validation counts
	validationsTotal atomic.Uint64
	validationsValid atomic.Uint64

	// Timing (stored as nanoseconds)
	validationTimeTotal atomic.Uint64
	validationTimeMin   atomic.Uint64
	validationTimeMax   atomic.Uint64

	// Schema structure cache metrics
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	// Finding counts by severity
	errorsTotal   atomic.Uint64
	warningsTotal atomic.Uint64
	infosTotal    atomic.Uint64

	// Per-phase timing
	phaseTiming sync.Map // map[string]*phaseMetrics
}

// phaseMetrics tracks metrics for a single validation phase.
type phaseMetrics struct {
	invocations   atomic.Uint64
	totalTime     atomic.Uint64 // nanoseconds
	findingsFound atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.validationTimeMin.Store(^uint64(0))
	return m
}

// RecordValidation records a completed validation.
func (m *Metrics) RecordValidation(duration time.Duration, valid bool) {
	m.validationsTotal.Add(1)
	if valid {
		m.validationsValid.Add(1)
	}

	ns := uint64(duration.Nanoseconds())
	m.validationTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.validationTimeMin.Load()
		if ns >= old {
			break
		}
		if m.validationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.validationTimeMax.Load()
		if ns <= old {
			break
		}
		if m.validationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordPhase records a phase execution.
func (m *Metrics) RecordPhase(name string, duration time.Duration, findings int) {
	v, _ := m.phaseTiming.LoadOrStore(name, &phaseMetrics{})
	pm := v.(*phaseMetrics)
	pm.invocations.Add(1)
	pm.totalTime.Add(uint64(duration.Nanoseconds()))
	pm.findingsFound.Add(uint64(findings))
}

// RecordFindings records findings by severity.
func (m *Metrics) RecordFindings(findings []Finding) {
	for _, f := range findings {
		switch f.Severity {
		case SeverityError, SeverityFatal:
			m.errorsTotal.Add(1)
		case SeverityWarning:
			m.warningsTotal.Add(1)
		case SeverityInformation:
			m.infosTotal.Add(1)
		}
	}
}

// RecordCacheHit records a structure cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a structure cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// Snapshot holds a point-in-time view of the metrics.
type Snapshot struct {
	ValidationsTotal uint64
	ValidationsValid uint64
	TotalTime        time.Duration
	MinTime          time.Duration
	MaxTime          time.Duration
	AvgTime          time.Duration
	CacheHits        uint64
	CacheMisses      uint64
	ErrorsTotal      uint64
	WarningsTotal    uint64
	InfosTotal       uint64
	Phases           map[string]PhaseSnapshot
}

// PhaseSnapshot holds a point-in-time view of a single phase's metrics.
type PhaseSnapshot struct {
	Invocations uint64
	TotalTime   time.Duration
	Findings    uint64
}

// Snapshot returns a consistent view of the current metrics.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		ValidationsTotal: m.validationsTotal.Load(),
		ValidationsValid: m.validationsValid.Load(),
		TotalTime:        time.Duration(m.validationTimeTotal.Load()),
		MaxTime:          time.Duration(m.validationTimeMax.Load()),
		CacheHits:        m.cacheHits.Load(),
		CacheMisses:      m.cacheMisses.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		WarningsTotal:    m.warningsTotal.Load(),
		InfosTotal:       m.infosTotal.Load(),
		Phases:           make(map[string]PhaseSnapshot),
	}

	if min := m.validationTimeMin.Load(); min != ^uint64(0) {
		s.MinTime = time.Duration(min)
	}
	if s.ValidationsTotal > 0 {
		s.AvgTime = s.TotalTime / time.Duration(s.ValidationsTotal)
	}

	m.phaseTiming.Range(func(key, value any) bool {
		pm := value.(*phaseMetrics)
		s.Phases[key.(string)] = PhaseSnapshot{
			Invocations: pm.invocations.Load(),
			TotalTime:   time.Duration(pm.totalTime.Load()),
			Findings:    pm.findingsFound.Load(),
		}
		return true
	})

	return s
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.validationsTotal.Store(0)
	m.validationsValid.Store(0)
	m.validationTimeTotal.Store(0)
	m.validationTimeMin.Store(^uint64(0))
	m.validationTimeMax.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.errorsTotal.Store(0)
	m.warningsTotal.Store(0)
	m.infosTotal.Store(0)
	m.phaseTiming.Range(func(key, _ any) bool {
		m.phaseTiming.Delete(key)
		return true
	})
}
