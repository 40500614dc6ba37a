package phenomapper

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofhir/phenomapper/pkg/issue"
)

// Metrics tracks validation counters using atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	rowsTotal atomic.Uint64
	rowsValid atomic.Uint64

	// Timing (stored as nanoseconds)
	rowTimeTotal atomic.Uint64
	rowTimeMin   atomic.Uint64
	rowTimeMax   atomic.Uint64

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	errorsTotal   atomic.Uint64
	warningsTotal atomic.Uint64

	// Issue counts per issue code
	byCode sync.Map // map[issue.Code]*atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.rowTimeMin.Store(^uint64(0))
	return m
}

// RecordRow records a validated row.
func (m *Metrics) RecordRow(duration time.Duration, valid bool) {
	m.rowsTotal.Add(1)
	if valid {
		m.rowsValid.Add(1)
	}

	ns := uint64(max(duration.Nanoseconds(), 0))
	m.rowTimeTotal.Add(ns)

	for {
		old := m.rowTimeMin.Load()
		if ns >= old || m.rowTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.rowTimeMax.Load()
		if ns <= old || m.rowTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordCache adds cell cache lookups.
func (m *Metrics) RecordCache(hits, misses uint64) {
	m.cacheHits.Add(hits)
	m.cacheMisses.Add(misses)
}

// RecordIssue records an issue by severity and code.
func (m *Metrics) RecordIssue(iss issue.Issue) {
	if iss.IsError() {
		m.errorsTotal.Add(1)
	} else {
		m.warningsTotal.Add(1)
	}
	v, _ := m.byCode.LoadOrStore(iss.Code, new(atomic.Uint64))
	v.(*atomic.Uint64).Add(1)
}

// RowsTotal returns the number of rows validated.
func (m *Metrics) RowsTotal() uint64 {
	return m.rowsTotal.Load()
}

// RowsValid returns the number of valid rows.
func (m *Metrics) RowsValid() uint64 {
	return m.rowsValid.Load()
}

// ValidationRate returns the share of valid rows (0.0 to 1.0).
func (m *Metrics) ValidationRate() float64 {
	total := m.rowsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.rowsValid.Load()) / float64(total)
}

// AverageRowTime returns the average time spent on a row.
func (m *Metrics) AverageRowTime() time.Duration {
	total := m.rowsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.rowTimeTotal.Load() / total) //nolint:gosec // nanoseconds within int64 range
}

// CacheHitRate returns the cell cache hit rate (0.0 to 1.0).
func (m *Metrics) CacheHitRate() float64 {
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

// ErrorsTotal returns the number of error issues.
func (m *Metrics) ErrorsTotal() uint64 {
	return m.errorsTotal.Load()
}

// WarningsTotal returns the number of warning issues.
func (m *Metrics) WarningsTotal() uint64 {
	return m.warningsTotal.Load()
}

// CodeCount is the number of issues with one code.
type CodeCount struct {
	Code  issue.Code `json:"code"`
	Count uint64     `json:"count"`
}

// IssueCodes returns the issue counts per code, most frequent first.
func (m *Metrics) IssueCodes() []CodeCount {
	var out []CodeCount
	m.byCode.Range(func(k, v any) bool {
		out = append(out, CodeCount{Code: k.(issue.Code), Count: v.(*atomic.Uint64).Load()})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	RowsTotal      uint64  `json:"rows_total"`
	RowsValid      uint64  `json:"rows_valid"`
	ValidationRate float64 `json:"validation_rate"`

	AvgRowTimeNs uint64 `json:"avg_row_time_ns"`
	MinRowTimeNs uint64 `json:"min_row_time_ns"`
	MaxRowTimeNs uint64 `json:"max_row_time_ns"`

	CacheHits    uint64  `json:"cache_hits"`
	CacheMisses  uint64  `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"`

	ErrorsTotal   uint64      `json:"errors_total"`
	WarningsTotal uint64      `json:"warnings_total"`
	IssueCodes    []CodeCount `json:"issue_codes,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	minTime := m.rowTimeMin.Load()
	if minTime == ^uint64(0) {
		minTime = 0
	}
	return Snapshot{
		Timestamp:      time.Now(),
		RowsTotal:      m.rowsTotal.Load(),
		RowsValid:      m.rowsValid.Load(),
		ValidationRate: m.ValidationRate(),
		AvgRowTimeNs:   uint64(m.AverageRowTime()),
		MinRowTimeNs:   minTime,
		MaxRowTimeNs:   m.rowTimeMax.Load(),
		CacheHits:      m.cacheHits.Load(),
		CacheMisses:    m.cacheMisses.Load(),
		CacheHitRate:   m.CacheHitRate(),
		ErrorsTotal:    m.errorsTotal.Load(),
		WarningsTotal:  m.warningsTotal.Load(),
		IssueCodes:     m.IssueCodes(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.rowsTotal.Store(0)
	m.rowsValid.Store(0)
	m.rowTimeTotal.Store(0)
	m.rowTimeMin.Store(^uint64(0))
	m.rowTimeMax.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.errorsTotal.Store(0)
	m.warningsTotal.Store(0)
	m.byCode.Range(func(k, _ any) bool {
		m.byCode.Delete(k)
		return true
	})
}
