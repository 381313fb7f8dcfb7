// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"maps"
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Token metrics (only for text generation)
	TotalInputTokens  int64
	TotalOutputTokens int64
	MinInputTokens    int64
	MaxInputTokens    int64
	MinOutputTokens   int64
	MaxOutputTokens   int64

	// Characters sent for synthesis, which is what the provider bills.
	TotalChars int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	Errors      int64   `json:"errors"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
	MinTimeMs   int64   `json:"minTimeMs"`
	MaxTimeMs   int64   `json:"maxTimeMs"`

	// Token stats (nil if not applicable)
	TotalInputTokens  *int64   `json:"totalInputTokens,omitempty"`
	TotalOutputTokens *int64   `json:"totalOutputTokens,omitempty"`
	AvgInputTokens    *float64 `json:"avgInputTokens,omitempty"`
	AvgOutputTokens   *float64 `json:"avgOutputTokens,omitempty"`
	MinInputTokens    *int64   `json:"minInputTokens,omitempty"`
	MaxInputTokens    *int64   `json:"maxInputTokens,omitempty"`
	MinOutputTokens   *int64   `json:"minOutputTokens,omitempty"`
	MaxOutputTokens   *int64   `json:"maxOutputTokens,omitempty"`

	TotalCharacters *int64 `json:"totalCharacters,omitempty"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptimeSeconds"`
	Request       *OperationSnapshot `json:"request,omitempty"`
	CatalogFetch  *OperationSnapshot `json:"catalogFetch,omitempty"`
	Generate      *OperationSnapshot `json:"generate,omitempty"`
	Synthesize    *OperationSnapshot `json:"synthesize,omitempty"`
	// Counters holds event tallies such as reply statuses and rejections.
	Counters map[string]int64 `json:"counters"`
}

// Operation names for the collector.
const (
	OpRequest      = "request"
	OpCatalogFetch = "catalog_fetch"
	OpGenerate     = "generate"
	OpSynthesize   = "synthesize"
)

// Counter names not derived from reply statuses.
const (
	CounterRateLimited   = "rate_limited"
	CounterInvalid       = "invalid_message"
	CounterCatalogErrors = "catalog_errors"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe and a nil *Collector is a no-op.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
	counters  map[string]int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
		counters:  make(map[string]int64),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{
			MinTime:         time.Duration(math.MaxInt64),
			MinInputTokens:  math.MaxInt64,
			MinOutputTokens: math.MaxInt64,
		}
		c.ops[op] = m
	}
	return m
}

func (m *OperationMetrics) observe(duration time.Duration) {
	m.Count++
	m.TotalTime += duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordTiming records timing for an operation. A non-nil err also counts
// as a failure.
func (c *Collector) RecordTiming(op string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.observe(duration)
	if err != nil {
		m.Errors++
	}
}

// RecordLLMUsage records timing and token usage for a generation call.
func (c *Collector) RecordLLMUsage(op string, duration time.Duration, inputTokens, outputTokens int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.observe(duration)

	m.TotalInputTokens += inputTokens
	m.TotalOutputTokens += outputTokens

	if inputTokens < m.MinInputTokens {
		m.MinInputTokens = inputTokens
	}
	if inputTokens > m.MaxInputTokens {
		m.MaxInputTokens = inputTokens
	}
	if outputTokens < m.MinOutputTokens {
		m.MinOutputTokens = outputTokens
	}
	if outputTokens > m.MaxOutputTokens {
		m.MaxOutputTokens = outputTokens
	}
}

// RecordSynthesis records a speech synthesis call and the characters sent.
// Characters count even when the call fails since the request was made.
func (c *Collector) RecordSynthesis(duration time.Duration, chars int64, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(OpSynthesize)
	m.observe(duration)
	m.TotalChars += chars
	if err != nil {
		m.Errors++
	}
}

// Increment bumps a named counter.
func (c *Collector) Increment(name string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.counters[name]++
	c.mu.Unlock()
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics, includeTokens bool) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	snap := &OperationSnapshot{
		Count:       m.Count,
		Errors:      m.Errors,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}

	if includeTokens && (m.TotalInputTokens > 0 || m.TotalOutputTokens > 0) {
		totalIn := m.TotalInputTokens
		totalOut := m.TotalOutputTokens
		avgIn := float64(m.TotalInputTokens) / float64(m.Count)
		avgOut := float64(m.TotalOutputTokens) / float64(m.Count)
		minIn := m.MinInputTokens
		maxIn := m.MaxInputTokens
		minOut := m.MinOutputTokens
		maxOut := m.MaxOutputTokens

		// Reset sentinel values for display
		if minIn == math.MaxInt64 {
			minIn = 0
		}
		if minOut == math.MaxInt64 {
			minOut = 0
		}

		snap.TotalInputTokens = &totalIn
		snap.TotalOutputTokens = &totalOut
		snap.AvgInputTokens = &avgIn
		snap.AvgOutputTokens = &avgOut
		snap.MinInputTokens = &minIn
		snap.MaxInputTokens = &maxIn
		snap.MinOutputTokens = &minOut
		snap.MaxOutputTokens = &maxOut
	}

	if m.TotalChars > 0 {
		chars := m.TotalChars
		snap.TotalCharacters = &chars
	}

	return snap
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Counters: map[string]int64{}}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Request:       snapshotOp(c.ops[OpRequest], false),
		CatalogFetch:  snapshotOp(c.ops[OpCatalogFetch], false),
		Generate:      snapshotOp(c.ops[OpGenerate], true),
		Synthesize:    snapshotOp(c.ops[OpSynthesize], false),
		Counters:      maps.Clone(c.counters),
	}
}
