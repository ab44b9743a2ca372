package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects and aggregates counters for wallet operations,
// keyed by serving component (pack, analyzer, extraction, ...).
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	componentMetrics map[string]*ComponentMetrics
}

// ComponentMetrics represents counters for a specific component.
type ComponentMetrics struct {
	executionCount atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	errorCount     atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		componentMetrics: make(map[string]*ComponentMetrics),
	}
}

// Global metrics instance.
var globalMetrics = NewMetrics()

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a request.
func (m *Metrics) RecordRequest(component string) {
	m.requestTotal.Add(1)
	m.getComponentMetrics(component).executionCount.Add(1)
}

// RecordFailure records a failed request.
func (m *Metrics) RecordFailure(component string) {
	m.requestFailed.Add(1)
	m.getComponentMetrics(component).errorCount.Add(1)
}

// RecordDuration records a request duration.
func (m *Metrics) RecordDuration(component string, duration time.Duration) {
	m.getComponentMetrics(component).totalDuration.Add(duration.Milliseconds())
}

// GetRequestTotal returns the total number of requests.
func (m *Metrics) GetRequestTotal() int64 {
	return m.requestTotal.Load()
}

// GetRequestFailed returns the total number of failed requests.
func (m *Metrics) GetRequestFailed() int64 {
	return m.requestFailed.Load()
}

func (m *Metrics) getComponentMetrics(component string) *ComponentMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	cm, ok := m.componentMetrics[component]
	if !ok {
		cm = &ComponentMetrics{}
		m.componentMetrics[component] = cm
	}
	return cm
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.componentMetrics = make(map[string]*ComponentMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	componentSnapshots := make(map[string]*ComponentMetricsSnapshot, len(m.componentMetrics))
	for component, cm := range m.componentMetrics {
		count := cm.executionCount.Load()
		var avg int64
		if count > 0 {
			avg = cm.totalDuration.Load() / count
		}
		componentSnapshots[component] = &ComponentMetricsSnapshot{
			ExecutionCount:  count,
			TotalDuration:   cm.totalDuration.Load(),
			ErrorCount:      cm.errorCount.Load(),
			AverageDuration: avg,
		}
	}

	return &MetricsSnapshot{
		RequestTotal:     m.requestTotal.Load(),
		RequestFailed:    m.requestFailed.Load(),
		ComponentMetrics: componentSnapshots,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal     int64
	RequestFailed    int64
	ComponentMetrics map[string]*ComponentMetricsSnapshot
}

// ComponentMetricsSnapshot represents counters for a specific component.
type ComponentMetricsSnapshot struct {
	ExecutionCount  int64
	TotalDuration   int64
	ErrorCount      int64
	AverageDuration int64
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
