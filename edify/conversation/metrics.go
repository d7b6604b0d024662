package conversation

import (
	"sync"
	"time"
)

// MetricsCollector collects performance metrics for continuity decisions
type MetricsCollector struct {
	mu sync.RWMutex

	// Counters
	decisionCount int64
	methodCounts  map[DetectionMethod]int64
	followUpCount int64

	// Embedding gateway tracking
	embeddingCalls   int64
	embeddingErrors  int64
	embeddingLatency []time.Duration
	cacheHits        int64

	// Window tracking
	compressedWindows int64
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		methodCounts:     make(map[DetectionMethod]int64),
		embeddingLatency: make([]time.Duration, 0, 1000),
	}
}

// RecordDecision records one completed continuity decision
func (mc *MetricsCollector) RecordDecision(result *ContinuityResult) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.decisionCount++
	mc.methodCounts[result.Method]++
	if result.IsFollowUp {
		mc.followUpCount++
	}
}

// RecordEmbedding records one embedding collaborator call
func (mc *MetricsCollector) RecordEmbedding(duration time.Duration, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.embeddingCalls++
	mc.embeddingLatency = append(mc.embeddingLatency, duration)
	if err != nil {
		mc.embeddingErrors++
	}
}

// RecordCacheHit records a gateway memoization hit
func (mc *MetricsCollector) RecordCacheHit() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.cacheHits++
}

// RecordCompression records a window that exceeded the history budget
func (mc *MetricsCollector) RecordCompression() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.compressedWindows++
}

// Snapshot returns a point-in-time view of all metrics
func (mc *MetricsCollector) Snapshot() map[string]any {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var totalLatency time.Duration
	for _, d := range mc.embeddingLatency {
		totalLatency += d
	}
	var avgLatency time.Duration
	if len(mc.embeddingLatency) > 0 {
		avgLatency = totalLatency / time.Duration(len(mc.embeddingLatency))
	}

	methods := make(map[string]int64, len(mc.methodCounts))
	for method, count := range mc.methodCounts {
		methods[string(method)] = count
	}

	return map[string]any{
		"decisions":             mc.decisionCount,
		"follow_ups":            mc.followUpCount,
		"methods":               methods,
		"embedding_calls":       mc.embeddingCalls,
		"embedding_errors":      mc.embeddingErrors,
		"embedding_avg_latency": avgLatency,
		"cache_hits":            mc.cacheHits,
		"compressed_windows":    mc.compressedWindows,
	}
}
