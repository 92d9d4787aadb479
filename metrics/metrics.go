package metrics

import "sync/atomic"

// Metrics captures shared operational stats for the ingest pipeline.
type Metrics struct {
	reportsExtracted   int64
	extractionFailures int64
	recordsMerged      int64
	duplicatesDropped  int64
}

// Snapshot provides a consistent view of the current metrics.
type Snapshot struct {
	ReportsExtracted   int64 `json:"reports_extracted"`
	ExtractionFailures int64 `json:"extraction_failures"`
	RecordsMerged      int64 `json:"records_merged"`
	DuplicatesDropped  int64 `json:"duplicates_dropped"`
}

// New creates a zeroed Metrics instance.
func New() *Metrics {
	return &Metrics{}
}

// RecordExtraction counts one processed report; a non-nil error marks it as
// a degraded (all-null) extraction.
func (m *Metrics) RecordExtraction(err error) {
	atomic.AddInt64(&m.reportsExtracted, 1)
	if err != nil {
		atomic.AddInt64(&m.extractionFailures, 1)
	}
}

// RecordMerge counts records added to the unified store and exact
// duplicates dropped by the merge.
func (m *Metrics) RecordMerge(added, dropped int) {
	atomic.AddInt64(&m.recordsMerged, int64(added))
	atomic.AddInt64(&m.duplicatesDropped, int64(dropped))
}

// Snapshot returns a read-only view of metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ReportsExtracted:   atomic.LoadInt64(&m.reportsExtracted),
		ExtractionFailures: atomic.LoadInt64(&m.extractionFailures),
		RecordsMerged:      atomic.LoadInt64(&m.recordsMerged),
		DuplicatesDropped:  atomic.LoadInt64(&m.duplicatesDropped),
	}
}
