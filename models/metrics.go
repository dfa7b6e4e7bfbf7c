package models

import "time"

// ConsoleMetrics aggregates instrumentation counters for embedding hosts.
type ConsoleMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	PollTicks                uint64    `json:"poll_ticks"`
	JobsTracked              uint64    `json:"jobs_tracked"`
	JobsCompleted            uint64    `json:"jobs_completed"`
	JobsFailed               uint64    `json:"jobs_failed"`
	JobsStale                uint64    `json:"jobs_stale"`
	UploadsProcessed         uint64    `json:"uploads_processed"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// ExportFormat enumerates snapshot and backup render targets.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)
