package models

import "time"

// SystemMetrics is a lightweight snapshot of runtime counters exposed on the
// health/metrics surface.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	RankingsTotal            uint64    `json:"rankings_total"`
	RankedSlotsTotal         uint64    `json:"ranked_slots_total"`
	ConflictsDetectedTotal   uint64    `json:"conflicts_detected_total"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
