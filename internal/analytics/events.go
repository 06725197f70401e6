package analytics

import "time"

type EventType string

const (
	EventQueryHit  EventType = "query_hit"
	EventQueryMiss EventType = "query_miss"
)

// QueryEvent describes one lookup served by a front end.
type QueryEvent struct {
	Type             EventType `json:"type"`
	Query            string    `json:"query"`
	Term             string    `json:"term,omitempty"`
	TotalOccurrences int       `json:"total_occurrences"`
	DocumentCount    int       `json:"document_count"`
	LatencyMicros    int64     `json:"latency_us"`
	CacheHit         bool      `json:"cache_hit"`
	Timestamp        time.Time `json:"timestamp"`
	RequestID        string    `json:"request_id,omitempty"`
}
