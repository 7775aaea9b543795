package sweep

import "time"

// RunID identifies one sweep run.
type RunID string

// Status enum for a run.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// FailedPoint records one unresolved grid coordinate and its cause.
type FailedPoint struct {
	Index  Index  `json:"index"`
	Linear int    `json:"linear"`
	Reason string `json:"reason"`
}

// Aggregate root: one characterization run of a single device.
type Run struct {
	ID          RunID         `json:"id"`
	Device      string        `json:"device"`
	TriggeredAt time.Time     `json:"triggered_at"`
	Status      Status        `json:"status"`
	Attempted   int           `json:"attempted"`
	Succeeded   int           `json:"succeeded"`
	Failed      []FailedPoint `json:"failed,omitempty"`
	ArchivePath string        `json:"archive_path,omitempty"`
	ArchiveURL  string        `json:"archive_url,omitempty"`
	DurationMS  int64         `json:"duration_ms"`
}
