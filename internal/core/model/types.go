package model

import "time"

// Capture is one screen sample taken by the scheduler. Immutable once
// created; after it is pushed into the activity buffer the buffer is its
// only owner.
type Capture struct {
	Sequence    int64     // monotonically increasing, assigned by the capture source
	Timestamp   time.Time // capture time
	Path        string    // on-disk image file, deleted on eviction
	Payload     []byte    // encoded image bytes, empty in text-only mode
	Process     string    // foreground process name at capture time, may be empty
	WindowTitle string    // foreground window title at capture time, may be empty
}

// VerdictLabel is the productivity judgment of a single classification.
type VerdictLabel string

const (
	VerdictProductive VerdictLabel = "productive"
	VerdictDistracted VerdictLabel = "distracted"
)

// Verdict is the result of classifying one capture against a profile
// snapshot. Immutable, timestamped at receipt.
type Verdict struct {
	Sequence   int64        `json:"sequence"`
	Label      VerdictLabel `json:"label"`
	Confidence float64      `json:"confidence,omitempty"` // 0 when the backend gave none
	Rationale  string       `json:"rationale,omitempty"`
	ReceivedAt time.Time    `json:"received_at"`
}

// Distracted reports whether this verdict counts toward the distraction streak.
func (v Verdict) Distracted() bool {
	return v.Label == VerdictDistracted
}

// ProfileSnapshot is an immutable copy of a profile's classification
// criteria taken when a classification request is issued. Later profile
// edits never affect an in-flight request.
type ProfileSnapshot struct {
	Name      string    `json:"name"`
	Criteria  []string  `json:"criteria"`
	Blocklist []string  `json:"blocklist,omitempty"`
	Allowlist []string  `json:"allowlist,omitempty"`
	TakenAt   time.Time `json:"taken_at"`
}

// NotificationEvent is emitted by the escalation engine when the level
// advances. Fire-and-forget; the notification sink owns rendering and
// dismissal.
type NotificationEvent struct {
	Level     int       `json:"level"`
	Message   string    `json:"message"`
	Tone      string    `json:"tone"`
	Timestamp time.Time `json:"timestamp"`
}

// EvictionNotice is emitted by the activity buffer before it drops its
// oldest capture, so the collaborator owning disk I/O can delete the
// backing file.
type EvictionNotice struct {
	Sequence int64
	Path     string
}

// SessionSummary is the serializable record of one monitoring session.
type SessionSummary struct {
	Profile          string    `json:"profile"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	VerdictCount     int       `json:"verdict_count"`
	DistractionCount int       `json:"distraction_count"`
	PeakLevel        int       `json:"peak_level"`
	Notifications    int       `json:"notifications"`
	File             string    `json:"-"` // source filename, set when loaded from the index
}

// Duration returns the wall-clock length of the session.
func (s SessionSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
