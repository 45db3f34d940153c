package domain

import (
	"sync"
	"time"
)

// PipelineSpec describes one pipeline run: how wide each tier fans out, how
// many workers consume the task stream, and how long a tier barrier waits for
// stragglers before declaring partial completion.
type PipelineSpec struct {
	RunID   string
	ModelID string

	// Analysts is the tier-1 fan-out width.
	Analysts int
	// Reviewers is the tier-3 fan-out width (opening tasks, then as many
	// response tasks).
	Reviewers int
	// Workers is the number of concurrent stream consumers per run.
	Workers int

	// BarrierTimeout bounds each tier barrier wait. On expiry the run aborts
	// with a partial-completion error instead of blocking forever.
	BarrierTimeout time.Duration

	// Inputs are the raw corpus artifacts fed to tier 1.
	Inputs []ArtifactID
}

// EventKind classifies audit trail events.
type EventKind string

const (
	EventEnqueued        EventKind = "enqueued"
	EventClaimed         EventKind = "claimed"
	EventCompleted       EventKind = "completed"
	EventFailed          EventKind = "failed"
	EventBarrierReleased EventKind = "barrier_released"
	EventBarrierTimeout  EventKind = "barrier_timeout"
	EventRunFinalized    EventKind = "run_finalized"
)

// AuditEvent is one entry in a run's ordered audit trail.
type AuditEvent struct {
	Seq        uint64     `json:"seq"`
	Kind       EventKind  `json:"kind"`
	TaskID     string     `json:"task_id,omitzero"`
	ArtifactID ArtifactID `json:"artifact_id,omitzero"`
	Tier       int        `json:"tier,omitzero"`
	Detail     string     `json:"detail,omitzero"`
	At         time.Time  `json:"at"`
}

// AuditTrail is the ordered event log of a pipeline run. It is committed as a
// distinct artifact when the run is finalized.
type AuditTrail struct {
	mu      sync.Mutex
	RunID   string       `json:"run_id"`
	Events  []AuditEvent `json:"events"`
	nextSeq uint64
}

// NewAuditTrail creates an empty audit trail for the given run.
func NewAuditTrail(runID string) *AuditTrail {
	return &AuditTrail{RunID: runID}
}

// Record appends an event, assigning it the next sequence number.
func (t *AuditTrail) Record(ev AuditEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextSeq++
	ev.Seq = t.nextSeq
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	t.Events = append(t.Events, ev)
}

// Snapshot returns a copy of the recorded events in order.
func (t *AuditTrail) Snapshot() []AuditEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]AuditEvent, len(t.Events))
	copy(out, t.Events)
	return out
}
