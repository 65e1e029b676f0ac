package models

import (
	"fmt"
	"time"
)

var _ Model = (*Run)(nil)

// Run is the persisted summary of a batch run.
type Run struct {
	id         string
	sequence   int
	status     RunStatus
	matchMode  MatchMode
	endpoint   string
	total      int
	succeeded  int
	failed     int
	skipped    int
	startedAt  *time.Time
	finishedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewRun creates an idle [Run] for total items submitted to endpoint.
func NewRun(sequence int, mode MatchMode, endpoint string, total int) *Run {
	now := time.Now()
	return &Run{
		sequence:  sequence,
		status:    RunIdle,
		matchMode: mode,
		endpoint:  endpoint,
		total:     total,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string             { return r.id }
func (r *Run) Sequence() int          { return r.sequence }
func (r *Run) Status() RunStatus      { return r.status }
func (r *Run) MatchMode() MatchMode   { return r.matchMode }
func (r *Run) Endpoint() string       { return r.endpoint }
func (r *Run) Total() int             { return r.total }
func (r *Run) Succeeded() int         { return r.succeeded }
func (r *Run) Failed() int            { return r.failed }
func (r *Run) Skipped() int           { return r.skipped }
func (r *Run) StartedAt() *time.Time  { return r.startedAt }
func (r *Run) FinishedAt() *time.Time { return r.finishedAt }
func (r *Run) CreatedAt() time.Time   { return r.createdAt }
func (r *Run) UpdatedAt() time.Time   { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time  { return r.deletedAt }

func (r *Run) SetID(id string)            { r.id = id }
func (r *Run) SetSequence(seq int)        { r.sequence = seq }
func (r *Run) SetStatus(s RunStatus)      { r.status = s }
func (r *Run) SetStartedAt(t *time.Time)  { r.startedAt = t }
func (r *Run) SetFinishedAt(t *time.Time) { r.finishedAt = t }
func (r *Run) SetCreatedAt(t time.Time)   { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time)   { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time)  { r.deletedAt = t }
func (r *Run) SetCounts(succeeded, failed, skipped int) {
	r.succeeded, r.failed, r.skipped = succeeded, failed, skipped
}

// Pending returns the items not yet accounted for.
func (r *Run) Pending() int {
	return r.total - r.succeeded - r.failed - r.skipped
}

// ApplyState copies status, counts and timestamps from a live [RunState].
func (r *Run) ApplyState(s RunState) {
	var succeeded, failed, skipped int
	for _, res := range s.Completed {
		switch res.Outcome.Status {
		case StatusSuccess:
			succeeded++
		case StatusFailure:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	r.SetCounts(succeeded, failed, skipped)
	r.status = s.Status
	r.total = s.Total

	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		r.startedAt = &t
	}
	if !s.FinishedAt.IsZero() {
		t := s.FinishedAt
		r.finishedAt = &t
	}
}

// Validate checks the run's invariants.
func (r *Run) Validate() error {
	switch r.status {
	case RunIdle, RunRunning, RunCompleted, RunCancelled:
	default:
		return fmt.Errorf("invalid run status: %q", r.status)
	}
	switch r.matchMode {
	case MatchAuto, MatchPositional:
	default:
		return fmt.Errorf("invalid match mode: %q", r.matchMode)
	}
	if r.endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if r.total < 0 {
		return fmt.Errorf("total cannot be negative")
	}
	if r.succeeded+r.failed+r.skipped > r.total {
		return fmt.Errorf("recorded results (%d) exceed total (%d)", r.succeeded+r.failed+r.skipped, r.total)
	}
	return nil
}
