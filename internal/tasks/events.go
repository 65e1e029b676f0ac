package tasks

import (
	"fmt"

	"github.com/desertthunder/batchalign/internal/models"
)

// Event is a progress notification emitted by [BatchRunner.Run].
//
// Events are delivered in the order they happen. State is a snapshot and is
// safe to keep.
type Event struct {
	Phase   Phase               // What happened
	Index   int                 // Zero-based index of the current item
	Total   int                 // Number of items in the run
	Name    string              // Audio name of the current item
	Message string              // Human-readable message for display
	Result  *models.BatchResult // Set for [EventItemDone]
	State   models.RunState     // Run state after the event
}

// Phase identifies the kind of [Event].
type Phase int

const (
	EventPreflight Phase = iota
	EventItemStarted
	EventItemDone
	EventRunCompleted
)

func (p Phase) String() string {
	switch p {
	case EventPreflight:
		return "preflight"
	case EventItemStarted:
		return "item_started"
	case EventItemDone:
		return "item_done"
	case EventRunCompleted:
		return "run_completed"
	default:
		return ""
	}
}

func preflightEvent(state models.RunState) Event {
	return Event{
		Phase:   EventPreflight,
		Total:   state.Total,
		Message: "Checking alignment service...",
		State:   state,
	}
}

func itemStartedEvent(state models.RunState, item models.WorkItem) Event {
	return Event{
		Phase:   EventItemStarted,
		Index:   state.CurrentIndex,
		Total:   state.Total,
		Name:    item.Audio.Name,
		Message: fmt.Sprintf("[%d/%d] Processing %s...", state.CurrentIndex+1, state.Total, item.Audio.Name),
		State:   state,
	}
}

func itemDoneEvent(state models.RunState, res models.BatchResult) Event {
	var msg string
	switch res.Outcome.Status {
	case models.StatusSuccess:
		msg = fmt.Sprintf("[%d/%d] ✓ %s", len(state.Completed), state.Total, res.AudioName)
	case models.StatusSkipped:
		msg = fmt.Sprintf("[%d/%d] - %s: %s", len(state.Completed), state.Total, res.AudioName, res.Outcome.Message)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", len(state.Completed), state.Total, res.AudioName, res.Outcome.Message)
	}

	return Event{
		Phase:   EventItemDone,
		Index:   res.Index,
		Total:   state.Total,
		Name:    res.AudioName,
		Message: msg,
		Result:  &res,
		State:   state,
	}
}

func runCompletedEvent(state models.RunState) Event {
	return Event{
		Phase:   EventRunCompleted,
		Index:   state.CurrentIndex,
		Total:   state.Total,
		Message: fmt.Sprintf("Run %s: %d/%d processed", state.Status, len(state.Completed), state.Total),
		State:   state,
	}
}
