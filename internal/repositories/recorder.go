package repositories

import (
	"fmt"

	"github.com/desertthunder/batchalign/internal/models"
)

// RunRecorder implements tasks.ResultRecorder using [RunRepository] and [ResultRepository].
type RunRecorder struct {
	runs     *RunRepository
	results  *ResultRepository
	mode     models.MatchMode
	endpoint string
}

// NewRunRecorder creates a recorder that tags runs with the match mode and endpoint they used.
func NewRunRecorder(runs *RunRepository, results *ResultRepository, mode models.MatchMode, endpoint string) *RunRecorder {
	return &RunRecorder{runs: runs, results: results, mode: mode, endpoint: endpoint}
}

// Start inserts the run row using the live run's ID.
func (a *RunRecorder) Start(state models.RunState) error {
	run := models.NewRun(0, a.mode, a.endpoint, state.Total)
	run.SetID(state.ID)
	run.ApplyState(state)

	if err := a.runs.Create(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Record appends one result to the run's log.
func (a *RunRecorder) Record(runID string, res models.BatchResult) error {
	return a.results.Append(runID, res)
}

// Finish stores the final status, counts and timestamps.
func (a *RunRecorder) Finish(state models.RunState) error {
	run, err := a.runs.Get(state.ID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", state.ID, err)
	}

	run.ApplyState(state)
	return a.runs.Update(run)
}

// LoadState rebuilds the [models.RunState] of a stored run.
func LoadState(run *models.Run, results *ResultRepository) (models.RunState, error) {
	completed, err := results.ListByRun(run.ID())
	if err != nil {
		return models.RunState{}, err
	}

	state := models.RunState{
		ID:           run.ID(),
		Total:        run.Total(),
		Completed:    completed,
		CurrentIndex: max(len(completed)-1, 0),
		Status:       run.Status(),
	}
	if completed == nil {
		state.Completed = []models.BatchResult{}
	}
	if t := run.StartedAt(); t != nil {
		state.StartedAt = *t
	}
	if t := run.FinishedAt(); t != nil {
		state.FinishedAt = *t
	}
	return state, nil
}
