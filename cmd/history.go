package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/batchalign/internal/formatter"
	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/repositories"
	"github.com/desertthunder/batchalign/internal/shared"
	"github.com/urfave/cli/v3"
)

// runSummary is the JSON shape of a stored run.
type runSummary struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	Status     string     `json:"status"`
	MatchMode  string     `json:"match_mode"`
	Endpoint   string     `json:"endpoint"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func summarizeRun(run *models.Run) runSummary {
	return runSummary{
		ID:         run.ID(),
		Sequence:   run.Sequence(),
		Status:     string(run.Status()),
		MatchMode:  string(run.MatchMode()),
		Endpoint:   run.Endpoint(),
		Total:      run.Total(),
		Succeeded:  run.Succeeded(),
		Failed:     run.Failed(),
		Skipped:    run.Skipped(),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
	}
}

// HistoryList prints stored runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	runs, _, err := r.repositories()
	if err != nil {
		return err
	}
	defer r.Close()

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	list, err := runs.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]runSummary, len(list))
		for i, run := range list {
			out[i] = summarizeRun(run)
		}
		return r.writeJSON(out, true)
	}

	if len(list) == 0 {
		r.writePlain("No runs recorded yet\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("%d runs", len(list)))
	for _, run := range list {
		started := "-"
		if t := run.StartedAt(); t != nil {
			started = t.Local().Format(time.DateTime)
		}
		r.writePlain("#%-4d %s  %-9s  %d/%d ok  %d failed  %d skipped  %s\n",
			run.Sequence(), shortID(run.ID()), run.Status(),
			run.Succeeded(), run.Total(), run.Failed(), run.Skipped(), started)
	}
	return nil
}

// HistoryShow prints one run and its results.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	run, state, err := r.loadRun(cmd.StringArg("run"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Run     runSummary           `json:"run"`
			Results []models.BatchResult `json:"results"`
		}{summarizeRun(run), state.Completed}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d %s (%s)", run.Sequence(), run.ID(), run.Status()))
	r.writePlain("Endpoint: %s\nMode: %s\n\n", run.Endpoint(), run.MatchMode())
	r.writePlain("%s", formatter.DisplayText(state.Completed))
	return nil
}

// HistoryExport re-exports the artifacts, report, and manifest of a stored run.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	_, state, err := r.loadRun(cmd.StringArg("run"))
	if err != nil {
		return err
	}
	return r.finish(state, r.outputOpts(cmd))
}

func (r *Runner) loadRun(ref string) (*models.Run, models.RunState, error) {
	if ref == "" {
		return nil, models.RunState{}, fmt.Errorf("%w: run id or sequence number", shared.ErrMissingArgument)
	}

	runs, results, err := r.repositories()
	if err != nil {
		return nil, models.RunState{}, err
	}
	defer r.Close()

	run, err := runs.Resolve(ref)
	if err != nil {
		return nil, models.RunState{}, err
	}

	state, err := repositories.LoadState(run, results)
	if err != nil {
		return nil, models.RunState{}, err
	}
	return run, state, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
