package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/services"
	"github.com/desertthunder/batchalign/internal/shared"
)

// ResultRecorder persists a run while it executes.
//
// Recorder errors are logged and never stop a run.
type ResultRecorder interface {
	Start(state models.RunState) error
	Record(runID string, res models.BatchResult) error
	Finish(state models.RunState) error
}

// RunnerOpts configures a [BatchRunner].
type RunnerOpts struct {
	Submitter         services.Submitter // Required
	Prober            services.Prober    // Health probe used when Preflight is set
	Recorder          ResultRecorder     // Optional persistence
	RequestsPerSecond float64            // Pacing between submissions; 0 means unlimited
	Preflight         bool               // Probe the service before the first submission
	Logger            *log.Logger
}

// BatchRunner submits work items one at a time and accumulates the result log.
type BatchRunner struct {
	submitter services.Submitter
	prober    services.Prober
	recorder  ResultRecorder
	limiter   *rate.Limiter
	preflight bool
	logger    *log.Logger

	mu      sync.Mutex
	running bool
}

// NewBatchRunner creates a runner from opts.
func NewBatchRunner(opts RunnerOpts) *BatchRunner {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &BatchRunner{
		submitter: opts.Submitter,
		prober:    opts.Prober,
		recorder:  opts.Recorder,
		limiter:   rate.NewLimiter(limit, 1),
		preflight: opts.Preflight,
		logger:    logger,
	}
}

// Run submits items in order and returns the final state.
//
// Item i+1 is never submitted before item i's outcome is recorded, and a
// failed item never stops the run. Cancelling ctx marks the in-flight item and
// every remaining item as skipped; the run then ends [models.RunCancelled].
//
// Events are sent on events in order and each send waits for a receiver until
// ctx is done. A nil channel disables events. The caller owns the channel.
//
// Returns [shared.ErrNoWorkItems] for an empty item list and
// [shared.ErrServiceUnavailable] when the pre-flight probe fails. Both are
// returned before any submission.
func (r *BatchRunner) Run(ctx context.Context, items []models.WorkItem, events chan<- Event) (*models.RunState, error) {
	if len(items) == 0 {
		return nil, shared.ErrNoWorkItems
	}
	if r.submitter == nil {
		return nil, fmt.Errorf("%w: submitter not initialized", shared.ErrServiceUnavailable)
	}
	if !r.begin() {
		return nil, shared.ErrRunInProgress
	}
	defer r.end()

	state := models.NewRunState(shared.GenerateID(), len(items))
	logger := shared.WithLogger(r.logger, "run", state.ID)

	if r.preflight {
		emit(ctx, events, preflightEvent(state.Snapshot()))
		if err := r.Preflight(ctx); err != nil {
			return nil, err
		}
	}

	state.Status = models.RunRunning
	state.StartedAt = time.Now()
	logger.Info("batch started", "items", state.Total)
	r.start(logger, state.Snapshot())

	cancelled := false
	for i, item := range items {
		if ctx.Err() != nil {
			r.skipRemaining(ctx, logger, state, items[i:], events)
			cancelled = true
			break
		}
		if err := r.limiter.Wait(ctx); err != nil {
			r.skipRemaining(ctx, logger, state, items[i:], events)
			cancelled = true
			break
		}

		state.CurrentIndex = i
		emit(ctx, events, itemStartedEvent(state.Snapshot(), item))

		began := time.Now()
		outcome := r.submit(ctx, logger, item)
		res := models.NewBatchResult(item, outcome, time.Since(began))
		res.Index = i

		r.append(logger, state, res)
		emit(ctx, events, itemDoneEvent(state.Snapshot(), res))

		if outcome.IsSkipped() {
			cancelled = true
		}
	}

	state.Status = models.RunCompleted
	if cancelled {
		state.Status = models.RunCancelled
	}
	state.FinishedAt = time.Now()

	if r.recorder != nil {
		if err := r.recorder.Finish(state.Snapshot()); err != nil {
			logger.Warn("failed to record run completion", "error", err)
		}
	}

	logger.Info("batch finished", "status", state.Status, "processed", len(state.Completed), "total", state.Total)
	emit(ctx, events, runCompletedEvent(state.Snapshot()))
	return state, nil
}

// Preflight probes the alignment service. A runner without a prober always passes.
func (r *BatchRunner) Preflight(ctx context.Context) error {
	if r.prober == nil {
		return nil
	}
	if err := r.prober.Ping(ctx); err != nil {
		if errors.Is(err, shared.ErrServiceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	return nil
}

// Running reports whether a run is in progress.
func (r *BatchRunner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *BatchRunner) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *BatchRunner) end() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// submit converts a panicking submitter into a failure outcome.
func (r *BatchRunner) submit(ctx context.Context, logger *log.Logger, item models.WorkItem) (outcome models.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("submitter panicked", "audio", item.Audio.Name, "panic", p)
			outcome = models.Failed(models.FailureInternal, fmt.Sprintf("internal error: %v", p))
		}
	}()

	logger.Debug("submitting", "audio", item.Audio.Name, "transcript", item.Transcript.Name)
	return r.submitter.Submit(ctx, item)
}

func (r *BatchRunner) append(logger *log.Logger, state *models.RunState, res models.BatchResult) {
	state.Completed = append(state.Completed, res)

	switch res.Outcome.Status {
	case models.StatusFailure:
		logger.Warn("item failed", "audio", res.AudioName, "kind", res.Outcome.Kind, "error", res.Outcome.Message)
	case models.StatusSkipped:
		logger.Debug("item skipped", "audio", res.AudioName, "reason", res.Outcome.Message)
	default:
		logger.Info("item aligned", "audio", res.AudioName, "duration", res.Duration)
	}

	if r.recorder != nil {
		if err := r.recorder.Record(state.ID, res); err != nil {
			logger.Warn("failed to record result", "audio", res.AudioName, "error", err)
		}
	}
}

func (r *BatchRunner) start(logger *log.Logger, state models.RunState) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Start(state); err != nil {
		logger.Warn("failed to record run start", "error", err)
	}
}

func (r *BatchRunner) skipRemaining(ctx context.Context, logger *log.Logger, state *models.RunState, rest []models.WorkItem, events chan<- Event) {
	logger.Info("batch cancelled", "remaining", len(rest))
	for _, item := range rest {
		state.CurrentIndex = len(state.Completed)
		res := models.NewBatchResult(item, models.Skipped(models.MessageCancelled), 0)
		res.Index = len(state.Completed)
		r.append(logger, state, res)
		emit(ctx, events, itemDoneEvent(state.Snapshot(), res))
	}
}

// emit delivers e, waiting for a receiver until ctx is done.
func emit(ctx context.Context, events chan<- Event, e Event) {
	if events == nil {
		return
	}
	select {
	case events <- e:
		return
	default:
	}
	select {
	case events <- e:
	case <-ctx.Done():
	}
}
