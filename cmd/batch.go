package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/batchalign/internal/formatter"
	"github.com/desertthunder/batchalign/internal/inputs"
	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/shared"
	"github.com/desertthunder/batchalign/internal/tasks"
	"github.com/urfave/cli/v3"
)

// selection is the outcome of collecting and matching the input files.
type selection struct {
	Mode                 models.MatchMode  `json:"mode"`
	Items                []models.WorkItem `json:"items"`
	UnmatchedAudio       []string          `json:"unmatched_audio"`
	UnmatchedTranscripts []string          `json:"unmatched_transcripts"`
	DuplicateBases       []string          `json:"duplicate_bases,omitempty"`
}

func (s *selection) warnings() []string {
	var out []string
	for _, name := range s.UnmatchedAudio {
		out = append(out, "unmatched audio: "+name)
	}
	for _, name := range s.UnmatchedTranscripts {
		out = append(out, "unmatched transcript: "+name)
	}
	for _, base := range s.DuplicateBases {
		out = append(out, "duplicate identifier shares one transcript: "+base)
	}
	return out
}

// outputOpts controls where [Runner.finish] writes a run's files.
type outputOpts struct {
	dir     string
	format  string
	archive bool
}

func (r *Runner) outputOpts(cmd *cli.Command) outputOpts {
	o := outputOpts{
		dir:     cmd.String("out"),
		format:  cmd.String("format"),
		archive: cmd.Bool("zip") || r.config.Output.Archive,
	}
	if o.dir == "" {
		o.dir = r.config.Output.Dir
	}
	if o.format == "" {
		o.format = r.config.Output.ReportFormat
	}
	return o
}

func (r *Runner) matchMode(cmd *cli.Command) (models.MatchMode, error) {
	mode := cmd.String("mode")
	if mode == "" {
		mode = r.config.Batch.MatchMode
	}
	return models.ParseMatchMode(mode)
}

// selectFiles collects audio and transcripts and pairs them.
func (r *Runner) selectFiles(audioPaths, transcriptPaths []string, mode models.MatchMode) (*selection, error) {
	audio, err := inputs.Collect(audioPaths, models.KindAudio)
	if err != nil {
		return nil, err
	}
	transcripts, err := inputs.Collect(transcriptPaths, models.KindTranscript)
	if err != nil {
		return nil, err
	}

	items := tasks.Match(audio, transcripts, mode)
	unmatchedAudio, unmatchedTranscripts := tasks.Unmatched(audio, transcripts, items)

	r.logger.Debug("matched inputs", "mode", mode, "audio", len(audio), "transcripts", len(transcripts), "pairs", len(items))

	return &selection{
		Mode:                 mode,
		Items:                items,
		UnmatchedAudio:       unmatchedAudio,
		UnmatchedTranscripts: unmatchedTranscripts,
		DuplicateBases:       tasks.DuplicateBases(items),
	}, nil
}

func (r *Runner) selectFromFlags(cmd *cli.Command) (*selection, error) {
	mode, err := r.matchMode(cmd)
	if err != nil {
		return nil, err
	}
	audio := cmd.StringSlice("audio")
	transcripts := cmd.StringSlice("transcripts")
	if len(audio) == 0 || len(transcripts) == 0 {
		return nil, fmt.Errorf("%w: --audio and --transcripts are required", shared.ErrMissingArgument)
	}
	return r.selectFiles(audio, transcripts, mode)
}

// BatchRun submits every matched pair and writes artifacts, report, and manifest.
func (r *Runner) BatchRun(ctx context.Context, cmd *cli.Command) error {
	return r.runBatch(ctx, cmd, cmd.Bool("tui"))
}

func (r *Runner) runBatch(ctx context.Context, cmd *cli.Command, interactive bool) error {
	sel, err := r.selectFromFlags(cmd)
	if err != nil {
		return err
	}
	if len(sel.Items) == 0 {
		return fmt.Errorf("%w: %d audio and %d transcript files left unpaired",
			shared.ErrNoWorkItems, len(sel.UnmatchedAudio), len(sel.UnmatchedTranscripts))
	}

	if interactive {
		fileLogger, err := shared.NewFileLogger(r.config.Logging.File)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		fileLogger.SetLevel(r.logger.GetLevel())
		r.SetLogger(fileLogger)
	}
	for _, w := range sel.warnings() {
		r.logger.Warn(w)
	}

	var recorder tasks.ResultRecorder
	if !cmd.Bool("no-history") {
		if recorder, err = r.recorder(sel.Mode); err != nil {
			return err
		}
		defer r.Close()
	}

	runner := r.batchRunner(recorder, cmd.Bool("preflight"))

	var state *models.RunState
	if interactive {
		state, err = r.runTUI(ctx, runner, sel)
	} else {
		state, err = r.runPlain(ctx, runner, sel.Items)
	}
	if err != nil {
		return err
	}
	if state == nil {
		r.logger.Info("run not started")
		return nil
	}

	return r.finish(*state, r.outputOpts(cmd))
}

// runPlain runs the batch while printing each event as a line.
func (r *Runner) runPlain(ctx context.Context, runner *tasks.BatchRunner, items []models.WorkItem) (*models.RunState, error) {
	events := make(chan tasks.Event)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range events {
			switch e.Phase {
			case tasks.EventPreflight:
				r.writePlain("🔎 %s\n", e.Message)
			case tasks.EventItemStarted, tasks.EventItemDone:
				r.writePlain("%s\n", e.Message)
			}
		}
	}()

	state, err := runner.Run(ctx, items, events)
	close(events)
	<-done

	return state, err
}

// finish writes the files of a completed or cancelled run into o.dir.
func (r *Runner) finish(state models.RunState, o outputOpts) error {
	artifacts := formatter.ExportArtifacts(state)
	written, err := formatter.WriteArtifacts(o.dir, artifacts)
	if err != nil {
		return err
	}

	report, err := formatter.WriteReport(state, o.format, filepath.Join(o.dir, formatter.ReportFilename(state.ID, o.format)))
	if err != nil {
		return err
	}

	manifest := formatter.BuildManifest(state, o.dir)
	manifest.Report = report

	if o.archive {
		path := filepath.Join(o.dir, state.ID+".zip")
		if err := formatter.ExportArchive(artifacts, path); err != nil {
			return err
		}
		manifest.Archive = path
	}

	manifestFormat := r.config.Output.ManifestFormat
	if err := formatter.WriteManifest(manifest, manifestFormat, filepath.Join(o.dir, formatter.ManifestFilename(state.ID, manifestFormat))); err != nil {
		return err
	}

	r.logger.Info("run written", "run", state.ID, "dir", o.dir, "artifacts", len(written), "report", report)

	summary := formatter.Summarize(state)
	r.writePlain("\n%s", summary.DisplayText)
	r.writePlainHeader(fmt.Sprintf("Run %s", state.Status))
	r.writePlain("Success: %d  Failure: %d  Skipped: %d\n", summary.Success, summary.Failure, summary.Skipped)
	r.writePlain("Artifacts: %d written to %s\n", len(written), o.dir)
	r.writePlain("Report: %s\n", report)
	return nil
}

// BatchMatch previews the pairing without submitting anything.
func (r *Runner) BatchMatch(ctx context.Context, cmd *cli.Command) error {
	sel, err := r.selectFromFlags(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(sel, true); err != nil {
			return err
		}
	} else {
		r.writePlainHeader(fmt.Sprintf("%d pairs (%s)", len(sel.Items), sel.Mode))
		for _, item := range sel.Items {
			r.writePlain("%3d. %s ↔ %s\n", item.Index+1, item.Audio.Name, item.Transcript.Name)
		}
		if warnings := sel.warnings(); len(warnings) > 0 {
			r.writePlain("\n")
			for _, w := range warnings {
				r.writePlain("⚠ %s\n", w)
			}
		}
	}

	if len(sel.Items) == 0 {
		return shared.ErrNoWorkItems
	}
	return nil
}
