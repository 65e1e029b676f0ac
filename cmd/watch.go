package main

import (
	"context"
	"errors"

	"github.com/desertthunder/batchalign/internal/inputs"
	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/tasks"
	"github.com/desertthunder/batchalign/internal/watcher"
	"github.com/urfave/cli/v3"
)

// watchSession runs a batch for every settled group of new files in the watched directories.
type watchSession struct {
	r             *Runner
	audioDir      string
	transcriptDir string
	mode          models.MatchMode
	out           outputOpts
	runner        *tasks.BatchRunner
	processed     map[string]bool
}

// handle re-collects the directories and runs the pairs whose audio has not
// been processed in this session. Skipped items are retried on the next flush.
func (s *watchSession) handle(ctx context.Context, paths []string) error {
	sel, err := s.r.selectFiles([]string{s.audioDir}, []string{s.transcriptDir}, s.mode)
	if err != nil {
		return err
	}

	var pending []models.WorkItem
	for _, item := range sel.Items {
		if s.processed[item.Audio.Name] {
			continue
		}
		item.Index = len(pending)
		pending = append(pending, item)
	}
	if len(pending) == 0 {
		s.r.logger.Debug("nothing new to align", "changed", len(paths))
		return nil
	}

	audio, transcripts, _ := inputs.Split(paths)
	s.r.logger.Info("aligning new pairs", "pairs", len(pending), "new_audio", len(audio), "new_transcripts", len(transcripts))
	state, err := s.r.runPlain(ctx, s.runner, pending)
	if err != nil {
		return err
	}

	for _, res := range state.Completed {
		if !res.Outcome.IsSkipped() {
			s.processed[res.AudioName] = true
		}
	}
	return s.r.finish(*state, s.out)
}

// Watch aligns pairs as they appear in a directory until interrupted.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	mode, err := r.matchMode(cmd)
	if err != nil {
		return err
	}

	dir := cmd.String("dir")
	transcriptDir := cmd.String("transcripts")
	if transcriptDir == "" {
		transcriptDir = dir
	}

	if cmd.Bool("preflight") {
		if err := r.checkEndpoint(ctx); err != nil {
			return err
		}
	}

	var recorder tasks.ResultRecorder
	if !cmd.Bool("no-history") {
		if recorder, err = r.recorder(mode); err != nil {
			return err
		}
		defer r.Close()
	}

	session := &watchSession{
		r:             r,
		audioDir:      dir,
		transcriptDir: transcriptDir,
		mode:          mode,
		out:           r.outputOpts(cmd),
		runner:        r.batchRunner(recorder, false),
		processed:     make(map[string]bool),
	}

	quiet := cmd.Duration("quiet")
	if quiet <= 0 {
		quiet = r.config.Watch.QuietPeriod
	}

	w, err := watcher.New([]string{dir, transcriptDir}, quiet, session.handle, r.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := session.handle(ctx, nil); err != nil {
		r.logger.Error("initial batch failed", "error", err)
	}

	r.logger.Info("watching for new files", "dirs", w.Dirs(), "quiet", quiet)
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
