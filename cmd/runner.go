package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/repositories"
	"github.com/desertthunder/batchalign/internal/services"
	"github.com/desertthunder/batchalign/internal/shared"
	"github.com/desertthunder/batchalign/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	submitter  services.Submitter
	health     *services.HealthService
	prober     services.Prober
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Submitter  services.Submitter
	Prober     services.Prober
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Services not supplied in opts are built from the endpoint section of the config.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = services.NewHTTPClient(context.Background(), opts.Config.Endpoint.AuthToken)
	}

	endpoint := opts.Config.Endpoint
	health := services.NewHealthService(endpoint, opts.HTTPClient)

	if opts.Submitter == nil {
		align := services.NewAlignService(endpoint.AlignURL(), endpoint.Timeout, opts.HTTPClient)
		if endpoint.HeadersPath != "" {
			if headers, err := shared.LoadHeadersFile(endpoint.HeadersPath); err != nil {
				opts.Logger.Warn("ignoring extra headers", "path", endpoint.HeadersPath, "error", err)
			} else {
				align = align.WithHeaders(headers.HTTPHeader())
			}
		}
		opts.Submitter = align
	}
	if opts.Prober == nil {
		opts.Prober = health
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		submitter:  opts.Submitter,
		health:     health,
		prober:     opts.Prober,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		batchCommand, historyCommand, healthCommand, setupCommand, watchCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command. Slice flags take paths verbatim, so a comma
// in a file name never splits it.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:                      "balign",
		Usage:                     "Batch forced alignment of audio files against transcripts",
		Version:                   "0.1.0",
		Commands:                  r.register(),
		DisableSliceFlagSeparator: true,
	}
}

// SetLogger replaces the logger used by subsequent actions.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the history database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// database opens and migrates the history database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	r.db = db
	return db, nil
}

func (r *Runner) repositories() (*repositories.RunRepository, *repositories.ResultRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewRunRepository(db), repositories.NewResultRepository(db), nil
}

// batchRunner wires a [tasks.BatchRunner] to the configured services. A nil recorder disables history.
func (r *Runner) batchRunner(recorder tasks.ResultRecorder, preflight bool) *tasks.BatchRunner {
	return tasks.NewBatchRunner(tasks.RunnerOpts{
		Submitter:         r.submitter,
		Prober:            r.prober,
		RequestsPerSecond: r.config.Batch.RequestsPerSecond,
		Preflight:         preflight || r.config.Batch.Preflight,
		Recorder:          recorder,
		Logger:            r.logger,
	})
}

func (r *Runner) recorder(mode models.MatchMode) (tasks.ResultRecorder, error) {
	runs, results, err := r.repositories()
	if err != nil {
		return nil, err
	}
	return repositories.NewRunRecorder(runs, results, mode, r.config.Endpoint.AlignURL()), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
