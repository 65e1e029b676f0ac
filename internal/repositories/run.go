package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/shared"
)

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

const runColumns = `
	id, sequence, status, match_mode, endpoint, total,
	succeeded, failed, skipped, started_at, finished_at,
	created_at, updated_at, deleted_at
`

// RunRepository implements models.Repository[*models.Run] for batch run history.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run with a fresh sequence. A run without an ID gets a generated one.
func (r *RunRepository) Create(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.SetSequence(sequence)

	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		run.Sequence(),
		run.Status(),
		run.MatchMode(),
		run.Endpoint(),
		run.Total(),
		run.Succeeded(),
		run.Failed(),
		run.Skipped(),
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a run by its sequence number
func (r *RunRepository) GetBySequence(sequence int) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE sequence = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, sequence))
}

// Resolve finds a run by sequence number ("42" or "#42"), full ID, or unique ID prefix.
func (r *RunRepository) Resolve(ref string) (*models.Run, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: run reference", shared.ErrMissingArgument)
	}

	if seq, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		return r.GetBySequence(seq)
	}

	if run, err := r.Get(ref); err == nil {
		return run, nil
	} else if !errors.Is(err, shared.ErrRunNotFound) {
		return nil, err
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE id LIKE ? AND deleted_at IS NULL LIMIT 2`
	runs, err := r.query(query, ref+"%")
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, ref)
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches more than one run", shared.ErrInvalidArgument, ref)
	}
}

// Update writes the run's status, counts and timestamps
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, total = ?, succeeded = ?, failed = ?, skipped = ?,
			started_at = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Status(),
		run.Total(),
		run.Succeeded(),
		run.Failed(),
		run.Skipped(),
		run.StartedAt(),
		run.FinishedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves runs matching criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: "status" (string), "match_mode" (string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if mode, ok := criteria["match_mode"].(string); ok && mode != "" {
		query += " AND match_mode = ?"
		args = append(args, mode)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return r.query(query, args...)
}

func (r *RunRepository) query(query string, args ...any) ([]*models.Run, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row from a [sql.Row] or [sql.Rows] into a [models.Run]
func (r *RunRepository) scan(row scanner) (*models.Run, error) {
	var (
		id         string
		sequence   int
		status     string
		matchMode  string
		endpoint   string
		total      int
		succeeded  int
		failed     int
		skipped    int
		startedAt  sql.NullTime
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &status, &matchMode, &endpoint, &total,
		&succeeded, &failed, &skipped, &startedAt, &finishedAt,
		&createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewRun(sequence, models.MatchMode(matchMode), endpoint, total)
	run.SetID(id)
	run.SetStatus(models.RunStatus(status))
	run.SetCounts(succeeded, failed, skipped)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
