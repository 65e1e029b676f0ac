package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/batchalign/internal/models"
	"github.com/desertthunder/batchalign/internal/shared"
)

// ResultRepository stores the result log of each run.
//
// Rows are append-only: one per work item, keyed by (run_id, position).
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository with the given database connection
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Append stores res as the next entry of run runID's result log.
func (r *ResultRepository) Append(runID string, res models.BatchResult) error {
	if runID == "" {
		return fmt.Errorf("%w: run ID is required", shared.ErrMissingArgument)
	}

	var kind, message, response any
	if res.Outcome.Kind != "" {
		kind = string(res.Outcome.Kind)
	}
	if res.Outcome.Message != "" {
		message = res.Outcome.Message
	}
	if res.Outcome.Response != nil {
		response = res.Outcome.Response.Raw()
	}

	query := `
		INSERT INTO results (
			id, run_id, position, audio_name, transcript_name, status,
			failure_kind, message, response, duration_ms, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		shared.GenerateID(),
		runID,
		res.Index,
		res.AudioName,
		res.TranscriptName,
		string(res.Outcome.Status),
		kind,
		message,
		response,
		res.Duration.Milliseconds(),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	return nil
}

// ListByRun returns the result log of runID in position order.
func (r *ResultRepository) ListByRun(runID string) ([]models.BatchResult, error) {
	query := `
		SELECT position, audio_name, transcript_name, status, failure_kind, message, response, duration_ms
		FROM results
		WHERE run_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.BatchResult
	for rows.Next() {
		var (
			res        models.BatchResult
			status     string
			kind       sql.NullString
			message    sql.NullString
			response   []byte
			durationMS int64
		)

		if err := rows.Scan(&res.Index, &res.AudioName, &res.TranscriptName, &status, &kind, &message, &response, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		res.Duration = time.Duration(durationMS) * time.Millisecond
		res.Outcome = models.Outcome{
			Status:  models.OutcomeStatus(status),
			Kind:    models.FailureKind(kind.String),
			Message: message.String,
		}
		if len(response) > 0 {
			payload, err := models.NewPayload(response)
			if err != nil {
				return nil, fmt.Errorf("stored response for %s is corrupt: %w", res.AudioName, err)
			}
			res.Outcome.Response = &payload
		}

		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

// Count returns the number of results stored for runID.
func (r *ResultRepository) Count(runID string) (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM results WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}
