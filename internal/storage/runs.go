package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRepo persists review runs. Terms and results are stored as JSON.
type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Create inserts run, assigning ID and CreatedAt when empty.
func (r *RunRepo) Create(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	terms, err := json.Marshal(run.Terms)
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}
	results, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO runs (id, upload_id, start_page, end_page, terms, results, processing_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.UploadID, run.StartPage, run.EndPage, string(terms), string(results), run.ProcessingMs, formatTime(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get returns the run with id or ErrNotFound.
func (r *RunRepo) Get(ctx context.Context, id string) (Run, error) {
	var (
		run            Run
		terms, results string
		createdAt      string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, upload_id, start_page, end_page, terms, results, processing_ms, created_at
		 FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.UploadID, &run.StartPage, &run.EndPage, &terms, &results, &run.ProcessingMs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}

	if err := json.Unmarshal([]byte(terms), &run.Terms); err != nil {
		return Run{}, fmt.Errorf("run %s terms: %w", id, err)
	}
	if err := json.Unmarshal([]byte(results), &run.Results); err != nil {
		return Run{}, fmt.Errorf("run %s results: %w", id, err)
	}
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return Run{}, fmt.Errorf("run %s created_at: %w", id, err)
	}
	return run, nil
}

// Latest returns the most recent run of upload.
func (r *RunRepo) Latest(ctx context.Context, uploadID string) (Run, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE upload_id = ? ORDER BY created_at DESC LIMIT 1`, uploadID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run for upload %s: %w", uploadID, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return r.Get(ctx, id)
}
