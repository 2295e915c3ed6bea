package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UploadRepo records stored files.
type UploadRepo struct {
	db *sql.DB
}

func NewUploadRepo(db *sql.DB) *UploadRepo {
	return &UploadRepo{db: db}
}

// Create inserts u, assigning ID and CreatedAt when empty.
func (r *UploadRepo) Create(ctx context.Context, u *Upload) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO uploads (id, kind, filename, path, size, content_hash, chunks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, string(u.Kind), u.Filename, u.Path, u.Size, u.ContentHash, u.Chunks, formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

const uploadColumns = `id, kind, filename, path, size, content_hash, chunks, learned_at, created_at`

// Get returns the upload with id or ErrNotFound.
func (r *UploadRepo) Get(ctx context.Context, id string) (Upload, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = ?`, id)
	u, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Upload{}, fmt.Errorf("upload %s: %w", id, ErrNotFound)
	}
	return u, err
}

// List returns uploads of kind, newest first. An empty kind lists all.
func (r *UploadRepo) List(ctx context.Context, kind Kind) ([]Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []Upload{}
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// MarkLearned records that the upload was indexed into chunks points.
func (r *UploadRepo) MarkLearned(ctx context.Context, id string, chunks int, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE uploads SET chunks = ?, learned_at = ? WHERE id = ?`,
		chunks, formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("mark learned: %w", err)
	}
	return requireRow(res, "upload", id)
}

// Delete removes the upload record and its runs.
func (r *UploadRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return requireRow(res, "upload", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (Upload, error) {
	var (
		u         Upload
		kind      string
		learnedAt sql.NullString
		createdAt string
	)
	if err := s.Scan(&u.ID, &kind, &u.Filename, &u.Path, &u.Size, &u.ContentHash, &u.Chunks, &learnedAt, &createdAt); err != nil {
		return Upload{}, err
	}
	u.Kind = Kind(kind)

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return Upload{}, fmt.Errorf("upload %s created_at: %w", u.ID, err)
	}
	if learnedAt.Valid {
		t, err := parseTime(learnedAt.String)
		if err != nil {
			return Upload{}, fmt.Errorf("upload %s learned_at: %w", u.ID, err)
		}
		u.LearnedAt = &t
	}
	return u, nil
}

func requireRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
