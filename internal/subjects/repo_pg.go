package subjects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const subjectColumns = `id, name, pdf_urls, created_at, updated_at`

// Create inserts a new subject.
func (r *PGRepo) Create(ctx context.Context, s Subject) error {
	const query = `
INSERT INTO subjects (id, name, pdf_urls, created_at, updated_at)
VALUES ($1, $2, $3::jsonb, $4, $5)`

	urls := s.PDFURLs
	if urls == nil {
		urls = []string{}
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode pdf urls: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query, s.ID, s.Name, string(raw), s.CreatedAt, s.UpdatedAt)
	return err
}

// List returns all subjects ordered by updated_at descending.
func (r *PGRepo) List(ctx context.Context) ([]Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects ORDER BY updated_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Subject{}
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches a subject by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = $1 LIMIT 1`
	s, err := scanSubject(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, ErrNotFound
		}
		return Subject{}, err
	}
	return s, nil
}

func (r *PGRepo) UpdateName(ctx context.Context, id, name string, at time.Time) error {
	const query = `UPDATE subjects SET name = $2, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, name, at)
}

// AddURL adds url to pdf_urls unless already present, in one statement.
func (r *PGRepo) AddURL(ctx context.Context, id, url string, at time.Time) error {
	const query = `
UPDATE subjects
SET pdf_urls = CASE
        WHEN pdf_urls @> jsonb_build_array($2::text) THEN pdf_urls
        ELSE pdf_urls || jsonb_build_array($2::text)
    END,
    updated_at = $3
WHERE id = $1`
	return r.execOne(ctx, query, id, url, at)
}

// RemoveURL removes every occurrence of url from pdf_urls.
func (r *PGRepo) RemoveURL(ctx context.Context, id, url string, at time.Time) error {
	const query = `UPDATE subjects SET pdf_urls = pdf_urls - $2::text, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, query, id, url, at)
}

// Delete removes a subject. Documents referencing it are left untouched.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM subjects WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (Subject, error) {
	var s Subject
	var rawURLs []byte
	if err := row.Scan(&s.ID, &s.Name, &rawURLs, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Subject{}, err
	}
	s.PDFURLs = []string{}
	if len(rawURLs) > 0 {
		if err := json.Unmarshal(rawURLs, &s.PDFURLs); err != nil {
			return Subject{}, fmt.Errorf("decode pdf urls for subject %s: %w", s.ID, err)
		}
	}
	return s, nil
}

var _ Repo = (*PGRepo)(nil)
