package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, name, url, size, pages, uploaded_at, subject_id, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    name,
    url,
    size,
    pages,
    uploaded_at,
    subject_id,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Name,
		doc.URL,
		doc.Size,
		doc.Pages,
		doc.UploadedAt,
		doc.SubjectID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// List returns every document ordered by updated_at descending.
func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY updated_at DESC, id DESC`
	return r.query(ctx, query)
}

// ListBySubject returns the subject's documents ordered by updated_at descending.
func (r *PGRepo) ListBySubject(ctx context.Context, subjectID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE subject_id = $1 ORDER BY updated_at DESC, id DESC`
	return r.query(ctx, query, subjectID)
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) UpdateName(ctx context.Context, id, name string, at time.Time) error {
	const query = `UPDATE documents SET name = $2, updated_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, name, at)
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

// Delete removes the metadata row. The stored blob is not touched.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var size sql.NullString
	var uploadedAt sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.URL,
		&size,
		&doc.Pages,
		&uploadedAt,
		&doc.SubjectID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if size.Valid {
		doc.Size = size.String
	}
	if uploadedAt.Valid {
		doc.UploadedAt = uploadedAt.String
	}
	return doc, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
