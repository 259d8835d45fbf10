package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	List(ctx context.Context) ([]Document, error)
	ListBySubject(ctx context.Context, subjectID string) ([]Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	UpdateName(ctx context.Context, id, name string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
