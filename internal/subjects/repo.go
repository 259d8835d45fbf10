package subjects

import (
	"context"
	"time"
)

// Repo defines persistence operations for subjects.
// Mutations on a missing id return ErrNotFound; Delete of a missing id succeeds.
type Repo interface {
	Create(ctx context.Context, s Subject) error
	List(ctx context.Context) ([]Subject, error)
	GetByID(ctx context.Context, id string) (Subject, error)
	UpdateName(ctx context.Context, id, name string, at time.Time) error
	AddURL(ctx context.Context, id, url string, at time.Time) error
	RemoveURL(ctx context.Context, id, url string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
