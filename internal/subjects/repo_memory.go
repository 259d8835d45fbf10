package subjects

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Subject
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Subject)}
}

func (r *MemoryRepo) Create(ctx context.Context, s Subject) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[s.ID] = s.Clone()
	return nil
}

// List returns all subjects, most recently updated first.
func (r *MemoryRepo) List(ctx context.Context) ([]Subject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Subject, 0, len(r.data))
	for _, s := range r.data {
		out = append(out, s.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Subject, error) {
	if err := ctx.Err(); err != nil {
		return Subject{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[id]
	if !ok {
		return Subject{}, ErrNotFound
	}
	return s.Clone(), nil
}

func (r *MemoryRepo) UpdateName(ctx context.Context, id, name string, at time.Time) error {
	return r.mutate(ctx, id, at, func(s *Subject) {
		s.Name = name
	})
}

// AddURL appends url unless it is already present.
func (r *MemoryRepo) AddURL(ctx context.Context, id, url string, at time.Time) error {
	return r.mutate(ctx, id, at, func(s *Subject) {
		for _, existing := range s.PDFURLs {
			if existing == url {
				return
			}
		}
		s.PDFURLs = append(s.PDFURLs, url)
	})
}

// RemoveURL drops every entry equal to url.
func (r *MemoryRepo) RemoveURL(ctx context.Context, id, url string, at time.Time) error {
	return r.mutate(ctx, id, at, func(s *Subject) {
		kept := s.PDFURLs[:0]
		for _, existing := range s.PDFURLs {
			if existing != url {
				kept = append(kept, existing)
			}
		}
		s.PDFURLs = kept
	})
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) mutate(ctx context.Context, id string, at time.Time, fn func(*Subject)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	s = s.Clone()
	fn(&s)
	s.UpdatedAt = at
	r.data[id] = s
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
