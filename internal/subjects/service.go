package subjects

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"studymate-backend/internal/shared/telemetry"
)

// Service is the subject repository used by stores and drivers. Every call maps to one
// backend call; backend failures are logged and returned as *OpError.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service over repo.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create stores a new subject with an empty URL set.
func (s *Service) Create(ctx context.Context, name string) (Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, ErrInvalidInput
	}
	now := s.now()
	sub := Subject{
		ID:        uuid.NewString(),
		Name:      name,
		PDFURLs:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, sub); err != nil {
		return Subject{}, s.fail("create subject", err, map[string]any{"name": name})
	}
	return sub, nil
}

// ListAll returns every subject, most recently updated first.
func (s *Service) ListAll(ctx context.Context) ([]Subject, error) {
	out, err := s.Repo.List(ctx)
	if err != nil {
		return nil, s.fail("list subjects", err, nil)
	}
	return out, nil
}

// Get returns ErrNotFound when no subject has the given id.
func (s *Service) Get(ctx context.Context, id string) (Subject, error) {
	if strings.TrimSpace(id) == "" {
		return Subject{}, ErrInvalidInput
	}
	sub, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Subject{}, ErrNotFound
		}
		return Subject{}, s.fail("get subject", err, map[string]any{"subject_id": id})
	}
	return sub, nil
}

func (s *Service) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(id) == "" || name == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.UpdateName(ctx, id, name, s.now()); err != nil {
		return s.fail("rename subject", err, map[string]any{"subject_id": id})
	}
	return nil
}

func (s *Service) AddURL(ctx context.Context, id, url string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(url) == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.AddURL(ctx, id, url, s.now()); err != nil {
		return s.fail("add subject url", err, map[string]any{"subject_id": id})
	}
	return nil
}

func (s *Service) RemoveURL(ctx context.Context, id, url string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(url) == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.RemoveURL(ctx, id, url, s.now()); err != nil {
		return s.fail("remove subject url", err, map[string]any{"subject_id": id})
	}
	return nil
}

// Delete removes the subject only; its documents stay in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.fail("delete subject", err, map[string]any{"subject_id": id})
	}
	return nil
}

func (s *Service) fail(op string, err error, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["op"] = op
	fields["error"] = err
	telemetry.Error("subjects."+strings.ReplaceAll(op, " ", "_")+".failed", fields)
	return &OpError{Op: op, Missing: errors.Is(err, ErrNotFound)}
}
