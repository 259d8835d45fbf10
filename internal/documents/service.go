package documents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"studymate-backend/internal/shared/telemetry"
)

// Service is the document repository used by stores, the upload flow and drivers.
// Backend failures are logged and returned as *OpError.
type Service struct {
	Repo DocumentsRepo
	Now  func() time.Time
}

// NewService constructs a Service over repo.
func NewService(repo DocumentsRepo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create records a document. UploadedAt carries the same instant as CreatedAt.
func (s *Service) Create(ctx context.Context, name, url, size string, pages int, subjectID string) (Document, error) {
	name = strings.TrimSpace(name)
	subjectID = strings.TrimSpace(subjectID)
	if name == "" || strings.TrimSpace(url) == "" || subjectID == "" || pages < 0 {
		return Document{}, ErrInvalidInput
	}
	now := s.now()
	doc := Document{
		ID:         uuid.NewString(),
		Name:       name,
		URL:        url,
		Size:       size,
		Pages:      pages,
		UploadedAt: now.Format(UploadedAtLayout),
		SubjectID:  subjectID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, s.fail("create document", err, map[string]any{"subject_id": subjectID, "name": name})
	}
	return doc, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Document, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, s.fail("list documents", err, nil)
	}
	return docs, nil
}

// ListBySubject returns documents whose SubjectID equals subjectID, newest update first.
func (s *Service) ListBySubject(ctx context.Context, subjectID string) ([]Document, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, ErrInvalidInput
	}
	docs, err := s.Repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, s.fail("list documents by subject", err, map[string]any{"subject_id": subjectID})
	}
	return docs, nil
}

// Get returns ErrNotFound when no document has the given id.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, ErrNotFound
		}
		return Document{}, s.fail("get document", err, map[string]any{"document_id": id})
	}
	return doc, nil
}

func (s *Service) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(id) == "" || name == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.UpdateName(ctx, id, name, s.now()); err != nil {
		return s.fail("rename document", err, map[string]any{"document_id": id})
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return s.fail("delete document", err, map[string]any{"document_id": id})
	}
	return nil
}

func (s *Service) fail(op string, err error, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["op"] = op
	fields["error"] = err
	telemetry.Error("documents."+strings.ReplaceAll(op, " ", "_")+".failed", fields)
	return &OpError{Op: op, Missing: errors.Is(err, ErrNotFound)}
}
