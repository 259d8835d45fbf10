package appstate

import (
	"context"
	"errors"
	"testing"

	"studymate-backend/internal/subjects"
)

type countingSubjects struct {
	*subjects.Service
	creates int
	listErr error
}

func (c *countingSubjects) Create(ctx context.Context, name string) (subjects.Subject, error) {
	c.creates++
	return c.Service.Create(ctx, name)
}

func (c *countingSubjects) ListAll(ctx context.Context) ([]subjects.Subject, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.Service.ListAll(ctx)
}

func newSubjectRepo() *countingSubjects {
	return &countingSubjects{Service: subjects.NewService(subjects.NewMemoryRepo())}
}

func TestCreateSubjectRejectsDuplicateWithoutRemoteWrite(t *testing.T) {
	ctx := context.Background()
	repo := newSubjectRepo()
	store := NewSubjectStore(repo)

	if _, _, err := store.CreateSubject(ctx, "Physics"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected 1 remote create, got %d", repo.creates)
	}

	_, st, err := store.CreateSubject(ctx, "pHYSICS")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("duplicate must not reach the repository, got %d creates", repo.creates)
	}
	if st.Error != "Subject with this name already exists" {
		t.Fatalf("unexpected store error %q", st.Error)
	}
	if st.Loading {
		t.Fatalf("expected loading to be cleared")
	}
	if len(st.Subjects) != 1 {
		t.Fatalf("expected cache to be untouched, got %d subjects", len(st.Subjects))
	}
}

func TestCreateSubjectReloadsList(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newSubjectRepo())

	created, st, err := store.CreateSubject(ctx, "Math")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(st.Subjects) != 1 || st.Subjects[0].ID != created.ID {
		t.Fatalf("expected reloaded list with new subject, got %+v", st.Subjects)
	}
	if len(st.Subjects[0].PDFURLs) != 0 {
		t.Fatalf("expected empty pdf urls")
	}
	if st.Loading || st.Error != "" {
		t.Fatalf("unexpected state flags: %+v", st)
	}
}

func TestLoadSubjectsFailureReportsTwice(t *testing.T) {
	repo := newSubjectRepo()
	repo.listErr = &subjects.OpError{Op: "list subjects"}
	store := NewSubjectStore(repo)

	st, err := store.LoadSubjects(context.Background())
	if !errors.Is(err, subjects.ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	if st.Error != "failed to list subjects" || st.Loading {
		t.Fatalf("unexpected state: %+v", st)
	}

	st = store.ClearError()
	if st.Error != "" {
		t.Fatalf("expected error cleared, got %q", st.Error)
	}
}

func TestSubjectStoreNotifiesTransitions(t *testing.T) {
	store := NewSubjectStore(newSubjectRepo())
	var loadingSeen []bool
	unsubscribe := store.Subscribe(func(st SubjectState) {
		loadingSeen = append(loadingSeen, st.Loading)
	})

	if _, err := store.LoadSubjects(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	unsubscribe()
	store.ClearError()

	if len(loadingSeen) != 2 || !loadingSeen[0] || loadingSeen[1] {
		t.Fatalf("expected [true false], got %v", loadingSeen)
	}
}

func TestSubjectSnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newSubjectRepo())
	created, _, err := store.CreateSubject(ctx, "Art")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	st := store.SetSelectedSubject(&created)
	st.Subjects[0].Name = "mutated"
	st.Selected.Name = "mutated"

	fresh := store.State()
	if fresh.Subjects[0].Name != "Art" || fresh.Selected.Name != "Art" {
		t.Fatalf("snapshot mutation leaked into store: %+v", fresh)
	}

	if st := store.SetSelectedSubject(nil); st.Selected != nil {
		t.Fatalf("expected selection cleared")
	}
}

func TestDeleteSubjectReloads(t *testing.T) {
	ctx := context.Background()
	store := NewSubjectStore(newSubjectRepo())
	created, _, err := store.CreateSubject(ctx, "Geo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	st, err := store.DeleteSubject(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(st.Subjects) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(st.Subjects))
	}
}

func TestCreateThroughStoreChecksPersistedNames(t *testing.T) {
	ctx := context.Background()
	repo := newSubjectRepo()
	create := CreateThroughStore(repo)

	if _, err := create(ctx, "Chemistry"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := create(ctx, " chemistry "); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected one repository create, got %d", repo.creates)
	}
}
