package appstate

import (
	"context"
	"sync"

	"studymate-backend/internal/documents"
)

// DocumentRepository is the subset of the document repository the store needs.
type DocumentRepository interface {
	Create(ctx context.Context, name, url, size string, pages int, subjectID string) (documents.Document, error)
	ListAll(ctx context.Context) ([]documents.Document, error)
	ListBySubject(ctx context.Context, subjectID string) ([]documents.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocsState is an immutable snapshot of the document store.
type DocsState struct {
	Docs            []documents.Document
	Loading         bool
	Error           string
	SelectedDoc     *documents.Document
	SelectedContent ContentType
}

func (s DocsState) clone() DocsState {
	out := s
	out.Docs = append([]documents.Document{}, s.Docs...)
	if s.SelectedDoc != nil {
		sel := *s.SelectedDoc
		out.SelectedDoc = &sel
	}
	return out
}

// DocsStore caches documents plus the selected document and content view.
type DocsStore struct {
	repo DocumentRepository

	mu    sync.Mutex
	state DocsState
	subs  subscribers[DocsState]
}

// NewDocsStore constructs an empty store over repo.
func NewDocsStore(repo DocumentRepository) *DocsStore {
	return &DocsStore{repo: repo, state: DocsState{Docs: []documents.Document{}, SelectedContent: ContentNone}}
}

// State returns the current snapshot.
func (s *DocsStore) State() DocsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive every new snapshot.
func (s *DocsStore) Subscribe(fn func(DocsState)) (unsubscribe func()) {
	return s.subs.add(fn)
}

func (s *DocsStore) LoadDocs(ctx context.Context) (DocsState, error) {
	s.begin()
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return s.fail(err)
	}
	return s.succeed(list)
}

// LoadDocsBySubject replaces the cache with the subject's documents.
func (s *DocsStore) LoadDocsBySubject(ctx context.Context, subjectID string) (DocsState, error) {
	s.begin()
	list, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return s.fail(err)
	}
	return s.succeed(list)
}

// CreateDoc persists a document and reloads the full document list.
func (s *DocsStore) CreateDoc(ctx context.Context, name, url, size string, pages int, subjectID string) (documents.Document, DocsState, error) {
	s.begin()
	doc, err := s.repo.Create(ctx, name, url, size, pages, subjectID)
	if err != nil {
		st, err := s.fail(err)
		return documents.Document{}, st, err
	}
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		st, err := s.fail(err)
		return doc, st, err
	}
	st, _ := s.succeed(list)
	return doc, st, nil
}

// DeleteDoc removes a document and reloads the full document list.
func (s *DocsStore) DeleteDoc(ctx context.Context, id string) (DocsState, error) {
	s.begin()
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(err)
	}
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return s.fail(err)
	}
	return s.succeed(list)
}

// SetSelectedDoc selects doc and resets the content view.
func (s *DocsStore) SetSelectedDoc(doc *documents.Document) DocsState {
	return s.update(func(st *DocsState) {
		st.SelectedContent = ContentNone
		if doc == nil {
			st.SelectedDoc = nil
			return
		}
		sel := *doc
		st.SelectedDoc = &sel
	})
}

func (s *DocsStore) SetSelectedContent(ct ContentType) DocsState {
	if ct == "" {
		ct = ContentNone
	}
	return s.update(func(st *DocsState) { st.SelectedContent = ct })
}

// ResetSelection clears both the selected document and the content view.
func (s *DocsStore) ResetSelection() DocsState {
	return s.update(func(st *DocsState) {
		st.SelectedDoc = nil
		st.SelectedContent = ContentNone
	})
}

func (s *DocsStore) ClearError() DocsState {
	return s.update(func(st *DocsState) { st.Error = "" })
}

func (s *DocsStore) begin() {
	s.update(func(st *DocsState) {
		st.Loading = true
		st.Error = ""
	})
}

func (s *DocsStore) succeed(list []documents.Document) (DocsState, error) {
	if list == nil {
		list = []documents.Document{}
	}
	return s.update(func(st *DocsState) {
		st.Docs = list
		st.Loading = false
	}), nil
}

func (s *DocsStore) fail(err error) (DocsState, error) {
	return s.update(func(st *DocsState) {
		st.Error = err.Error()
		st.Loading = false
	}), err
}

func (s *DocsStore) update(fn func(*DocsState)) DocsState {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	s.mu.Unlock()
	s.subs.notify(snap)
	return snap
}
