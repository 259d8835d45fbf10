package appstate

import (
	"context"
	"errors"
	"strings"
	"sync"

	"studymate-backend/internal/subjects"
)

// ErrDuplicateName is returned when a subject name matches a loaded subject, ignoring case.
var ErrDuplicateName = subjects.ErrDuplicateName

const duplicateNameMessage = "Subject with this name already exists"

// SubjectRepository is the subset of the subject repository the store needs.
type SubjectRepository interface {
	Create(ctx context.Context, name string) (subjects.Subject, error)
	ListAll(ctx context.Context) ([]subjects.Subject, error)
	Delete(ctx context.Context, id string) error
}

// SubjectState is an immutable snapshot of the subject store.
type SubjectState struct {
	Subjects []subjects.Subject
	Loading  bool
	Error    string
	Selected *subjects.Subject
}

func (s SubjectState) clone() SubjectState {
	out := s
	out.Subjects = make([]subjects.Subject, len(s.Subjects))
	for i, sub := range s.Subjects {
		out.Subjects[i] = sub.Clone()
	}
	if s.Selected != nil {
		sel := s.Selected.Clone()
		out.Selected = &sel
	}
	return out
}

// SubjectStore caches subjects and the selected subject. Every action reports failures both
// in State().Error and as its returned error.
type SubjectStore struct {
	repo SubjectRepository

	mu    sync.Mutex
	state SubjectState
	subs  subscribers[SubjectState]
}

// NewSubjectStore constructs an empty store over repo.
func NewSubjectStore(repo SubjectRepository) *SubjectStore {
	return &SubjectStore{repo: repo, state: SubjectState{Subjects: []subjects.Subject{}}}
}

// State returns the current snapshot.
func (s *SubjectStore) State() SubjectState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive every new snapshot.
func (s *SubjectStore) Subscribe(fn func(SubjectState)) (unsubscribe func()) {
	return s.subs.add(fn)
}

func (s *SubjectStore) LoadSubjects(ctx context.Context) (SubjectState, error) {
	s.begin()
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return s.fail(err)
	}
	return s.succeed(list)
}

// CreateSubject rejects names already present in the loaded cache without calling the
// repository, then creates the subject and reloads the list. The check only sees this
// store's cache, so two stores can still create the same name concurrently.
func (s *SubjectStore) CreateSubject(ctx context.Context, name string) (subjects.Subject, SubjectState, error) {
	cached := s.begin()
	trimmed := strings.TrimSpace(name)
	for _, existing := range cached.Subjects {
		if strings.EqualFold(strings.TrimSpace(existing.Name), trimmed) {
			st, err := s.fail(ErrDuplicateName)
			return subjects.Subject{}, st, err
		}
	}

	created, err := s.repo.Create(ctx, name)
	if err != nil {
		st, err := s.fail(err)
		return subjects.Subject{}, st, err
	}
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		st, err := s.fail(err)
		return created, st, err
	}
	st, _ := s.succeed(list)
	return created, st, nil
}

func (s *SubjectStore) DeleteSubject(ctx context.Context, id string) (SubjectState, error) {
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

// SetSelectedSubject selects sub, or clears the selection when sub is nil.
func (s *SubjectStore) SetSelectedSubject(sub *subjects.Subject) SubjectState {
	return s.update(func(st *SubjectState) {
		if sub == nil {
			st.Selected = nil
			return
		}
		sel := sub.Clone()
		st.Selected = &sel
	})
}

func (s *SubjectStore) ClearError() SubjectState {
	return s.update(func(st *SubjectState) { st.Error = "" })
}

// begin marks the store loading and returns the snapshot seen on entry.
func (s *SubjectStore) begin() SubjectState {
	var entry SubjectState
	s.update(func(st *SubjectState) {
		entry = st.clone()
		st.Loading = true
		st.Error = ""
	})
	return entry
}

func (s *SubjectStore) succeed(list []subjects.Subject) (SubjectState, error) {
	if list == nil {
		list = []subjects.Subject{}
	}
	return s.update(func(st *SubjectState) {
		st.Subjects = list
		st.Loading = false
	}), nil
}

func (s *SubjectStore) fail(err error) (SubjectState, error) {
	msg := err.Error()
	if errors.Is(err, ErrDuplicateName) {
		msg = duplicateNameMessage
	}
	return s.update(func(st *SubjectState) {
		st.Error = msg
		st.Loading = false
	}), err
}

func (s *SubjectStore) update(fn func(*SubjectState)) SubjectState {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state.clone()
	s.mu.Unlock()
	s.subs.notify(snap)
	return snap
}

// CreateThroughStore returns a subjects.CreateFunc that runs each call through a fresh store:
// load the current subjects, then create with the duplicate-name check.
func CreateThroughStore(repo SubjectRepository) subjects.CreateFunc {
	return func(ctx context.Context, name string) (subjects.Subject, error) {
		store := NewSubjectStore(repo)
		if _, err := store.LoadSubjects(ctx); err != nil {
			return subjects.Subject{}, err
		}
		created, _, err := store.CreateSubject(ctx, name)
		return created, err
	}
}
