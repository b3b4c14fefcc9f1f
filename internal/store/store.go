// Package store owns the ordered task collection and keeps it in step with
// the remote API.
//
// Mutations that the user should see at once (toggle, reorder) are applied
// locally first and reconciled with the server afterwards. Creates, updates
// and deletes wait for the server and then refresh the whole list.
package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"taskflow/internal/task"
)

// Repository is the remote side of the collection. *taskapi.Client
// satisfies it.
type Repository interface {
	List(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, d task.Draft) (task.Task, error)
	Update(ctx context.Context, id task.ID, d task.Draft) (task.Task, error)
	Delete(ctx context.Context, id task.ID) error
	Reorder(ctx context.Context, ids []task.ID) error
}

type Store struct {
	repo   Repository
	logger zerolog.Logger

	// mu guards tasks and observers. It is never held across a call to repo.
	mu        sync.Mutex
	tasks     []task.Task
	observers map[int]func([]task.Task)
	nextObs   int
}

func New(repo Repository, logger zerolog.Logger) *Store {
	return &Store{
		repo:      repo,
		logger:    logger,
		tasks:     []task.Task{},
		observers: map[int]func([]task.Task){},
	}
}

// Tasks returns a copy of the collection in display order.
func (s *Store) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.tasks)
}

func (s *Store) Get(id task.ID) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := task.IndexOf(s.tasks, id); i >= 0 {
		return s.tasks[i], true
	}
	return task.Task{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Subscribe registers fn to receive a copy of the collection after every
// local change. The returned func removes it.
func (s *Store) Subscribe(fn func([]task.Task)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Refresh replaces the collection with the server's list. On any failure the
// collection is emptied and the error returned.
func (s *Store) Refresh(ctx context.Context) error {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("refresh failed, clearing tasks")
		s.replace(nil)
		return err
	}
	s.replace(tasks)
	s.logger.Debug().Int("count", len(tasks)).Msg("tasks refreshed")
	return nil
}

// Save creates d, or updates existing when it is non-nil. Nothing changes
// locally unless the server accepts it, after which the list is refreshed.
func (s *Store) Save(ctx context.Context, d task.Draft, existing *task.ID) (Outcome, error) {
	var out Outcome
	if err := d.Validate(); err != nil {
		out.Reason = err.Error()
		return out, err
	}

	var err error
	if existing != nil {
		_, err = s.repo.Update(ctx, *existing, d)
	} else {
		_, err = s.repo.Create(ctx, d)
	}
	if err != nil {
		out.Reason = Message(err)
		s.logger.Warn().Err(err).Msg("save rejected")
		return out, fail(ErrSaveFailed, err)
	}

	out.add(Confirmed)
	return out, s.Refresh(ctx)
}

func (s *Store) Remove(ctx context.Context, id task.ID) (Outcome, error) {
	var out Outcome
	if err := s.repo.Delete(ctx, id); err != nil {
		out.Reason = Message(err)
		s.logger.Warn().Err(err).Str("task_id", id.String()).Msg("delete failed")
		return out, fail(ErrDeleteFailed, err)
	}
	out.add(Confirmed)
	return out, s.Refresh(ctx)
}

// ToggleCompletion flips the task's status locally, then asks the server to
// do the same. A rejected update restores the previous status.
func (s *Store) ToggleCompletion(ctx context.Context, id task.ID) (Outcome, error) {
	var out Outcome

	s.mu.Lock()
	i := task.IndexOf(s.tasks, id)
	if i < 0 {
		s.mu.Unlock()
		out.Reason = ErrNotFound.Error()
		return out, ErrNotFound
	}
	prev := s.tasks[i].Status
	next := s.tasks[i].WithStatus(prev.Opposite())
	s.tasks[i] = next
	s.mu.Unlock()

	out.add(Applied)
	s.notify()
	log := s.logger.With().Str("task_id", id.String()).Str("status", string(next.Status)).Logger()
	log.Debug().Msg("toggle applied")

	if _, err := s.repo.Update(ctx, id, next.Draft()); err != nil {
		s.mu.Lock()
		// the list may have been refreshed meanwhile; restore by id
		if j := task.IndexOf(s.tasks, id); j >= 0 {
			s.tasks[j].Status = prev
		}
		s.mu.Unlock()
		s.notify()

		out.add(RolledBack)
		out.Reason = Message(err)
		log.Warn().Err(err).Msg("toggle rolled back")
		return out, fail(ErrToggleFailed, err)
	}

	out.add(Confirmed)
	return out, nil
}

// Reorder installs newOrder as the collection order and persists it. When
// persisting fails the new order stays in place.
func (s *Store) Reorder(ctx context.Context, newOrder []task.Task) (Outcome, error) {
	var out Outcome
	s.replace(newOrder)
	out.add(Applied)

	if err := s.repo.Reorder(ctx, task.IDs(newOrder)); err != nil {
		out.add(Kept)
		out.Reason = Message(err)
		s.logger.Warn().Err(err).Msg("reorder not persisted, keeping local order")
		return out, fail(ErrReorderPersistFailed, err)
	}
	out.add(Confirmed)
	return out, nil
}

func (s *Store) replace(tasks []task.Task) {
	s.mu.Lock()
	s.tasks = clone(tasks)
	s.mu.Unlock()
	s.notify()
}

// notify runs observers synchronously with a fresh copy each.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func([]task.Task), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	snapshot := clone(s.tasks)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(clone(snapshot))
	}
}

func clone(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	return out
}
