package devserver

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskflow/internal/task"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrNotPermutation = errors.New("order must list every task exactly once")
	ErrTitleRequired  = errors.New("title is required")
)

// TaskRepo keeps each owner's tasks as an ordered list. Positions are the
// list index; ids are unique across owners.
type TaskRepo struct {
	mu     sync.RWMutex
	lists  map[string][]task.Task
	nextID int64
}

func NewTaskRepo() *TaskRepo {
	return &TaskRepo{lists: map[string][]task.Task{}}
}

func (r *TaskRepo) List(owner string) []task.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.lists[owner]
	out := make([]task.Task, len(list))
	copy(out, list)
	return out
}

// Create appends to the end of the owner's list.
func (r *TaskRepo) Create(owner string, d task.Draft, now time.Time) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, ErrTitleRequired
	}
	d = d.Normalized()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t := fromDraft(task.ID(strconv.FormatInt(r.nextID, 10)), d)
	t.CreatedAt = now.UTC()
	r.lists[owner] = append(r.lists[owner], t)
	return t, nil
}

// Update replaces the editable fields and keeps the task's position.
func (r *TaskRepo) Update(owner string, id task.ID, d task.Draft) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, ErrTitleRequired
	}
	d = d.Normalized()

	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.lists[owner]
	i := task.IndexOf(list, id)
	if i < 0 {
		return task.Task{}, ErrTaskNotFound
	}
	updated := fromDraft(id, d)
	updated.CreatedAt = list[i].CreatedAt
	list[i] = updated
	return updated, nil
}

func (r *TaskRepo) Delete(owner string, id task.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.lists[owner]
	i := task.IndexOf(list, id)
	if i < 0 {
		return ErrTaskNotFound
	}
	r.lists[owner] = append(list[:i], list[i+1:]...)
	return nil
}

// Reorder rearranges the owner's list to match ids, which must name every
// task exactly once.
func (r *TaskRepo) Reorder(owner string, ids []task.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.lists[owner]
	if len(ids) != len(list) {
		return ErrNotPermutation
	}

	byID := make(map[task.ID]task.Task, len(list))
	for _, t := range list {
		byID[t.ID] = t
	}
	next := make([]task.Task, 0, len(list))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return ErrNotPermutation
		}
		delete(byID, id)
		next = append(next, t)
	}
	r.lists[owner] = next
	return nil
}

func fromDraft(id task.ID, d task.Draft) task.Task {
	return task.Task{
		ID:          id,
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Deadline:    strings.TrimSpace(d.Deadline),
		Status:      d.Status,
		Priority:    d.Priority,
		Tags:        d.Tags,
	}
}
