// Package reorder drives drag-and-drop reordering of the task list.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"taskflow/internal/store"
	"taskflow/internal/task"
)

// NoIndex marks an unset drag position.
const NoIndex = -1

var (
	ErrNotIdle     = errors.New("a drag is already in progress")
	ErrNotDragging = errors.New("no drag in progress")
	ErrOutOfRange  = errors.New("index out of range")
)

type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

type DragState struct {
	Source int
	Hover  int
}

// Collection is the part of *store.Store a Coordinator needs.
type Collection interface {
	Tasks() []task.Task
	Reorder(ctx context.Context, newOrder []task.Task) (store.Outcome, error)
}

type Coordinator struct {
	tasks  Collection
	logger zerolog.Logger

	mu    sync.Mutex
	phase Phase
	drag  DragState
}

func NewCoordinator(tasks Collection, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		tasks:  tasks,
		logger: logger,
		drag:   DragState{Source: NoIndex, Hover: NoIndex},
	}
}

func (c *Coordinator) State() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Coordinator) Drag() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drag
}

// Begin picks up the task at index.
func (c *Coordinator) Begin(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != Idle {
		return ErrNotIdle
	}
	if n := len(c.tasks.Tasks()); index < 0 || index >= n {
		return fmt.Errorf("begin at %d of %d: %w", index, n, ErrOutOfRange)
	}
	c.phase = Dragging
	c.drag = DragState{Source: index, Hover: NoIndex}
	return nil
}

// Hover records the position currently under the dragged task.
func (c *Coordinator) Hover(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != Dragging {
		return ErrNotDragging
	}
	c.drag.Hover = index
	return nil
}

// Cancel abandons the drag without touching the order.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Drop moves the dragged task to index and commits the new order through
// the collection. committed is false when the task was dropped where it
// started. The coordinator is idle again afterwards whatever the outcome.
func (c *Coordinator) Drop(ctx context.Context, index int) (bool, store.Outcome, error) {
	c.mu.Lock()
	if c.phase != Dragging {
		c.mu.Unlock()
		return false, store.Outcome{}, ErrNotDragging
	}
	source := c.drag.Source
	c.resetLocked()
	c.mu.Unlock()

	if index == source {
		return false, store.Outcome{}, nil
	}

	current := c.tasks.Tasks()
	if source < 0 || source >= len(current) {
		// the list shrank under the drag
		return false, store.Outcome{}, fmt.Errorf("drop from %d of %d: %w", source, len(current), ErrOutOfRange)
	}

	next := Move(current, source, index)
	c.logger.Debug().Int("from", source).Int("to", index).Msg("drop")
	out, err := c.tasks.Reorder(ctx, next)
	return true, out, err
}

func (c *Coordinator) resetLocked() {
	c.phase = Idle
	c.drag = DragState{Source: NoIndex, Hover: NoIndex}
}

// Move returns a copy of tasks with the element at from removed and inserted
// at to. to is clamped to the bounds of the shortened list.
func Move(tasks []task.Task, from, to int) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	out = append(out, tasks[:from]...)
	out = append(out, tasks[from+1:]...)

	if to < 0 {
		to = 0
	}
	if to > len(out) {
		to = len(out)
	}
	out = append(out, task.Task{})
	copy(out[to+1:], out[to:])
	out[to] = tasks[from]
	return out
}
