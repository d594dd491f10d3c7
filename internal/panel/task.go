package panel

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// Status is the lifecycle stage of a task.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome is the visible state of a task. Value is only meaningful when
// Status is StatusSucceeded and Err only when it is StatusFailed.
type Outcome[T any] struct {
	Status Status
	Value  T
	Err    error
}

var taskIDs atomic.Uint64

// Task runs one asynchronous operation at a time on behalf of a panel.
//
// Every run gets a new generation and its own context. Starting over,
// resetting or closing the task cancels that context and bumps the
// generation, so a completion that arrives late is dropped instead of
// overwriting newer state.
type Task[T any] struct {
	id     uint64
	gen    uint64
	cancel context.CancelFunc
	out    Outcome[T]
}

// doneMsg carries the result of one run back to the event loop.
type doneMsg[T any] struct {
	task  uint64
	gen   uint64
	value T
	err   error
}

// NewTask returns an idle task.
func NewTask[T any]() *Task[T] {
	return &Task[T]{id: taskIDs.Add(1)}
}

// Outcome returns the current state.
func (t *Task[T]) Outcome() Outcome[T] {
	return t.out
}

// Loading reports whether a run is in flight.
func (t *Task[T]) Loading() bool {
	return t.out.Status == StatusLoading
}

// Succeeded reports whether the last run produced a value.
func (t *Task[T]) Succeeded() bool {
	return t.out.Status == StatusSucceeded
}

// Run starts fn unless a run is already in flight, in which case it returns
// nil. fn runs off the event loop and must not touch panel state.
func (t *Task[T]) Run(fn func(ctx context.Context) (T, error)) tea.Cmd {
	if t.Loading() {
		return nil
	}
	t.invalidate()

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.out = Outcome[T]{Status: StatusLoading}

	id, gen := t.id, t.gen
	return func() tea.Msg {
		defer cancel()
		value, err := fn(ctx)
		return doneMsg[T]{task: id, gen: gen, value: value, err: err}
	}
}

// Update applies msg if it is the completion of this task's current run.
// It reports whether the outcome changed.
func (t *Task[T]) Update(msg tea.Msg) bool {
	done, ok := msg.(doneMsg[T])
	if !ok || done.task != t.id || done.gen != t.gen || !t.Loading() {
		return false
	}
	t.cancel = nil
	if done.err != nil {
		t.out = Outcome[T]{Status: StatusFailed, Err: done.err}
	} else {
		t.out = Outcome[T]{Status: StatusSucceeded, Value: done.value}
	}
	return true
}

// Reset cancels any run in flight and returns to idle.
func (t *Task[T]) Reset() {
	t.invalidate()
	t.out = Outcome[T]{}
}

func (t *Task[T]) invalidate() {
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
