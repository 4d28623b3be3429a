package tui

import (
	"context"

	"leadconsole/internal/edit"
)

type editOutcome int

const (
	editContinue editOutcome = iota
	editSaved
	// editMissing: the row was gone by the time the save landed.
	editMissing
	editCancelled
	// editRejected: validation or the store refused the draft; the row stays in edit mode.
	editRejected
)

// rowEditor tracks the single row a grid is editing through an edit.Registry.
type rowEditor[K comparable, T any] struct {
	sessions *edit.Registry[K, T]
	validate edit.ValidateFunc[T]
	commit   edit.CommitFunc[T]
	idOf     func(T) K

	id     K
	active bool
	found  bool
}

func newRowEditor[K comparable, T any](idOf func(T) K, validate edit.ValidateFunc[T], commit edit.CommitFunc[T]) *rowEditor[K, T] {
	e := &rowEditor[K, T]{
		sessions: edit.NewRegistry[K, T](),
		validate: validate,
		idOf:     idOf,
	}
	e.commit = func(ctx context.Context, original, draft T) (T, bool, error) {
		saved, found, err := commit(ctx, original, draft)
		e.found = found
		return saved, found, err
	}
	return e
}

// begin starts editing row, cancelling any other row that was being edited.
func (e *rowEditor[K, T]) begin(row T) *edit.Session[T] {
	id := e.idOf(row)
	if e.active && e.id != id {
		e.cancel()
	}
	s, _ := e.sessions.Open(id, func() *edit.Session[T] {
		return edit.NewSession(row, e.validate, e.commit)
	})
	s.Begin(row)
	e.id = id
	e.active = true
	return s
}

func (e *rowEditor[K, T]) session() (*edit.Session[T], bool) {
	if !e.active {
		return nil, false
	}
	return e.sessions.Get(e.id)
}

func (e *rowEditor[K, T]) editing(row T) bool {
	return e.active && e.idOf(row) == e.id && e.sessions.Active(e.id)
}

func (e *rowEditor[K, T]) cancel() {
	if s, ok := e.session(); ok {
		s.Cancel()
	}
	e.finish()
}

func (e *rowEditor[K, T]) finish() {
	if e.active {
		e.sessions.Close(e.id)
	}
	e.active = false
}

func (e *rowEditor[K, T]) save(ctx context.Context) (editOutcome, error) {
	s, ok := e.session()
	if !ok {
		return editCancelled, nil
	}
	e.found = true
	if _, err := s.Save(ctx); err != nil {
		return editRejected, err
	}
	e.finish()
	if !e.found {
		return editMissing, nil
	}
	return editSaved, nil
}
