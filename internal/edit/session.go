// Package edit holds per-row inline edit sessions.
package edit

import (
	"context"
	"errors"
)

type State int

const (
	Viewing State = iota
	Editing
	Saving
	Cancelled
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ErrNotEditing is returned by Save when there is no draft.
var ErrNotEditing = errors.New("row is not being edited")

// ValidateFunc checks a draft against the row it started from. The returned error's
// message is shown to the user.
type ValidateFunc[T any] func(original, draft T) error

// CommitFunc writes the draft. found=false means the row no longer exists.
type CommitFunc[T any] func(ctx context.Context, original, draft T) (saved T, found bool, err error)

// Session edits one row. The row itself is never touched until Commit succeeds.
type Session[T any] struct {
	Validate ValidateFunc[T]
	Commit   CommitFunc[T]

	state    State
	original T
	draft    T
	err      error
}

func NewSession[T any](row T, validate ValidateFunc[T], commit CommitFunc[T]) *Session[T] {
	return &Session[T]{Validate: validate, Commit: commit, original: row, draft: row}
}

// Begin snapshots row into a fresh draft.
func (s *Session[T]) Begin(row T) {
	s.original = row
	s.draft = row
	s.err = nil
	s.state = Editing
}

func (s *Session[T]) State() State { return s.state }
func (s *Session[T]) Original() T  { return s.original }
func (s *Session[T]) Draft() T     { return s.draft }

// Err is the message from the last failed Save, if any.
func (s *Session[T]) Err() error { return s.err }

func (s *Session[T]) Editing() bool { return s.state == Editing || s.state == Saving }

// Update applies fn to the draft. It is a no-op unless the session is editing.
func (s *Session[T]) Update(fn func(*T)) {
	if s.state != Editing || fn == nil {
		return
	}
	fn(&s.draft)
}

// Save validates and commits the draft. A validation failure keeps the session in Editing
// with the draft intact. Otherwise the commit is attempted and the session returns to
// Viewing; requery reports whether the grid should refresh.
func (s *Session[T]) Save(ctx context.Context) (requery bool, err error) {
	if s.state != Editing {
		return false, ErrNotEditing
	}
	if s.Validate != nil {
		if err := s.Validate(s.original, s.draft); err != nil {
			s.err = err
			return false, err
		}
	}
	s.state = Saving
	s.err = nil

	if s.Commit != nil {
		saved, found, err := s.Commit(ctx, s.original, s.draft)
		if err != nil {
			// The store rejected the write; stay in Editing so the user can fix it.
			s.state = Editing
			s.err = err
			return false, err
		}
		if found {
			s.original = saved
			s.draft = saved
		} else {
			// The row vanished underneath us: drop the draft and let the refresh show it.
			s.draft = s.original
		}
	}
	s.state = Viewing
	return true, nil
}

// Cancel discards the draft. The session passes through Cancelled back to Viewing.
func (s *Session[T]) Cancel() {
	if s.state != Editing {
		return
	}
	s.state = Cancelled
	s.draft = s.original
	s.err = nil
	s.state = Viewing
}
