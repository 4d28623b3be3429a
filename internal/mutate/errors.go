package mutate

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError is a user-facing message about one field of an edit.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

var (
	ErrAlreadyConverted = errors.New("lead is already converted")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidStage     = errors.New("invalid stage")
)
