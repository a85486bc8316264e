package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by persistence ports when a key holds no record.
	ErrNotFound = errors.New("record not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrQuestionNotFound indicates a submitted question id is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option id is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrSessionNotFound is returned when no session exists for a browsing context.
	ErrSessionNotFound = errors.New("exam session not found")
	// ErrSessionInProgress is returned when a context already runs a session.
	ErrSessionInProgress = errors.New("exam session already in progress")
	// ErrValidation marks registration and input validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidState marks operations called outside their valid session state.
	ErrInvalidState = errors.New("invalid session state")
	// ErrAlreadySubmitted guards against scoring a session twice.
	ErrAlreadySubmitted = errors.New("exam already submitted")
	// ErrConfirmationRequired is returned when a manual submit leaves questions unanswered.
	ErrConfirmationRequired = errors.New("submission needs confirmation")
	// ErrScoreOutOfRange is an internal invariant violation of the scoring policy.
	ErrScoreOutOfRange = errors.New("score outside 0..100")
)

// ValidationError identifies the offending input fields.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StateError reports an operation attempted in the wrong session state.
type StateError struct {
	Op    string
	State string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// IncompleteSubmissionError lists the questions left unanswered by a manual submit.
type IncompleteSubmissionError struct {
	Unanswered []int
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("%d question(s) unanswered, confirm to submit", len(e.Unanswered))
}

func (e *IncompleteSubmissionError) Is(target error) bool {
	return target == ErrConfirmationRequired
}
