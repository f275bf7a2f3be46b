package domain

import "errors"

var (
	// ErrTestNotFound indicates the test definition could not be loaded.
	ErrTestNotFound = errors.New("test not found")
	// ErrAttemptNotFound is returned when no attempt exists for the given key.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptCompleted is returned when a finished attempt is mutated.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrAttemptAlreadyStarted is returned when Start is called twice.
	ErrAttemptAlreadyStarted = errors.New("attempt already started")
	// ErrAttemptNotStarted is returned when an attempt is used before Start.
	ErrAttemptNotStarted = errors.New("attempt not started")
	// ErrTrainingNotAllowed indicates the test forbids training mode.
	ErrTrainingNotAllowed = errors.New("training mode not allowed for this test")
	// ErrResultNotPersisted wraps a storage failure on submission; the
	// compiled result attached to it is still valid locally.
	ErrResultNotPersisted = errors.New("result compiled but not persisted")
)
