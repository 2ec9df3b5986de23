package domain

import "errors"

var (
	// ErrInvalidState is returned when an operation targets a round that is
	// no longer Active (completed, abandoned, expired, or superseded).
	ErrInvalidState = errors.New("round is not active")
	// ErrHintBudgetExceeded is returned once a round already holds the
	// maximum number of hints.
	ErrHintBudgetExceeded = errors.New("hint budget exceeded")
	// ErrContentExhausted signals that every eligible question for the
	// player has been seen. Recoverable: clear the seen set and retry.
	ErrContentExhausted = errors.New("no unseen questions remain")
	// ErrValidationFailed indicates malformed input, e.g. a hint level
	// outside 1-3 or an unknown mode/difficulty.
	ErrValidationFailed = errors.New("invalid request")
	// ErrNotFound is returned for an unknown player or round.
	ErrNotFound = errors.New("round not found")
	// ErrQuestionNotFound indicates the catalog has no such question.
	ErrQuestionNotFound = errors.New("question not found")
)
