package util

import "errors"

var (
	// Pipeline outcomes.
	ErrInsufficientContent = errors.New("insufficient content for analysis")
	ErrAnalysisFailure     = errors.New("analysis produced no result")
	ErrDuplicateDocument   = errors.New("duplicate document")

	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidTransition      = &wrapped{msg: "invalid status transition", base: ErrConflict}
	ErrIntegrityMismatch      = errors.New("integrity checksum mismatch")
	ErrConcurrentModification = errors.New("concurrent modification")

	ErrQuotaExhausted = errors.New("provider quota exhausted")
	ErrRateLimited    = errors.New("provider rate limited")
	ErrTransient      = errors.New("transient provider error")
	ErrPermanent      = errors.New("permanent provider error")
	ErrContextTooLong = errors.New("context too long")
)

type wrapped struct {
	msg  string
	base error
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.base }

// ConflictError reports a rejected operation on an entity in a state that does not allow it.
type ConflictError struct {
	Entity string
	ID     string
	Status string
	Op     string
}

func (e *ConflictError) Error() string {
	return e.Op + " " + e.Entity + " " + e.ID + ": not allowed in status " + e.Status
}

func (e *ConflictError) Unwrap() error { return ErrInvalidTransition }
