package storytree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("tree validation failed")

	// ErrInvariant is matched by every *InvariantViolation.
	ErrInvariant = errors.New("story invariant violated")

	// ErrPayload is matched by every *PayloadError.
	ErrPayload = errors.New("invalid story payload")
)

// ValidationError carries every structural problem found in one pass over a
// tree, in the order they were detected.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Tree validation failed:")
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InvariantViolation means the canonicalizer met input it cannot rewrite
// consistently: a reference it never mapped, or a placeholder id used twice.
type InvariantViolation struct {
	Kind string // "node", "choice", "character", "location", "edge_from", "edge_to", "edge_choice"
	ID   string
	Msg  string
}

func (e *InvariantViolation) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", ErrInvariant.Error(), e.Msg)
	}
	return fmt.Sprintf("%s: unmapped %s id %q", ErrInvariant.Error(), e.Kind, e.ID)
}

func (e *InvariantViolation) Unwrap() error { return ErrInvariant }

// PayloadError reports generator output that cannot be decoded into a Generated.
type PayloadError struct {
	Field string
	Msg   string
	Err   error
}

func (e *PayloadError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrPayload.Error(), e.Field, msg)
	}
	return fmt.Sprintf("%s: %s", ErrPayload.Error(), msg)
}

func (e *PayloadError) Is(target error) bool { return target == ErrPayload }

func (e *PayloadError) Unwrap() error { return e.Err }
