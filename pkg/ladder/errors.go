package ladder

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidDomain       = errors.New("invalid domain")
	ErrDuplicatePivot      = errors.New("duplicate pivot")
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// DuplicatePivotError means two nodes computed the same comparison value.
// Interval bisection never does this; it is checked because a collision
// would silently retarget branches.
type DuplicatePivotError struct {
	Pivot  int
	First  int
	Second int
}

func (e *DuplicatePivotError) Error() string {
	return fmt.Sprintf("duplicate pivot %d: owned by node %d, claimed again by node %d", e.Pivot, e.First, e.Second)
}

func (e *DuplicatePivotError) Is(target error) bool {
	return target == ErrDuplicatePivot
}

// Reference names one branch that could not be resolved.
type Reference struct {
	Origin int
	Cond   Cond
	Pivot  int
}

// UnresolvedReferenceError lists branches whose target pivot was never
// visited by the builder.
type UnresolvedReferenceError struct {
	Refs []Reference
}

func (e *UnresolvedReferenceError) Error() string {
	parts := make([]string, 0, len(e.Refs))
	for _, r := range e.Refs {
		parts = append(parts, fmt.Sprintf("%s from node %d to pivot %d", r.Cond, r.Origin, r.Pivot))
	}
	return "unresolved reference: " + strings.Join(parts, ", ")
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference
}
