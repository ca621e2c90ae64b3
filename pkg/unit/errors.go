package unit

import (
	"errors"
	"fmt"
)

var (
	ErrUnitType     = errors.New("unit: incompatible unit types")
	ErrUnitScale    = errors.New("unit: no scale for unit type")
	ErrUnitBase     = errors.New("unit: invalid per-unit base")
	ErrPerUnit      = errors.New("unit: no base to compute per-unit value")
	ErrValueAddBase = errors.New("unit: cannot add values with different bases")
	ErrUnknownUnit  = errors.New("unit: unknown unit")
)

// TypeError reports the two units whose types did not match.
type TypeError struct {
	From Unit
	To   Unit
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%v: %s (%s) and %s (%s)", ErrUnitType, e.From, e.From.Type(), e.To, e.To.Type())
}

func (e *TypeError) Unwrap() error {
	return ErrUnitType
}
