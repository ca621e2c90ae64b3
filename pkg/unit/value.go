package unit

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-eeac/internal/consts"
	"github.com/edp1096/toy-eeac/pkg/dto"
)

// PUBase is the base used for per-unit conversions.
type PUBase struct {
	Value float64
	Unit  Unit
}

func NewPUBase(value float64, unit Unit) (PUBase, error) {
	if value == 0 {
		return PUBase{}, fmt.Errorf("%w: zero base in %s", ErrUnitBase, unit)
	}
	return PUBase{Value: value, Unit: unit}, nil
}

func (b PUBase) Equal(other PUBase) bool {
	converted, err := ConversionFactor(other.Unit, b.Unit)
	if err != nil {
		return false
	}
	return math.Abs(b.Value-converted*other.Value) <= consts.FloatTolerance
}

func (b PUBase) String() string {
	return fmt.Sprintf("%g %s", b.Value, b.Unit)
}

// Value is an immutable magnitude with a unit and an optional per-unit base.
// The per-unit magnitude is derived once at construction.
type Value struct {
	value   float64
	unit    Unit
	base    PUBase
	hasBase bool
	perUnit float64
}

// NewValue builds a value. base may be nil, except for per-unit values.
func NewValue(value float64, unit Unit, base *PUBase) (Value, error) {
	v := Value{value: value, unit: unit}

	if base == nil {
		if unit == PU {
			return Value{}, fmt.Errorf("%w: per-unit value without base", ErrUnitBase)
		}
		return v, nil
	}

	if base.Value == 0 {
		return Value{}, fmt.Errorf("%w: zero base in %s", ErrUnitBase, base.Unit)
	}
	v.base = *base
	v.hasBase = true

	if unit == PU {
		v.perUnit = value
		return v, nil
	}
	if unit.Type() != base.Unit.Type() {
		return Value{}, &TypeError{From: unit, To: base.Unit}
	}

	factor, err := ConversionFactor(unit, base.Unit)
	if err != nil {
		return Value{}, err
	}
	v.perUnit = factor * value / base.Value
	return v, nil
}

func FromDTO(d dto.Value) (Value, error) {
	u, err := ParseUnit(string(d.Unit))
	if err != nil {
		return Value{}, err
	}
	return NewValue(d.Value, u, nil)
}

// ConvertDTO reads an exchange value and expresses it in u.
func ConvertDTO(d dto.Value, u Unit) (float64, error) {
	v, err := FromDTO(d)
	if err != nil {
		return 0, err
	}
	return v.ToUnit(u)
}

func (v Value) Value() float64 { return v.value }
func (v Value) Unit() Unit     { return v.unit }

// Base returns the per-unit base and whether one is set.
func (v Value) Base() (PUBase, bool) {
	return v.base, v.hasBase
}

func (v Value) PerUnit() (float64, error) {
	if !v.hasBase {
		return 0, ErrPerUnit
	}
	return v.perUnit, nil
}

func (v Value) ToUnit(u Unit) (float64, error) {
	if u == v.unit {
		return v.value, nil
	}
	if u == PU {
		return v.PerUnit()
	}
	if v.unit == PU {
		factor, err := ConversionFactor(v.base.Unit, u)
		if err != nil {
			return 0, err
		}
		return factor * v.value * v.base.Value, nil
	}

	factor, err := ConversionFactor(v.unit, u)
	if err != nil {
		return 0, err
	}
	return factor * v.value, nil
}

// WithBase returns the value expressed with a new base. A per-unit value is
// first brought back to the unit of its old base, then re-expressed in the
// new one.
func (v Value) WithBase(base PUBase) (Value, error) {
	if v.unit != PU && base.Unit.Type() != v.unit.Type() {
		return Value{}, &TypeError{From: v.unit, To: base.Unit}
	}
	if !v.hasBase {
		return NewValue(v.value, v.unit, &base)
	}
	if v.base.Equal(base) {
		return v, nil
	}
	if v.base.Unit.Type() != base.Unit.Type() {
		return Value{}, &TypeError{From: v.base.Unit, To: base.Unit}
	}

	if v.unit != PU {
		return NewValue(v.value, v.unit, &base)
	}

	physical, err := v.ToUnit(v.base.Unit)
	if err != nil {
		return Value{}, err
	}
	rebased, err := NewValue(physical, v.base.Unit, &base)
	if err != nil {
		return Value{}, err
	}
	return NewValue(rebased.perUnit, PU, &base)
}

// Add sums two values of the same unit type. The result keeps the unit of v
// and the shared base, or whichever base is set.
func (v Value) Add(other Value) (Value, error) {
	t := v.unit.Type()
	if v.hasBase {
		t = v.base.Unit.Type()
	}
	otherType := other.unit.Type()
	if other.hasBase {
		otherType = other.base.Unit.Type()
	}
	if t != otherType {
		return Value{}, fmt.Errorf("%w: %s and %s", ErrUnitType, t, otherType)
	}

	var base *PUBase
	switch {
	case v.hasBase && other.hasBase:
		if !v.base.Equal(other.base) {
			return Value{}, fmt.Errorf("%w: %s and %s", ErrValueAddBase, v.base, other.base)
		}
		b := v.base
		base = &b
	case v.hasBase:
		b := v.base
		base = &b
	case other.hasBase:
		b := other.base
		base = &b
	}

	if v.unit == PU && !other.hasBase {
		inOther, err := v.ToUnit(other.unit)
		if err != nil {
			return Value{}, err
		}
		sum, err := NewValue(inOther+other.value, other.unit, base)
		if err != nil {
			return Value{}, err
		}
		return NewValue(sum.perUnit, PU, base)
	}

	otherValue, err := other.ToUnit(v.unit)
	if err != nil {
		return Value{}, err
	}
	return NewValue(v.value+otherValue, v.unit, base)
}

// Equal compares magnitudes after conversion into the unit of v. Bases must
// both be absent or equal.
func (v Value) Equal(other Value) bool {
	converted, err := other.ToUnit(v.unit)
	if err != nil {
		return false
	}
	if math.Abs(v.value-converted) > consts.FloatTolerance {
		return false
	}
	if v.hasBase != other.hasBase {
		return false
	}
	return !v.hasBase || v.base.Equal(other.base)
}

func (v Value) String() string {
	if v.hasBase {
		return fmt.Sprintf("%g %s [Base: %s]", v.value, v.unit, v.base)
	}
	return fmt.Sprintf("%g %s", v.value, v.unit)
}
