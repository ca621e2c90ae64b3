package dto

// Value is a magnitude tagged with a unit symbol ("MW", "kV", "deg", ...).
type Value struct {
	Value float64 `yaml:"value" json:"value"`
	Unit  string  `yaml:"unit" json:"unit"`
}

func NewValue(value float64, unit string) Value {
	return Value{Value: value, Unit: unit}
}

// Negated returns a copy with the opposite sign, used for sign-convention flips.
func (v Value) Negated() Value {
	return Value{Value: -v.Value, Unit: v.Unit}
}
