package unit

import (
	"fmt"
	"math"
)

type Type int

const (
	NoType Type = iota
	ApparentPower
	ActivePower
	ReactivePower
	Current
	Voltage
	Angle
	Resistance
	Conductance
	Frequency
	PerUnitType
	ScalarType
	Time
	InertiaConstant
	PercentType
)

var typeNames = map[Type]string{
	NoType:          "none",
	ApparentPower:   "apparent_power",
	ActivePower:     "active_power",
	ReactivePower:   "reactive_power",
	Current:         "current",
	Voltage:         "voltage",
	Angle:           "angle",
	Resistance:      "resistance",
	Conductance:     "conductance",
	Frequency:       "frequency",
	PerUnitType:     "per_unit",
	ScalarType:      "scalar",
	Time:            "time",
	InertiaConstant: "inertia_constant",
	PercentType:     "percent",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Unit is identified by its symbol, so the zero value is not a valid unit.
type Unit string

const (
	A         Unit = "A"
	W         Unit = "W"
	KW        Unit = "kW"
	MW        Unit = "MW"
	V         Unit = "V"
	KV        Unit = "kV"
	MV        Unit = "MV"
	VA        Unit = "VA"
	KVA       Unit = "kVA"
	MVA       Unit = "MVA"
	VAR       Unit = "VAr"
	KVAR      Unit = "kVAr"
	MVAR      Unit = "MVAr"
	Ohm       Unit = "ohm"
	S         Unit = "S"
	MWsPerMVA Unit = "MWs/MVA"
	Deg       Unit = "deg"
	Rad       Unit = "rad"
	Hz        Unit = "Hz"
	KHz       Unit = "kHz"
	MHz       Unit = "MHz"
	PU        Unit = "PU"
	Scalar    Unit = "SCALAR"
	Percent   Unit = "PERCENT"
	Sec       Unit = "s"
	MSec      Unit = "ms"
)

// Allowed scales for each type of unit
var scales = map[Type]map[Unit]float64{
	ApparentPower:   {VA: 1, KVA: 1e3, MVA: 1e6},
	ActivePower:     {W: 1, KW: 1e3, MW: 1e6},
	ReactivePower:   {VAR: 1, KVAR: 1e3, MVAR: 1e6},
	Voltage:         {V: 1, KV: 1e3, MV: 1e6},
	Current:         {A: 1},
	Resistance:      {Ohm: 1},
	Conductance:     {S: 1},
	Angle:           {Deg: 1, Rad: 180 / math.Pi},
	Frequency:       {Hz: 1, KHz: 1e3, MHz: 1e6},
	PerUnitType:     {PU: 1},
	ScalarType:      {Scalar: 1},
	Time:            {MSec: 1e-3, Sec: 1},
	InertiaConstant: {MWsPerMVA: 1},
}

var unitTypes = map[Unit]Type{
	Percent: PercentType,
}

func init() {
	for t, units := range scales {
		for u := range units {
			unitTypes[u] = t
		}
	}
}

func ParseUnit(symbol string) (Unit, error) {
	u := Unit(symbol)
	if _, ok := unitTypes[u]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
	}
	return u, nil
}

func (u Unit) Type() Type {
	return unitTypes[u]
}

func (u Unit) String() string {
	return string(u)
}

// ConversionFactor returns the factor by which a magnitude in from must be
// multiplied to be expressed in to.
func ConversionFactor(from, to Unit) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	fromType := from.Type()
	if fromType != to.Type() {
		return 0, &TypeError{From: from, To: to}
	}

	scale, ok := scales[fromType]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnitScale, from)
	}
	return scale[from] / scale[to], nil
}
