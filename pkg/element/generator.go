package element

import (
	"fmt"
	"math/cmplx"
	"strings"
)

type GeneratorType int

const (
	PQ GeneratorType = iota
	PV
	Slack
)

func (t GeneratorType) String() string {
	switch t {
	case PV:
		return "PV"
	case Slack:
		return "SLACK"
	default:
		return "PQ"
	}
}

type GeneratorSource int

const (
	SourceUnknown GeneratorSource = iota
	SourceNuclear
	SourceSolar
	SourceHydro
	SourceCoal
	SourceWind
	SourceFictive
	SourceOil
	SourceGas
	SourceCycle
	SourceOther
	SourceNone
)

var sourceKeywords = map[string]GeneratorSource{
	"nucleair": SourceNuclear,
	"photovol": SourceSolar,
	"step":     SourceHydro,
	"turbinag": SourceHydro,
	"pompage":  SourceHydro,
	"charbon":  SourceCoal,
	"eolien":   SourceWind,
	"fictif":   SourceFictive,
	"fuel":     SourceOil,
	"tag":      SourceGas,
	"cycle_co": SourceCycle,
	"autre":    SourceOther,
	"none":     SourceNone,
}

var sourceNames = map[GeneratorSource]string{
	SourceUnknown: "UNKNOWN",
	SourceNuclear: "NUCLEAR",
	SourceSolar:   "SOLAR",
	SourceHydro:   "HYDRO",
	SourceCoal:    "COAL",
	SourceWind:    "WIND",
	SourceFictive: "FICTIVE",
	SourceOil:     "OIL",
	SourceGas:     "GAS",
	SourceCycle:   "CYCLE",
	SourceOther:   "OTHER",
	SourceNone:    "NONE",
}

// ParseGeneratorSource maps a vendor keyword to a source. Unknown keywords
// give SourceUnknown.
func ParseGeneratorSource(keyword string) GeneratorSource {
	if source, ok := sourceKeywords[strings.ToLower(strings.TrimSpace(keyword))]; ok {
		return source
	}
	return SourceUnknown
}

func (s GeneratorSource) String() string {
	return sourceNames[s]
}

// GeneratorParams holds physical values. DirectTransientReactance is in ohm
// and converted with BaseImpedance; powers are in MW and MVAr.
type GeneratorParams struct {
	Name                     string
	Type                     GeneratorType
	Source                   GeneratorSource
	Bus                      int
	Connected                bool
	BaseImpedance            float64
	BasePower                float64
	DirectTransientReactance float64
	InertiaConstant          float64
	ActivePower              float64
	MaxActivePower           float64
	ReactivePower            float64
}

type Generator struct {
	BaseElement
	Type      GeneratorType
	Source    GeneratorSource
	Bus       int
	Connected bool

	baseImpedance   float64
	basePower       float64
	reactance       float64
	inertiaConstant float64
	activePower     float64
	maxActivePower  float64
	reactivePower   float64

	internalVoltage complex128
}

func NewGenerator(params GeneratorParams) (*Generator, error) {
	if params.BaseImpedance == 0 || params.BasePower == 0 {
		return nil, fmt.Errorf("generator %s: %w", params.Name, ErrZeroBaseImpedance)
	}
	reactance := params.DirectTransientReactance / params.BaseImpedance
	if reactance == 0 {
		return nil, fmt.Errorf("generator %s: %w", params.Name, ErrZeroDirectTransientReactance)
	}

	return &Generator{
		BaseElement:     BaseElement{Name: params.Name},
		Type:            params.Type,
		Source:          params.Source,
		Bus:             params.Bus,
		Connected:       params.Connected,
		baseImpedance:   params.BaseImpedance,
		basePower:       params.BasePower,
		reactance:       reactance,
		inertiaConstant: params.InertiaConstant,
		activePower:     params.ActivePower / params.BasePower,
		maxActivePower:  params.MaxActivePower / params.BasePower,
		reactivePower:   params.ReactivePower / params.BasePower,
	}, nil
}

// UpdateVoltage recomputes the internal voltage from the bus voltage phasor
// in pu. On an internal voltage bus the bus voltage is the internal voltage.
func (g *Generator) UpdateVoltage(v complex128, internalVoltageBus bool) {
	switch {
	case internalVoltageBus:
		g.internalVoltage = v
	case v == 0:
		g.internalVoltage = 0
	default:
		current := cmplx.Conj(g.complexPower() / v)
		g.internalVoltage = v + complex(0, g.reactance)*current
	}
}

func (g *Generator) complexPower() complex128 {
	return complex(g.activePower, g.reactivePower)
}

func (g *Generator) ComplexPower() complex128 {
	if !g.Connected {
		return 0
	}
	return g.complexPower()
}

func (g *Generator) ActivePowerPU() float64    { return g.activePower }
func (g *Generator) MaxActivePowerPU() float64 { return g.maxActivePower }
func (g *Generator) ActivePower() float64      { return g.activePower * g.basePower }
func (g *Generator) MaxActivePower() float64   { return g.maxActivePower * g.basePower }
func (g *Generator) ReactivePower() float64    { return g.reactivePower * g.basePower }

// DirectTransientReactancePU fails on a disconnected generator.
func (g *Generator) DirectTransientReactancePU() (float64, error) {
	if !g.Connected {
		return 0, fmt.Errorf("generator %s: %w", g.Name, ErrDisconnectedElement)
	}
	return g.reactance, nil
}

// DirectTransientReactance is in ohm.
func (g *Generator) DirectTransientReactance() (float64, error) {
	x, err := g.DirectTransientReactancePU()
	if err != nil {
		return 0, err
	}
	return x * g.baseImpedance, nil
}

func (g *Generator) DirectTransientAdmittance() complex128 {
	if !g.Connected {
		return 0
	}
	return 1 / complex(0, g.reactance)
}

func (g *Generator) InternalVoltage() complex128 {
	if !g.Connected {
		return 0
	}
	return g.internalVoltage
}

func (g *Generator) RotorAngle() float64 {
	if !g.Connected {
		return 0
	}
	return cmplx.Phase(g.internalVoltage)
}

func (g *Generator) MechanicalPower() float64 {
	return real(g.ComplexPower())
}

func (g *Generator) InertiaCoefficient() float64 {
	return 2 * g.inertiaConstant
}

func (g *Generator) Clone() *Generator {
	c := *g
	return &c
}

func (g *Generator) String() string {
	return fmt.Sprintf("Generator: Name=[%s] Type=[%s] x'd=[%g] H=[%g] P=[%g] Pmax=[%g] Q=[%g] Connected=[%t]",
		g.Name, g.Type, g.reactance*g.baseImpedance, g.inertiaConstant,
		g.ActivePower(), g.MaxActivePower(), g.ReactivePower(), g.Connected)
}
