package element

import (
	"fmt"
	"math/cmplx"

	"github.com/edp1096/toy-eeac/pkg/matrix"
	"github.com/edp1096/toy-eeac/pkg/unit"
)

type Load struct {
	BaseElement
	activePower   unit.Value
	reactivePower unit.Value
	power         complex128
	admittance    complex128
	fixed         bool
	Connected     bool
}

// NewLoad takes powers that carry the system base power.
func NewLoad(name string, activePower, reactivePower unit.Value, connected bool) (*Load, error) {
	p, err := activePower.PerUnit()
	if err != nil {
		return nil, fmt.Errorf("load %s active power: %w", name, err)
	}
	q, err := reactivePower.PerUnit()
	if err != nil {
		return nil, fmt.Errorf("load %s reactive power: %w", name, err)
	}

	return &Load{
		BaseElement:   BaseElement{Name: name},
		activePower:   activePower,
		reactivePower: reactivePower,
		power:         complex(p, q),
		Connected:     connected,
	}, nil
}

// NewFictiveLoad builds a load with a constant admittance (pu) and no power.
func NewFictiveLoad(name string, admittance complex128) *Load {
	return &Load{
		BaseElement: BaseElement{Name: name},
		admittance:  admittance,
		fixed:       true,
		Connected:   true,
	}
}

func (l *Load) IsFictive() bool {
	return l.fixed
}

func (l *Load) ActivePower() unit.Value   { return l.activePower }
func (l *Load) ReactivePower() unit.Value { return l.reactivePower }

func (l *Load) ComplexPower() complex128 {
	if !l.Connected || l.fixed {
		return 0
	}
	return l.power
}

func (l *Load) Admittance() complex128 {
	if !l.Connected {
		return 0
	}
	return l.admittance
}

// UpdateVoltage recomputes the admittance for a bus voltage phasor in pu.
func (l *Load) UpdateVoltage(v complex128) {
	if l.fixed {
		return
	}
	if v == 0 {
		l.admittance = 0
		return
	}
	magnitude := cmplx.Abs(v)
	l.admittance = cmplx.Conj(l.power) / complex(magnitude*magnitude, 0)
}

func (l *Load) Stamp(m matrix.DeviceMatrix, i int) error {
	matrix.AddAdmittance(m, i, i, l.Admittance())
	return nil
}

func (l *Load) Clone() *Load {
	c := *l
	return &c
}

func (l *Load) String() string {
	if l.fixed {
		return fmt.Sprintf("Fictive load: Name=[%s] Y=[%v] Connected=[%t]", l.Name, l.admittance, l.Connected)
	}
	return fmt.Sprintf("Load: Name=[%s] P=[%s] Q=[%s] Connected=[%t]", l.Name, l.activePower, l.reactivePower, l.Connected)
}
