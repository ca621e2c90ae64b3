package element

import (
	"fmt"

	"github.com/edp1096/toy-eeac/pkg/matrix"
)

// Line parameters are stored per unit of the base impedance.
type Line struct {
	baseImpedance    float64
	resistance       float64
	reactance        float64
	shuntConductance float64
	shuntSusceptance float64

	ClosedAtFirstBus    bool
	ClosedAtSecondBus   bool
	MetalShortCircuited bool
}

// NewLine takes physical values (ohm, S) and returns a line closed at both ends.
// A line needs a nonzero series impedance.
func NewLine(baseImpedance, resistance, reactance, shuntConductance, shuntSusceptance float64) (*Line, error) {
	if baseImpedance == 0 {
		return nil, ErrZeroBaseImpedance
	}
	if resistance == 0 && reactance == 0 {
		return nil, ErrZeroLineImpedance
	}
	return &Line{
		baseImpedance:     baseImpedance,
		resistance:        resistance / baseImpedance,
		reactance:         reactance / baseImpedance,
		shuntConductance:  shuntConductance * baseImpedance,
		shuntSusceptance:  shuntSusceptance * baseImpedance,
		ClosedAtFirstBus:  true,
		ClosedAtSecondBus: true,
	}, nil
}

func (l *Line) GetType() string { return "LINE" }

func (l *Line) IsClosed() bool {
	return !l.MetalShortCircuited && l.ClosedAtFirstBus && l.ClosedAtSecondBus
}

// IsOpen reports a line open at exactly one end.
func (l *Line) IsOpen() bool {
	return !l.MetalShortCircuited && (l.ClosedAtFirstBus != l.ClosedAtSecondBus)
}

func (l *Line) Impedance() complex128 {
	return complex(l.resistance, l.reactance)
}

func (l *Line) Admittance() complex128 {
	return 1 / l.Impedance()
}

func (l *Line) ShuntAdmittance() complex128 {
	return complex(l.shuntConductance, l.shuntSusceptance)
}

func (l *Line) ResistancePU() float64 { return l.resistance }
func (l *Line) ReactancePU() float64  { return l.reactance }

func (l *Line) Resistance() float64       { return l.resistance * l.baseImpedance }
func (l *Line) Reactance() float64        { return l.reactance * l.baseImpedance }
func (l *Line) ShuntConductance() float64 { return l.shuntConductance / l.baseImpedance }
func (l *Line) ShuntSusceptance() float64 { return l.shuntSusceptance / l.baseImpedance }

func (l *Line) Stamp(m matrix.DeviceMatrix, i, j int, from Terminal) error {
	y := l.Admittance()
	self := y + l.ShuntAdmittance()/2

	matrix.AddAdmittance(m, i, i, self)
	matrix.AddAdmittance(m, j, j, self)
	matrix.AddAdmittance(m, i, j, -y)
	matrix.AddAdmittance(m, j, i, -y)

	return nil
}

func (l *Line) Clone() BranchElement {
	c := *l
	return &c
}

func (l *Line) String() string {
	return fmt.Sprintf("Line: R=[%g] X=[%g] Gs=[%g] Bs=[%g] Closed at first bus=[%t] Closed at second bus=[%t] Metal short circuit=[%t]",
		l.Resistance(), l.Reactance(), l.ShuntConductance(), l.ShuntSusceptance(),
		l.ClosedAtFirstBus, l.ClosedAtSecondBus, l.MetalShortCircuited)
}
