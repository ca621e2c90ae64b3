package element

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/edp1096/toy-eeac/pkg/matrix"
)

type TransformerType int

const (
	Transformer1 TransformerType = 1
	Transformer8 TransformerType = 8
)

// TransformerParams holds physical values: ohm for r and x, S for g and b,
// degrees for the phase shift.
type TransformerParams struct {
	Type             TransformerType
	BaseImpedance    float64
	Resistance       float64
	Reactance        float64
	ShuntConductance float64
	ShuntSusceptance float64
	Ratio            float64
	PhaseShiftAngle  float64
	InitialTapNumber int
	SendingNode      string
	ReceivingNode    string
}

type Transformer struct {
	params TransformerParams

	resistance       float64
	reactance        float64
	shuntConductance float64
	shuntSusceptance float64

	ClosedAtFirstBus  bool
	ClosedAtSecondBus bool
}

func NewTransformer(params TransformerParams) (*Transformer, error) {
	if params.Type != Transformer1 && params.Type != Transformer8 {
		return nil, fmt.Errorf("unknown transformer type %d", params.Type)
	}
	if params.BaseImpedance == 0 {
		return nil, fmt.Errorf("%w: zero base impedance", ErrTransformerImpedance)
	}
	if params.Resistance == 0 && params.Reactance == 0 {
		return nil, fmt.Errorf("%w: zero series impedance", ErrTransformerImpedance)
	}
	for _, v := range []float64{params.Resistance, params.Reactance, params.Ratio} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: invalid parameter %g", ErrTransformerImpedance, v)
		}
	}

	zb := params.BaseImpedance
	return &Transformer{
		params:            params,
		resistance:        params.Resistance / zb,
		reactance:         params.Reactance / zb,
		shuntConductance:  params.ShuntConductance * zb,
		shuntSusceptance:  params.ShuntSusceptance * zb,
		ClosedAtFirstBus:  true,
		ClosedAtSecondBus: true,
	}, nil
}

func (t *Transformer) GetType() string {
	return fmt.Sprintf("TRANSFORMER%d", t.params.Type)
}

func (t *Transformer) Type() TransformerType { return t.params.Type }
func (t *Transformer) Ratio() float64        { return t.params.Ratio }
func (t *Transformer) SendingNode() string   { return t.params.SendingNode }
func (t *Transformer) ReceivingNode() string { return t.params.ReceivingNode }
func (t *Transformer) InitialTapNumber() int { return t.params.InitialTapNumber }

// PhaseShiftAngle is in degrees.
func (t *Transformer) PhaseShiftAngle() float64 { return t.params.PhaseShiftAngle }

func (t *Transformer) IsClosed() bool {
	return t.ClosedAtFirstBus && t.ClosedAtSecondBus
}

func (t *Transformer) Impedance() complex128 {
	return complex(t.resistance, t.reactance)
}

func (t *Transformer) Admittance() complex128 {
	return 1 / t.Impedance()
}

func (t *Transformer) ShuntAdmittance() complex128 {
	return complex(t.shuntConductance, -t.shuntSusceptance)
}

// ComplexRatio is the ratio rotated by the phase shift. It is real for type 1.
func (t *Transformer) ComplexRatio() complex128 {
	if t.params.Type == Transformer1 {
		return complex(t.params.Ratio, 0)
	}
	return cmplx.Rect(t.params.Ratio, t.params.PhaseShiftAngle*math.Pi/180)
}

func (t *Transformer) Stamp(m matrix.DeviceMatrix, i, j int, from Terminal) error {
	z := t.Impedance()
	y := 1 / z
	ysh := t.ShuntAdmittance()

	send, recv := i, j
	if !from.HasName(t.params.SendingNode) {
		send, recv = j, i
	}

	switch t.params.Type {
	case Transformer1:
		ratio := complex(t.params.Ratio, 0)
		a := y * ratio

		matrix.AddAdmittance(m, i, j, -a)
		matrix.AddAdmittance(m, j, i, -a)
		matrix.AddAdmittance(m, send, send, a+ratio*(ratio-1)/z)
		matrix.AddAdmittance(m, recv, recv, a+(1-ratio)/z+ysh)
	case Transformer8:
		ratio := t.ComplexRatio()
		conjRatio := cmplx.Conj(ratio)

		matrix.AddAdmittance(m, send, recv, -y*conjRatio)
		matrix.AddAdmittance(m, recv, send, -y*ratio)
		matrix.AddAdmittance(m, send, send, y*conjRatio+conjRatio*(ratio-1)/z+ratio*ratio*ysh)
		matrix.AddAdmittance(m, recv, recv, y*ratio+(1-ratio)/z)
	default:
		return fmt.Errorf("unknown transformer type %d", t.params.Type)
	}

	return nil
}

func (t *Transformer) Clone() BranchElement {
	c := *t
	return &c
}

func (t *Transformer) String() string {
	return fmt.Sprintf("Transformer: R=[%g] X=[%g] phase shift angle=[%g] Closed at primary=[%t] Closed at secondary=[%t]",
		t.params.Resistance, t.params.Reactance, t.params.PhaseShiftAngle, t.ClosedAtFirstBus, t.ClosedAtSecondBus)
}
