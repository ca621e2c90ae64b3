package element

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-eeac/pkg/unit"
)

type denseMatrix map[[2]int]complex128

func (d denseMatrix) AddComplexElement(i, j int, re, im float64) {
	d[[2]int{i, j}] += complex(re, im)
}

type named string

func (n named) HasName(name string) bool { return string(n) == name }

func assertComplex(t *testing.T, want, got complex128) {
	t.Helper()
	assert.InDelta(t, real(want), real(got), 1e-9, "real part of %v", got)
	assert.InDelta(t, imag(want), imag(got), 1e-9, "imaginary part of %v", got)
}

func TestLine(t *testing.T) {
	line, err := NewLine(100, 1, 10, 0, 2e-4)
	require.NoError(t, err)

	assert.InDelta(t, 0.01, line.ResistancePU(), 1e-12)
	assert.InDelta(t, 10, line.Reactance(), 1e-12)
	assertComplex(t, 1/complex(0.01, 0.1), line.Admittance())
	assertComplex(t, complex(0, 0.02), line.ShuntAdmittance())

	assert.True(t, line.IsClosed())
	assert.False(t, line.IsOpen())
	line.ClosedAtSecondBus = false
	assert.False(t, line.IsClosed())
	assert.True(t, line.IsOpen())
	line.MetalShortCircuited = true
	assert.False(t, line.IsOpen())

	_, err = NewLine(0, 1, 1, 0, 0)
	assert.ErrorIs(t, err, ErrZeroBaseImpedance)
	_, err = NewLine(100, 0, 0, 0, 2e-4)
	assert.ErrorIs(t, err, ErrZeroLineImpedance)
}

func TestLineStamp(t *testing.T) {
	line, err := NewLine(1, 0, 0.5, 0, 0.2)
	require.NoError(t, err)

	m := denseMatrix{}
	require.NoError(t, line.Stamp(m, 1, 2, named("A")))

	y := complex(0, -2)
	assertComplex(t, y+complex(0, 0.1), m[[2]int{1, 1}])
	assertComplex(t, y+complex(0, 0.1), m[[2]int{2, 2}])
	assertComplex(t, -y, m[[2]int{1, 2}])
	assertComplex(t, -y, m[[2]int{2, 1}])
}

func TestTransformerConstruction(t *testing.T) {
	_, err := NewTransformer(TransformerParams{Type: Transformer1, BaseImpedance: 0, Reactance: 1, Ratio: 1})
	assert.ErrorIs(t, err, ErrTransformerImpedance)

	_, err = NewTransformer(TransformerParams{Type: Transformer1, BaseImpedance: 1, Ratio: 1})
	assert.ErrorIs(t, err, ErrTransformerImpedance)

	_, err = NewTransformer(TransformerParams{Type: 3, BaseImpedance: 1, Reactance: 1})
	assert.Error(t, err)

	tr, err := NewTransformer(TransformerParams{
		Type: Transformer1, BaseImpedance: 2, Reactance: 0.2, ShuntConductance: 0.1, ShuntSusceptance: 0.3, Ratio: 1,
	})
	require.NoError(t, err)
	assertComplex(t, complex(0.2, -0.6), tr.ShuntAdmittance())
	assert.Equal(t, "TRANSFORMER1", tr.GetType())
}

func TestTransformer1StampSendingSide(t *testing.T) {
	tr, err := NewTransformer(TransformerParams{
		Type: Transformer1, BaseImpedance: 1, Reactance: 0.1, Ratio: 1.1,
		SendingNode: "HV", ReceivingNode: "LV",
	})
	require.NoError(t, err)

	z := complex(0, 0.1)
	y := 1 / z
	a := y * 1.1
	sending := a + complex(1.1*0.1, 0)/z
	receiving := a + complex(-0.1, 0)/z

	m := denseMatrix{}
	require.NoError(t, tr.Stamp(m, 1, 2, named("HV")))
	assertComplex(t, sending, m[[2]int{1, 1}])
	assertComplex(t, receiving, m[[2]int{2, 2}])
	assertComplex(t, -a, m[[2]int{1, 2}])

	m = denseMatrix{}
	require.NoError(t, tr.Stamp(m, 1, 2, named("LV")))
	assertComplex(t, receiving, m[[2]int{1, 1}])
	assertComplex(t, sending, m[[2]int{2, 2}])
}

func TestTransformer8Stamp(t *testing.T) {
	tr, err := NewTransformer(TransformerParams{
		Type: Transformer8, BaseImpedance: 1, Reactance: 0.1, Ratio: 1, PhaseShiftAngle: 90,
		SendingNode: "HV", ReceivingNode: "LV",
	})
	require.NoError(t, err)

	ratio := tr.ComplexRatio()
	assertComplex(t, complex(0, 1), ratio)

	y := complex(0, -10)
	m := denseMatrix{}
	require.NoError(t, tr.Stamp(m, 2, 1, named("LV")))
	assertComplex(t, -y*cmplx.Conj(ratio), m[[2]int{1, 2}])
	assertComplex(t, -y*ratio, m[[2]int{2, 1}])
	assertComplex(t, y*ratio+(1-ratio)/complex(0, 0.1), m[[2]int{2, 2}])
}

func TestLoad(t *testing.T) {
	activeBase, err := unit.NewPUBase(100, unit.MW)
	require.NoError(t, err)
	reactiveBase, err := unit.NewPUBase(100, unit.MVAR)
	require.NoError(t, err)
	p, err := unit.NewValue(50, unit.MW, &activeBase)
	require.NoError(t, err)
	q, err := unit.NewValue(10, unit.MVAR, &reactiveBase)
	require.NoError(t, err)

	load, err := NewLoad("L1", p, q, true)
	require.NoError(t, err)
	assertComplex(t, complex(0.5, 0.1), load.ComplexPower())

	load.UpdateVoltage(cmplx.Rect(2, 0.3))
	assertComplex(t, complex(0.125, -0.025), load.Admittance())

	load.UpdateVoltage(0)
	assertComplex(t, 0, load.Admittance())

	load.UpdateVoltage(1)
	load.Connected = false
	assertComplex(t, 0, load.Admittance())
	assertComplex(t, 0, load.ComplexPower())

	noBase, err := unit.NewValue(1, unit.MW, nil)
	require.NoError(t, err)
	_, err = NewLoad("L2", noBase, q, true)
	assert.ErrorIs(t, err, unit.ErrPerUnit)
}

func TestFictiveLoad(t *testing.T) {
	load := NewFictiveLoad("FICT_LOAD_A", complex(0, -5))
	load.UpdateVoltage(complex(0.5, 0))

	assert.True(t, load.IsFictive())
	assertComplex(t, complex(0, -5), load.Admittance())
	assertComplex(t, 0, load.ComplexPower())

	m := denseMatrix{}
	require.NoError(t, load.Stamp(m, 3))
	assertComplex(t, complex(0, -5), m[[2]int{3, 3}])
}

func TestCapacitorBank(t *testing.T) {
	bank := NewCapacitorBank("C1", 0, -0.4)
	bank.UpdateVoltage(complex(0, 2))
	assertComplex(t, complex(0, 0.1), bank.Admittance())

	bank.UpdateVoltage(0)
	assert.True(t, math.IsInf(real(bank.Admittance()), 1))
	assert.True(t, math.IsInf(imag(bank.Admittance()), -1))
}

func TestGenerator(t *testing.T) {
	gen, err := NewGenerator(GeneratorParams{
		Name: "G1", Type: PV, Connected: true,
		BaseImpedance: 50, BasePower: 100,
		DirectTransientReactance: 10, InertiaConstant: 4,
		ActivePower: 100, MaxActivePower: 120, ReactivePower: 20,
	})
	require.NoError(t, err)

	x, err := gen.DirectTransientReactancePU()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, x, 1e-12)
	assertComplex(t, complex(1, 0.2), gen.ComplexPower())
	assertComplex(t, complex(0, -5), gen.DirectTransientAdmittance())
	assert.InDelta(t, 8, gen.InertiaCoefficient(), 1e-12)
	assert.InDelta(t, 1, gen.MechanicalPower(), 1e-12)
	assert.InDelta(t, 120, gen.MaxActivePower(), 1e-9)

	gen.UpdateVoltage(1, false)
	// E = 1 + j0.2 * (1 - j0.2)
	assertComplex(t, complex(1.04, 0.2), gen.InternalVoltage())
	assert.InDelta(t, math.Atan2(0.2, 1.04), gen.RotorAngle(), 1e-12)

	gen.UpdateVoltage(complex(0, 1.1), true)
	assertComplex(t, complex(0, 1.1), gen.InternalVoltage())

	gen.UpdateVoltage(0, false)
	assertComplex(t, 0, gen.InternalVoltage())

	gen.Connected = false
	_, err = gen.DirectTransientReactance()
	assert.ErrorIs(t, err, ErrDisconnectedElement)
	assertComplex(t, 0, gen.ComplexPower())
	assert.Zero(t, gen.RotorAngle())
}

func TestGeneratorZeroReactance(t *testing.T) {
	_, err := NewGenerator(GeneratorParams{Name: "G", BaseImpedance: 1, BasePower: 100})
	assert.ErrorIs(t, err, ErrZeroDirectTransientReactance)
}

func TestParseGeneratorSource(t *testing.T) {
	tests := map[string]GeneratorSource{
		"NUCLEAIR": SourceNuclear,
		"pompage":  SourceHydro,
		"eolien":   SourceWind,
		"CYCLE_CO": SourceCycle,
		"fusion":   SourceUnknown,
		"":         SourceUnknown,
	}
	for keyword, want := range tests {
		assert.Equal(t, want, ParseGeneratorSource(keyword), keyword)
	}
	assert.Equal(t, "HYDRO", SourceHydro.String())
}
