package network

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/edp1096/toy-eeac/pkg/dto"
	"github.com/edp1096/toy-eeac/pkg/element"
)

func value(v float64, u string) dto.Value { return dto.NewValue(v, u) }

func testTopology() dto.NetworkTopology {
	line := dto.BranchElement{
		Kind:                 dto.KindLine,
		ClosedAtSendingBus:   true,
		ClosedAtReceivingBus: true,
		Resistance:           value(1, "ohm"),
		Reactance:            value(10, "ohm"),
		ShuntConductance:     value(0, "S"),
		ShuntSusceptance:     value(0, "S"),
	}
	transformer := dto.BranchElement{
		Kind:                 dto.KindTransformer8,
		ClosedAtSendingBus:   true,
		ClosedAtReceivingBus: true,
		BaseImpedance:        value(400, "ohm"),
		Resistance:           value(1, "ohm"),
		Reactance:            value(40, "ohm"),
		InitialTapNumber:     2,
	}
	opened := transformer
	opened.Kind = dto.KindTransformer1
	opened.Ratio = 1
	opened.ClosedAtReceivingBus = false

	return dto.NetworkTopology{
		BasePower: value(100, "MVA"),
		Buses: []dto.Bus{
			{Name: "L", BaseVoltage: value(100, "kV")},
			{Name: "H", BaseVoltage: value(200, "kV")},
			{Name: "U", BaseVoltage: value(100, "kV")},
		},
		SlackBuses: []dto.SlackBus{
			{Bus: dto.Bus{Name: "G", BaseVoltage: value(100, "kV")}, PhaseAngle: value(0, "deg")},
		},
		Branches: []dto.Branch{
			{SendingBus: "G", ReceivingBus: "L", ParallelElements: map[string]dto.BranchElement{"1": line}},
			{SendingBus: "L", ReceivingBus: "H", ParallelElements: map[string]dto.BranchElement{"1": transformer, "2": opened}},
			{SendingBus: "L", ReceivingBus: "U", ParallelElements: map[string]dto.BranchElement{
				"1": {Kind: dto.KindBreaker, Closed: true},
			}},
		},
		Generators: []dto.Generator{
			{
				Name: "GEN1", Bus: "G", Connected: true, Regulating: true, Source: "NUCLEAIR",
				MaxActivePower:           value(200, "MW"),
				DirectTransientReactance: value(20, "ohm"),
				InertiaConstant:          value(5, "MWs/MVA"),
			},
			{
				Name: "GEN2", Bus: "L",
				MaxActivePower:           value(50, "MW"),
				DirectTransientReactance: value(10, "ohm"),
				InertiaConstant:          value(3, "MWs/MVA"),
			},
		},
		Loads: []dto.Load{
			{Name: "LOAD1", Bus: "L", ActivePower: value(50, "MW"), ReactivePower: value(10, "MVAr"), Connected: true},
			{Name: "GEN_WIND", Bus: "L", ActivePower: value(1, "MW"), ReactivePower: value(1, "MVAr"), Connected: true},
		},
		CapacitorBanks: []dto.CapacitorBank{
			{Name: "CB1", Bus: "L", ActivePower: value(0, "MW"), ReactivePower: value(5, "MVAr")},
		},
		StaticVarCompensators: []dto.StaticVarCompensator{{Name: "SVC1", Bus: "L", Connected: true}},
		HVDCConverters:        []dto.HVDCConverter{{Name: "HV1", Bus: "H", Connected: true}},
	}
}

func testLoadFlow() dto.LoadFlowResults {
	return dto.LoadFlowResults{
		Buses: map[string]dto.LoadFlowBus{
			"G": {Voltage: value(100, "kV"), PhaseAngle: value(3, "deg")},
			"L": {Voltage: value(99, "kV"), PhaseAngle: value(-2, "deg")},
			"H": {Voltage: value(198, "kV"), PhaseAngle: value(-3, "deg")},
		},
		Loads: map[string]dto.LoadFlowPower{
			"LOAD1": {ActivePower: value(55, "MW"), ReactivePower: value(12, "MVAr")},
		},
		Generators: map[string]dto.LoadFlowPower{
			"GEN1": {ActivePower: value(100, "MW"), ReactivePower: value(20, "MVAr")},
			"WIND": {ActivePower: value(10, "MW"), ReactivePower: value(2, "MVAr")},
		},
		StaticVarCompensators: map[string]dto.LoadFlowReactivePower{
			"SVC1": {ReactivePower: value(3, "MVAr")},
		},
		HVDCConverters: map[string]dto.LoadFlowPower{
			"HV1": {ActivePower: value(20, "MW"), ReactivePower: value(5, "MVAr")},
		},
		TransformerTapData: map[string]dto.TransformerTapData{
			"H_L_1": {
				TapNumbers:            []int{1, 2},
				PhaseAngles:           []float64{0, 5},
				SendingNodeVoltages:   []float64{100, 102},
				ReceivingNodeVoltages: []float64{200, 210},
			},
		},
	}
}

func TestCreateNetwork(t *testing.T) {
	n, err := CreateNetwork(testTopology(), testLoadFlow())
	require.NoError(t, err)
	assert.Equal(t, 100.0, n.BasePower())
	assert.Len(t, n.Buses(), 4)
	assert.Len(t, n.Breakers(), 1)

	g, err := n.GetBus("G")
	require.NoError(t, err)
	assert.Equal(t, Slack, g.Type())
	assert.Equal(t, 0.0, g.PhaseAngle())

	l, err := n.GetBus("L")
	require.NoError(t, err)
	assert.InDelta(t, -2*math.Pi/180, l.PhaseAngle(), 1e-12)

	u, err := n.GetBus("U")
	require.NoError(t, err)
	assert.False(t, u.IsResolved())

	gen1, err := n.GetGenerator("GEN1")
	require.NoError(t, err)
	assert.Equal(t, element.Slack, gen1.Type)
	assert.Equal(t, element.SourceNuclear, gen1.Source)
	assert.InDelta(t, 0.1, gen1.InertiaCoefficient(), 1e-12)
	x, err := gen1.DirectTransientReactancePU()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, x, 1e-12)

	gen2, err := n.GetGenerator("GEN2")
	require.NoError(t, err)
	assert.Equal(t, element.PQ, gen2.Type)
	assert.False(t, gen2.Connected)
	assert.Equal(t, 0.0, gen2.ActivePower())

	load, err := l.GetLoad("LOAD1")
	require.NoError(t, err)
	assertComplexEqual(t, complex(0.55, 0.12), load.ComplexPower())

	wind, err := l.GetLoad("GEN_WIND")
	require.NoError(t, err)
	assertComplexEqual(t, complex(-0.1, -0.02), wind.ComplexPower())

	require.Len(t, l.CapacitorBanks(), 2)
	assertComplexEqual(t, complex(0, -0.05), l.CapacitorBanks()[0].ComplexPower())
	assertComplexEqual(t, complex(0, -0.03), l.CapacitorBanks()[1].ComplexPower())

	h, err := n.GetBus("H")
	require.NoError(t, err)
	hvdc, err := h.GetLoad("HV1")
	require.NoError(t, err)
	assertComplexEqual(t, complex(-0.2, -0.05), hvdc.ComplexPower())

	br, err := n.GetBranch("L", "H")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, br.ParallelIDs())
	e, err := br.Element("1")
	require.NoError(t, err)
	tr, ok := e.(*element.Transformer)
	require.True(t, ok)
	assert.Equal(t, element.Transformer8, tr.Type())
	assert.InDelta(t, (100.0/102)*(210.0/200), tr.Ratio(), 1e-12)
	assert.Equal(t, 5.0, tr.PhaseShiftAngle())
	assert.Equal(t, "L", tr.SendingNode())

	br, err = n.GetBranch("G", "L")
	require.NoError(t, err)
	e, err = br.Element("1")
	require.NoError(t, err)
	line, ok := e.(*element.Line)
	require.True(t, ok)
	assert.InDelta(t, 0.1, line.ReactancePU(), 1e-12)

	require.NoError(t, n.InitializeSimplifiedNetwork())
	discarded, err := n.GetDisconnectedBuses(PreFault)
	require.NoError(t, err)
	assert.Equal(t, []string{"U"}, discarded)
}

func TestCreateNetworkErrors(t *testing.T) {
	t.Run("slack bus without load flow", func(t *testing.T) {
		lf := testLoadFlow()
		delete(lf.Buses, "G")
		_, err := CreateNetwork(testTopology(), lf)
		assert.ErrorIs(t, err, ErrLoadFlow)
	})

	t.Run("elements collected", func(t *testing.T) {
		topology := testTopology()
		topology.Loads = append(topology.Loads, dto.Load{
			Name: "LOST", Bus: "NOWHERE", ActivePower: value(1, "MW"), ReactivePower: value(0, "MVAr"),
		})
		lf := testLoadFlow()
		delete(lf.Generators, "GEN1")

		_, err := CreateNetwork(topology, lf)
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
		assert.ErrorIs(t, err, ErrLoadFlow)
		assert.ErrorIs(t, err, ErrElementNotFound)
	})

	t.Run("branches collected", func(t *testing.T) {
		topology := testTopology()
		topology.Branches = append(topology.Branches, dto.Branch{
			SendingBus: "G", ReceivingBus: "H",
			ParallelElements: map[string]dto.BranchElement{"1": {Kind: "CABLE"}},
		})
		lf := testLoadFlow()
		delete(lf.TransformerTapData, "H_L_1")

		_, err := CreateNetwork(topology, lf)
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
		assert.ErrorIs(t, err, ErrBranchContent)
		assert.ErrorIs(t, err, ErrLoadFlow)
	})

	t.Run("bad base power unit", func(t *testing.T) {
		topology := testTopology()
		topology.BasePower = value(100, "kV")
		_, err := CreateNetwork(topology, testLoadFlow())
		assert.Error(t, err)
	})
}

func assertComplexEqual(t *testing.T, want, got complex128) {
	t.Helper()
	assert.InDelta(t, real(want), real(got), 1e-9, "real part of %v", got)
	assert.InDelta(t, imag(want), imag(got), 1e-9, "imaginary part of %v", got)
}
