package analysis

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-eeac/pkg/dto"
	"github.com/edp1096/toy-eeac/pkg/event"
	"github.com/edp1096/toy-eeac/pkg/netlist"
	"github.com/edp1096/toy-eeac/pkg/network"
)

type noopEvent struct{}

func (noopEvent) ApplyToNetwork(*network.Network) (bool, error) { return false, nil }
func (noopEvent) String() string                                { return "noop" }

func loadExample(t *testing.T) (*network.Network, []Scenario) {
	t.Helper()
	c, err := netlist.LoadCase(filepath.Join("..", "..", "examples", "two_machines.yaml"))
	require.NoError(t, err)

	n, err := network.CreateNetwork(c.Topology, c.LoadFlow)
	require.NoError(t, err)

	scenarios := make([]Scenario, len(c.Events))
	for i, seq := range c.Events {
		scenarios[i], err = NewScenario(seq)
		require.NoError(t, err)
	}
	return n, scenarios
}

func amplitude(t *testing.T, a *StateAnalysis, state network.NetworkState) float64 {
	t.Helper()
	r, err := a.Report(state)
	require.NoError(t, err)
	y, ok := r.Admittance("GEN1", "GEN2")
	require.True(t, ok)
	return y.Amplitude
}

func TestStateAnalysisLineFault(t *testing.T) {
	n, scenarios := loadExample(t)

	a := NewStateAnalysis(scenarios[0])
	require.NoError(t, a.Setup(n.Duplicate()))
	require.NoError(t, a.Execute())
	require.Len(t, a.Reports(), 3)

	pre := amplitude(t, a, network.PreFault)
	during := amplitude(t, a, network.DuringFault)
	post := amplitude(t, a, network.PostFault)
	assert.Less(t, during, post)
	assert.Less(t, post, pre)

	r, err := a.Report(network.PreFault)
	require.NoError(t, err)
	assert.Empty(t, r.Discarded)
	assert.Len(t, r.Admittances, 3)
	assert.Len(t, r.RotorAngles, 2)
	assert.Greater(t, r.InternalVoltages["GEN1"], 1.0)

	// rotor angles do not depend on the state
	post1, err := a.Report(network.PostFault)
	require.NoError(t, err)
	assert.Equal(t, r.RotorAngles, post1.RotorAngles)

	results := a.GetResults()
	assert.Equal(t, []float64{0, 1, 2}, results["STATE"])
	assert.Len(t, results["E(GEN1)_MAG"], 3)
	assert.Len(t, results["E(GEN2)_PHASE"], 3)
}

func TestStateAnalysisWithoutSetup(t *testing.T) {
	a := NewStateAnalysis(Scenario{Name: "empty"})
	assert.Error(t, a.Execute())

	_, err := a.Report(network.PreFault)
	assert.ErrorIs(t, err, network.ErrNetworkState)
}

func TestNewScenario(t *testing.T) {
	s, err := NewScenario(dto.EventSequence{
		Name:     "bus fault",
		Failures: []dto.Event{{Kind: dto.EventBusShortCircuit, BusName: "A"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "bus fault", s.Name)
	require.Len(t, s.Failures, 1)
	assert.IsType(t, &event.BusShortCircuit{}, s.Failures[0])
	assert.Empty(t, s.Mitigations)

	_, err = NewScenario(dto.EventSequence{
		Failures: []dto.Event{{Kind: dto.EventBusShortCircuitClearing, BusName: "A"}},
	})
	assert.ErrorIs(t, err, event.ErrEventKind)
}

func TestRunScenarios(t *testing.T) {
	n, scenarios := loadExample(t)
	scenarios = append(scenarios, Scenario{Name: "noop", Failures: []network.Event{noopEvent{}}})

	results, err := RunScenarios(context.Background(), n, scenarios, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "line fault A-B", results[0].Scenario)
	assert.False(t, results[0].Skipped)
	require.NotNil(t, results[0].Analysis)

	busFault := results[1].Analysis
	require.NotNil(t, busFault)
	assert.Less(t, amplitude(t, busFault, network.DuringFault), 1e-6)
	assert.InDelta(t, amplitude(t, busFault, network.PreFault), amplitude(t, busFault, network.PostFault), 1e-9)

	assert.Equal(t, "noop", results[2].Scenario)
	assert.True(t, results[2].Skipped)
	assert.Nil(t, results[2].Analysis)

	// the base network keeps its pre-fault view and gets no event
	_, err = n.GetState(network.PreFault)
	assert.NoError(t, err)
	_, err = n.GetState(network.DuringFault)
	assert.ErrorIs(t, err, network.ErrNetworkState)
}

func TestRunScenariosError(t *testing.T) {
	n, _ := loadExample(t)
	scenarios := []Scenario{{
		Name:     "unknown bus",
		Failures: []network.Event{event.NewBusShortCircuit("Z", 0, 0)},
	}}

	_, err := RunScenarios(context.Background(), n, scenarios, 0)
	assert.ErrorIs(t, err, network.ErrElementNotFound)
}

func TestRunScenariosCancelled(t *testing.T) {
	n, scenarios := loadExample(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunScenarios(ctx, n, scenarios, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
