package netlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/edp1096/toy-eeac/pkg/dto"
)

const smallCase = `
topology:
  base_power: {value: 100, unit: MVA}
  buses:
    - name: L
      base_voltage: {value: 100, unit: kV}
  slack_buses:
    - name: G
      base_voltage: {value: 100, unit: kV}
      phase_angle: {value: 0, unit: deg}
  branches:
    - sending_bus: G
      receiving_bus: L
      parallel_elements:
        "1":
          kind: LINE
          closed_at_sending_bus: true
          closed_at_receiving_bus: true
          reactance: {value: 10, unit: ohm}
load_flow:
  buses:
    G: {voltage: {value: 100, unit: kV}, phase_angle: {value: 0, unit: deg}}
`

func TestParseCase(t *testing.T) {
	c, err := ParseCase(strings.NewReader(smallCase))
	require.NoError(t, err)

	assert.Equal(t, dto.NewValue(100, "MVA"), c.Topology.BasePower)
	require.Len(t, c.Topology.SlackBuses, 1)
	assert.Equal(t, "G", c.Topology.SlackBuses[0].Name)
	require.Len(t, c.Topology.Branches, 1)
	line := c.Topology.Branches[0].ParallelElements["1"]
	assert.Equal(t, dto.KindLine, line.Kind)
	assert.True(t, line.ClosedAtReceivingBus)
	assert.Equal(t, dto.NewValue(10, "ohm"), line.Reactance)
	assert.Equal(t, 100.0, c.LoadFlow.Buses["G"].Voltage.Value)
	assert.Empty(t, c.Events)
}

func TestParseCaseUnknownField(t *testing.T) {
	_, err := ParseCase(strings.NewReader(smallCase + "solver: klu\n"))
	assert.Error(t, err)
}

func TestParseCaseEmpty(t *testing.T) {
	_, err := ParseCase(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseCaseValidation(t *testing.T) {
	doc := `
topology:
  buses:
    - name: L
      base_voltage: {value: 100, unit: kV}
    - name: L
      base_voltage: {value: 100, unit: kV}
  slack_buses:
    - name: G
      base_voltage: {value: 100, unit: kV}
  branches:
    - sending_bus: G
      receiving_bus: X
      parallel_elements:
        "1": {kind: CABLE}
`
	_, err := ParseCase(strings.NewReader(doc))
	require.ErrorIs(t, err, ErrCase)

	var c Case
	require.NoError(t, decode(strings.NewReader(doc), &c))
	// base power, duplicate bus, slack phase angle, unknown bus, unknown kind
	assert.Len(t, multierr.Errors(validateTopology(&c.Topology)), 5)
	assert.Contains(t, err.Error(), "duplicate bus L")
	assert.Contains(t, err.Error(), `unknown bus "X"`)
	assert.Contains(t, err.Error(), `unknown kind "CABLE"`)
}

func TestParseEvents(t *testing.T) {
	doc := `
name: bus fault
failures:
  - kind: BUS_SHORT_CIRCUIT
    bus_name: A
    fault_reactance: {value: 0, unit: ohm}
mitigations:
  - kind: BRANCH
    first_bus_name: A
    second_bus_name: B
    parallel_id: "1"
    breaker_position: SECOND_BUS
`
	seq, err := ParseEvents(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "bus fault", seq.Name)
	require.Len(t, seq.Failures, 1)
	assert.Equal(t, dto.EventBusShortCircuit, seq.Failures[0].Kind)
	require.NotNil(t, seq.Failures[0].FaultReactance)
	assert.Nil(t, seq.Failures[0].FaultResistance)
	require.Len(t, seq.Mitigations, 1)
	assert.Equal(t, dto.SecondBus, seq.Mitigations[0].BreakerPosition)
	assert.False(t, seq.Mitigations[0].BreakerClosed)
}

func TestParseEventsValidation(t *testing.T) {
	t.Run("no failure", func(t *testing.T) {
		_, err := ParseEvents(strings.NewReader("mitigations: []\n"))
		assert.ErrorIs(t, err, ErrEvent)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ParseEvents(strings.NewReader("failures:\n  - kind: EARTHQUAKE\n"))
		assert.ErrorIs(t, err, ErrEvent)
		assert.Contains(t, err.Error(), "EARTHQUAKE")
	})
}

func TestLoadEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fault.yaml")
	require.NoError(t, os.WriteFile(path, []byte("failures:\n  - kind: BUS_SHORT_CIRCUIT\n    bus_name: A\n"), 0o644))

	seq, err := LoadEvents(path)
	require.NoError(t, err)
	assert.Equal(t, path, seq.Name)

	_, err = LoadEvents(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCaseExample(t *testing.T) {
	c, err := LoadCase(filepath.Join("..", "..", "examples", "two_machines.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "two machines", c.Name)
	assert.Len(t, c.Topology.Buses, 3)
	assert.Len(t, c.Topology.Generators, 2)
	require.Len(t, c.Events, 2)
	assert.Len(t, c.Events[0].Mitigations, 3)

	_, err = LoadCase(filepath.Join("..", "..", "examples", "bus_fault_a.yaml"))
	assert.Error(t, err)
}
