package analysis

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-eeac/internal/consts"
	"github.com/edp1096/toy-eeac/pkg/dto"
	"github.com/edp1096/toy-eeac/pkg/event"
	"github.com/edp1096/toy-eeac/pkg/network"
)

// Scenario is a named sequence of failure and mitigation events.
type Scenario struct {
	Name        string
	Failures    []network.Event
	Mitigations []network.Event
}

func NewScenario(seq dto.EventSequence) (Scenario, error) {
	failures, mitigations, err := event.CreateEvents(seq)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", seq.Name, err)
	}
	return Scenario{Name: seq.Name, Failures: failures, Mitigations: mitigations}, nil
}

// StateReport holds the quantities an equal-area criterion needs for one
// network state. Angles are in radians, magnitudes in pu.
type StateReport struct {
	State            network.NetworkState
	Admittances      map[[2]string]network.Admittance
	RotorAngles      map[string]float64
	InternalVoltages map[string]float64
	Discarded        []string
}

// Admittance looks a generator pair up in either order.
func (r *StateReport) Admittance(generator1, generator2 string) (network.Admittance, bool) {
	if y, ok := r.Admittances[[2]string{generator1, generator2}]; ok {
		return y, true
	}
	y, ok := r.Admittances[[2]string{generator2, generator1}]
	return y, ok
}

type StateAnalysis struct {
	BaseAnalysis
	scenario Scenario
	reports  []*StateReport
}

func NewStateAnalysis(scenario Scenario) *StateAnalysis {
	return &StateAnalysis{
		BaseAnalysis: *NewBaseAnalysis(),
		scenario:     scenario,
	}
}

func (sa *StateAnalysis) Scenario() Scenario { return sa.scenario }

// Setup derives the three states of the network for the scenario. The
// network is modified, so callers pass a duplicate.
func (sa *StateAnalysis) Setup(n *network.Network) error {
	sa.Network = n

	err := n.InitializeSimplifiedNetwork()
	if err != nil && !errors.Is(err, network.ErrSimplifiedNetworkExists) {
		return fmt.Errorf("pre-fault network: %w", err)
	}

	return n.ProvideEvents(sa.scenario.Failures, sa.scenario.Mitigations)
}

func (sa *StateAnalysis) Execute() error {
	if sa.Network == nil {
		return fmt.Errorf("network not set")
	}

	sa.results = make(map[string][]float64)
	sa.reports = sa.reports[:0]
	for _, state := range network.NetworkStates {
		report, err := sa.analyzeState(state)
		if err != nil {
			return fmt.Errorf("%s: %w", state, err)
		}
		sa.reports = append(sa.reports, report)
	}

	return nil
}

func (sa *StateAnalysis) analyzeState(state network.NetworkState) (*StateReport, error) {
	simplified, err := sa.Network.GetState(state)
	if err != nil {
		return nil, err
	}
	discarded, err := sa.Network.GetDisconnectedBuses(state)
	if err != nil {
		return nil, err
	}

	report := &StateReport{
		State:            state,
		Admittances:      make(map[[2]string]network.Admittance),
		RotorAngles:      make(map[string]float64),
		InternalVoltages: make(map[string]float64),
		Discarded:        discarded,
	}
	solution := make(map[string]complex128)

	generators := simplified.Generators()
	for i, g1 := range generators {
		e := g1.InternalVoltage()
		report.RotorAngles[g1.Name] = g1.RotorAngle()
		report.InternalVoltages[g1.Name] = cmplx.Abs(e)
		solution[fmt.Sprintf("E(%s)", g1.Name)] = e

		for _, g2 := range generators[i:] {
			amplitude, angle, err := sa.Network.GetAdmittance(
				consts.InternalVoltagePrefix+g1.Name, consts.InternalVoltagePrefix+g2.Name, state)
			if err != nil {
				return nil, fmt.Errorf("admittance between %s and %s: %w", g1.Name, g2.Name, err)
			}
			report.Admittances[[2]string{g1.Name, g2.Name}] = network.Admittance{Amplitude: amplitude, Angle: angle}
			solution[fmt.Sprintf("Y(%s,%s)", g1.Name, g2.Name)] = cmplx.Rect(amplitude, angle)
		}
	}

	sa.StoreStateResult(state, solution)
	log.WithFields(logrus.Fields{
		"scenario":   sa.scenario.Name,
		"state":      state.String(),
		"generators": len(generators),
		"discarded":  len(discarded),
	}).Debug("state analyzed")

	return report, nil
}

// Report returns the report of a state once Execute has run.
func (sa *StateAnalysis) Report(state network.NetworkState) (*StateReport, error) {
	for _, r := range sa.reports {
		if r.State == state {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", network.ErrNetworkState, state)
}

func (sa *StateAnalysis) Reports() []*StateReport {
	return sa.reports
}
