package main

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-eeac/pkg/analysis"
	"github.com/edp1096/toy-eeac/pkg/element"
	"github.com/edp1096/toy-eeac/pkg/event"
	"github.com/edp1096/toy-eeac/pkg/network"
	"github.com/edp1096/toy-eeac/pkg/unit"
	"github.com/edp1096/toy-eeac/pkg/util"
)

const (
	basePower   = 100.0 // MVA
	baseVoltage = 100.0 // kV
)

func addBus(n *network.Network, name string, magnitude, angle float64, slack bool) (*network.Bus, error) {
	params := network.BusParams{
		Name:             name,
		BaseVoltage:      baseVoltage,
		VoltageMagnitude: &magnitude,
		PhaseAngle:       angle * math.Pi / 180,
	}
	if slack {
		busType := network.Slack
		params.Type = &busType
	}
	return n.AddBus(params)
}

func addLine(n *network.Network, first, second *network.Bus, parallelID string, r, x float64) error {
	line, err := element.NewLine(baseVoltage*baseVoltage/basePower, r, x, 0, 0)
	if err != nil {
		return err
	}
	br, err := n.GetBranch(first.GetName(), second.GetName())
	if err != nil {
		br = n.AddBranch(first, second)
	}
	br.SetElement(parallelID, line)
	return nil
}

func addGenerator(b *network.Bus, name string, generatorType element.GeneratorType, p, q, x float64) error {
	g, err := element.NewGenerator(element.GeneratorParams{
		Name:                     name,
		Type:                     generatorType,
		Connected:                true,
		BaseImpedance:            baseVoltage * baseVoltage / basePower,
		BasePower:                basePower,
		DirectTransientReactance: x,
		InertiaConstant:          5,
		ActivePower:              p,
		MaxActivePower:           2 * p,
		ReactivePower:            q,
	})
	if err != nil {
		return err
	}
	b.AddGenerator(g)
	return nil
}

func addLoad(b *network.Bus, name string, p, q float64) error {
	activeBase, err := unit.NewPUBase(basePower, unit.MW)
	if err != nil {
		return err
	}
	reactiveBase, err := unit.NewPUBase(basePower, unit.MVAR)
	if err != nil {
		return err
	}
	active, err := unit.NewValue(p, unit.MW, &activeBase)
	if err != nil {
		return err
	}
	reactive, err := unit.NewValue(q, unit.MVAR, &reactiveBase)
	if err != nil {
		return err
	}
	load, err := element.NewLoad(name, active, reactive, true)
	if err != nil {
		return err
	}
	b.AddLoad(load)
	return nil
}

// createNetwork builds two machines linked by a double line, with a load in
// the middle.
func createNetwork() (*network.Network, error) {
	n := network.NewNetwork(basePower)

	g, err := addBus(n, "G", 102, 0, true)
	if err != nil {
		return nil, err
	}
	a, err := addBus(n, "A", 99, -4, false)
	if err != nil {
		return nil, err
	}
	b, err := addBus(n, "B", 100, -2, false)
	if err != nil {
		return nil, err
	}

	for _, err := range []error{
		addLine(n, g, a, "1", 0, 10),
		addLine(n, a, b, "1", 1, 20),
		addLine(n, a, b, "2", 1, 20),
		addGenerator(g, "GEN1", element.Slack, 100, 20, 20),
		addGenerator(b, "GEN2", element.PV, 50, 5, 30),
		addLoad(a, "LOAD1", 150, 30),
	} {
		if err != nil {
			return nil, fmt.Errorf("error network creation: %v", err)
		}
	}

	return n, nil
}

func main() {
	logrus.SetLevel(logrus.WarnLevel)
	fmt.Print("===== Line Fault Position Sweep Example =====\n\n")

	fmt.Println("Generating network...")
	n, err := createNetwork()
	if err != nil {
		logrus.Fatalf("error network generation: %v", err)
	}
	fmt.Printf("  Buses: %d\n  Generators: %d\n\n", len(n.Buses()), len(n.Generators()))

	// Fault on line A-B 1, from 10% to 90% of its length
	var scenarios []analysis.Scenario
	for step := 1; step <= 9; step++ {
		position := float64(step) / 10
		fault, err := event.NewLineShortCircuit("A", "B", "1", position, 0, 0)
		if err != nil {
			logrus.Fatalf("error fault creation: %v", err)
		}
		scenarios = append(scenarios, analysis.Scenario{
			Name:     fmt.Sprintf("%.0f%%", position*100),
			Failures: []network.Event{fault},
			Mitigations: []network.Event{
				event.NewBranchEvent("A", "B", "1", event.FirstBus, false),
				event.NewBranchEvent("A", "B", "1", event.SecondBus, false),
				event.NewLineShortCircuitClearing("A", "B", "1"),
			},
		})
	}

	fmt.Println("Running scenarios...")
	results, err := analysis.RunScenarios(context.Background(), n, scenarios, 4)
	if err != nil {
		logrus.Fatalf("error running scenarios: %v", err)
	}
	fmt.Println()

	fmt.Println("Transfer Admittance GEN1-GEN2:")
	fmt.Print("=============================\n\n")
	fmt.Println("Position    Pre-fault               During fault            Post-fault")
	fmt.Println("----------------------------------------------------------------------------")

	for _, result := range results {
		fmt.Printf("%-8s", result.Scenario)
		for _, state := range network.NetworkStates {
			report, err := result.Analysis.Report(state)
			if err != nil {
				logrus.Fatalf("error reading report: %v", err)
			}
			y, _ := report.Admittance("GEN1", "GEN2")
			fmt.Printf("    %s<%sdeg", util.FormatMagnitude(y.Amplitude), util.FormatPhase(y.Angle))
		}
		fmt.Println()
	}

	fmt.Println("\nDone!")
}
