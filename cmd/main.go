package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-eeac/internal/consts"
	"github.com/edp1096/toy-eeac/pkg/analysis"
	"github.com/edp1096/toy-eeac/pkg/netlist"
	"github.com/edp1096/toy-eeac/pkg/network"
	"github.com/edp1096/toy-eeac/pkg/util"
)

var (
	caseFile  = flag.String("case", "", "case file holding the topology and load flow (YAML or JSON)")
	events    = flag.String("events", "", "comma separated event sequence files, the case's own sequences when empty")
	parallel  = flag.Int("parallel", runtime.NumCPU(), "scenarios analyzed at the same time")
	logLevel  = flag.String("log-level", "warning", "log level (debug, info, warning, error)")
	frequency = flag.Float64("frequency", consts.DefaultFrequency, "network frequency in Hz")
	verbose   = flag.Bool("v", false, "print every step")
)

func loadScenarios(c *netlist.Case, files string) ([]analysis.Scenario, error) {
	sequences := c.Events
	if files != "" {
		sequences = nil
		for _, path := range strings.Split(files, ",") {
			seq, err := netlist.LoadEvents(strings.TrimSpace(path))
			if err != nil {
				return nil, err
			}
			sequences = append(sequences, *seq)
		}
	}

	scenarios := make([]analysis.Scenario, 0, len(sequences))
	for i, seq := range sequences {
		if seq.Name == "" {
			seq.Name = fmt.Sprintf("scenario %d", i+1)
		}
		s, err := analysis.NewScenario(seq)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func printNetwork(n *network.Network) {
	fmt.Printf("Base power: %s\n", util.FormatValueFactor(n.BasePower(), "VA"))
	fmt.Printf("Frequency: %s\n", util.FormatFrequency(n.Frequency()))
	fmt.Printf("Buses: %d, breakers: %d, generators: %d, loads: %d\n",
		len(n.Buses()), len(n.Breakers()), len(n.Generators()), len(n.Loads()))
	for i, b := range n.Buses() {
		fmt.Printf("Bus %d: %v\n", i, b)
	}
}

func printResults(results []analysis.Result) {
	fmt.Println("\nAnalysis Results:")
	fmt.Println("================")

	for _, result := range results {
		fmt.Printf("\nScenario: %s\n", result.Scenario)
		if result.Skipped {
			fmt.Println("  skipped, every failure event hits a disconnected element")
			continue
		}

		for _, report := range result.Analysis.Reports() {
			fmt.Printf("  %s\n", report.State)
			fmt.Printf("    Discarded buses: %s\n", util.FormatBusList(report.Discarded, 8))

			generators := make([]string, 0, len(report.RotorAngles))
			for name := range report.RotorAngles {
				generators = append(generators, name)
			}
			sort.Strings(generators)

			// Internal voltage
			for _, name := range generators {
				fmt.Printf("    %s\n", util.FormatMagnitudePhase(
					fmt.Sprintf("E(%s)", name), report.InternalVoltages[name], report.RotorAngles[name]))
			}

			// Reduced admittance
			for i, g1 := range generators {
				for _, g2 := range generators[i:] {
					if y, ok := report.Admittance(g1, g2); ok {
						fmt.Printf("    %s\n", util.FormatMagnitudePhase(
							fmt.Sprintf("Y(%s,%s)", g1, g2), y.Amplitude, y.Angle))
					}
				}
			}
		}
	}
}

func run(ctx context.Context) error {
	step := func(format string, args ...interface{}) {
		if *verbose {
			fmt.Printf("\n"+format+"\n", args...)
		}
	}

	// 1. Read case
	step("[1] Reading case file: %s", *caseFile)
	c, err := netlist.LoadCase(*caseFile)
	if err != nil {
		return fmt.Errorf("reading case: %w", err)
	}

	// 2. Create network
	step("[2] Creating network")
	n, err := network.CreateNetwork(c.Topology, c.LoadFlow)
	if err != nil {
		return fmt.Errorf("creating network: %w", err)
	}
	n.SetFrequency(*frequency)
	if *verbose {
		printNetwork(n)
	}

	// 3. Simplify pre-fault network
	step("[3] Simplifying pre-fault network")
	if err := n.InitializeSimplifiedNetwork(); err != nil {
		return fmt.Errorf("simplifying network: %w", err)
	}
	if *verbose {
		discarded, _ := n.GetDisconnectedBuses(network.PreFault)
		fmt.Printf("Discarded buses: %s\n", util.FormatBusList(discarded, 0))
	}

	// 4. Read events
	step("[4] Reading event sequences")
	scenarios, err := loadScenarios(c, *events)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no event sequence in %s, use -events", *caseFile)
	}
	step("Scenarios: %d", len(scenarios))

	// 5. Run scenarios
	step("[5] Analyzing scenarios (parallel=%d)", *parallel)
	results, err := analysis.RunScenarios(ctx, n, scenarios, *parallel)
	if err != nil {
		return err
	}

	// 6. Print result
	step("[6] Analysis completed - Results:")
	printResults(results)

	return nil
}

func main() {
	flag.Parse()
	if *caseFile == "" {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: toy-eeac -case <case_file> [-events a.yaml,b.yaml]")
			flag.PrintDefaults()
			os.Exit(2)
		}
		*caseFile = flag.Arg(0)
	}

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)

	if err := run(context.Background()); err != nil {
		logrus.Fatalf("Error: %v", err)
	}
}
