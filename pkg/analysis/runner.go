package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/edp1096/toy-eeac/pkg/network"
)

type Result struct {
	Scenario string
	// Skipped is set when every failure event hit a disconnected element.
	Skipped  bool
	Analysis *StateAnalysis
}

// RunScenarios analyzes every scenario on its own duplicate of base. The
// pre-fault view is computed once on base and shared. limit bounds the
// number of scenarios in flight, zero or less meaning no bound. Results keep
// the order of scenarios.
func RunScenarios(ctx context.Context, base *network.Network, scenarios []Scenario, limit int) ([]Result, error) {
	err := base.InitializeSimplifiedNetwork()
	if err != nil && !errors.Is(err, network.ErrSimplifiedNetworkExists) {
		return nil, fmt.Errorf("pre-fault network: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]Result, len(scenarios))
	for i, scenario := range scenarios {
		i, scenario := i, scenario
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			logger := log.WithFields(logrus.Fields{"scenario": scenario.Name})
			results[i].Scenario = scenario.Name

			a := NewStateAnalysis(scenario)
			err := a.Setup(base.Duplicate())
			if errors.Is(err, network.ErrNoRelevantFailureEvent) {
				logger.Warn("scenario skipped, no failure event hit a connected element")
				results[i].Skipped = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
			if err := a.Execute(); err != nil {
				return fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}

			results[i].Analysis = a
			logger.Info("scenario analyzed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
