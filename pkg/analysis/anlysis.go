package analysis

import (
	"math"
	"math/cmplx"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-eeac/pkg/network"
)

var log = logrus.WithField("component", "analysis")

type Analysis interface {
	Setup(n *network.Network) error
	Execute() error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	Network *network.Network
	results map[string][]float64 // key: variable name, value: result by state
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

// StoreStateResult appends one state's phasors as magnitude and phase in
// degrees. Each state is stored once.
func (a *BaseAnalysis) StoreStateResult(state network.NetworkState, solution map[string]complex128) {
	for _, stored := range a.results["STATE"] {
		if network.NetworkState(stored) == state {
			return
		}
	}
	a.results["STATE"] = append(a.results["STATE"], float64(state))

	for name, value := range solution {
		// Magnitude
		magName := name + "_MAG"
		a.results[magName] = append(a.results[magName], cmplx.Abs(value))

		// Phase - degree
		phaseName := name + "_PHASE"
		a.results[phaseName] = append(a.results[phaseName], cmplx.Phase(value)*180.0/math.Pi)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}
