package event

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-eeac/internal/consts"
	"github.com/edp1096/toy-eeac/pkg/element"
	"github.com/edp1096/toy-eeac/pkg/network"
)

// machineEpsilon replaces a zero fault resistance so that the fault
// admittance stays finite.
var machineEpsilon = math.Nextafter(1, 2) - 1

type BusShortCircuit struct {
	BusName         string
	FaultResistance float64
	FaultReactance  float64
}

func NewBusShortCircuit(busName string, resistance, reactance float64) *BusShortCircuit {
	if resistance == 0 {
		resistance = machineEpsilon
	}
	return &BusShortCircuit{BusName: busName, FaultResistance: resistance, FaultReactance: reactance}
}

// ApplyToNetwork grounds the bus through a fictive load. A bus without a
// load flow voltage, or one already discarded from the pre-fault network, is
// left untouched and reported as irrelevant.
func (e *BusShortCircuit) ApplyToNetwork(n *network.Network) (bool, error) {
	bus, err := n.GetBus(e.BusName)
	if err != nil {
		return false, err
	}
	if !bus.IsResolved() || discardedBeforeFault(n, bus) {
		log.WithField("event", e.String()).Warn("event happening on a disconnected bus")
		return false, nil
	}
	admittance := 1 / complex(e.FaultResistance, e.FaultReactance)
	bus.AddLoad(element.NewFictiveLoad(consts.FictiveLoadPrefix+bus.GetName(), admittance))
	return true, nil
}

func discardedBeforeFault(n *network.Network, bus *network.Bus) bool {
	discarded, err := n.GetDisconnectedBuses(network.PreFault)
	if err != nil {
		return false
	}
	for _, name := range discarded {
		if bus.HasName(name) {
			return true
		}
	}
	return false
}

func (e *BusShortCircuit) NearestBus(n *network.Network) (*network.Bus, error) {
	return n.GetBus(e.BusName)
}

func (e *BusShortCircuit) String() string {
	return fmt.Sprintf("Bus short circuit: Bus=[%s] R=[%g] X=[%g]", e.BusName, e.FaultResistance, e.FaultReactance)
}

type BusShortCircuitClearing struct {
	BusName string
}

func NewBusShortCircuitClearing(busName string) *BusShortCircuitClearing {
	return &BusShortCircuitClearing{BusName: busName}
}

// ApplyToNetwork removes the fictive load of the bus fault, if any.
func (e *BusShortCircuitClearing) ApplyToNetwork(n *network.Network) (bool, error) {
	bus, err := n.GetBus(e.BusName)
	if err != nil {
		return false, err
	}
	return bus.RemoveLoad(consts.FictiveLoadPrefix + bus.GetName()), nil
}

func (e *BusShortCircuitClearing) String() string {
	return fmt.Sprintf("Bus short-circuit clearing event: Bus=[%s]", e.BusName)
}
