package event

import (
	"fmt"

	"github.com/edp1096/toy-eeac/internal/consts"
	"github.com/edp1096/toy-eeac/pkg/element"
	"github.com/edp1096/toy-eeac/pkg/network"
)

// LineShortCircuit is a metallic fault on a line, FaultPosition being the
// distance from the first bus as a fraction of the line length.
type LineShortCircuit struct {
	FirstBusName    string
	SecondBusName   string
	ParallelID      string
	FaultPosition   float64
	FaultResistance float64
	FaultReactance  float64
}

func NewLineShortCircuit(firstBusName, secondBusName, parallelID string, position, resistance, reactance float64) (*LineShortCircuit, error) {
	if position <= 0 || position >= 1 {
		return nil, fmt.Errorf("%w: %g on line %s - %s", ErrFaultPosition, position, firstBusName, secondBusName)
	}
	return &LineShortCircuit{
		FirstBusName:    firstBusName,
		SecondBusName:   secondBusName,
		ParallelID:      parallelID,
		FaultPosition:   position,
		FaultResistance: resistance,
		FaultReactance:  reactance,
	}, nil
}

// ApplyToNetwork splits the line at the fault into two fictive loads, one at
// each closed end. A disconnected line is left untouched and reported as
// irrelevant.
func (e *LineShortCircuit) ApplyToNetwork(n *network.Network) (bool, error) {
	if e.FaultResistance != 0 || e.FaultReactance != 0 {
		return false, fmt.Errorf("%w: %s", ErrImpedanceFault, e)
	}

	br, line, reversed, err := findLine(n, e.FirstBusName, e.SecondBusName, e.ParallelID)
	if err != nil {
		return false, err
	}

	if !line.IsClosed() {
		if !line.IsOpen() {
			log.WithField("event", e.String()).Warn("event happening on a disconnected line")
			return false, nil
		}
		log.WithField("event", e.String()).Warn("short circuit on a line open on one side only")
	}

	position := e.FaultPosition
	if reversed {
		position = 1 - position
	}

	first, second := br.FirstBus(), br.SecondBus()
	y := line.Admittance()
	if line.ClosedAtFirstBus {
		if load := y / complex(position, 0); load != 0 {
			first.AddLoad(element.NewFictiveLoad(lineLoadName(e.ParallelID, second, first), load))
		}
	}
	if line.ClosedAtSecondBus {
		if load := y / complex(1-position, 0); load != 0 {
			second.AddLoad(element.NewFictiveLoad(lineLoadName(e.ParallelID, first, second), load))
		}
	}
	line.MetalShortCircuited = true

	return true, nil
}

// NearestBus is the end of the line closest to the fault.
func (e *LineShortCircuit) NearestBus(n *network.Network) (*network.Bus, error) {
	br, err := n.GetBranch(e.FirstBusName, e.SecondBusName)
	if err != nil {
		return nil, err
	}
	position := e.FaultPosition
	if !br.FirstBus().HasName(e.FirstBusName) {
		position = 1 - position
	}
	if position <= 0.5 {
		return br.FirstBus(), nil
	}
	return br.SecondBus(), nil
}

func (e *LineShortCircuit) String() string {
	return fmt.Sprintf("Line short circuit: Branch=[%s, %s] Parallel ID=[%s] Position=[%g] R=[%g] X=[%g]",
		e.FirstBusName, e.SecondBusName, e.ParallelID, e.FaultPosition, e.FaultResistance, e.FaultReactance)
}

type LineShortCircuitClearing struct {
	FirstBusName  string
	SecondBusName string
	ParallelID    string
}

func NewLineShortCircuitClearing(firstBusName, secondBusName, parallelID string) *LineShortCircuitClearing {
	return &LineShortCircuitClearing{FirstBusName: firstBusName, SecondBusName: secondBusName, ParallelID: parallelID}
}

// ApplyToNetwork removes the fictive loads of the line fault and clears the
// short circuit.
func (e *LineShortCircuitClearing) ApplyToNetwork(n *network.Network) (bool, error) {
	br, line, _, err := findLine(n, e.FirstBusName, e.SecondBusName, e.ParallelID)
	if err != nil {
		return false, err
	}
	first, second := br.FirstBus(), br.SecondBus()
	removed := first.RemoveLoad(lineLoadName(e.ParallelID, second, first))
	removed = second.RemoveLoad(lineLoadName(e.ParallelID, first, second)) || removed
	cleared := line.MetalShortCircuited
	line.MetalShortCircuited = false
	return removed || cleared, nil
}

func (e *LineShortCircuitClearing) String() string {
	return fmt.Sprintf("Line short-circuit clearing event: Branch=[%s, %s] Parallel ID=[%s]",
		e.FirstBusName, e.SecondBusName, e.ParallelID)
}

// findLine also reports whether the bus order of the branch is the reverse
// of the one given.
func findLine(n *network.Network, firstBusName, secondBusName, parallelID string) (*network.Branch, *element.Line, bool, error) {
	br, err := n.GetBranch(firstBusName, secondBusName)
	if err != nil {
		return nil, nil, false, err
	}
	e, err := br.Element(parallelID)
	if err != nil {
		return nil, nil, false, err
	}
	line, ok := e.(*element.Line)
	if !ok {
		return nil, nil, false, fmt.Errorf("%w: %s at %s between %s and %s, expected LINE",
			ErrUnexpectedBranchElement, e.GetType(), parallelID, firstBusName, secondBusName)
	}
	return br, line, !br.FirstBus().HasName(firstBusName), nil
}

// lineLoadName names the fictive load placed on bus at for a fault on the
// line coming from bus from.
func lineLoadName(parallelID string, from, at *network.Bus) string {
	return fmt.Sprintf("%s%s_%s_%s", consts.FictiveLoadPrefix, parallelID, from.GetName(), at.GetName())
}
