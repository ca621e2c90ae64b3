package event

import (
	"fmt"

	"github.com/edp1096/toy-eeac/pkg/element"
	"github.com/edp1096/toy-eeac/pkg/network"
)

// BreakerPosition is the end of a line or transformer a branch event acts on.
type BreakerPosition int

const (
	FirstBus BreakerPosition = iota
	SecondBus
)

func (p BreakerPosition) String() string {
	if p == SecondBus {
		return "SECOND_BUS"
	}
	return "FIRST_BUS"
}

func (p BreakerPosition) opposite() BreakerPosition {
	if p == SecondBus {
		return FirstBus
	}
	return SecondBus
}

type BranchEvent struct {
	FirstBusName  string
	SecondBusName string
	ParallelID    string
	Position      BreakerPosition
	Closed        bool
}

func NewBranchEvent(firstBusName, secondBusName, parallelID string, position BreakerPosition, closed bool) *BranchEvent {
	return &BranchEvent{
		FirstBusName:  firstBusName,
		SecondBusName: secondBusName,
		ParallelID:    parallelID,
		Position:      position,
		Closed:        closed,
	}
}

// ApplyToNetwork opens one end of a line or transformer and drops the
// fictive load a line fault left on that end.
func (e *BranchEvent) ApplyToNetwork(n *network.Network) (bool, error) {
	if e.Closed {
		return false, fmt.Errorf("%w: closing a line or transformer", ErrNotImplemented)
	}

	br, err := n.GetBranch(e.FirstBusName, e.SecondBusName)
	if err != nil {
		return false, err
	}
	el, err := br.Element(e.ParallelID)
	if err != nil {
		return false, err
	}

	var firstEnd, secondEnd *bool
	switch el := el.(type) {
	case *element.Line:
		firstEnd, secondEnd = &el.ClosedAtFirstBus, &el.ClosedAtSecondBus
	case *element.Transformer:
		firstEnd, secondEnd = &el.ClosedAtFirstBus, &el.ClosedAtSecondBus
	default:
		return false, fmt.Errorf("%w: %s at %s between %s and %s",
			ErrUnexpectedBranchElement, el.GetType(), e.ParallelID, e.FirstBusName, e.SecondBusName)
	}

	position := e.Position
	if !br.FirstBus().HasName(e.FirstBusName) {
		position = position.opposite()
	}

	first, second := br.FirstBus(), br.SecondBus()
	end, bus, load := firstEnd, first, lineLoadName(e.ParallelID, second, first)
	if position == SecondBus {
		end, bus, load = secondEnd, second, lineLoadName(e.ParallelID, first, second)
	}
	if !*end {
		return false, fmt.Errorf("%w: %s at %s", network.ErrLineAlreadyOpen, e.ParallelID, bus.GetName())
	}
	*end = false
	bus.RemoveLoad(load)

	return true, nil
}

func (e *BranchEvent) String() string {
	return fmt.Sprintf("Branch event: Branch=[%s, %s] Parallel ID=[%s] Breaker position=[%s] Breaker closed=[%t]",
		e.FirstBusName, e.SecondBusName, e.ParallelID, e.Position, e.Closed)
}

type BreakerEvent struct {
	FirstBusName  string
	SecondBusName string
	ParallelID    string
	Closed        bool
}

func NewBreakerEvent(firstBusName, secondBusName, parallelID string, closed bool) *BreakerEvent {
	return &BreakerEvent{FirstBusName: firstBusName, SecondBusName: secondBusName, ParallelID: parallelID, Closed: closed}
}

func (e *BreakerEvent) ApplyToNetwork(n *network.Network) (bool, error) {
	if err := n.ChangeBreakerPosition(e.FirstBusName, e.SecondBusName, e.ParallelID, e.Closed); err != nil {
		return false, err
	}
	return true, nil
}

func (e *BreakerEvent) String() string {
	return fmt.Sprintf("Breaker event: Buses=[%s, %s] Parallel ID=[%s] Breaker closed=[%t]",
		e.FirstBusName, e.SecondBusName, e.ParallelID, e.Closed)
}
