package event

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/edp1096/toy-eeac/pkg/dto"
	"github.com/edp1096/toy-eeac/pkg/network"
	"github.com/edp1096/toy-eeac/pkg/unit"
)

var log = logrus.WithField("component", "event")

var (
	ErrImpedanceFault          = errors.New("event: impedance faults are not supported")
	ErrUnexpectedBranchElement = errors.New("event: unexpected element in branch")
	ErrNotImplemented          = errors.New("event: not implemented")
	ErrFaultPosition           = errors.New("event: fault position must be strictly between 0 and 1")
	ErrUnknownEvent            = errors.New("event: unknown event kind")
	ErrEventKind               = errors.New("event: event in the wrong sequence")
)

// FailureEvent is an event that starts a fault.
type FailureEvent interface {
	network.Event
	NearestBus(n *network.Network) (*network.Bus, error)
}

// CreateEvent builds a model event from its exchange record. Fault
// impedances default to zero.
func CreateEvent(d dto.Event) (network.Event, error) {
	switch d.Kind {
	case dto.EventBusShortCircuit:
		r, x, err := faultImpedance(d)
		if err != nil {
			return nil, err
		}
		return NewBusShortCircuit(d.BusName, r, x), nil
	case dto.EventLineShortCircuit:
		r, x, err := faultImpedance(d)
		if err != nil {
			return nil, err
		}
		return NewLineShortCircuit(d.FirstBusName, d.SecondBusName, d.ParallelID, d.FaultPosition, r, x)
	case dto.EventBreaker:
		return NewBreakerEvent(d.FirstBusName, d.SecondBusName, d.ParallelID, d.BreakerClosed), nil
	case dto.EventBranch:
		position := FirstBus
		switch d.BreakerPosition {
		case dto.FirstBus:
		case dto.SecondBus:
			position = SecondBus
		default:
			return nil, fmt.Errorf("branch event: unknown breaker position %q", d.BreakerPosition)
		}
		return NewBranchEvent(d.FirstBusName, d.SecondBusName, d.ParallelID, position, d.BreakerClosed), nil
	case dto.EventBusShortCircuitClearing:
		return NewBusShortCircuitClearing(d.BusName), nil
	case dto.EventLineShortCircuitClearing:
		return NewLineShortCircuitClearing(d.FirstBusName, d.SecondBusName, d.ParallelID), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, d.Kind)
	}
}

// CreateEvents builds the failure and mitigation events of a sequence. Every
// failure must be a FailureEvent. Errors are collected over the sequence.
func CreateEvents(seq dto.EventSequence) ([]network.Event, []network.Event, error) {
	var errs error

	failures := make([]network.Event, 0, len(seq.Failures))
	for i, d := range seq.Failures {
		e, err := CreateEvent(d)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failure %d: %w", i, err))
			continue
		}
		if _, ok := e.(FailureEvent); !ok {
			errs = multierr.Append(errs, fmt.Errorf("failure %d: %w: %s", i, ErrEventKind, d.Kind))
			continue
		}
		failures = append(failures, e)
	}

	mitigations := make([]network.Event, 0, len(seq.Mitigations))
	for i, d := range seq.Mitigations {
		e, err := CreateEvent(d)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mitigation %d: %w", i, err))
			continue
		}
		if _, ok := e.(FailureEvent); ok {
			errs = multierr.Append(errs, fmt.Errorf("mitigation %d: %w: %s", i, ErrEventKind, d.Kind))
			continue
		}
		mitigations = append(mitigations, e)
	}

	if errs != nil {
		return nil, nil, errs
	}
	return failures, mitigations, nil
}

func faultImpedance(d dto.Event) (float64, float64, error) {
	var r, x float64
	var err error
	if d.FaultResistance != nil {
		if r, err = unit.ConvertDTO(*d.FaultResistance, unit.Ohm); err != nil {
			return 0, 0, fmt.Errorf("fault resistance: %w", err)
		}
	}
	if d.FaultReactance != nil {
		if x, err = unit.ConvertDTO(*d.FaultReactance, unit.Ohm); err != nil {
			return 0, 0, fmt.Errorf("fault reactance: %w", err)
		}
	}
	return r, x, nil
}
