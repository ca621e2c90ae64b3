package netlist

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/edp1096/toy-eeac/pkg/dto"
)

var elementKinds = map[dto.ElementKind]bool{
	dto.KindLine:         true,
	dto.KindBreaker:      true,
	dto.KindTransformer1: true,
	dto.KindTransformer8: true,
}

var eventKinds = map[dto.EventKind]bool{
	dto.EventBusShortCircuit:          true,
	dto.EventLineShortCircuit:         true,
	dto.EventBreaker:                  true,
	dto.EventBranch:                   true,
	dto.EventBusShortCircuitClearing:  true,
	dto.EventLineShortCircuitClearing: true,
}

func validateTopology(t *dto.NetworkTopology) error {
	var errs error
	if t.BasePower.Unit == "" {
		errs = multierr.Append(errs, fmt.Errorf("base power without unit"))
	}

	names := make(map[string]bool)
	addName := func(name string) {
		switch {
		case name == "":
			errs = multierr.Append(errs, fmt.Errorf("bus without name"))
		case names[name]:
			errs = multierr.Append(errs, fmt.Errorf("duplicate bus %s", name))
		}
		names[name] = true
	}
	for _, b := range t.Buses {
		addName(b.Name)
	}
	for _, b := range t.SlackBuses {
		if b.PhaseAngle.Unit == "" {
			errs = multierr.Append(errs, fmt.Errorf("slack bus %s without phase angle", b.Name))
		}
		if !names[b.Name] {
			addName(b.Name)
		}
	}

	for i, br := range t.Branches {
		for _, name := range []string{br.SendingBus, br.ReceivingBus} {
			if !names[name] {
				errs = multierr.Append(errs, fmt.Errorf("branch %d: unknown bus %q", i, name))
			}
		}
		if len(br.ParallelElements) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("branch %d: no parallel element", i))
		}
		for id, e := range br.ParallelElements {
			if !elementKinds[e.Kind] {
				errs = multierr.Append(errs, fmt.Errorf("branch %d element %s: unknown kind %q", i, id, e.Kind))
			}
		}
	}

	return errs
}

func validateEvents(seq *dto.EventSequence) error {
	var errs error
	if len(seq.Failures) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("no failure event"))
	}
	for i, e := range append(append([]dto.Event{}, seq.Failures...), seq.Mitigations...) {
		if !eventKinds[e.Kind] {
			errs = multierr.Append(errs, fmt.Errorf("event %d: unknown kind %q", i, e.Kind))
		}
	}
	return errs
}
