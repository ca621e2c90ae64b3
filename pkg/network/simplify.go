package network

import (
	"fmt"
	"math/cmplx"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-eeac/internal/consts"
	"github.com/edp1096/toy-eeac/pkg/element"
	"github.com/edp1096/toy-eeac/pkg/matrix"
)

// SimplifiedNetwork is a breaker-free view of a network where every
// connected generator sits behind its transient reactance on a fictive bus.
type SimplifiedNetwork struct {
	*Network
	state NetworkState

	matrixOnce sync.Once
	matrix     *matrix.AdmittanceMatrix
	matrixErr  error
}

func (s *SimplifiedNetwork) State() NetworkState {
	return s.state
}

// AdmittanceMatrix is built on first use and shared afterwards.
func (s *SimplifiedNetwork) AdmittanceMatrix() (*matrix.AdmittanceMatrix, error) {
	s.matrixOnce.Do(func() {
		buses := s.Buses()
		nodes := make([]matrix.Node, len(buses))
		for i, b := range buses {
			nodes[i] = b
		}
		s.matrix, s.matrixErr = matrix.NewAdmittanceMatrix(nodes)
	})
	return s.matrix, s.matrixErr
}

// Simplify returns a simplified copy of the network and the names of the
// buses discarded on the way. The network itself is left untouched.
func (n *Network) Simplify(state NetworkState) (*SimplifiedNetwork, []string, error) {
	c := n.clone()
	logger := n.log.WithField("state", state.String())

	discarded := c.dropUnresolvedBuses()

	if err := c.coalesceBreakers(); err != nil {
		return nil, nil, err
	}

	retained, isolated := c.largestComponent()
	discarded = append(discarded, isolated...)

	slackBuses := 0
	for _, b := range c.Buses() {
		if b.Type() == Slack {
			slackBuses++
		}
	}
	switch {
	case slackBuses > 1:
		return nil, nil, fmt.Errorf("%w: %d in the main component", ErrMultipleSlackBus, slackBuses)
	case slackBuses == 0:
		return nil, nil, ErrNoSlackBus
	}

	c.prune(retained)

	fictive, err := c.addInternalVoltageBuses()
	if err != nil {
		return nil, nil, err
	}

	c.simplified = true
	logger.WithFields(logrus.Fields{
		"buses":     len(c.order),
		"fictive":   fictive,
		"discarded": len(discarded),
	}).Debug("network simplified")

	return &SimplifiedNetwork{Network: c, state: state}, discarded, nil
}

// dropUnresolvedBuses removes buses without a load flow voltage, and the
// breakers touching them.
func (n *Network) dropUnresolvedBuses() []string {
	var discarded []string
	dropped := make(map[int]bool)

	order := n.order[:0]
	for _, id := range n.order {
		b := n.arena.buses[id]
		if b.resolved {
			order = append(order, id)
			continue
		}
		dropped[id] = true
		discarded = append(discarded, b.CoupledBusNames()...)
	}
	n.order = order

	breakers := n.breakers[:0]
	for _, pb := range n.breakers {
		if dropped[n.arena.find(pb.first)] || dropped[n.arena.find(pb.second)] {
			continue
		}
		breakers = append(breakers, pb)
	}
	n.breakers = breakers

	return discarded
}

// coalesceBreakers merges the buses on both sides of every closed breaker,
// then removes all breakers.
func (n *Network) coalesceBreakers() error {
	for _, pb := range n.breakers {
		if !pb.IsClosed() {
			continue
		}
		first, second := n.arena.find(pb.first), n.arena.find(pb.second)
		if first == second {
			continue
		}
		if err := n.arena.buses[first].CoupleToBus(n.arena.buses[second]); err != nil {
			return err
		}
	}

	order := n.order[:0]
	for _, id := range n.order {
		if n.arena.find(id) == id {
			order = append(order, id)
		}
	}
	n.order = order
	n.breakers = nil
	n.couplingMap = nil

	return nil
}

// largestComponent keeps the biggest set of buses connected by closed
// branches. Ties go to the component found first in bus order.
func (n *Network) largestComponent() (map[int]bool, []string) {
	present := make(map[int]bool, len(n.order))
	for _, id := range n.order {
		present[id] = true
	}

	adjacency := make(map[int][]int)
	for _, id := range n.order {
		for _, br := range n.arena.buses[id].branches {
			if !br.IsClosed() {
				continue
			}
			a, b := n.arena.find(br.first), n.arena.find(br.second)
			other := a
			if a == id {
				other = b
			}
			if !present[other] {
				continue
			}
			adjacency[id] = append(adjacency[id], other)
		}
	}

	component := make(map[int]int)
	var sizes []int
	for _, id := range n.order {
		if _, ok := component[id]; ok {
			continue
		}
		label := len(sizes)
		sizes = append(sizes, 0)
		component[id] = label
		queue := []int{id}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			sizes[label]++
			for _, next := range adjacency[current] {
				if _, ok := component[next]; !ok {
					component[next] = label
					queue = append(queue, next)
				}
			}
		}
	}

	largest := -1
	for label, size := range sizes {
		if largest < 0 || size > sizes[largest] {
			largest = label
		}
	}

	retained := make(map[int]bool)
	var discarded []string
	order := n.order[:0]
	for _, id := range n.order {
		if label, ok := component[id]; ok && label == largest {
			retained[id] = true
			order = append(order, id)
			continue
		}
		discarded = append(discarded, n.arena.buses[id].CoupledBusNames()...)
	}
	n.order = order

	return retained, discarded
}

// prune keeps closed branches inside the retained buses, with only their
// closed elements, and connected generators and loads.
func (n *Network) prune(retained map[int]bool) {
	for _, id := range n.order {
		b := n.arena.buses[id]

		branches := b.branches[:0]
		for _, br := range b.branches {
			if !br.IsClosed() || !retained[n.arena.find(br.first)] || !retained[n.arena.find(br.second)] {
				continue
			}
			br.prune()
			branches = append(branches, br)
		}
		b.branches = branches

		generators := b.generators[:0]
		for _, g := range b.generators {
			if g.Connected {
				generators = append(generators, g)
			}
		}
		b.generators = generators

		loads := b.loads[:0]
		for _, l := range b.loads {
			if l.Connected {
				loads = append(loads, l)
			}
		}
		b.loads = loads
	}
}

// addInternalVoltageBuses moves every generator behind its transient
// reactance onto a fictive bus holding its internal voltage.
func (n *Network) addInternalVoltageBuses() (int, error) {
	var fictive []int
	for _, id := range n.order {
		b := n.arena.buses[id]
		if b.Type() == GenInternalVoltage {
			continue
		}
		if !b.hasBusType {
			b.setType(b.Type())
		}

		for _, g := range b.generators {
			x, err := g.DirectTransientReactancePU()
			if err != nil {
				return 0, err
			}

			e := g.InternalVoltage()
			magnitude := cmplx.Abs(e) * b.baseVoltage
			internal := GenInternalVoltage
			fb, err := newBus(BusParams{
				Name:             consts.InternalVoltagePrefix + g.Name,
				BaseVoltage:      b.baseVoltage,
				VoltageMagnitude: &magnitude,
				PhaseAngle:       cmplx.Phase(e),
				Type:             &internal,
			})
			if err != nil {
				return 0, fmt.Errorf("generator %s: %w", g.Name, err)
			}
			fictive = append(fictive, n.arena.add(fb))
			fb.AddGenerator(g)

			baseImpedance := b.baseVoltage * b.baseVoltage / n.basePower
			line, err := element.NewLine(baseImpedance, 0, x*baseImpedance, 0, 0)
			if err != nil {
				return 0, fmt.Errorf("generator %s: %w", g.Name, err)
			}
			n.AddBranch(fb, b).SetElement(consts.FictiveBranchID, line)
		}
		b.generators = nil
	}
	n.order = append(n.order, fictive...)

	return len(fictive), nil
}
