package network

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/edp1096/toy-eeac/internal/consts"
	"github.com/edp1096/toy-eeac/pkg/element"
)

var log = logrus.WithField("component", "network")

// Event changes a network. The boolean result reports whether the event had
// an effect on a live element.
type Event interface {
	ApplyToNetwork(n *Network) (bool, error)
	String() string
}

type view struct {
	network   *SimplifiedNetwork
	discarded []string
}

// Admittance is an entry of the reduced admittance matrix in polar form.
type Admittance struct {
	Amplitude float64
	Angle     float64
}

type Network struct {
	id         uuid.UUID
	log        *logrus.Entry
	arena      *arena
	order      []int
	breakers   []*ParallelBreakers
	basePower  float64
	frequency  float64
	simplified bool

	failureEvents    []Event
	mitigationEvents []Event
	views            map[NetworkState]*view

	mu              sync.Mutex
	couplingMap     map[int]map[int]struct{}
	voltageProducts map[[2]string]float64
	admittances     map[NetworkState]map[[2]string]Admittance
}

// NewNetwork creates an empty network. basePower is in MVA.
func NewNetwork(basePower float64) *Network {
	n := &Network{
		id:        uuid.New(),
		arena:     newArena(),
		basePower: basePower,
		frequency: consts.DefaultFrequency,
	}
	n.reset()
	return n
}

func (n *Network) reset() {
	n.log = log.WithField("network", n.id.String())
	n.arena.voltageChanged = n.invalidateVoltageProducts
	n.views = make(map[NetworkState]*view)
	n.admittances = make(map[NetworkState]map[[2]string]Admittance)
	for _, state := range NetworkStates {
		n.admittances[state] = make(map[[2]string]Admittance)
	}
}

func (n *Network) ID() uuid.UUID          { return n.id }
func (n *Network) BasePower() float64     { return n.basePower }
func (n *Network) Frequency() float64     { return n.frequency }
func (n *Network) SetFrequency(f float64) { n.frequency = f }

// Pulse is the angular frequency in rad/s.
func (n *Network) Pulse() float64 {
	return 2 * math.Pi * n.frequency
}

func (n *Network) FailureEvents() []Event    { return n.failureEvents }
func (n *Network) MitigationEvents() []Event { return n.mitigationEvents }

func (n *Network) AddBus(params BusParams) (*Bus, error) {
	if _, err := n.GetBus(params.Name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBus, params.Name)
	}
	b, err := newBus(params)
	if err != nil {
		return nil, err
	}
	n.order = append(n.order, n.arena.add(b))
	return b, nil
}

func (n *Network) AddBranch(first, second *Bus) *Branch {
	br := &Branch{
		arena:    n.arena,
		first:    first.id,
		second:   second.id,
		elements: make(map[string]element.BranchElement),
	}
	first.addBranch(br)
	second.addBranch(br)
	return br
}

func (n *Network) AddParallelBreakers(first, second *Bus) *ParallelBreakers {
	pb := &ParallelBreakers{
		arena:    n.arena,
		first:    first.id,
		second:   second.id,
		breakers: make(map[string]*element.Breaker),
	}
	n.breakers = append(n.breakers, pb)
	n.mu.Lock()
	n.couplingMap = nil
	n.mu.Unlock()
	return pb
}

// Buses lists the buses in network order.
func (n *Network) Buses() []*Bus {
	buses := make([]*Bus, len(n.order))
	for i, id := range n.order {
		buses[i] = n.arena.buses[id]
	}
	return buses
}

func (n *Network) Breakers() []*ParallelBreakers {
	return n.breakers
}

func (n *Network) Generators() []*element.Generator {
	var generators []*element.Generator
	for _, b := range n.Buses() {
		generators = append(generators, b.generators...)
	}
	return generators
}

func (n *Network) Loads() []*element.Load {
	var loads []*element.Load
	for _, b := range n.Buses() {
		loads = append(loads, b.loads...)
	}
	return loads
}

func (n *Network) CapacitorBanks() []*element.CapacitorBank {
	var banks []*element.CapacitorBank
	for _, b := range n.Buses() {
		banks = append(banks, b.banks...)
	}
	return banks
}

// GetBus matches the bus name or any name coupled into it.
func (n *Network) GetBus(name string) (*Bus, error) {
	for _, b := range n.Buses() {
		if b.HasName(name) {
			return b, nil
		}
	}
	return nil, notFound("bus", name)
}

// GetBusByID resolves a logical bus id, following merges.
func (n *Network) GetBusByID(id int) (*Bus, error) {
	if id < 0 || id >= len(n.arena.buses) {
		return nil, notFound("bus", fmt.Sprintf("#%d", id))
	}
	return n.arena.bus(id), nil
}

func (n *Network) GetBranch(firstBusName, secondBusName string) (*Branch, error) {
	first, err := n.GetBus(firstBusName)
	if err != nil {
		return nil, notFound("branch", fmt.Sprintf("[%s - %s]", firstBusName, secondBusName))
	}
	second, err := n.GetBus(secondBusName)
	if err != nil {
		return nil, notFound("branch", fmt.Sprintf("[%s - %s]", firstBusName, secondBusName))
	}
	for _, br := range first.branches {
		a, b := br.FirstBus(), br.SecondBus()
		if (a == first && b == second) || (a == second && b == first) {
			return br, nil
		}
	}
	return nil, notFound("branch", fmt.Sprintf("[%s - %s]", firstBusName, secondBusName))
}

// GetParallelBreakers matches the current bus names in either order.
func (n *Network) GetParallelBreakers(firstBusName, secondBusName string) (*ParallelBreakers, error) {
	if n.simplified {
		return nil, fmt.Errorf("%w: [%s - %s]", ErrSimplifiedNetworkBreaker, firstBusName, secondBusName)
	}
	for _, pb := range n.breakers {
		a, b := pb.FirstBus().GetName(), pb.SecondBus().GetName()
		if (a == firstBusName && b == secondBusName) || (a == secondBusName && b == firstBusName) {
			return pb, nil
		}
	}
	return nil, notFound("breaker", fmt.Sprintf("[%s - %s]", firstBusName, secondBusName))
}

func (n *Network) GetGenerator(name string) (*element.Generator, error) {
	for _, g := range n.Generators() {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, notFound("generator", name)
}

func (n *Network) buildCouplingMap() {
	if n.couplingMap != nil {
		return
	}
	n.couplingMap = make(map[int]map[int]struct{})
	for _, pb := range n.breakers {
		if pb.IsClosed() {
			n.couple(pb.first, pb.second)
		}
	}
}

func (n *Network) couple(a, b int) {
	if n.couplingMap[a] == nil {
		n.couplingMap[a] = make(map[int]struct{})
	}
	if n.couplingMap[b] == nil {
		n.couplingMap[b] = make(map[int]struct{})
	}
	n.couplingMap[a][b] = struct{}{}
	n.couplingMap[b][a] = struct{}{}
}

// GetCoupledBuses returns the buses reachable from b through closed
// breakers, b included, in network order.
func (n *Network) GetCoupledBuses(b *Bus) []*Bus {
	n.mu.Lock()
	n.buildCouplingMap()
	seen := map[int]bool{b.id: true}
	queue := []int{b.id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for next := range n.couplingMap[current] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	n.mu.Unlock()

	var coupled []*Bus
	for _, id := range n.order {
		if seen[id] {
			coupled = append(coupled, n.arena.buses[id])
		}
	}
	return coupled
}

func (n *Network) ChangeBreakerPosition(firstBusName, secondBusName, parallelID string, closed bool) error {
	pb, err := n.GetParallelBreakers(firstBusName, secondBusName)
	if err != nil {
		return err
	}
	breaker, err := pb.Breaker(parallelID)
	if err != nil {
		return err
	}
	if breaker.Closed == closed {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.buildCouplingMap()
	breaker.Closed = closed
	if closed {
		n.couple(pb.first, pb.second)
	} else if !pb.IsClosed() {
		delete(n.couplingMap[pb.first], pb.second)
		delete(n.couplingMap[pb.second], pb.first)
	}
	return nil
}

// GetBusesInPerimeter returns the buses at most diameter closed branches
// away from b, b included.
func (n *Network) GetBusesInPerimeter(b *Bus, diameter int) []*Bus {
	buses := []*Bus{b}
	seen := map[*Bus]bool{b: true}
	frontier := []*Bus{b}
	for depth := 0; depth < diameter && len(frontier) > 0; depth++ {
		var next []*Bus
		for _, current := range frontier {
			for _, br := range current.branches {
				if !br.IsClosed() {
					continue
				}
				other := br.Other(current)
				if !seen[other] {
					seen[other] = true
					next = append(next, other)
					buses = append(buses, other)
				}
			}
		}
		frontier = next
	}
	return buses
}

func (n *Network) computeVoltageProducts() {
	if n.voltageProducts != nil {
		return
	}
	generators := n.Generators()
	n.voltageProducts = make(map[[2]string]float64, len(generators)*len(generators))
	for i, g1 := range generators {
		for _, g2 := range generators[i:] {
			product := cmplx.Abs(g1.InternalVoltage() * g2.InternalVoltage())
			n.voltageProducts[[2]string{g1.Name, g2.Name}] = product
			n.voltageProducts[[2]string{g2.Name, g1.Name}] = product
		}
	}
}

func (n *Network) invalidateVoltageProducts() {
	n.mu.Lock()
	n.voltageProducts = nil
	n.mu.Unlock()
}

// GetGeneratorVoltageAmplitudeProduct returns |E1·E2| in pu.
func (n *Network) GetGeneratorVoltageAmplitudeProduct(generator1, generator2 string) (float64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.computeVoltageProducts()
	product, ok := n.voltageProducts[[2]string{generator1, generator2}]
	if !ok {
		return 0, notFound("generator", fmt.Sprintf("%s or %s", generator1, generator2))
	}
	return product, nil
}

// Duplicate deep-copies the network without its events and state views. An
// already computed pre-fault view is shared with the copy.
func (n *Network) Duplicate() *Network {
	c := n.clone()
	if pre, ok := n.views[PreFault]; ok {
		c.views[PreFault] = pre
	}
	return c
}

func (n *Network) clone() *Network {
	c := &Network{
		id:         uuid.New(),
		arena:      &arena{parent: make([]int, len(n.arena.parent)), buses: make([]*Bus, len(n.arena.buses))},
		order:      make([]int, len(n.order)),
		basePower:  n.basePower,
		frequency:  n.frequency,
		simplified: n.simplified,
	}
	c.reset()
	copy(c.arena.parent, n.arena.parent)
	copy(c.order, n.order)

	for id, b := range n.arena.buses {
		bc := b.clone()
		bc.arena = c.arena
		c.arena.buses[id] = bc
	}

	branches := make(map[*Branch]*Branch)
	for id, b := range n.arena.buses {
		for _, br := range b.branches {
			bc, ok := branches[br]
			if !ok {
				bc = br.clone(c.arena)
				branches[br] = bc
			}
			c.arena.buses[id].branches = append(c.arena.buses[id].branches, bc)
		}
	}

	c.breakers = make([]*ParallelBreakers, len(n.breakers))
	for i, pb := range n.breakers {
		c.breakers[i] = pb.clone(c.arena)
	}

	return c
}

// InitializeSimplifiedNetwork computes the pre-fault view.
func (n *Network) InitializeSimplifiedNetwork() error {
	if _, ok := n.views[PreFault]; ok {
		return ErrSimplifiedNetworkExists
	}
	simplified, discarded, err := n.Simplify(PreFault)
	if err != nil {
		return err
	}
	n.views[PreFault] = &view{network: simplified, discarded: discarded}
	return nil
}

// ProvideEvents derives the during-fault and post-fault views. Failures are
// applied to a copy of the network, then mitigations to the same copy.
func (n *Network) ProvideEvents(failures, mitigations []Event) error {
	delete(n.views, DuringFault)
	delete(n.views, PostFault)
	n.mu.Lock()
	n.admittances[DuringFault] = make(map[[2]string]Admittance)
	n.admittances[PostFault] = make(map[[2]string]Admittance)
	n.mu.Unlock()

	n.failureEvents = failures
	n.mitigationEvents = mitigations

	faulted := n.Duplicate()
	relevant := false
	for _, event := range failures {
		applied, err := event.ApplyToNetwork(faulted)
		if err != nil {
			return fmt.Errorf("failure event %s: %w", event, err)
		}
		relevant = relevant || applied
	}
	if !relevant {
		return ErrNoRelevantFailureEvent
	}

	during, discarded, err := faulted.Simplify(DuringFault)
	if err != nil {
		return fmt.Errorf("during fault: %w", err)
	}
	n.views[DuringFault] = &view{network: during, discarded: discarded}

	for _, event := range mitigations {
		_, err := event.ApplyToNetwork(faulted)
		switch {
		case errors.Is(err, ErrLineAlreadyOpen), errors.Is(err, ErrParallel):
			n.log.WithError(err).Warnf("mitigation event %s ignored", event)
		case err != nil:
			return fmt.Errorf("mitigation event %s: %w", event, err)
		}
	}

	post, discarded, err := faulted.Simplify(PostFault)
	if err != nil {
		return fmt.Errorf("post fault: %w", err)
	}
	n.views[PostFault] = &view{network: post, discarded: discarded}

	return nil
}

func (n *Network) getView(state NetworkState) (*view, error) {
	v, ok := n.views[state]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNetworkState, state)
	}
	return v, nil
}

func (n *Network) GetState(state NetworkState) (*SimplifiedNetwork, error) {
	v, err := n.getView(state)
	if err != nil {
		return nil, err
	}
	return v.network, nil
}

// GetDisconnectedBuses lists the bus names discarded while simplifying the
// network in this state.
func (n *Network) GetDisconnectedBuses(state NetworkState) ([]string, error) {
	v, err := n.getView(state)
	if err != nil {
		return nil, err
	}
	return v.discarded, nil
}

// GetAdmittance reads the reduced admittance between two buses in polar form.
func (n *Network) GetAdmittance(bus1, bus2 string, state NetworkState) (float64, float64, error) {
	key := [2]string{bus1, bus2}
	n.mu.Lock()
	cached, ok := n.admittances[state][key]
	n.mu.Unlock()
	if ok {
		return cached.Amplitude, cached.Angle, nil
	}

	simplified, err := n.GetState(state)
	if err != nil {
		return 0, 0, err
	}
	m, err := simplified.AdmittanceMatrix()
	if err != nil {
		return 0, 0, err
	}
	reduced, err := m.Reduction()
	if err != nil {
		return 0, 0, err
	}
	y, err := reduced.At(bus1, bus2)
	if err != nil {
		return 0, 0, err
	}

	a := Admittance{Amplitude: cmplx.Abs(y), Angle: cmplx.Phase(y)}
	n.mu.Lock()
	n.admittances[state][key] = a
	n.mu.Unlock()
	return a.Amplitude, a.Angle, nil
}
