package network

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edp1096/toy-eeac/pkg/element"
	"github.com/edp1096/toy-eeac/pkg/matrix"
)

// Branch is a set of parallel lines and transformers between two buses.
// The bus ids are logical and resolved through the arena.
type Branch struct {
	arena         *arena
	first, second int
	elements      map[string]element.BranchElement
}

func (br *Branch) FirstBus() *Bus  { return br.arena.bus(br.first) }
func (br *Branch) SecondBus() *Bus { return br.arena.bus(br.second) }

// Other returns the end of the branch opposite to b.
func (br *Branch) Other(b *Bus) *Bus {
	if first := br.FirstBus(); first != b {
		return first
	}
	return br.SecondBus()
}

func (br *Branch) BusNames() (string, string) {
	return br.FirstBus().GetName(), br.SecondBus().GetName()
}

func (br *Branch) Element(parallelID string) (element.BranchElement, error) {
	e, ok := br.elements[parallelID]
	if !ok {
		first, second := br.BusNames()
		return nil, fmt.Errorf("%w: %s between %s and %s", ErrParallel, parallelID, first, second)
	}
	return e, nil
}

func (br *Branch) SetElement(parallelID string, e element.BranchElement) {
	br.elements[parallelID] = e
}

// ParallelIDs is sorted.
func (br *Branch) ParallelIDs() []string {
	ids := make([]string, 0, len(br.elements))
	for id := range br.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsClosed reports whether any parallel element is closed.
func (br *Branch) IsClosed() bool {
	for _, e := range br.elements {
		if e.IsClosed() {
			return true
		}
	}
	return false
}

func (br *Branch) Admittance() complex128 {
	var y complex128
	for _, id := range br.ParallelIDs() {
		y += br.elements[id].Admittance()
	}
	return y
}

func (br *Branch) ShuntAdmittance() complex128 {
	var y complex128
	for _, id := range br.ParallelIDs() {
		y += br.elements[id].ShuntAdmittance()
	}
	return y
}

// Stamp adds every closed element, i being the index of from.
func (br *Branch) Stamp(m matrix.DeviceMatrix, i, j int, from matrix.Node) error {
	for _, id := range br.ParallelIDs() {
		e := br.elements[id]
		if !e.IsClosed() {
			continue
		}
		if err := e.Stamp(m, i, j, from); err != nil {
			return fmt.Errorf("element %s: %w", id, err)
		}
	}
	return nil
}

func (br *Branch) prune() {
	for id, e := range br.elements {
		if !e.IsClosed() {
			delete(br.elements, id)
		}
	}
}

func (br *Branch) clone(a *arena) *Branch {
	c := &Branch{
		arena:    a,
		first:    br.first,
		second:   br.second,
		elements: make(map[string]element.BranchElement, len(br.elements)),
	}
	for id, e := range br.elements {
		c.elements[id] = e.Clone()
	}
	return c
}

func (br *Branch) String() string {
	parts := make([]string, 0, len(br.elements))
	for _, id := range br.ParallelIDs() {
		parts = append(parts, fmt.Sprintf("%s:%v", id, br.elements[id]))
	}
	first, second := br.BusNames()
	return fmt.Sprintf("Branch between nodes %s and %s: (%s)", first, second, strings.Join(parts, ")("))
}

// ParallelBreakers is a set of parallel breakers between two buses.
type ParallelBreakers struct {
	arena         *arena
	first, second int
	breakers      map[string]*element.Breaker
}

func (pb *ParallelBreakers) FirstBus() *Bus  { return pb.arena.bus(pb.first) }
func (pb *ParallelBreakers) SecondBus() *Bus { return pb.arena.bus(pb.second) }

func (pb *ParallelBreakers) Breaker(parallelID string) (*element.Breaker, error) {
	b, ok := pb.breakers[parallelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s between %s and %s",
			ErrParallel, parallelID, pb.FirstBus().GetName(), pb.SecondBus().GetName())
	}
	return b, nil
}

func (pb *ParallelBreakers) SetBreaker(parallelID string, b *element.Breaker) {
	pb.breakers[parallelID] = b
}

func (pb *ParallelBreakers) IsClosed() bool {
	for _, b := range pb.breakers {
		if b.Closed {
			return true
		}
	}
	return false
}

func (pb *ParallelBreakers) clone(a *arena) *ParallelBreakers {
	c := &ParallelBreakers{
		arena:    a,
		first:    pb.first,
		second:   pb.second,
		breakers: make(map[string]*element.Breaker, len(pb.breakers)),
	}
	for id, b := range pb.breakers {
		c.breakers[id] = b.Clone()
	}
	return c
}

func (pb *ParallelBreakers) String() string {
	ids := make([]string, 0, len(pb.breakers))
	for id := range pb.breakers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		state := "OPENED"
		if pb.breakers[id].Closed {
			state = "CLOSED"
		}
		parts[i] = id + ":" + state
	}
	return fmt.Sprintf("Parallel breakers: Bus1=[%s] Bus2=[%s] Breakers=[%s]",
		pb.FirstBus().GetName(), pb.SecondBus().GetName(), strings.Join(parts, "|"))
}
