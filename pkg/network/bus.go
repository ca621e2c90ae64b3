package network

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"

	"github.com/edp1096/toy-eeac/internal/consts"
	"github.com/edp1096/toy-eeac/pkg/element"
	"github.com/edp1096/toy-eeac/pkg/matrix"
	"github.com/edp1096/toy-eeac/pkg/unit"
)

type BusType int

const (
	PQ BusType = iota
	PV
	Slack
	GenInternalVoltage
)

func (t BusType) String() string {
	switch t {
	case PV:
		return "PV"
	case Slack:
		return "SLACK"
	case GenInternalVoltage:
		return "GENERATOR_INTERNAL_VOLTAGE"
	default:
		return "PQ"
	}
}

// BusParams describes a bus. A nil VoltageMagnitude (kV) leaves the voltage
// unresolved; PhaseAngle is in radians.
type BusParams struct {
	Name             string
	BaseVoltage      float64
	VoltageMagnitude *float64
	PhaseAngle       float64
	Type             *BusType
}

type Bus struct {
	id    int
	arena *arena

	name        string
	baseVoltage float64
	magnitude   unit.Value
	phaseAngle  float64
	resolved    bool

	busType    BusType
	hasBusType bool
	coupled    map[string]struct{}
	generators []*element.Generator
	loads      []*element.Load
	banks      []*element.CapacitorBank
	branches   []*Branch
}

func newBus(params BusParams) (*Bus, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("bus without name")
	}
	b := &Bus{
		name:        params.Name,
		baseVoltage: params.BaseVoltage,
		phaseAngle:  params.PhaseAngle,
		coupled:     map[string]struct{}{params.Name: {}},
	}
	if params.Type != nil {
		b.busType = *params.Type
		b.hasBusType = true
	}
	if params.VoltageMagnitude != nil {
		if err := b.setVoltage(*params.VoltageMagnitude, params.PhaseAngle); err != nil {
			return nil, fmt.Errorf("bus %s: %w", params.Name, err)
		}
	}
	return b, nil
}

func (b *Bus) setVoltage(magnitude, phaseAngle float64) error {
	base, err := unit.NewPUBase(b.baseVoltage, unit.KV)
	if err != nil {
		return err
	}
	v, err := unit.NewValue(magnitude, unit.KV, &base)
	if err != nil {
		return err
	}
	b.magnitude = v
	b.phaseAngle = phaseAngle
	b.resolved = true
	return nil
}

func (b *Bus) GetName() string { return b.name }

// HasName matches the current name or the name of any bus coupled into this one.
func (b *Bus) HasName(name string) bool {
	if name == b.name {
		return true
	}
	_, ok := b.coupled[name]
	return ok
}

func (b *Bus) BaseVoltage() float64 { return b.baseVoltage }
func (b *Bus) PhaseAngle() float64  { return b.phaseAngle }

// VoltageMagnitude is in kV with the base voltage as per-unit base.
func (b *Bus) VoltageMagnitude() (unit.Value, bool) {
	return b.magnitude, b.resolved
}

func (b *Bus) IsResolved() bool { return b.resolved }

// Voltage returns the voltage phasor in pu.
func (b *Bus) Voltage() (complex128, error) {
	if !b.resolved {
		return 0, fmt.Errorf("%w: %s", ErrBusVoltage, b.name)
	}
	return b.voltage(), nil
}

func (b *Bus) voltage() complex128 {
	if !b.resolved {
		return 0
	}
	pu, err := b.magnitude.PerUnit()
	if err != nil {
		return 0
	}
	return cmplx.Rect(pu, b.phaseAngle)
}

// UpdateVoltage sets the voltage (kV, rad) and refreshes every element whose
// admittance or internal voltage depends on it.
func (b *Bus) UpdateVoltage(magnitude, phaseAngle float64) error {
	if err := b.setVoltage(magnitude, phaseAngle); err != nil {
		return fmt.Errorf("bus %s: %w", b.name, err)
	}
	b.refresh()
	return nil
}

func (b *Bus) refresh() {
	v := b.voltage()
	internal := b.Type() == GenInternalVoltage
	for _, g := range b.generators {
		g.UpdateVoltage(v, internal)
	}
	for _, l := range b.loads {
		l.UpdateVoltage(v)
	}
	for _, c := range b.banks {
		c.UpdateVoltage(v)
	}
	if b.arena != nil && b.arena.voltageChanged != nil {
		b.arena.voltageChanged()
	}
}

// Type is the explicit type if one was set, else SLACK with a slack
// generator, PV with a regulating one and PQ otherwise.
func (b *Bus) Type() BusType {
	if b.hasBusType {
		return b.busType
	}
	t := PQ
	for _, g := range b.generators {
		switch g.Type {
		case element.Slack:
			return Slack
		case element.PV:
			t = PV
		}
	}
	return t
}

func (b *Bus) setType(t BusType) {
	b.busType = t
	b.hasBusType = true
}

// CoupledBusNames is sorted.
func (b *Bus) CoupledBusNames() []string {
	names := make([]string, 0, len(b.coupled))
	for name := range b.coupled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Bus) Generators() []*element.Generator         { return b.generators }
func (b *Bus) Loads() []*element.Load                   { return b.loads }
func (b *Bus) CapacitorBanks() []*element.CapacitorBank { return b.banks }
func (b *Bus) Branches() []*Branch                      { return b.branches }

func (b *Bus) AddGenerator(g *element.Generator) {
	g.Bus = b.id
	g.UpdateVoltage(b.voltage(), b.Type() == GenInternalVoltage)
	b.generators = append(b.generators, g)
}

func (b *Bus) AddLoad(l *element.Load) {
	l.UpdateVoltage(b.voltage())
	b.loads = append(b.loads, l)
}

// RemoveLoad drops the load with this name and reports whether it existed.
func (b *Bus) RemoveLoad(name string) bool {
	for i, l := range b.loads {
		if l.Name == name {
			b.loads = append(b.loads[:i:i], b.loads[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Bus) GetLoad(name string) (*element.Load, error) {
	for _, l := range b.loads {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, notFound("load", name)
}

func (b *Bus) AddCapacitorBank(c *element.CapacitorBank) {
	c.UpdateVoltage(b.voltage())
	b.banks = append(b.banks, c)
}

func (b *Bus) addBranch(br *Branch) {
	for _, existing := range b.branches {
		if existing == br {
			return
		}
	}
	b.branches = append(b.branches, br)
}

// CoupleToBus merges other into b. Both buses must have a resolved voltage,
// agree on it and not model a generator internal voltage. Buses already
// coupled are left untouched.
func (b *Bus) CoupleToBus(other *Bus) error {
	if b.Type() == GenInternalVoltage || other.Type() == GenInternalVoltage || !b.resolved || !other.resolved {
		return fmt.Errorf("%w: %s and %s", ErrCoupledBuses, b.name, other.name)
	}
	for name := range other.coupled {
		if _, ok := b.coupled[name]; ok {
			return nil
		}
	}
	if !b.agreesWith(other) {
		return fmt.Errorf("%w: %s and %s have different voltages", ErrCoupledBuses, b.name, other.name)
	}

	b.baseVoltage = other.baseVoltage
	if err := b.setVoltage(other.magnitude.Value(), other.phaseAngle); err != nil {
		return fmt.Errorf("%w: %v", ErrCoupledBuses, err)
	}
	b.name = fmt.Sprintf("%s_%s", b.name, other.name)

	otherType := other.Type()
	selfType := b.Type()

	if b.arena != nil && b.arena == other.arena {
		b.arena.union(b.id, other.id)
	}
	for _, br := range other.branches {
		b.addBranch(br)
	}
	for _, g := range other.generators {
		b.generators = append(b.generators, g)
		g.Bus = b.id
	}
	b.loads = append(b.loads, other.loads...)
	b.banks = append(b.banks, other.banks...)
	b.refresh()

	if otherType == Slack || (otherType == PV && selfType != Slack) {
		b.setType(otherType)
	}
	for name := range other.coupled {
		b.coupled[name] = struct{}{}
	}

	other.branches = nil
	other.generators = nil
	other.loads = nil
	other.banks = nil

	return nil
}

func (b *Bus) agreesWith(other *Bus) bool {
	same := func(x, y float64) bool { return math.Abs(x-y) <= consts.FloatTolerance }
	return same(b.magnitude.Value(), other.magnitude.Value()) &&
		same(b.phaseAngle, other.phaseAngle) &&
		same(b.baseVoltage, other.baseVoltage)
}

func (b *Bus) HasGenerators() bool {
	return len(b.generators) > 0
}

func (b *Bus) StampShunts(m matrix.DeviceMatrix, i int) error {
	for _, l := range b.loads {
		if err := l.Stamp(m, i); err != nil {
			return err
		}
	}
	for _, c := range b.banks {
		if err := c.Stamp(m, i); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) MatrixBranches() []matrix.Branch {
	branches := make([]matrix.Branch, len(b.branches))
	for i, br := range b.branches {
		branches[i] = br
	}
	return branches
}

// clone copies the bus and its elements into another arena. Branches are
// re-linked by the caller.
func (b *Bus) clone() *Bus {
	c := *b
	c.arena = nil
	c.coupled = make(map[string]struct{}, len(b.coupled))
	for name := range b.coupled {
		c.coupled[name] = struct{}{}
	}
	c.generators = make([]*element.Generator, len(b.generators))
	for i, g := range b.generators {
		c.generators[i] = g.Clone()
	}
	c.loads = make([]*element.Load, len(b.loads))
	for i, l := range b.loads {
		c.loads[i] = l.Clone()
	}
	c.banks = make([]*element.CapacitorBank, len(b.banks))
	for i, bank := range b.banks {
		c.banks[i] = bank.Clone()
	}
	c.branches = nil
	return &c
}

func (b *Bus) String() string {
	var elements []string
	for _, g := range b.generators {
		elements = append(elements, g.String())
	}
	for _, l := range b.loads {
		elements = append(elements, l.String())
	}
	for _, c := range b.banks {
		elements = append(elements, c.String())
	}
	magnitude := "unresolved"
	if b.resolved {
		magnitude = b.magnitude.String()
	}
	return fmt.Sprintf("Bus: Name=[%s] Type=[%s] |Vb|=[%g] |V|=[%s] phi=[%g] Elements=[(%s)]",
		b.name, b.Type(), b.baseVoltage, magnitude, b.phaseAngle, strings.Join(elements, ")("))
}
