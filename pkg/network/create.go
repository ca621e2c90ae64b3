package network

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/edp1096/toy-eeac/pkg/dto"
	"github.com/edp1096/toy-eeac/pkg/element"
	"github.com/edp1096/toy-eeac/pkg/unit"
)

const staticGeneratorPrefix = "GEN_"

type builder struct {
	network  *Network
	topology dto.NetworkTopology
	loadFlow dto.LoadFlowResults
	slack    map[string]dto.SlackBus
}

// CreateNetwork builds a network from topology and load flow results. Errors
// are collected per pass (base power, buses, elements, branches) and returned
// together.
func CreateNetwork(topology dto.NetworkTopology, loadFlow dto.LoadFlowResults) (*Network, error) {
	basePower, err := unit.ConvertDTO(topology.BasePower, unit.MVA)
	if err != nil {
		return nil, fmt.Errorf("base power: %w", err)
	}
	if basePower == 0 {
		return nil, fmt.Errorf("base power: %w", unit.ErrUnitBase)
	}

	b := &builder{
		network:  NewNetwork(basePower),
		topology: topology,
		loadFlow: loadFlow,
		slack:    topology.SlackBusesByName(),
	}

	if err := b.buses(); err != nil {
		return nil, err
	}
	if err := b.elements(); err != nil {
		return nil, err
	}
	if err := b.branches(); err != nil {
		return nil, err
	}

	b.network.log.WithField("buses", len(b.network.order)).Info("network created")
	return b.network, nil
}

func (b *builder) buses() error {
	var errs error
	seen := make(map[string]bool)
	for _, bus := range b.topology.Buses {
		seen[bus.Name] = true
		errs = multierr.Append(errs, b.addBus(bus))
	}
	for _, slack := range b.topology.SlackBuses {
		if !seen[slack.Name] {
			errs = multierr.Append(errs, b.addBus(slack.Bus))
		}
	}
	return errs
}

func (b *builder) addBus(bus dto.Bus) error {
	baseVoltage, err := unit.ConvertDTO(bus.BaseVoltage, unit.KV)
	if err != nil {
		return fmt.Errorf("bus %s base voltage: %w", bus.Name, err)
	}
	params := BusParams{Name: bus.Name, BaseVoltage: baseVoltage}

	slack, isSlack := b.slack[bus.Name]
	result, ok := b.loadFlow.Buses[bus.Name]
	switch {
	case !ok && isSlack:
		return fmt.Errorf("%w: slack bus %s", ErrLoadFlow, bus.Name)
	case ok:
		magnitude, err := unit.ConvertDTO(result.Voltage, unit.KV)
		if err != nil {
			return fmt.Errorf("bus %s voltage: %w", bus.Name, err)
		}
		params.VoltageMagnitude = &magnitude

		angle := result.PhaseAngle
		if isSlack {
			angle = slack.PhaseAngle
			busType := Slack
			params.Type = &busType
		}
		if params.PhaseAngle, err = unit.ConvertDTO(angle, unit.Rad); err != nil {
			return fmt.Errorf("bus %s phase angle: %w", bus.Name, err)
		}
	}

	_, err = b.network.AddBus(params)
	return err
}

func (b *builder) elements() error {
	var errs error
	for _, g := range b.topology.Generators {
		errs = multierr.Append(errs, b.addGenerator(g))
	}
	for _, l := range b.topology.Loads {
		errs = multierr.Append(errs, b.addLoad(l))
	}
	for _, c := range b.topology.CapacitorBanks {
		errs = multierr.Append(errs, b.addCapacitorBank(c))
	}
	for _, svc := range b.topology.StaticVarCompensators {
		errs = multierr.Append(errs, b.addStaticVarCompensator(svc))
	}
	for _, hvdc := range b.topology.HVDCConverters {
		errs = multierr.Append(errs, b.addHVDCConverter(hvdc))
	}
	return errs
}

func (b *builder) addGenerator(g dto.Generator) error {
	bus, err := b.network.GetBus(g.Bus)
	if err != nil {
		return fmt.Errorf("generator %s: %w", g.Name, err)
	}

	generatorType := element.PQ
	_, onSlack := b.slack[bus.GetName()]
	switch {
	case onSlack:
		generatorType = element.Slack
	case g.Regulating:
		generatorType = element.PV
	}

	var p, q float64
	if result, ok := b.loadFlow.Generators[g.Name]; ok {
		if p, q, err = convertPowers(result.ActivePower, result.ReactivePower); err != nil {
			return fmt.Errorf("generator %s: %w", g.Name, err)
		}
	} else if g.Connected || generatorType == element.Slack {
		return fmt.Errorf("%w: generator %s", ErrLoadFlow, g.Name)
	} else if g.ActivePower != nil && g.ReactivePower != nil {
		if p, q, err = convertPowers(*g.ActivePower, *g.ReactivePower); err != nil {
			return fmt.Errorf("generator %s: %w", g.Name, err)
		}
	}

	reactance, err := unit.ConvertDTO(g.DirectTransientReactance, unit.Ohm)
	if err != nil {
		return fmt.Errorf("generator %s transient reactance: %w", g.Name, err)
	}
	inertia, err := unit.ConvertDTO(g.InertiaConstant, unit.MWsPerMVA)
	if err != nil {
		return fmt.Errorf("generator %s inertia: %w", g.Name, err)
	}
	maxPower, err := unit.ConvertDTO(g.MaxActivePower, unit.MW)
	if err != nil {
		return fmt.Errorf("generator %s max active power: %w", g.Name, err)
	}

	basePower := b.network.basePower
	generator, err := element.NewGenerator(element.GeneratorParams{
		Name:                     g.Name,
		Type:                     generatorType,
		Source:                   element.ParseGeneratorSource(g.Source),
		Connected:                g.Connected,
		BaseImpedance:            bus.BaseVoltage() * bus.BaseVoltage() / basePower,
		BasePower:                basePower,
		DirectTransientReactance: reactance,
		InertiaConstant:          inertia / basePower,
		ActivePower:              p,
		MaxActivePower:           maxPower,
		ReactivePower:            q,
	})
	if err != nil {
		return err
	}
	bus.AddGenerator(generator)
	return nil
}

func (b *builder) addLoad(l dto.Load) error {
	bus, err := b.network.GetBus(l.Bus)
	if err != nil {
		return fmt.Errorf("load %s: %w", l.Name, err)
	}

	active, reactive := l.ActivePower, l.ReactivePower
	if strings.HasPrefix(l.Name, staticGeneratorPrefix) {
		if result, ok := b.loadFlow.Generators[strings.TrimPrefix(l.Name, staticGeneratorPrefix)]; ok {
			active, reactive = result.ActivePower.Negated(), result.ReactivePower.Negated()
		}
	} else if result, ok := b.loadFlow.Loads[l.Name]; ok {
		active, reactive = result.ActivePower, result.ReactivePower
	}

	p, q, err := convertPowers(active, reactive)
	if err != nil {
		return fmt.Errorf("load %s: %w", l.Name, err)
	}
	return b.attachLoad(bus, l.Name, p, q, l.Connected)
}

func (b *builder) addCapacitorBank(c dto.CapacitorBank) error {
	bus, err := b.network.GetBus(c.Bus)
	if err != nil {
		return fmt.Errorf("capacitor bank %s: %w", c.Name, err)
	}
	p, q, err := convertPowers(c.ActivePower, c.ReactivePower)
	if err != nil {
		return fmt.Errorf("capacitor bank %s: %w", c.Name, err)
	}
	bus.AddCapacitorBank(element.NewCapacitorBank(c.Name, p/b.network.basePower, -q/b.network.basePower))
	return nil
}

func (b *builder) addStaticVarCompensator(svc dto.StaticVarCompensator) error {
	var q float64
	if result, ok := b.loadFlow.StaticVarCompensators[svc.Name]; ok {
		reactive, err := unit.ConvertDTO(result.ReactivePower, unit.MVAR)
		if err != nil {
			return fmt.Errorf("static var compensator %s: %w", svc.Name, err)
		}
		q = -reactive
	} else if svc.Connected {
		return fmt.Errorf("%w: static var compensator %s", ErrLoadFlow, svc.Name)
	}

	bus, err := b.network.GetBus(svc.Bus)
	if err != nil {
		return fmt.Errorf("static var compensator %s: %w", svc.Name, err)
	}
	bus.AddCapacitorBank(element.NewCapacitorBank(svc.Name, 0, q/b.network.basePower))
	return nil
}

func (b *builder) addHVDCConverter(hvdc dto.HVDCConverter) error {
	var p, q float64
	if result, ok := b.loadFlow.HVDCConverters[hvdc.Name]; ok {
		var err error
		if p, q, err = convertPowers(result.ActivePower.Negated(), result.ReactivePower.Negated()); err != nil {
			return fmt.Errorf("hvdc converter %s: %w", hvdc.Name, err)
		}
	} else if hvdc.Connected {
		return fmt.Errorf("%w: hvdc converter %s", ErrLoadFlow, hvdc.Name)
	}

	bus, err := b.network.GetBus(hvdc.Bus)
	if err != nil {
		return fmt.Errorf("hvdc converter %s: %w", hvdc.Name, err)
	}
	return b.attachLoad(bus, hvdc.Name, p, q, hvdc.Connected)
}

// attachLoad adds a load with powers in MW and MVAr.
func (b *builder) attachLoad(bus *Bus, name string, p, q float64, connected bool) error {
	active, err := perUnit(p, unit.MW, b.network.basePower)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	reactive, err := perUnit(q, unit.MVAR, b.network.basePower)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	load, err := element.NewLoad(name, active, reactive, connected)
	if err != nil {
		return err
	}
	bus.AddLoad(load)
	return nil
}

func (b *builder) branches() error {
	var errs error
	for _, branch := range b.topology.Branches {
		errs = multierr.Append(errs, b.addBranch(branch))
	}
	return errs
}

func (b *builder) addBranch(branch dto.Branch) error {
	first, err := b.network.GetBus(branch.SendingBus)
	if err != nil {
		return err
	}
	second, err := b.network.GetBus(branch.ReceivingBus)
	if err != nil {
		return err
	}
	if len(branch.ParallelElements) == 0 {
		return fmt.Errorf("%w: empty branch %s - %s", ErrBranchContent, first.GetName(), second.GetName())
	}

	ids := make([]string, 0, len(branch.ParallelElements))
	for id := range branch.ParallelElements {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if branch.ParallelElements[ids[0]].Kind == dto.KindBreaker {
		breakers := b.network.AddParallelBreakers(first, second)
		for _, id := range ids {
			e := branch.ParallelElements[id]
			if e.Kind != dto.KindBreaker {
				return fmt.Errorf("%w: %s %s with breakers between %s and %s",
					ErrBranchContent, e.Kind, id, first.GetName(), second.GetName())
			}
			breakers.SetBreaker(id, element.NewBreaker(e.Closed))
		}
		return nil
	}

	var errs error
	br := b.network.AddBranch(first, second)
	for _, id := range ids {
		e := branch.ParallelElements[id]
		var (
			be  element.BranchElement
			err error
		)
		switch e.Kind {
		case dto.KindLine:
			be, err = b.line(first, second, e)
		case dto.KindTransformer1, dto.KindTransformer8:
			if !e.ClosedAtSendingBus || !e.ClosedAtReceivingBus {
				continue
			}
			be, err = b.transformer(first, second, id, e)
		default:
			err = fmt.Errorf("%w: %s %s between %s and %s",
				ErrBranchContent, e.Kind, id, first.GetName(), second.GetName())
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("branch %s - %s element %s: %w", first.GetName(), second.GetName(), id, err))
			continue
		}
		br.SetElement(id, be)
	}
	return errs
}

func (b *builder) line(first, second *Bus, e dto.BranchElement) (*element.Line, error) {
	var values [4]float64
	units := [4]unit.Unit{unit.Ohm, unit.Ohm, unit.S, unit.S}
	for i, d := range []dto.Value{e.Resistance, e.Reactance, e.ShuntConductance, e.ShuntSusceptance} {
		if d.Unit == "" {
			continue
		}
		v, err := unit.ConvertDTO(d, units[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	baseImpedance := first.BaseVoltage() * second.BaseVoltage() / b.network.basePower
	line, err := element.NewLine(baseImpedance, values[0], values[1], values[2], values[3])
	if err != nil {
		return nil, err
	}
	line.ClosedAtFirstBus = e.ClosedAtSendingBus
	line.ClosedAtSecondBus = e.ClosedAtReceivingBus
	return line, nil
}

func (b *builder) transformer(first, second *Bus, parallelID string, e dto.BranchElement) (*element.Transformer, error) {
	params := element.TransformerParams{
		Type:             element.Transformer1,
		Ratio:            e.Ratio,
		InitialTapNumber: e.InitialTapNumber,
		SendingNode:      e.SendingNode,
		ReceivingNode:    e.ReceivingNode,
	}
	if params.SendingNode == "" {
		params.SendingNode = first.GetName()
	}
	if params.ReceivingNode == "" {
		params.ReceivingNode = second.GetName()
	}

	var err error
	if params.BaseImpedance, err = unit.ConvertDTO(e.BaseImpedance, unit.Ohm); err != nil {
		return nil, fmt.Errorf("base impedance: %w", err)
	}
	targets := []*float64{&params.Resistance, &params.Reactance, &params.ShuntConductance, &params.ShuntSusceptance}
	units := []unit.Unit{unit.Ohm, unit.Ohm, unit.S, unit.S}
	for i, d := range []dto.Value{e.Resistance, e.Reactance, e.ShuntConductance, e.ShuntSusceptance} {
		if d.Unit == "" {
			continue
		}
		if *targets[i], err = unit.ConvertDTO(d, units[i]); err != nil {
			return nil, err
		}
	}

	if e.Kind == dto.KindTransformer8 {
		params.Type = element.Transformer8
		if params.Ratio, params.PhaseShiftAngle, err = b.tap(first, second, parallelID, e.InitialTapNumber); err != nil {
			return nil, err
		}
	}

	t, err := element.NewTransformer(params)
	if err != nil {
		return nil, err
	}
	t.ClosedAtFirstBus = e.ClosedAtSendingBus
	t.ClosedAtSecondBus = e.ClosedAtReceivingBus
	return t, nil
}

// tap reads the ratio and phase shift (deg) of a type 8 transformer at its
// initial tap from the load flow results.
func (b *builder) tap(first, second *Bus, parallelID string, tapNumber int) (float64, float64, error) {
	key := fmt.Sprintf("%s_%s_%s", first.GetName(), second.GetName(), parallelID)
	data, ok := b.loadFlow.TransformerTapData[key]
	if !ok {
		data, ok = b.loadFlow.TransformerTapData[fmt.Sprintf("%s_%s_%s", second.GetName(), first.GetName(), parallelID)]
	}
	if !ok {
		return 0, 0, fmt.Errorf("%w: transformer tap data %s", ErrLoadFlow, key)
	}

	index := -1
	for i, n := range data.TapNumbers {
		if n == tapNumber {
			index = i
			break
		}
	}
	if index < 0 || index >= len(data.SendingNodeVoltages) || index >= len(data.ReceivingNodeVoltages) ||
		index >= len(data.PhaseAngles) {
		return 0, 0, fmt.Errorf("%w: tap %d of transformer %s", ErrLoadFlow, tapNumber, key)
	}

	sending, receiving := data.SendingNodeVoltages[index], data.ReceivingNodeVoltages[index]
	if sending == 0 || second.BaseVoltage() == 0 {
		return 0, 0, fmt.Errorf("%w: zero voltage at tap %d of transformer %s", ErrLoadFlow, tapNumber, key)
	}
	ratio := (first.BaseVoltage() / sending) * (receiving / second.BaseVoltage())
	return ratio, data.PhaseAngles[index], nil
}

// convertPowers returns an active and a reactive power in MW and MVAr.
func convertPowers(active, reactive dto.Value) (float64, float64, error) {
	p, err := unit.ConvertDTO(active, unit.MW)
	if err != nil {
		return 0, 0, fmt.Errorf("active power: %w", err)
	}
	q, err := unit.ConvertDTO(reactive, unit.MVAR)
	if err != nil {
		return 0, 0, fmt.Errorf("reactive power: %w", err)
	}
	return p, q, nil
}

// perUnit tags a power with the system base power expressed in its own unit.
func perUnit(value float64, u unit.Unit, basePower float64) (unit.Value, error) {
	base, err := unit.NewPUBase(basePower, u)
	if err != nil {
		return unit.Value{}, err
	}
	return unit.NewValue(value, u, &base)
}
