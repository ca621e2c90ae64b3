package dto

type ElementKind string

const (
	KindLine         ElementKind = "LINE"
	KindBreaker      ElementKind = "BREAKER"
	KindTransformer1 ElementKind = "TRANSFORMER1"
	KindTransformer8 ElementKind = "TRANSFORMER8"
)

type Bus struct {
	Name        string `yaml:"name" json:"name"`
	BaseVoltage Value  `yaml:"base_voltage" json:"base_voltage"`
}

type SlackBus struct {
	Bus        `yaml:",inline"`
	PhaseAngle Value `yaml:"phase_angle" json:"phase_angle"`
}

// BranchElement is the union of the parallel element records found on a
// branch. Kind selects which fields are meaningful.
type BranchElement struct {
	Kind ElementKind `yaml:"kind" json:"kind"`

	// Breaker
	Closed bool `yaml:"closed,omitempty" json:"closed,omitempty"`

	// Line and transformers
	ClosedAtSendingBus   bool  `yaml:"closed_at_sending_bus,omitempty" json:"closed_at_sending_bus,omitempty"`
	ClosedAtReceivingBus bool  `yaml:"closed_at_receiving_bus,omitempty" json:"closed_at_receiving_bus,omitempty"`
	Resistance           Value `yaml:"resistance,omitempty" json:"resistance,omitempty"`
	Reactance            Value `yaml:"reactance,omitempty" json:"reactance,omitempty"`
	ShuntConductance     Value `yaml:"shunt_conductance,omitempty" json:"shunt_conductance,omitempty"`
	ShuntSusceptance     Value `yaml:"shunt_susceptance,omitempty" json:"shunt_susceptance,omitempty"`

	// Transformers
	SendingNode   string  `yaml:"sending_node,omitempty" json:"sending_node,omitempty"`
	ReceivingNode string  `yaml:"receiving_node,omitempty" json:"receiving_node,omitempty"`
	BaseImpedance Value   `yaml:"base_impedance,omitempty" json:"base_impedance,omitempty"`
	Ratio         float64 `yaml:"ratio,omitempty" json:"ratio,omitempty"`

	// Transformer type 8
	PrimaryBaseVoltage   Value `yaml:"primary_base_voltage,omitempty" json:"primary_base_voltage,omitempty"`
	SecondaryBaseVoltage Value `yaml:"secondary_base_voltage,omitempty" json:"secondary_base_voltage,omitempty"`
	InitialTapNumber     int   `yaml:"initial_tap_number,omitempty" json:"initial_tap_number,omitempty"`
	PhaseShiftAngle      Value `yaml:"phase_shift_angle,omitempty" json:"phase_shift_angle,omitempty"`
}

type Branch struct {
	SendingBus       string                   `yaml:"sending_bus" json:"sending_bus"`
	ReceivingBus     string                   `yaml:"receiving_bus" json:"receiving_bus"`
	ParallelElements map[string]BranchElement `yaml:"parallel_elements" json:"parallel_elements"`
}

type Generator struct {
	Name                     string `yaml:"name" json:"name"`
	Connected                bool   `yaml:"connected" json:"connected"`
	Bus                      string `yaml:"bus" json:"bus"`
	ActivePower              *Value `yaml:"active_power,omitempty" json:"active_power,omitempty"`
	MaxActivePower           Value  `yaml:"max_active_power" json:"max_active_power"`
	ReactivePower            *Value `yaml:"reactive_power,omitempty" json:"reactive_power,omitempty"`
	DirectTransientReactance Value  `yaml:"direct_transient_reactance" json:"direct_transient_reactance"`
	InertiaConstant          Value  `yaml:"inertia_constant" json:"inertia_constant"`
	Source                   string `yaml:"source,omitempty" json:"source,omitempty"`
	Regulating               bool   `yaml:"regulating" json:"regulating"`
}

type Load struct {
	Name          string `yaml:"name" json:"name"`
	Bus           string `yaml:"bus" json:"bus"`
	ActivePower   Value  `yaml:"active_power" json:"active_power"`
	ReactivePower Value  `yaml:"reactive_power" json:"reactive_power"`
	Connected     bool   `yaml:"connected" json:"connected"`
}

type CapacitorBank struct {
	Name          string `yaml:"name" json:"name"`
	Bus           string `yaml:"bus" json:"bus"`
	ActivePower   Value  `yaml:"active_power" json:"active_power"`
	ReactivePower Value  `yaml:"reactive_power" json:"reactive_power"`
}

type StaticVarCompensator struct {
	Name      string `yaml:"name" json:"name"`
	Bus       string `yaml:"bus" json:"bus"`
	Connected bool   `yaml:"connected" json:"connected"`
}

type HVDCConverter struct {
	Name      string `yaml:"name" json:"name"`
	Bus       string `yaml:"bus" json:"bus"`
	Connected bool   `yaml:"connected" json:"connected"`
}

type NetworkTopology struct {
	BasePower             Value                  `yaml:"base_power" json:"base_power"`
	Buses                 []Bus                  `yaml:"buses" json:"buses"`
	SlackBuses            []SlackBus             `yaml:"slack_buses" json:"slack_buses"`
	Branches              []Branch               `yaml:"branches" json:"branches"`
	Loads                 []Load                 `yaml:"loads" json:"loads"`
	Generators            []Generator            `yaml:"generators" json:"generators"`
	CapacitorBanks        []CapacitorBank        `yaml:"capacitor_banks" json:"capacitor_banks"`
	StaticVarCompensators []StaticVarCompensator `yaml:"static_var_compensators" json:"static_var_compensators"`
	HVDCConverters        []HVDCConverter        `yaml:"hvdc_converters" json:"hvdc_converters"`
}

// SlackBusesByName indexes the slack buses of the topology.
func (t *NetworkTopology) SlackBusesByName() map[string]SlackBus {
	names := make(map[string]SlackBus, len(t.SlackBuses))
	for _, bus := range t.SlackBuses {
		names[bus.Name] = bus
	}
	return names
}
