package dto

type EventKind string

const (
	EventBusShortCircuit          EventKind = "BUS_SHORT_CIRCUIT"
	EventLineShortCircuit         EventKind = "LINE_SHORT_CIRCUIT"
	EventBreaker                  EventKind = "BREAKER"
	EventBranch                   EventKind = "BRANCH"
	EventBusShortCircuitClearing  EventKind = "BUS_SHORT_CIRCUIT_CLEARING"
	EventLineShortCircuitClearing EventKind = "LINE_SHORT_CIRCUIT_CLEARING"
)

type BreakerPosition string

const (
	FirstBus  BreakerPosition = "FIRST_BUS"
	SecondBus BreakerPosition = "SECOND_BUS"
)

// Event is the union of the event records. Kind selects which fields are
// meaningful.
type Event struct {
	Kind EventKind `yaml:"kind" json:"kind"`

	BusName       string `yaml:"bus_name,omitempty" json:"bus_name,omitempty"`
	FirstBusName  string `yaml:"first_bus_name,omitempty" json:"first_bus_name,omitempty"`
	SecondBusName string `yaml:"second_bus_name,omitempty" json:"second_bus_name,omitempty"`
	ParallelID    string `yaml:"parallel_id,omitempty" json:"parallel_id,omitempty"`

	// Short circuits. FaultPosition is the distance from the first bus, in (0, 1).
	FaultPosition   float64 `yaml:"fault_position,omitempty" json:"fault_position,omitempty"`
	FaultResistance *Value  `yaml:"fault_resistance,omitempty" json:"fault_resistance,omitempty"`
	FaultReactance  *Value  `yaml:"fault_reactance,omitempty" json:"fault_reactance,omitempty"`

	// Breaker and branch switching
	BreakerPosition BreakerPosition `yaml:"breaker_position,omitempty" json:"breaker_position,omitempty"`
	BreakerClosed   bool            `yaml:"breaker_closed,omitempty" json:"breaker_closed,omitempty"`
}

type EventSequence struct {
	Name        string  `yaml:"name,omitempty" json:"name,omitempty"`
	Failures    []Event `yaml:"failures" json:"failures"`
	Mitigations []Event `yaml:"mitigations" json:"mitigations"`
}
