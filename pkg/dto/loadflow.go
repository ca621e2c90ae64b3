package dto

type LoadFlowBus struct {
	Voltage    Value `yaml:"voltage" json:"voltage"`
	PhaseAngle Value `yaml:"phase_angle" json:"phase_angle"`
}

type LoadFlowPower struct {
	ActivePower   Value `yaml:"active_power" json:"active_power"`
	ReactivePower Value `yaml:"reactive_power" json:"reactive_power"`
}

type LoadFlowReactivePower struct {
	ReactivePower Value `yaml:"reactive_power" json:"reactive_power"`
}

// TransformerTapData lists the tap positions of a type 8 transformer. The
// slices are indexed together.
type TransformerTapData struct {
	SendingNode           string    `yaml:"sending_node" json:"sending_node"`
	ReceivingNode         string    `yaml:"receiving_node" json:"receiving_node"`
	TapNumbers            []int     `yaml:"tap_numbers" json:"tap_numbers"`
	PhaseAngles           []float64 `yaml:"phase_angles" json:"phase_angles"`
	SendingNodeVoltages   []float64 `yaml:"sending_node_voltages" json:"sending_node_voltages"`
	ReceivingNodeVoltages []float64 `yaml:"receiving_node_voltages" json:"receiving_node_voltages"`
}

// LoadFlowResults are indexed by element name. Tap data is indexed by
// "<sending>_<receiving>_<parallel id>".
type LoadFlowResults struct {
	Buses                 map[string]LoadFlowBus           `yaml:"buses" json:"buses"`
	Loads                 map[string]LoadFlowPower         `yaml:"loads" json:"loads"`
	Generators            map[string]LoadFlowPower         `yaml:"generators" json:"generators"`
	StaticVarCompensators map[string]LoadFlowReactivePower `yaml:"static_var_compensators" json:"static_var_compensators"`
	HVDCConverters        map[string]LoadFlowPower         `yaml:"hvdc_converters" json:"hvdc_converters"`
	TransformerTapData    map[string]TransformerTapData    `yaml:"transformer_tap_data" json:"transformer_tap_data"`
}
