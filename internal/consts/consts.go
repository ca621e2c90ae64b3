package consts

const (
	DefaultFrequency = 50.0 // Network frequency (Hz)
	FloatTolerance   = 1e-8 // Absolute tolerance on converted magnitudes
)

// Names of elements synthesized by events and simplification
const (
	FictiveLoadPrefix     = "FICT_LOAD_"
	InternalVoltagePrefix = "INTERNAL_VOLTAGE_"
	FictiveBranchID       = "1"
)
