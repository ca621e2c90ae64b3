package element

import (
	"errors"

	"github.com/edp1096/toy-eeac/pkg/matrix"
)

var (
	ErrZeroDirectTransientReactance = errors.New("element: zero direct transient reactance")
	ErrDisconnectedElement          = errors.New("element: element is disconnected")
	ErrTransformerImpedance         = errors.New("element: transformer impedance is undefined")
	ErrZeroBaseImpedance            = errors.New("element: zero base impedance")
	ErrZeroLineImpedance            = errors.New("element: zero line impedance")
)

// Terminal is the bus an element is stamped from.
type Terminal interface {
	HasName(name string) bool
}

// BranchElement is a line or transformer in a set of parallel elements.
type BranchElement interface {
	GetType() string
	IsClosed() bool
	Admittance() complex128
	ShuntAdmittance() complex128
	// Stamp adds the element between buses i and j, seen from bus i.
	Stamp(m matrix.DeviceMatrix, i, j int, from Terminal) error
	Clone() BranchElement
}

// ShuntElement is a load or capacitor bank stamped on the diagonal.
type ShuntElement interface {
	GetName() string
	Admittance() complex128
	UpdateVoltage(v complex128)
	Stamp(m matrix.DeviceMatrix, i int) error
}

type BaseElement struct {
	Name string
}

func (e *BaseElement) GetName() string {
	return e.Name
}
