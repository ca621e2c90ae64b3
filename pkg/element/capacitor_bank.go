package element

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/edp1096/toy-eeac/pkg/matrix"
)

// CapacitorBank also models static var compensators.
type CapacitorBank struct {
	BaseElement
	power      complex128
	admittance complex128
}

// NewCapacitorBank takes powers in pu of the system base power.
func NewCapacitorBank(name string, activePower, reactivePower float64) *CapacitorBank {
	return &CapacitorBank{
		BaseElement: BaseElement{Name: name},
		power:       complex(activePower, reactivePower),
	}
}

func (c *CapacitorBank) ComplexPower() complex128 {
	return c.power
}

func (c *CapacitorBank) Admittance() complex128 {
	return c.admittance
}

func (c *CapacitorBank) UpdateVoltage(v complex128) {
	if v == 0 {
		c.admittance = complex(math.Inf(1), math.Inf(-1))
		return
	}
	magnitude := cmplx.Abs(v)
	c.admittance = cmplx.Conj(c.power) / complex(magnitude*magnitude, 0)
}

func (c *CapacitorBank) Stamp(m matrix.DeviceMatrix, i int) error {
	matrix.AddAdmittance(m, i, i, c.admittance)
	return nil
}

func (c *CapacitorBank) Clone() *CapacitorBank {
	clone := *c
	return &clone
}

func (c *CapacitorBank) String() string {
	return fmt.Sprintf("Capacitor bank: Name=[%s] P=[%g] Q=[%g]", c.Name, real(c.power), imag(c.power))
}
