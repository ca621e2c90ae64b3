package matrix

import (
	"fmt"
	"sort"
	"sync"
)

// Node is a bus seen by the admittance matrix builder.
type Node interface {
	GetName() string
	HasName(name string) bool
	HasGenerators() bool
	StampShunts(m DeviceMatrix, i int) error
	MatrixBranches() []Branch
}

// Branch is a set of parallel elements between two buses.
type Branch interface {
	BusNames() (string, string)
	// Stamp adds the branch between 1-based indices i and j, where i is the
	// index of from.
	Stamp(m DeviceMatrix, i, j int, from Node) error
}

// AdmittanceMatrix is ordered so that generator buses come first.
type AdmittanceMatrix struct {
	*BusMatrix
	generatorBuses int

	reduceOnce sync.Once
	reduced    *BusMatrix
	reduceErr  error
}

func NewAdmittanceMatrix(buses []Node) (*AdmittanceMatrix, error) {
	sorted := make([]Node, len(buses))
	copy(sorted, buses)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].HasGenerators() && !sorted[b].HasGenerators()
	})

	names := make([]string, len(sorted))
	generatorBuses := 0
	for i, bus := range sorted {
		names[i] = bus.GetName()
		if bus.HasGenerators() {
			generatorBuses++
		}
	}

	m := &AdmittanceMatrix{
		BusMatrix:      newBusMatrix(names),
		generatorBuses: generatorBuses,
	}

	stamped := make(map[Branch]bool)
	for i, bus := range sorted {
		if err := bus.StampShunts(m, i+1); err != nil {
			return nil, fmt.Errorf("bus %s: %w", bus.GetName(), err)
		}

		for _, branch := range bus.MatrixBranches() {
			if stamped[branch] {
				continue
			}
			stamped[branch] = true

			first, second := branch.BusNames()
			other := first
			if bus.HasName(first) {
				other = second
			}
			j, ok := m.index[other]
			if !ok {
				return nil, fmt.Errorf("%w: branch (%s, %s) leaves the matrix", ErrBusMatrix, first, second)
			}
			if err := branch.Stamp(m, i+1, j+1, bus); err != nil {
				return nil, fmt.Errorf("branch (%s, %s): %w", first, second, err)
			}
		}
	}

	return m, nil
}

// GeneratorBusNames lists the buses kept by the reduction.
func (m *AdmittanceMatrix) GeneratorBusNames() []string {
	return m.BusNames()[:m.generatorBuses]
}

// Reduction eliminates every bus without a generator:
// Rnn = Ynn - Ynr·inv(Yrr)·Yrn. It is computed once.
func (m *AdmittanceMatrix) Reduction() (*BusMatrix, error) {
	m.reduceOnce.Do(func() {
		m.reduced, m.reduceErr = m.reduce()
	})
	return m.reduced, m.reduceErr
}

func (m *AdmittanceMatrix) reduce() (*BusMatrix, error) {
	n := m.generatorBuses
	r := m.Dimension() - n

	reduced := newBusMatrix(m.GeneratorBusNames())
	for i := 0; i < n; i++ {
		copy(reduced.values[i], m.values[i][:n])
	}
	if r == 0 || n == 0 {
		return reduced, nil
	}

	yrr, err := m.block(n, r)
	if err != nil {
		return nil, err
	}
	defer yrr.Destroy()

	column := make([]complex128, r)
	for k := 0; k < n; k++ {
		for i := 0; i < r; i++ {
			column[i] = m.values[n+i][k]
		}
		x, err := yrr.Solve(column)
		if err != nil {
			return nil, fmt.Errorf("reduction: %w", err)
		}

		for i := 0; i < n; i++ {
			var sum complex128
			for l := 0; l < r; l++ {
				sum += m.values[i][n+l] * x[l]
			}
			reduced.values[i][k] -= sum
		}
	}

	return reduced, nil
}

// block copies the square block starting at offset into a sparse matrix.
func (m *AdmittanceMatrix) block(offset, size int) (*ComplexMatrix, error) {
	sm, err := NewComplexMatrix(size)
	if err != nil {
		return nil, err
	}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if v := m.values[offset+i][offset+j]; v != 0 {
				sm.AddComplexElement(i+1, j+1, real(v), imag(v))
			}
		}
	}
	return sm, nil
}

// Impedance returns the full inverse of the matrix.
func (m *AdmittanceMatrix) Impedance() (*BusMatrix, error) {
	size := m.Dimension()
	z := newBusMatrix(m.BusNames())
	if size == 0 {
		return z, nil
	}

	y, err := m.block(0, size)
	if err != nil {
		return nil, err
	}
	defer y.Destroy()

	unit := make([]complex128, size)
	for k := 0; k < size; k++ {
		for i := range unit {
			unit[i] = 0
		}
		unit[k] = 1

		x, err := y.Solve(unit)
		if err != nil {
			return nil, fmt.Errorf("impedance: %w", err)
		}
		for i := 0; i < size; i++ {
			z.values[i][k] = x[i]
		}
	}

	return z, nil
}
