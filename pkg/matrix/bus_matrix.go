package matrix

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBusMatrix = errors.New("matrix: no value for bus pair")

// BusMatrix is a dense square matrix addressed by bus names.
type BusMatrix struct {
	names  []string
	index  map[string]int
	values [][]complex128
}

func newBusMatrix(names []string) *BusMatrix {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	values := make([][]complex128, len(names))
	for i := range values {
		values[i] = make([]complex128, len(names))
	}

	return &BusMatrix{
		names:  names,
		index:  index,
		values: values,
	}
}

// AddComplexElement stamps at 1-based (i, j).
func (b *BusMatrix) AddComplexElement(i, j int, real, imag float64) {
	if i <= 0 || j <= 0 || i > len(b.names) || j > len(b.names) {
		log.Warnf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, len(b.names))
		return
	}
	b.values[i-1][j-1] += complex(real, imag)
}

func (b *BusMatrix) At(bus1, bus2 string) (complex128, error) {
	i, ok := b.index[bus1]
	if !ok {
		return 0, fmt.Errorf("%w: (%s, %s)", ErrBusMatrix, bus1, bus2)
	}
	j, ok := b.index[bus2]
	if !ok {
		return 0, fmt.Errorf("%w: (%s, %s)", ErrBusMatrix, bus1, bus2)
	}
	return b.values[i][j], nil
}

// BusNames lists the buses in matrix order.
func (b *BusMatrix) BusNames() []string {
	names := make([]string, len(b.names))
	copy(names, b.names)
	return names
}

func (b *BusMatrix) Dimension() int {
	return len(b.names)
}

func (b *BusMatrix) String() string {
	var sb strings.Builder
	for i, row := range b.values {
		fmt.Fprintf(&sb, "%-20s", b.names[i])
		for _, v := range row {
			fmt.Fprintf(&sb, " (%9.4f %+9.4fj)", real(v), imag(v))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
