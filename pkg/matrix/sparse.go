package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "matrix")

// ComplexMatrix wraps a sparse complex matrix with interleaved right hand
// side vectors. Indices are 1-based.
type ComplexMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	config   *sparse.Configuration
	factored bool
}

func NewComplexMatrix(size int) (*ComplexMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 true,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("error creating sparse matrix: %w", err)
	}

	m := &ComplexMatrix{
		Size:   size,
		matrix: mat,
		config: config,
	}
	m.setupDiagonal()

	return m, nil
}

// setupDiagonal creates every diagonal element so that the ordering never
// meets a missing pivot slot.
func (m *ComplexMatrix) setupDiagonal() {
	for i := 1; i <= m.Size; i++ {
		m.matrix.GetElement(int64(i), int64(i))
	}
}

func (m *ComplexMatrix) AddComplexElement(i, j int, real, imag float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		log.Warnf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.Size)
		return
	}

	element := m.matrix.GetElement(int64(i), int64(j))
	element.Real += real
	element.Imag += imag
}

func (m *ComplexMatrix) Factor() error {
	var err error

	err = m.matrix.Factor()
	if err != nil {
		return fmt.Errorf("matrix factorization failed: %w", err)
	}
	m.factored = true

	return nil
}

// Solve returns x with A·x = b. b and x are 0-based; the matrix is factored
// on first use.
func (m *ComplexMatrix) Solve(b []complex128) ([]complex128, error) {
	if len(b) != m.Size {
		return nil, fmt.Errorf("rhs size %d does not match matrix size %d", len(b), m.Size)
	}
	if !m.factored {
		if err := m.Factor(); err != nil {
			return nil, err
		}
	}

	rhs := make([]float64, 2*(m.Size+1))
	for i, v := range b {
		rhs[2*(i+1)] = real(v)
		rhs[2*(i+1)+1] = imag(v)
	}

	solution, _, err := m.matrix.SolveComplex(rhs, nil)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %w", err)
	}

	x := make([]complex128, m.Size)
	for i := range x {
		x[i] = complex(solution[2*(i+1)], solution[2*(i+1)+1])
	}
	return x, nil
}

func (m *ComplexMatrix) PrintSystem() {
	m.matrix.Print(false, true, true)
}

func (m *ComplexMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}
