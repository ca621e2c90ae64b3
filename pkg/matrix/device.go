package matrix

// DeviceMatrix receives admittance stamps from network elements.
type DeviceMatrix interface {
	AddComplexElement(i, j int, real, imag float64) // 1-based indexing
}

// AddAdmittance stamps y at (i, j).
func AddAdmittance(m DeviceMatrix, i, j int, y complex128) {
	m.AddComplexElement(i, j, real(y), imag(y))
}
