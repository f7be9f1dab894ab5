package fem

// Shape describes the rest geometry of an element mesh whose deformation
// gradient is constant per element, F = Σa x_a ⊗ ∇N_a.
type Shape interface {
	NumElements() int
	NumElementVertices() int

	// ElementVolume is the rest volume of element el.
	ElementVolume(el int) float64

	// ShapeGradient is ∇N_a with respect to rest coordinates for vertex a
	// of element el.
	ShapeGradient(el, a int) [3]float64
}
