package hyper

import "math"

// Invariants holds (Ic, IIc, IIIc) for one element.
type Invariants [3]float64

func (v Invariants) Ic() float64   { return v[0] }
func (v Invariants) IIc() float64  { return v[1] }
func (v Invariants) IIIc() float64 { return v[2] }

// Rest is the value of the invariants at F = I.
var Rest = Invariants{3, 3, 1}

// Validate returns a *DomainError if the invariants are not finite or
// IIIc <= 0.
func (v Invariants) Validate() error {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return &DomainError{Element: -1, Kind: NonFinite, Value: x}
		}
	}
	if v[2] <= 0 {
		return &DomainError{Element: -1, Kind: Degenerate, Value: v[2]}
	}
	return nil
}

// Gradient holds ∂W/∂(Ic, IIc, IIIc).
type Gradient [3]float64

// Hessian is the symmetric 3x3 second derivative of W packed as
// (11, 12, 13, 22, 23, 33).
type Hessian [6]float64

var hessianIndex = [3][3]int{
	{0, 1, 2},
	{1, 3, 4},
	{2, 4, 5},
}

// At returns ∂²W/∂I_i∂I_j. Symmetric by construction.
func (h Hessian) At(i, j int) float64 {
	return h[hessianIndex[i][j]]
}
