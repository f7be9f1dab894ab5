package reduce

import "fmt"

type Policy int

const (
	// PolicyReject reports degenerate and inverted elements as domain errors.
	PolicyReject Policy = iota
	// PolicyClamp sign-corrects the smallest stretch and clamps all
	// stretches to at least InversionThreshold.
	PolicyClamp
)

func (p Policy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	case PolicyClamp:
		return "clamp"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "reject":
		return PolicyReject, nil
	case "clamp":
		return PolicyClamp, nil
	}
	return PolicyReject, fmt.Errorf("reduce: unknown inversion policy %q", s)
}

// Options tune the reducer.
//
// RepeatedTolerance is the relative stretch gap below which a pair is
// treated as repeated. The divided difference (P̂i − P̂j)/(σi − σj) loses
// about eps/gap relative accuracy to cancellation, while the limiting
// formula is second-order accurate in the gap; the two errors balance
// near eps^(1/3) ≈ 6e-6, hence the 1e-5 default. Larger values trade
// accuracy in mildly anisotropic states for robustness near isotropy.
//
// DegenerateTolerance is the smallest admissible ratio between the
// smallest and largest eigenvalue of C under PolicyReject.
type Options struct {
	RepeatedTolerance   float64
	DegenerateTolerance float64
	Policy              Policy
	InversionThreshold  float64
}

func DefaultOptions() Options {
	return Options{
		RepeatedTolerance:   1e-5,
		DegenerateTolerance: 1e-12,
		Policy:              PolicyReject,
		InversionThreshold:  0.1,
	}
}

func (o Options) Validate() error {
	if o.RepeatedTolerance < 0 {
		return fmt.Errorf("reduce: repeated tolerance must be non-negative, got %g", o.RepeatedTolerance)
	}
	if o.DegenerateTolerance < 0 {
		return fmt.Errorf("reduce: degenerate tolerance must be non-negative, got %g", o.DegenerateTolerance)
	}
	if o.Policy == PolicyClamp && o.InversionThreshold <= 0 {
		return fmt.Errorf("reduce: inversion threshold must be positive, got %g", o.InversionThreshold)
	}
	if o.Policy != PolicyReject && o.Policy != PolicyClamp {
		return fmt.Errorf("reduce: unknown policy %v", o.Policy)
	}
	return nil
}
