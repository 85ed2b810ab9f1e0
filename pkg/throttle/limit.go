package throttle

// AdjustmentWeights controls how strongly each state variable tightens the
// limit. Each weight must be in [0, 1]; a weight of 0 removes that variable's
// influence, a weight of 1 lets it scale the limit all the way to zero.
type AdjustmentWeights struct {
	Stress     float64 `yaml:"stress"`
	Centrality float64 `yaml:"centrality"`
	Friction   float64 `yaml:"friction"`
}

// DefaultAdjustmentWeights returns the weights used when none are configured.
// Stress dominates; centrality and friction tighten more gently.
func DefaultAdjustmentWeights() AdjustmentWeights {
	return AdjustmentWeights{
		Stress:     0.6,
		Centrality: 0.3,
		Friction:   0.3,
	}
}

// Valid reports whether every weight is within [0, 1].
func (w AdjustmentWeights) Valid() bool {
	for _, v := range []float64{w.Stress, w.Centrality, w.Friction} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// Factor computes the limit adjustment factor for a state vector:
//
//	f = (1 - wS*stress) * (1 - wC*centrality) * (1 - wF*friction)
//
// Inputs are clamped to [0, 1] first, so the factor is bounded to [0, 1] and
// monotone non-increasing in every state variable. The same formula applies to
// every node; there is no per-node special-casing.
func (w AdjustmentWeights) Factor(sv StateVector) float64 {
	f := (1 - w.Stress*clamp01(sv.Stress)) *
		(1 - w.Centrality*clamp01(sv.Centrality)) *
		(1 - w.Friction*clamp01(sv.Friction))
	return clamp01(f)
}

// Adjust scales a base limit by the adjustment factor for the state vector.
func (w AdjustmentWeights) Adjust(baseLimit float64, sv StateVector) float64 {
	if baseLimit < 0 {
		return 0
	}
	return baseLimit * w.Factor(sv)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
