package throttle

import (
	"time"
)

// StateVector is an immutable snapshot of a node's state variables.
// All components are bounded to [0, 1].
type StateVector struct {
	// Stress is the node's exponentially weighted capacity utilization.
	Stress float64 `json:"network_stress"`

	// Centrality is the node's normalized share of total observed flow.
	Centrality float64 `json:"node_centrality"`

	// Friction is the node's exponentially weighted data-gap score.
	Friction float64 `json:"friction_score"`

	// Observed reports whether the node has any observed history.
	// False means the vector is the worst-case default.
	Observed bool `json:"observed"`
}

// WorstCase returns the most conservative state vector, used for nodes with
// no observed history: maximum stress, maximum centrality, maximum friction.
func WorstCase() StateVector {
	return StateVector{Stress: 1, Centrality: 1, Friction: 1, Observed: false}
}

// Observation records one settled transaction as seen by the throttle.
type Observation struct {
	// Origin is the sending node id.
	Origin string

	// Destination is the receiving node id.
	Destination string

	// Amount is the settled amount.
	Amount float64

	// DataGap marks the observation as carrying compliance-relevant missing
	// data (incomplete KYC, absent sanctions screening). It feeds the
	// friction score.
	DataGap bool

	// SettledAt is when the transaction settled.
	SettledAt time.Time
}

// nodeState is the mutable per-node accumulator. It is owned by the Throttle
// and only ever copied out, never shared.
type nodeState struct {
	inflow       float64
	outflow      float64
	observations int64
	stress       float64
	friction     float64
	updatedAt    time.Time
}
