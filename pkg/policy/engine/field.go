package engine

import (
	"strings"
)

// State vector field names addressable under the "state." prefix.
const (
	stateFieldStress     = "network_stress"
	stateFieldCentrality = "node_centrality"
	stateFieldFriction   = "friction_score"
)

// extractField resolves a dotted field path against the transaction and the
// state snapshot. The second return reports whether the field was present;
// absence is a normal outcome, not an error.
//
// Supported paths:
//
//	id, amount, currency, origin, destination, context
//	metadata.<key>[.<key>...]   nested lookup through map values
//	state.network_stress, state.node_centrality, state.friction_score
func extractField(fieldPath string, tx *Transaction, state StateSnapshot) (interface{}, bool) {
	parts := strings.Split(fieldPath, ".")

	switch parts[0] {
	case "id":
		return tx.ID, true
	case "amount":
		return tx.Amount, true
	case "currency":
		return tx.Currency, true
	case "origin":
		return tx.Origin, true
	case "destination":
		return tx.Destination, true
	case "context":
		if tx.Context == "" {
			return nil, false
		}
		return tx.Context, true
	case "metadata":
		if len(parts) < 2 {
			return nil, false
		}
		return extractMetadataField(parts[1:], tx.Metadata)
	case "state":
		if len(parts) != 2 {
			return nil, false
		}
		return extractStateField(parts[1], state)
	default:
		return nil, false
	}
}

// extractMetadataField walks nested metadata maps along the key path.
func extractMetadataField(keys []string, metadata map[string]interface{}) (interface{}, bool) {
	if metadata == nil {
		return nil, false
	}

	current := metadata
	for i, key := range keys {
		value, ok := current[key]
		if !ok {
			return nil, false
		}
		if i == len(keys)-1 {
			return value, true
		}

		nested, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = nested
	}

	return nil, false
}

// extractStateField resolves a state vector component from the snapshot taken
// at the start of the evaluation.
func extractStateField(name string, state StateSnapshot) (interface{}, bool) {
	switch name {
	case stateFieldStress:
		return state.Stress, true
	case stateFieldCentrality:
		return state.Centrality, true
	case stateFieldFriction:
		return state.Friction, true
	default:
		return nil, false
	}
}

// validFieldPath reports whether a field path is addressable at all. The
// compiler rejects paths that could never resolve, so typos fail at load time
// instead of silently evaluating to false forever.
func validFieldPath(fieldPath string) bool {
	if fieldPath == "" {
		return false
	}
	parts := strings.Split(fieldPath, ".")

	switch parts[0] {
	case "id", "amount", "currency", "origin", "destination", "context":
		return len(parts) == 1
	case "metadata":
		if len(parts) < 2 {
			return false
		}
		for _, key := range parts[1:] {
			if key == "" {
				return false
			}
		}
		return true
	case "state":
		if len(parts) != 2 {
			return false
		}
		switch parts[1] {
		case stateFieldStress, stateFieldCentrality, stateFieldFriction:
			return true
		}
		return false
	default:
		return false
	}
}
