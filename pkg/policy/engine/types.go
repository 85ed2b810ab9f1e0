package engine

import (
	"time"

	"mercator-hq/saturn/pkg/spl/ast"
)

// Transaction is the immutable record screened by the engine.
// It is built once per evaluation request and never mutated.
type Transaction struct {
	// ID is the caller-assigned transaction identifier.
	ID string `json:"id"`

	// Amount is the transaction amount. Must be non-negative.
	Amount float64 `json:"amount"`

	// Currency is the ISO currency code.
	Currency string `json:"currency"`

	// Origin is the sending node identifier.
	Origin string `json:"origin"`

	// Destination is the receiving node identifier.
	Destination string `json:"destination"`

	// Context describes the settlement context (e.g. "virtual_asset_transfer").
	Context string `json:"context,omitempty"`

	// Metadata carries typed compliance attributes (KYC tier, sanctions
	// screening results). A predicate referencing an absent key evaluates to
	// false, never to an error.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Rule is a compiled screening rule. Variable references are resolved at
// compile time, so evaluation reads only this structure, the transaction,
// and the state snapshot. Immutable once compiled.
type Rule struct {
	// ID is the unique rule identifier.
	ID string

	// Description is the human-readable rule description.
	Description string

	// Regulator is the regulator tag the rule implements, if any.
	Regulator string

	// Action is the outcome the rule requests when it triggers.
	Action ast.Action

	// Priority ranks the rule within its severity tier (higher is stronger).
	Priority int

	// Condition is the root of the resolved condition tree. Never nil.
	Condition *ast.ConditionNode

	// Limit is the optional base amount limit backing "{{ limit }}" predicates.
	Limit *ast.LimitSpec
}

// RuleSet is an immutable compiled rule set. The engine replaces the whole
// set atomically on reload; it is never mutated in place.
type RuleSet struct {
	// Name is the rule-set name from the source file.
	Name string

	// Version is the rule-set version from the source file.
	Version string

	// Rules holds the compiled rules ordered by (priority desc, id asc).
	Rules []*Rule

	// Source identifies where the rule set was loaded from.
	Source string

	// CompiledAt is when compilation finished.
	CompiledAt time.Time
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	return len(rs.Rules)
}

// Decision is the final, immutable outcome of one evaluation.
// Exactly one Decision is produced per evaluation call.
type Decision struct {
	// Action is the final screening action.
	Action ast.Action `json:"action"`

	// RuleID is the winning rule's id, empty when no rule triggered.
	RuleID string `json:"rule_id,omitempty"`

	// Default is true when no rule triggered and the system default applied.
	Default bool `json:"default"`

	// TriggeredRules lists the ids of every rule that triggered, in
	// evaluation order.
	TriggeredRules []string `json:"triggered_rules"`

	// Trace is the complete evaluation trace.
	Trace *EvaluationTrace `json:"trace"`
}

// EvaluationTrace records the full evaluation, one entry per rule in
// evaluation order, suitable for direct audit-log emission.
type EvaluationTrace struct {
	// TransactionID echoes the screened transaction's id.
	TransactionID string `json:"transaction_id"`

	// State is the state vector snapshot the evaluation ran against.
	State StateSnapshot `json:"state"`

	// Rules holds one trace entry per evaluated rule.
	Rules []*RuleTrace `json:"rules"`
}

// StateSnapshot is the origin node's state vector as observed at the start
// of the evaluation, echoed into the trace so the decision can be reproduced.
type StateSnapshot struct {
	Node       string  `json:"node"`
	Stress     float64 `json:"network_stress"`
	Centrality float64 `json:"node_centrality"`
	Friction   float64 `json:"friction_score"`
	Observed   bool    `json:"observed"`
}

// RuleTrace records the evaluation of a single rule.
type RuleTrace struct {
	// RuleID is the rule's id.
	RuleID string `json:"rule_id"`

	// Action is the action the rule requests.
	Action ast.Action `json:"action"`

	// Priority is the rule's configured priority.
	Priority int `json:"priority"`

	// Regulator is the rule's regulator tag, if any.
	Regulator string `json:"regulator,omitempty"`

	// Triggered reports whether the rule's condition held.
	Triggered bool `json:"triggered"`

	// Winner marks the rule that won conflict resolution.
	Winner bool `json:"winner,omitempty"`

	// AdjustedLimit is the state-adjusted amount limit that the rule's limit
	// predicates compared against, present when the rule declares a base limit.
	AdjustedLimit *float64 `json:"adjusted_limit,omitempty"`

	// Condition is the sub-evaluation of the rule's condition tree.
	Condition *ConditionTrace `json:"condition"`

	// TriggerPath is the path from the condition root to a triggering leaf,
	// present only for triggered rules.
	TriggerPath []string `json:"trigger_path,omitempty"`
}

// ConditionTrace mirrors the shape of the condition tree actually visited.
// Every child of an all/any node appears, whatever the sibling results.
type ConditionTrace struct {
	// Type is the condition node type (simple, all, any, not).
	Type ast.ConditionType `json:"type"`

	// Field is the predicate's field path (simple nodes only).
	Field string `json:"field,omitempty"`

	// Operator is the predicate's operator (simple nodes only).
	Operator ast.Operator `json:"op,omitempty"`

	// Expected is the resolved comparison value (simple nodes only).
	Expected interface{} `json:"expected,omitempty"`

	// Actual is the value extracted from the transaction or state snapshot.
	Actual interface{} `json:"actual,omitempty"`

	// Result is the node's boolean outcome.
	Result bool `json:"result"`

	// FieldMissing marks a predicate whose field was absent. The predicate
	// degraded to false (or, for exists, reported the absence).
	FieldMissing bool `json:"field_absent,omitempty"`

	// Detail notes an evaluation anomaly, such as a type mismatch, that
	// degraded the predicate to false.
	Detail string `json:"detail,omitempty"`

	// Children holds the sub-traces of all/any/not children, in order.
	Children []*ConditionTrace `json:"children,omitempty"`
}
