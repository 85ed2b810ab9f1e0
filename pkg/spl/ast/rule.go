package ast

// Action represents the screening outcome a rule requests when it triggers.
type Action string

const (
	// ActionAllow permits the transaction to settle.
	ActionAllow Action = "allow"

	// ActionFlag lets the transaction settle but marks it for human review.
	ActionFlag Action = "flag"

	// ActionBlock stops the transaction before settlement.
	ActionBlock Action = "block"
)

// IsKnownAction returns true if a is a valid SPL action.
func IsKnownAction(a Action) bool {
	return a == ActionAllow || a == ActionFlag || a == ActionBlock
}

// LimitSpec declares the base amount limit a rule screens against.
// The effective limit at evaluation time is the base scaled by the network
// throttle's state vector for the transaction's origin node.
type LimitSpec struct {
	Base     float64  // Base permissible amount before state adjustment
	Location Location // Source location
}

// RuleDefinition represents a single screening rule in the AST.
// A rule names a condition tree (when to trigger), an action (what outcome to
// request), and conflict-resolution metadata (priority, regulator).
type RuleDefinition struct {
	ID          string         // Unique rule id within the rule set
	Description string         // Human-readable description
	Regulator   string         // Regulator tag (e.g. "AMLD5", "MiCA")
	Action      Action         // Outcome requested when the rule triggers
	Priority    int            // Higher wins within the same severity tier
	Enabled     bool           // Whether the rule is active (default: true)
	When        *ConditionNode // Root condition node (nil means always trigger)
	Limit       *LimitSpec     // Optional base limit for amount predicates
	Location    Location       // Source location
}

// IsEnabled returns true if the rule is enabled.
// Rules are enabled by default unless explicitly disabled.
func (r *RuleDefinition) IsEnabled() bool {
	return r.Enabled
}

// HasCondition returns true if the rule has a condition tree defined.
func (r *RuleDefinition) HasCondition() bool {
	return r.When != nil
}

// HasLimit returns true if the rule declares a base amount limit.
func (r *RuleDefinition) HasLimit() bool {
	return r.Limit != nil
}

// RuleSet represents the root AST node for an SPL rule file.
type RuleSet struct {
	Name        string // Rule-set name (kebab-case)
	Version     string // Rule-set version
	Description string // Human-readable description

	Variables map[string]*Variable // Variable definitions
	Rules     []*RuleDefinition    // Rule definitions in file order

	SourceFile string   // Path to the rule file
	Location   Location // Source location
}

// Variable represents a reusable value referenced from predicates
// via "{{ variables.name }}".
type Variable struct {
	Name     string     // Variable name
	Value    *ValueNode // Variable value
	Type     ValueType  // Inferred from value
	Location Location   // Source location
}

// GetVariable returns the variable with the given name, or nil if not found.
func (rs *RuleSet) GetVariable(name string) *Variable {
	return rs.Variables[name]
}

// GetRule returns the rule with the given id, or nil if not found.
func (rs *RuleSet) GetRule(id string) *RuleDefinition {
	for _, rule := range rs.Rules {
		if rule.ID == id {
			return rule
		}
	}
	return nil
}

// EnabledRules returns all enabled rules in file order.
func (rs *RuleSet) EnabledRules() []*RuleDefinition {
	var enabled []*RuleDefinition
	for _, rule := range rs.Rules {
		if rule.IsEnabled() {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}
