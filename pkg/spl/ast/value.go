package ast

import "fmt"

// ValueType represents the type of a comparison value in an SPL rule.
// SPL has a small closed type system; numeric comparisons coerce integer and
// floating literals, nothing else is coerced.
type ValueType string

const (
	ValueTypeString   ValueType = "string"
	ValueTypeNumber   ValueType = "number"
	ValueTypeBoolean  ValueType = "boolean"
	ValueTypeArray    ValueType = "array"
	ValueTypeVariable ValueType = "variable" // Reference to a rule-set variable
	ValueTypeLimit    ValueType = "limit"    // Reference to the rule's adjusted limit
	ValueTypeNull     ValueType = "null"
)

// ValueNode represents a value in the AST (used in predicates and variables).
// Values can be literals, references to rule-set variables, or a reference to
// the rule's state-adjusted amount limit ("{{ limit }}").
type ValueNode struct {
	Type         ValueType   // Type of the value
	Value        interface{} // Actual value (nil for null and references)
	VariableName string      // Name of variable if Type is Variable
	Location     Location    // Source location
}

// IsLiteral returns true if this value is a literal (not a reference).
func (v *ValueNode) IsLiteral() bool {
	return v.Type != ValueTypeVariable && v.Type != ValueTypeLimit
}

// IsVariable returns true if this value is a variable reference.
func (v *ValueNode) IsVariable() bool {
	return v.Type == ValueTypeVariable
}

// IsLimitRef returns true if this value references the rule's adjusted limit.
func (v *ValueNode) IsLimitRef() bool {
	return v.Type == ValueTypeLimit
}

// String returns a string representation of the value.
func (v *ValueNode) String() string {
	switch v.Type {
	case ValueTypeVariable:
		return "{{ variables." + v.VariableName + " }}"
	case ValueTypeLimit:
		return "{{ limit }}"
	case ValueTypeNull:
		return "null"
	default:
		return fmt.Sprint(v.Value)
	}
}
