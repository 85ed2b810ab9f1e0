package ast

// ConditionType represents the type of condition expression in SPL.
type ConditionType string

const (
	ConditionTypeSimple ConditionType = "simple" // field op value
	ConditionTypeAll    ConditionType = "all"    // AND of children
	ConditionTypeAny    ConditionType = "any"    // OR of children
	ConditionTypeNot    ConditionType = "not"    // NOT of a single child
)

// Operator represents a comparison operator in SPL predicates.
type Operator string

const (
	OperatorEqual        Operator = "eq"
	OperatorNotEqual     Operator = "neq"
	OperatorGreaterThan  Operator = "gt"
	OperatorGreaterEqual Operator = "gte"
	OperatorLessThan     Operator = "lt"
	OperatorLessEqual    Operator = "lte"
	OperatorIn           Operator = "in"
	OperatorExists       Operator = "exists"
)

// Operators lists every operator SPL accepts, in documentation order.
var Operators = []Operator{
	OperatorEqual,
	OperatorNotEqual,
	OperatorGreaterThan,
	OperatorGreaterEqual,
	OperatorLessThan,
	OperatorLessEqual,
	OperatorIn,
	OperatorExists,
}

// IsKnownOperator returns true if op is a valid SPL operator.
func IsKnownOperator(op Operator) bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// ConditionNode represents a condition expression in the AST.
// Conditions are either simple predicates (field op value) or logical
// combinators (all/any/not) over an ordered child sequence. Child order is
// significant: evaluation and trace construction follow it exactly.
type ConditionNode struct {
	Type     ConditionType    // Type of condition
	Field    string           // Field path (for simple conditions), dotted for metadata
	Operator Operator         // Comparison operator (for simple conditions)
	Value    *ValueNode       // Comparison value (for simple conditions; nil for exists)
	Children []*ConditionNode // Child conditions (for all/any/not)
	Location Location         // Source location
}

// IsSimple returns true if this is a simple predicate condition.
func (c *ConditionNode) IsSimple() bool {
	return c.Type == ConditionTypeSimple
}

// IsLogical returns true if this is a logical combinator (all/any/not).
func (c *ConditionNode) IsLogical() bool {
	return c.Type == ConditionTypeAll || c.Type == ConditionTypeAny || c.Type == ConditionTypeNot
}
