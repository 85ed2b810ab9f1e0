package engine

import (
	"errors"
	"fmt"

	"mercator-hq/saturn/pkg/spl/ast"
)

// evaluateRule evaluates one compiled rule against a transaction and returns
// its complete trace entry. Never fails; anomalies degrade predicates to
// false and are recorded in the trace.
func evaluateRule(rule *Rule, tx *Transaction, state StateSnapshot, adjustedLimit *float64) *RuleTrace {
	conditionTrace := evaluateCondition(rule.Condition, tx, state, adjustedLimit)

	trace := &RuleTrace{
		RuleID:        rule.ID,
		Action:        rule.Action,
		Priority:      rule.Priority,
		Regulator:     rule.Regulator,
		Triggered:     conditionTrace.Result,
		AdjustedLimit: adjustedLimit,
		Condition:     conditionTrace,
	}

	if trace.Triggered {
		trace.TriggerPath = triggerPath(conditionTrace)
	}

	return trace
}

// evaluateCondition walks a condition tree and returns the matching trace
// tree. All children of all/any nodes are evaluated whatever their siblings
// resolve to, so the trace always covers the full tree.
func evaluateCondition(node *ast.ConditionNode, tx *Transaction, state StateSnapshot, adjustedLimit *float64) *ConditionTrace {
	switch node.Type {
	case ast.ConditionTypeSimple:
		return evaluateSimple(node, tx, state, adjustedLimit)

	case ast.ConditionTypeAll:
		trace := &ConditionTrace{Type: node.Type, Result: true}
		for _, child := range node.Children {
			childTrace := evaluateCondition(child, tx, state, adjustedLimit)
			trace.Children = append(trace.Children, childTrace)
			if !childTrace.Result {
				trace.Result = false
			}
		}
		return trace

	case ast.ConditionTypeAny:
		trace := &ConditionTrace{Type: node.Type}
		for _, child := range node.Children {
			childTrace := evaluateCondition(child, tx, state, adjustedLimit)
			trace.Children = append(trace.Children, childTrace)
			if childTrace.Result {
				trace.Result = true
			}
		}
		return trace

	case ast.ConditionTypeNot:
		childTrace := evaluateCondition(node.Children[0], tx, state, adjustedLimit)
		return &ConditionTrace{
			Type:     node.Type,
			Result:   !childTrace.Result,
			Children: []*ConditionTrace{childTrace},
		}

	default:
		return &ConditionTrace{
			Type:   node.Type,
			Detail: fmt.Sprintf("unknown condition type %q", node.Type),
		}
	}
}

// evaluateSimple evaluates a single predicate. A missing field makes the
// predicate false (or, for exists, reports the absence); a type mismatch
// makes it false with a detail note. Neither aborts the evaluation.
func evaluateSimple(node *ast.ConditionNode, tx *Transaction, state StateSnapshot, adjustedLimit *float64) *ConditionTrace {
	trace := &ConditionTrace{
		Type:     ast.ConditionTypeSimple,
		Field:    node.Field,
		Operator: node.Operator,
	}

	actual, found := extractField(node.Field, tx, state)
	if found {
		trace.Actual = actual
	} else {
		trace.FieldMissing = true
	}

	if node.Operator == ast.OperatorExists {
		trace.Result = found
		return trace
	}

	expected, ok := resolveExpected(node.Value, adjustedLimit)
	if !ok {
		trace.Detail = "limit reference has no adjusted limit"
		return trace
	}
	trace.Expected = expected

	if !found {
		return trace
	}

	result, err := evaluateOperator(node.Operator, actual, expected)
	if err != nil {
		var mismatch *TypeMismatchError
		if errors.As(err, &mismatch) {
			mismatch.Field = node.Field
			mismatch.Operator = string(node.Operator)
		}
		trace.Detail = err.Error()
		return trace
	}

	trace.Result = result
	return trace
}

// resolveExpected produces the concrete comparison value for a predicate.
// Variables were resolved at compile time, so only literals and limit
// references remain.
func resolveExpected(value *ast.ValueNode, adjustedLimit *float64) (interface{}, bool) {
	if value == nil {
		return nil, true
	}
	if value.IsLimitRef() {
		if adjustedLimit == nil {
			return nil, false
		}
		return *adjustedLimit, true
	}
	return value.Value, true
}

// triggerPath returns the labels from the condition root to a triggering
// leaf. For an any node the first true child is followed; for an all node the
// first child (all are true when the rule triggered).
func triggerPath(trace *ConditionTrace) []string {
	var path []string

	current := trace
	for current != nil {
		path = append(path, traceLabel(current))

		switch current.Type {
		case ast.ConditionTypeSimple:
			return path
		case ast.ConditionTypeAny:
			next := current
			for _, child := range current.Children {
				if child.Result {
					next = child
					break
				}
			}
			if next == current {
				return path
			}
			current = next
		default:
			if len(current.Children) == 0 {
				return path
			}
			current = current.Children[0]
		}
	}

	return path
}

// traceLabel renders a condition trace node for the trigger path.
func traceLabel(trace *ConditionTrace) string {
	if trace.Type != ast.ConditionTypeSimple {
		return string(trace.Type)
	}
	if trace.Operator == ast.OperatorExists {
		return fmt.Sprintf("%s exists", trace.Field)
	}
	return fmt.Sprintf("%s %s %v", trace.Field, trace.Operator, trace.Expected)
}
