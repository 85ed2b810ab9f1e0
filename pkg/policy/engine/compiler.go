package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mercator-hq/saturn/pkg/spl/ast"
	splerrors "mercator-hq/saturn/pkg/spl/errors"
)

// orderedOperators require numeric operands on both sides.
var orderedOperators = map[ast.Operator]bool{
	ast.OperatorGreaterThan:  true,
	ast.OperatorGreaterEqual: true,
	ast.OperatorLessThan:     true,
	ast.OperatorLessEqual:    true,
}

// Compile validates a parsed rule set and produces the immutable compiled
// form the engine evaluates. All defects are accumulated and reported in one
// pass; a rule set with any defect is rejected whole.
//
// Compilation resolves every "{{ variables.* }}" reference to its literal
// value, so evaluation never consults the variable table. "{{ limit }}"
// references stay symbolic; they resolve against the state-adjusted limit at
// evaluation time. Disabled rules are dropped here, and the surviving rules
// are ordered by (priority desc, id asc) so evaluation order is stable.
func Compile(def *ast.RuleSet) (*RuleSet, error) {
	if def == nil {
		return nil, &CompilationError{Errors: singleError(
			splerrors.ErrorTypeStructural, "", "rule set cannot be nil", ast.Location{})}
	}

	errs := splerrors.NewErrorList()

	seen := make(map[string]ast.Location, len(def.Rules))
	compiled := make([]*Rule, 0, len(def.Rules))

	for _, rule := range def.Rules {
		if rule.ID == "" {
			errs.AddError(splerrors.ErrorTypeStructural, "",
				"rule is missing an id", rule.Location)
			continue
		}
		if prev, dup := seen[rule.ID]; dup {
			errs.AddError(splerrors.ErrorTypeStructural, rule.ID,
				fmt.Sprintf("duplicate rule id (first defined at %s)", prev), rule.Location)
			continue
		}
		seen[rule.ID] = rule.Location

		if !ast.IsKnownAction(rule.Action) {
			errs.AddErrorWithSuggestion(splerrors.ErrorTypeStructural, rule.ID,
				fmt.Sprintf("unknown action %q", rule.Action), rule.Location,
				"valid actions: allow, flag, block")
		}

		if rule.Limit != nil && rule.Limit.Base < 0 {
			errs.AddError(splerrors.ErrorTypeSemantic, rule.ID,
				fmt.Sprintf("limit base must be non-negative, got %v", rule.Limit.Base),
				rule.Limit.Location)
		}

		condition := rule.When
		if condition == nil {
			// A rule with no condition always triggers.
			condition = alwaysTrue(rule.Location)
		}

		resolved := compileCondition(condition, rule, def, errs)

		if rule.IsEnabled() {
			compiled = append(compiled, &Rule{
				ID:          rule.ID,
				Description: rule.Description,
				Regulator:   rule.Regulator,
				Action:      rule.Action,
				Priority:    rule.Priority,
				Condition:   resolved,
				Limit:       rule.Limit,
			})
		}
	}

	if errs.HasErrors() {
		return nil, &CompilationError{Source: def.SourceFile, Errors: errs}
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		if compiled[i].Priority != compiled[j].Priority {
			return compiled[i].Priority > compiled[j].Priority
		}
		return compiled[i].ID < compiled[j].ID
	})

	return &RuleSet{
		Name:       def.Name,
		Version:    def.Version,
		Rules:      compiled,
		Source:     def.SourceFile,
		CompiledAt: time.Now(),
	}, nil
}

// compileCondition validates a condition node and returns a resolved copy.
// Variable references become literals; defects go to the error list and yield
// a best-effort copy so validation can continue past them.
func compileCondition(node *ast.ConditionNode, rule *ast.RuleDefinition, def *ast.RuleSet, errs *splerrors.ErrorList) *ast.ConditionNode {
	switch node.Type {
	case ast.ConditionTypeSimple:
		return compileSimple(node, rule, def, errs)

	case ast.ConditionTypeAll, ast.ConditionTypeAny:
		if len(node.Children) == 0 {
			errs.AddError(splerrors.ErrorTypeStructural, rule.ID,
				fmt.Sprintf("%s condition must have at least one child", node.Type), node.Location)
		}
		children := make([]*ast.ConditionNode, 0, len(node.Children))
		for _, child := range node.Children {
			children = append(children, compileCondition(child, rule, def, errs))
		}
		return &ast.ConditionNode{
			Type:     node.Type,
			Children: children,
			Location: node.Location,
		}

	case ast.ConditionTypeNot:
		if len(node.Children) != 1 {
			errs.AddError(splerrors.ErrorTypeStructural, rule.ID,
				fmt.Sprintf("not condition must have exactly one child, got %d", len(node.Children)),
				node.Location)
			return &ast.ConditionNode{Type: ast.ConditionTypeNot, Location: node.Location}
		}
		return &ast.ConditionNode{
			Type:     ast.ConditionTypeNot,
			Children: []*ast.ConditionNode{compileCondition(node.Children[0], rule, def, errs)},
			Location: node.Location,
		}

	default:
		errs.AddError(splerrors.ErrorTypeStructural, rule.ID,
			fmt.Sprintf("unknown condition type %q", node.Type), node.Location)
		return alwaysFalseCopy(node)
	}
}

// compileSimple validates a predicate and resolves its comparison value.
func compileSimple(node *ast.ConditionNode, rule *ast.RuleDefinition, def *ast.RuleSet, errs *splerrors.ErrorList) *ast.ConditionNode {
	if node.Field == "" {
		errs.AddError(splerrors.ErrorTypeStructural, rule.ID,
			"predicate is missing a field", node.Location)
	} else if !validFieldPath(node.Field) {
		errs.AddErrorWithSuggestion(splerrors.ErrorTypeSemantic, rule.ID,
			fmt.Sprintf("unknown field path %q", node.Field), node.Location,
			"addressable fields: id, amount, currency, origin, destination, context, metadata.<key>, state.<signal>")
	}

	if !ast.IsKnownOperator(node.Operator) {
		errs.AddErrorWithSuggestion(splerrors.ErrorTypeStructural, rule.ID,
			fmt.Sprintf("unknown operator %q", node.Operator), node.Location,
			"valid operators: "+operatorNames())
	}

	resolved := resolveValue(node, rule, def, errs)

	if node.Operator == ast.OperatorExists {
		if node.Value != nil {
			errs.AddError(splerrors.ErrorTypeStructural, rule.ID,
				"exists predicate must not have a value", node.Location)
		}
	} else if resolved == nil {
		errs.AddError(splerrors.ErrorTypeStructural, rule.ID,
			fmt.Sprintf("%s predicate requires a value", node.Operator), node.Location)
	}

	checkValueShape(node, resolved, rule, errs)

	return &ast.ConditionNode{
		Type:     ast.ConditionTypeSimple,
		Field:    node.Field,
		Operator: node.Operator,
		Value:    resolved,
		Location: node.Location,
	}
}

// resolveValue resolves variable references to literals and validates limit
// references. Literals pass through as copies.
func resolveValue(node *ast.ConditionNode, rule *ast.RuleDefinition, def *ast.RuleSet, errs *splerrors.ErrorList) *ast.ValueNode {
	value := node.Value
	if value == nil {
		return nil
	}

	switch {
	case value.IsVariable():
		variable := def.GetVariable(value.VariableName)
		if variable == nil {
			errs.AddErrorWithSuggestion(splerrors.ErrorTypeSemantic, rule.ID,
				fmt.Sprintf("undefined variable %q", value.VariableName), value.Location,
				"define the variable in the rule set's variables block")
			return &ast.ValueNode{Type: ast.ValueTypeNull, Location: value.Location}
		}
		return &ast.ValueNode{
			Type:     variable.Type,
			Value:    variable.Value.Value,
			Location: value.Location,
		}

	case value.IsLimitRef():
		if rule.Limit == nil {
			errs.AddErrorWithSuggestion(splerrors.ErrorTypeSemantic, rule.ID,
				"predicate references {{ limit }} but the rule declares no limit", value.Location,
				"add a limit block with a base amount to the rule")
		}
		cp := *value
		return &cp

	default:
		cp := *value
		return &cp
	}
}

// checkValueShape rejects operator/value combinations that could never hold.
func checkValueShape(node *ast.ConditionNode, resolved *ast.ValueNode, rule *ast.RuleDefinition, errs *splerrors.ErrorList) {
	if resolved == nil {
		return
	}

	if orderedOperators[node.Operator] {
		if !resolved.IsLimitRef() && resolved.Type != ast.ValueTypeNumber {
			errs.AddError(splerrors.ErrorTypeSemantic, rule.ID,
				fmt.Sprintf("%s predicate requires a numeric value, got %s", node.Operator, resolved.Type),
				node.Location)
		}
	}

	if node.Operator == ast.OperatorIn && resolved.Type != ast.ValueTypeArray {
		errs.AddError(splerrors.ErrorTypeSemantic, rule.ID,
			fmt.Sprintf("in predicate requires a list value, got %s", resolved.Type),
			node.Location)
	}
}

// alwaysTrue builds the condition used for rules without a when block.
// The transaction id field always resolves, so the predicate always holds.
func alwaysTrue(loc ast.Location) *ast.ConditionNode {
	return &ast.ConditionNode{
		Type:     ast.ConditionTypeSimple,
		Field:    "id",
		Operator: ast.OperatorExists,
		Location: loc,
	}
}

// alwaysFalseCopy replaces an unrecognized node so compilation can continue
// collecting errors. The rule set is rejected anyway once errors exist.
func alwaysFalseCopy(node *ast.ConditionNode) *ast.ConditionNode {
	return &ast.ConditionNode{
		Type: ast.ConditionTypeNot,
		Children: []*ast.ConditionNode{{
			Type:     ast.ConditionTypeSimple,
			Field:    "id",
			Operator: ast.OperatorExists,
			Location: node.Location,
		}},
		Location: node.Location,
	}
}

func operatorNames() string {
	names := make([]string, len(ast.Operators))
	for i, op := range ast.Operators {
		names[i] = string(op)
	}
	return strings.Join(names, ", ")
}

func singleError(errType splerrors.ErrorType, ruleID, message string, loc ast.Location) *splerrors.ErrorList {
	errs := splerrors.NewErrorList()
	errs.AddError(errType, ruleID, message, loc)
	return errs
}
