package parser

import (
	"fmt"
	"regexp"
	"strings"

	"mercator-hq/saturn/pkg/spl/ast"
	splErrors "mercator-hq/saturn/pkg/spl/errors"
)

// variableRefPattern matches "{{ variables.name }}" references.
var variableRefPattern = regexp.MustCompile(`^\{\{\s*variables\.([A-Za-z_][A-Za-z0-9_]*)\s*\}\}$`)

// limitRefPattern matches the "{{ limit }}" reference.
var limitRefPattern = regexp.MustCompile(`^\{\{\s*limit\s*\}\}$`)

// builder constructs AST nodes from intermediate YAML structures.
// It handles type conversion and shape validation. Locations are tracked per
// rule entry; every node inside a rule carries that rule's source line.
type builder struct {
	sourcePath string
	maxDepth   int
	errors     *splErrors.ErrorList
	ruleLoc    ast.Location
}

// newBuilder creates a new AST builder for the given source file.
func newBuilder(sourcePath string, maxDepth int) *builder {
	return &builder{
		sourcePath: sourcePath,
		maxDepth:   maxDepth,
		errors:     splErrors.NewErrorList(),
	}
}

// buildRuleSet transforms a yamlRuleSet into an ast.RuleSet.
func (b *builder) buildRuleSet(yrs *yamlRuleSet) (*ast.RuleSet, error) {
	rs := &ast.RuleSet{
		Name:        yrs.Name,
		Version:     yrs.Version,
		Description: yrs.Description,
		SourceFile:  b.sourcePath,
		Variables:   make(map[string]*ast.Variable),
		Rules:       make([]*ast.RuleDefinition, 0, len(yrs.Rules)),
		Location: ast.Location{
			File:   b.sourcePath,
			Line:   1,
			Column: 1,
		},
	}

	for name, value := range yrs.Variables {
		variable, err := b.buildVariable(name, value)
		if err != nil {
			b.errors.AddError(splErrors.ErrorTypeStructural, "",
				fmt.Sprintf("Invalid variable %q: %v", name, err),
				rs.Location)
			continue
		}
		rs.Variables[name] = variable
	}

	for i, yr := range yrs.Rules {
		loc := ast.Location{File: b.sourcePath, Line: yrs.ruleLine(i), Column: 1}
		rule, err := b.buildRule(&yr, loc)
		if err != nil {
			b.errors.AddError(splErrors.ErrorTypeStructural, yr.ID,
				fmt.Sprintf("Invalid rule at index %d: %v", i, err),
				loc)
			continue
		}
		rs.Rules = append(rs.Rules, rule)
	}

	if b.errors.HasErrors() {
		return nil, b.errors
	}

	return rs, nil
}

// buildVariable transforms a variable value into an ast.Variable.
func (b *builder) buildVariable(name string, value interface{}) (*ast.Variable, error) {
	valueNode, err := b.buildValue(value)
	if err != nil {
		return nil, err
	}

	// A variable referencing another variable or the limit would make
	// compile-time resolution ambiguous.
	if !valueNode.IsLiteral() {
		return nil, fmt.Errorf("variable value must be a literal")
	}

	return &ast.Variable{
		Name:     name,
		Value:    valueNode,
		Type:     valueNode.Type,
		Location: ast.Location{File: b.sourcePath, Line: 1, Column: 1},
	}, nil
}

// buildRule transforms a yamlRule into an ast.RuleDefinition.
func (b *builder) buildRule(yr *yamlRule, loc ast.Location) (*ast.RuleDefinition, error) {
	b.ruleLoc = loc

	rule := &ast.RuleDefinition{
		ID:          yr.ID,
		Description: yr.Description,
		Regulator:   yr.Regulator,
		Action:      ast.Action(yr.Action),
		Priority:    yr.Priority,
		Enabled:     true, // Default to true
		Location:    loc,
	}

	if yr.Enabled != nil {
		rule.Enabled = *yr.Enabled
	}

	if yr.Limit != nil {
		rule.Limit = &ast.LimitSpec{
			Base:     yr.Limit.Base,
			Location: loc,
		}
	}

	// An empty when clause matches every transaction, the same as omitting
	// it; the compiler substitutes an always-true predicate for both.
	if yr.When != nil && !isEmptyCondition(yr.When) {
		cond, err := b.buildCondition(yr.When, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid condition: %w", err)
		}
		rule.When = cond
	}

	return rule, nil
}

// isEmptyCondition reports whether a when clause carries no constraints.
func isEmptyCondition(cond interface{}) bool {
	switch v := cond.(type) {
	case map[string]interface{}:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}

// buildCondition transforms condition YAML into an ast.ConditionNode.
// Conditions can be:
// - Single predicate (map with field, op, value)
// - Array of conditions (implicit AND)
// - Logical operator (all, any, not with children)
func (b *builder) buildCondition(cond interface{}, depth int) (*ast.ConditionNode, error) {
	if depth > b.maxDepth {
		return nil, fmt.Errorf("condition nesting exceeds maximum depth %d", b.maxDepth)
	}

	switch v := cond.(type) {
	case map[string]interface{}:
		return b.buildConditionMap(v, depth)
	case []interface{}:
		return b.buildConditionArray(v, depth)
	default:
		return nil, fmt.Errorf("invalid condition type: %T", cond)
	}
}

// buildConditionMap builds a condition from a map.
func (b *builder) buildConditionMap(m map[string]interface{}, depth int) (*ast.ConditionNode, error) {
	if children, ok := m["all"]; ok {
		return b.buildLogicalCondition(ast.ConditionTypeAll, children, depth)
	}
	if children, ok := m["any"]; ok {
		return b.buildLogicalCondition(ast.ConditionTypeAny, children, depth)
	}
	if child, ok := m["not"]; ok {
		return b.buildNotCondition(child, depth)
	}

	return b.buildSimpleCondition(m)
}

// buildConditionArray builds a condition from a bare array of conditions,
// which conjoins its elements the same as an explicit all.
func (b *builder) buildConditionArray(arr []interface{}, depth int) (*ast.ConditionNode, error) {
	return b.buildLogicalCondition(ast.ConditionTypeAll, arr, depth)
}

// nodeLocation is the location attributed to nodes inside the current rule.
func (b *builder) nodeLocation() ast.Location {
	if b.ruleLoc.Line > 0 {
		return b.ruleLoc
	}
	return ast.Location{File: b.sourcePath, Line: 1, Column: 1}
}

// buildSimpleCondition builds a simple predicate condition.
func (b *builder) buildSimpleCondition(m map[string]interface{}) (*ast.ConditionNode, error) {
	field, ok := m["field"].(string)
	if !ok || strings.TrimSpace(field) == "" {
		return nil, fmt.Errorf("missing or invalid 'field'")
	}

	opStr, ok := m["op"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'op'")
	}

	node := &ast.ConditionNode{
		Type:     ast.ConditionTypeSimple,
		Field:    field,
		Operator: ast.Operator(opStr),
		Location: b.nodeLocation(),
	}

	// exists is a presence check and takes no value.
	if value, hasValue := m["value"]; hasValue {
		valueNode, err := b.buildValue(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %w", err)
		}
		node.Value = valueNode
	}

	return node, nil
}

// buildLogicalCondition builds an all/any condition over an ordered child sequence.
func (b *builder) buildLogicalCondition(condType ast.ConditionType, children interface{}, depth int) (*ast.ConditionNode, error) {
	childArray, ok := children.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must have an array of children", condType)
	}
	if len(childArray) == 0 {
		return nil, fmt.Errorf("%s must have at least one child", condType)
	}

	childNodes := make([]*ast.ConditionNode, 0, len(childArray))
	for i, child := range childArray {
		childNode, err := b.buildCondition(child, depth+1)
		if err != nil {
			return nil, fmt.Errorf("invalid child condition at index %d: %w", i, err)
		}
		childNodes = append(childNodes, childNode)
	}

	return &ast.ConditionNode{
		Type:     condType,
		Children: childNodes,
		Location: b.nodeLocation(),
	}, nil
}

// buildNotCondition builds a not condition. The child may be a single map or a
// one-element array; anything else is rejected.
func (b *builder) buildNotCondition(child interface{}, depth int) (*ast.ConditionNode, error) {
	if arr, ok := child.([]interface{}); ok {
		if len(arr) != 1 {
			return nil, fmt.Errorf("not must have exactly one child, got %d", len(arr))
		}
		child = arr[0]
	}

	childNode, err := b.buildCondition(child, depth+1)
	if err != nil {
		return nil, fmt.Errorf("invalid not child: %w", err)
	}

	return &ast.ConditionNode{
		Type:     ast.ConditionTypeNot,
		Children: []*ast.ConditionNode{childNode},
		Location: b.nodeLocation(),
	}, nil
}

// buildValue transforms a Go value into an ast.ValueNode.
func (b *builder) buildValue(value interface{}) (*ast.ValueNode, error) {
	loc := b.nodeLocation()

	if value == nil {
		return &ast.ValueNode{Type: ast.ValueTypeNull, Location: loc}, nil
	}

	switch v := value.(type) {
	case string:
		if m := variableRefPattern.FindStringSubmatch(v); m != nil {
			return &ast.ValueNode{
				Type:         ast.ValueTypeVariable,
				Value:        v,
				VariableName: m[1],
				Location:     loc,
			}, nil
		}
		if limitRefPattern.MatchString(v) {
			return &ast.ValueNode{Type: ast.ValueTypeLimit, Value: v, Location: loc}, nil
		}
		return &ast.ValueNode{Type: ast.ValueTypeString, Value: v, Location: loc}, nil

	case int, int64, float64:
		// Convert all numbers to float64 for consistency
		var numVal float64
		switch n := v.(type) {
		case int:
			numVal = float64(n)
		case int64:
			numVal = float64(n)
		case float64:
			numVal = n
		}
		return &ast.ValueNode{Type: ast.ValueTypeNumber, Value: numVal, Location: loc}, nil

	case bool:
		return &ast.ValueNode{Type: ast.ValueTypeBoolean, Value: v, Location: loc}, nil

	case []interface{}:
		// Normalize numeric elements so IN comparisons don't depend on the
		// YAML decoder's choice of int vs float64.
		elems := make([]interface{}, 0, len(v))
		for i, e := range v {
			en, err := b.buildValue(e)
			if err != nil {
				return nil, fmt.Errorf("invalid array element at index %d: %w", i, err)
			}
			if !en.IsLiteral() {
				return nil, fmt.Errorf("array element at index %d must be a literal", i)
			}
			elems = append(elems, en.Value)
		}
		return &ast.ValueNode{Type: ast.ValueTypeArray, Value: elems, Location: loc}, nil

	default:
		return nil, fmt.Errorf("unsupported value type: %T", value)
	}
}
