package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/saturn/pkg/spl/ast"
	splErrors "mercator-hq/saturn/pkg/spl/errors"
)

const validRuleSet = `
name: test-screening
version: "1.0"
description: Test rule set

variables:
  blocked_corridors:
    - "XX"
    - "YY"
  threshold: 10000

rules:
  - id: corridor-block
    description: Block sanctioned corridors
    regulator: AMLD5
    action: block
    priority: 100
    when:
      field: destination
      op: in
      value: "{{ variables.blocked_corridors }}"

  - id: amount-flag
    action: flag
    priority: 50
    when:
      all:
        - field: amount
          op: gte
          value: "{{ variables.threshold }}"
        - not:
            field: metadata.pre_cleared
            op: eq
            value: true

  - id: limit-check
    action: block
    priority: 80
    limit:
      base: 50000
    when:
      field: amount
      op: gt
      value: "{{ limit }}"
`

func TestParseBytes_ValidRuleSet(t *testing.T) {
	rs, err := NewParser().ParseBytes([]byte(validRuleSet), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if rs.Name != "test-screening" {
		t.Errorf("Name = %q, want %q", rs.Name, "test-screening")
	}
	if rs.Version != "1.0" {
		t.Errorf("Version = %q, want %q", rs.Version, "1.0")
	}
	if len(rs.Rules) != 3 {
		t.Fatalf("len(Rules) = %d, want 3", len(rs.Rules))
	}
	if len(rs.Variables) != 2 {
		t.Fatalf("len(Variables) = %d, want 2", len(rs.Variables))
	}
}

func TestParseBytes_Variables(t *testing.T) {
	rs, err := NewParser().ParseBytes([]byte(validRuleSet), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	corridors := rs.GetVariable("blocked_corridors")
	if corridors == nil {
		t.Fatal("GetVariable(blocked_corridors) = nil")
	}
	if corridors.Type != ast.ValueTypeArray {
		t.Errorf("blocked_corridors type = %q, want array", corridors.Type)
	}

	threshold := rs.GetVariable("threshold")
	if threshold == nil {
		t.Fatal("GetVariable(threshold) = nil")
	}
	if threshold.Type != ast.ValueTypeNumber {
		t.Errorf("threshold type = %q, want number", threshold.Type)
	}
	if threshold.Value.Value != float64(10000) {
		t.Errorf("threshold value = %v, want 10000", threshold.Value.Value)
	}
}

func TestParseBytes_VariableReference(t *testing.T) {
	rs, err := NewParser().ParseBytes([]byte(validRuleSet), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	rule := rs.GetRule("corridor-block")
	if rule == nil {
		t.Fatal("GetRule(corridor-block) = nil")
	}
	if rule.When == nil {
		t.Fatal("When = nil")
	}
	if rule.When.Value == nil || !rule.When.Value.IsVariable() {
		t.Fatalf("condition value = %+v, want variable reference", rule.When.Value)
	}
	if rule.When.Value.VariableName != "blocked_corridors" {
		t.Errorf("VariableName = %q, want %q", rule.When.Value.VariableName, "blocked_corridors")
	}
}

func TestParseBytes_LimitReference(t *testing.T) {
	rs, err := NewParser().ParseBytes([]byte(validRuleSet), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	rule := rs.GetRule("limit-check")
	if rule == nil {
		t.Fatal("GetRule(limit-check) = nil")
	}
	if rule.Limit == nil {
		t.Fatal("Limit = nil")
	}
	if rule.Limit.Base != 50000 {
		t.Errorf("Limit.Base = %v, want 50000", rule.Limit.Base)
	}
	if rule.When.Value == nil || !rule.When.Value.IsLimitRef() {
		t.Fatalf("condition value = %+v, want limit reference", rule.When.Value)
	}
}

func TestParseBytes_NestedConditions(t *testing.T) {
	rs, err := NewParser().ParseBytes([]byte(validRuleSet), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	rule := rs.GetRule("amount-flag")
	if rule == nil {
		t.Fatal("GetRule(amount-flag) = nil")
	}
	if rule.When.Type != ast.ConditionTypeAll {
		t.Fatalf("root condition type = %q, want all", rule.When.Type)
	}
	if len(rule.When.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(rule.When.Children))
	}
	if rule.When.Children[1].Type != ast.ConditionTypeNot {
		t.Errorf("second child type = %q, want not", rule.When.Children[1].Type)
	}
	if len(rule.When.Children[1].Children) != 1 {
		t.Errorf("not child count = %d, want 1", len(rule.When.Children[1].Children))
	}
}

func TestParseBytes_BareArrayCondition(t *testing.T) {
	input := `
name: test
version: "1.0"
rules:
  - id: conjunction
    action: flag
    priority: 10
    when:
      - field: amount
        op: gte
        value: 1000
      - field: destination
        op: eq
        value: "XX"
`
	rs, err := NewParser().ParseBytes([]byte(input), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	rule := rs.GetRule("conjunction")
	if rule == nil || rule.When == nil {
		t.Fatal("rule or condition missing")
	}
	if rule.When.Type != ast.ConditionTypeAll {
		t.Errorf("condition type = %q, want all", rule.When.Type)
	}
	if len(rule.When.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(rule.When.Children))
	}
	if rule.When.Children[0].Field != "amount" || rule.When.Children[1].Field != "destination" {
		t.Errorf("child fields = %q, %q, want amount, destination",
			rule.When.Children[0].Field, rule.When.Children[1].Field)
	}
}

func TestParseBytes_EmptyWhenMatchesAlways(t *testing.T) {
	input := `
name: test
version: "1.0"
rules:
  - id: default-allow
    action: allow
    priority: 1
    when: {}
  - id: default-flag
    action: flag
    priority: 2
    when: []
`
	rs, err := NewParser().ParseBytes([]byte(input), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	// An empty when clause is the same as no when clause at all; the
	// compiler substitutes an always-true predicate for both.
	for _, id := range []string{"default-allow", "default-flag"} {
		rule := rs.GetRule(id)
		if rule == nil {
			t.Fatalf("GetRule(%s) = nil", id)
		}
		if rule.When != nil {
			t.Errorf("rule %s When = %+v, want nil", id, rule.When)
		}
	}
}

func TestParseBytes_ConditionLocations(t *testing.T) {
	rs, err := NewParser().ParseBytes([]byte(validRuleSet), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	rule := rs.GetRule("amount-flag")
	if rule == nil || rule.When == nil {
		t.Fatal("rule or condition missing")
	}

	// Condition nodes carry their rule's source line, not a placeholder.
	if rule.When.Location.Line != rule.Location.Line {
		t.Errorf("condition line = %d, want rule line %d",
			rule.When.Location.Line, rule.Location.Line)
	}
	if rule.Location.Line <= 1 {
		t.Errorf("rule line = %d, want a real source line", rule.Location.Line)
	}
	for _, child := range rule.When.Children {
		if child.Location.Line != rule.Location.Line {
			t.Errorf("child line = %d, want rule line %d",
				child.Location.Line, rule.Location.Line)
		}
	}
}

func TestParseBytes_EnabledDefaults(t *testing.T) {
	input := `
name: enabled-test
version: "1.0"
rules:
  - id: default-enabled
    action: allow
    priority: 1
    when:
      field: id
      op: exists
  - id: explicitly-disabled
    action: allow
    priority: 1
    enabled: false
    when:
      field: id
      op: exists
`

	rs, err := NewParser().ParseBytes([]byte(input), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if !rs.GetRule("default-enabled").IsEnabled() {
		t.Error("rule without enabled key should default to enabled")
	}
	if rs.GetRule("explicitly-disabled").IsEnabled() {
		t.Error("rule with enabled: false should be disabled")
	}
	if got := len(rs.EnabledRules()); got != 1 {
		t.Errorf("len(EnabledRules()) = %d, want 1", got)
	}
}

func TestParseBytes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "invalid yaml syntax",
			input:   "name: [unclosed",
			wantMsg: "YAML parsing failed",
		},
		{
			name: "condition missing field",
			input: `
name: t
version: "1"
rules:
  - id: r1
    action: block
    priority: 1
    when:
      op: eq
      value: 5
`,
			wantMsg: "missing or invalid 'field'",
		},
		{
			name: "condition missing op",
			input: `
name: t
version: "1"
rules:
  - id: r1
    action: block
    priority: 1
    when:
      field: amount
      value: 5
`,
			wantMsg: "missing or invalid 'op'",
		},
		{
			name: "empty all block",
			input: `
name: t
version: "1"
rules:
  - id: r1
    action: block
    priority: 1
    when:
      all: []
`,
			wantMsg: "at least one child",
		},
		{
			name: "not with two children",
			input: `
name: t
version: "1"
rules:
  - id: r1
    action: block
    priority: 1
    when:
      not:
        - field: amount
          op: eq
          value: 1
        - field: amount
          op: eq
          value: 2
`,
			wantMsg: "exactly one child",
		},
		{
			name: "variable referencing variable",
			input: `
name: t
version: "1"
variables:
  indirect: "{{ variables.other }}"
rules:
  - id: r1
    action: allow
    priority: 1
    when:
      field: id
      op: exists
`,
			wantMsg: "must be a literal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseBytes([]byte(tt.input), "test.yaml")
			if err == nil {
				t.Fatal("ParseBytes() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseBytes_ErrorLocations(t *testing.T) {
	input := `name: t
version: "1"
rules:
  - id: ok-rule
    action: allow
    priority: 1
    when:
      field: id
      op: exists
  - id: broken-rule
    action: block
    priority: 1
    when:
      op: eq
      value: 5
`

	_, err := NewParser().ParseBytes([]byte(input), "test.yaml")
	if err == nil {
		t.Fatal("ParseBytes() error = nil, want error")
	}

	var list *splErrors.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error type = %T, want *ErrorList", err)
	}
	if list.Count() != 1 {
		t.Fatalf("error count = %d, want 1", list.Count())
	}

	e := list.Errors[0]
	if e.RuleID != "broken-rule" {
		t.Errorf("RuleID = %q, want %q", e.RuleID, "broken-rule")
	}
	if e.Location.Line != 10 {
		t.Errorf("Location.Line = %d, want 10", e.Location.Line)
	}
}

func TestParseBytes_MaxDepth(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name: t\nversion: \"1\"\nrules:\n  - id: deep\n    action: block\n    priority: 1\n    when:\n")

	indent := "      "
	for i := 0; i < 12; i++ {
		sb.WriteString(indent + "not:\n")
		indent += "  "
	}
	sb.WriteString(indent + "field: amount\n")
	sb.WriteString(indent + "op: eq\n")
	sb.WriteString(indent + "value: 1\n")

	_, err := NewParser().ParseBytes([]byte(sb.String()), "test.yaml")
	if err == nil {
		t.Fatal("ParseBytes() error = nil, want depth error")
	}
	if !strings.Contains(err.Error(), "maximum depth") {
		t.Errorf("error = %q, want depth violation", err.Error())
	}
}

func TestParseBytes_ArrayNormalization(t *testing.T) {
	input := `
name: t
version: "1"
rules:
  - id: r1
    action: block
    priority: 1
    when:
      field: amount
      op: in
      value: [100, 200.5, 300]
`

	rs, err := NewParser().ParseBytes([]byte(input), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	value := rs.GetRule("r1").When.Value
	if value.Type != ast.ValueTypeArray {
		t.Fatalf("value type = %q, want array", value.Type)
	}

	elems, ok := value.Value.([]interface{})
	if !ok {
		t.Fatalf("value = %T, want []interface{}", value.Value)
	}
	for i, elem := range elems {
		if _, ok := elem.(float64); !ok {
			t.Errorf("element %d = %T, want float64", i, elem)
		}
	}
}

func TestParseMulti_MergesRuleSets(t *testing.T) {
	dir := t.TempDir()

	first := `
name: merged
version: "1.0"
variables:
  threshold: 100
rules:
  - id: first-rule
    action: allow
    priority: 1
    when:
      field: id
      op: exists
`
	second := `
name: ignored
version: "9.9"
variables:
  threshold: 200
rules:
  - id: second-rule
    action: flag
    priority: 2
    when:
      field: id
      op: exists
`

	paths := []string{
		writeTempFile(t, dir, "a.yaml", first),
		writeTempFile(t, dir, "b.yaml", second),
	}

	rs, err := NewParser().ParseMulti(paths)
	if err != nil {
		t.Fatalf("ParseMulti() error = %v", err)
	}

	if rs.Name != "merged" {
		t.Errorf("Name = %q, want first file's name", rs.Name)
	}
	if len(rs.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(rs.Rules))
	}
	if rs.GetVariable("threshold").Value.Value != float64(200) {
		t.Errorf("threshold = %v, want later file's value 200", rs.GetVariable("threshold").Value.Value)
	}
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestParse_FileNotFound(t *testing.T) {
	_, err := NewParser().Parse("/nonexistent/rules.yaml")
	if err == nil {
		t.Fatal("Parse() error = nil, want IO error")
	}

	var splErr *splErrors.Error
	if !errors.As(err, &splErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if splErr.Type != splErrors.ErrorTypeIO {
		t.Errorf("error type = %q, want io", splErr.Type)
	}
}
