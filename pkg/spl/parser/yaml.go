package parser

import (
	"os"

	"gopkg.in/yaml.v3"
)

// yamlRuleSet represents the intermediate structure for parsing YAML rule files.
// It matches the YAML structure before transformation to AST.
type yamlRuleSet struct {
	Name        string                 `yaml:"name"`
	Version     string                 `yaml:"version"`
	Description string                 `yaml:"description"`
	Variables   map[string]interface{} `yaml:"variables"`
	Rules       []yamlRule             `yaml:"rules"`

	// Internal tracking
	node *yaml.Node // Original YAML node for line numbers
}

// yamlRule represents an intermediate rule structure.
type yamlRule struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Regulator   string      `yaml:"regulator"`
	Action      string      `yaml:"action"`
	Priority    int         `yaml:"priority"`
	Enabled     *bool       `yaml:"enabled"` // Pointer to distinguish unset vs false
	Limit       *yamlLimit  `yaml:"limit"`
	When        interface{} `yaml:"when"`
}

// yamlLimit represents an intermediate base-limit declaration.
type yamlLimit struct {
	Base float64 `yaml:"base"`
}

// parseYAMLFile reads and parses a YAML file into the intermediate structure.
func parseYAMLFile(path string) (*yamlRuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseYAMLBytes(data)
}

// parseYAMLBytes parses YAML bytes into the intermediate structure.
// It goes through yaml.Node so line numbers survive for error reporting.
func parseYAMLBytes(data []byte) (*yamlRuleSet, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	var rs yamlRuleSet
	if err := node.Decode(&rs); err != nil {
		return nil, err
	}

	rs.node = &node
	return &rs, nil
}

// ruleLine returns the source line of the i-th rule entry, or 0 if unknown.
func (rs *yamlRuleSet) ruleLine(i int) int {
	if rs.node == nil || len(rs.node.Content) == 0 {
		return 0
	}
	doc := rs.node.Content[0]
	if doc.Kind != yaml.MappingNode {
		return 0
	}
	for j := 0; j+1 < len(doc.Content); j += 2 {
		if doc.Content[j].Value != "rules" {
			continue
		}
		seq := doc.Content[j+1]
		if seq.Kind != yaml.SequenceNode || i >= len(seq.Content) {
			return 0
		}
		return seq.Content[i].Line
	}
	return 0
}
