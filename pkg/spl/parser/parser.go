package parser

import (
	"fmt"
	"os"

	"mercator-hq/saturn/pkg/spl/ast"
	splErrors "mercator-hq/saturn/pkg/spl/errors"
)

// Parser parses SPL rule files into Abstract Syntax Trees.
// It handles YAML parsing, AST construction, and basic structural validation.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 10MB)
	maxDepth    int   // Maximum condition nesting depth (default: 10)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
		maxDepth:    10,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum condition nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse parses a rule file at the given path and returns the AST.
// It returns an error if the file cannot be read, has invalid YAML syntax,
// or contains structural errors.
func (p *Parser) Parse(path string) (*ast.RuleSet, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &splErrors.Error{
			Type:     splErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &splErrors.Error{
			Type:     splErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	yrs, err := parseYAMLFile(path)
	if err != nil {
		return nil, &splErrors.Error{
			Type:       splErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   ast.Location{File: path, Line: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	return newBuilder(path, p.maxDepth).buildRuleSet(yrs)
}

// ParseBytes parses rule-set YAML from a byte slice.
// This is useful for testing or parsing rule sets from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.RuleSet, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &splErrors.Error{
			Type:     splErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	yrs, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &splErrors.Error{
			Type:       splErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1, Column: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	return newBuilder(sourcePath, p.maxDepth).buildRuleSet(yrs)
}

// ParseMulti parses multiple rule files and merges them into a single rule set.
// Rules from all files are combined in order; the first file's metadata wins.
// Variables from later files override earlier ones.
func (p *Parser) ParseMulti(paths []string) (*ast.RuleSet, error) {
	if len(paths) == 0 {
		return nil, &splErrors.Error{
			Type:    splErrors.ErrorTypeIO,
			Message: "No rule files provided",
		}
	}

	rs, err := p.Parse(paths[0])
	if err != nil {
		return nil, err
	}

	for _, path := range paths[1:] {
		additional, err := p.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for name, variable := range additional.Variables {
			rs.Variables[name] = variable
		}
		rs.Rules = append(rs.Rules, additional.Rules...)
	}

	return rs, nil
}
