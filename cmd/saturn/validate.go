package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mercator-hq/saturn/pkg/policy/engine"
	splErrors "mercator-hq/saturn/pkg/spl/errors"
	"mercator-hq/saturn/pkg/spl/parser"
)

var validateFlags struct {
	file   string
	dir    string
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate rule files",
	Long: `Validate SPL rule files for syntax, structural, and semantic errors.

The validate command parses rule files and compiles them exactly as the
server would, reporting every error found:
  - YAML syntax validation
  - Rule structure validation (required fields, condition shapes)
  - Semantic validation (operators, field paths, variable references)

Examples:
  # Validate a single file
  saturn validate --file rules.yaml

  # Validate a directory of rule files
  saturn validate --dir rules/

  # JSON output for CI/CD
  saturn validate --file rules.yaml --format json`,
	RunE: validateRules,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "rule file to validate")
	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of rule files")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateRules(cmd *cobra.Command, args []string) error {
	if validateFlags.file == "" && validateFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string

	if validateFlags.file != "" {
		files = append(files, validateFlags.file)
	}

	if validateFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(validateFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list rule files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no rule files found")
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateRuleFile(file))
	}

	if validateFlags.format == "json" {
		return outputJSON(results)
	}
	return outputText(results)
}

// ValidationResult represents the validation result for a single rule file.
type ValidationResult struct {
	File   string            `json:"file"`
	Valid  bool              `json:"valid"`
	Rules  int               `json:"rules"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	RuleID     string `json:"rule_id,omitempty"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func validateRuleFile(path string) ValidationResult {
	result := ValidationResult{
		File:  path,
		Valid: true,
	}

	def, err := parser.NewParser().Parse(path)
	if err != nil {
		result.Valid = false
		result.Errors = collectErrors(err)
		return result
	}

	compiled, err := engine.Compile(def)
	if err != nil {
		result.Valid = false
		result.Errors = collectErrors(err)
		return result
	}

	result.Rules = compiled.Len()
	return result
}

// collectErrors flattens parser and compiler errors into the wire shape.
func collectErrors(err error) []ValidationError {
	var compErr *engine.CompilationError
	if errors.As(err, &compErr) {
		err = compErr.Errors
	}

	var list *splErrors.ErrorList
	if errors.As(err, &list) {
		out := make([]ValidationError, 0, list.Count())
		for _, e := range list.Errors {
			out = append(out, validationError(e))
		}
		return out
	}

	var single *splErrors.Error
	if errors.As(err, &single) {
		return []ValidationError{validationError(single)}
	}

	return []ValidationError{{Message: err.Error()}}
}

func validationError(e *splErrors.Error) ValidationError {
	return ValidationError{
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		RuleID:     e.RuleID,
		Message:    e.Message,
		Type:       string(e.Type),
		Suggestion: e.Suggestion,
	}
}

func outputText(results []ValidationResult) error {
	totalErrors := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if result.Valid {
			fmt.Printf("✓ %d rule(s) compiled\n", result.Rules)
		}

		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.RuleID != "" {
				fmt.Printf(" (rule %s)", err.RuleID)
			}
			if err.Line > 0 {
				fmt.Printf(" (line %d", err.Line)
				if err.Column > 0 {
					fmt.Printf(", col %d", err.Column)
				}
				fmt.Print(")")
			}
			if err.Type != "" {
				fmt.Printf(" [%s]", err.Type)
			}
			fmt.Println()
			if err.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", err.Suggestion)
			}
			totalErrors++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s) in %d file(s)\n", totalErrors, len(results))

	if totalErrors > 0 {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func outputJSON(results []ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
