// Package ast provides Abstract Syntax Tree (AST) definitions for the Saturn Policy Language (SPL).
//
// The AST represents the parsed structure of an SPL rule set, enabling validation,
// compilation, and evaluation. All AST nodes preserve source location information
// for precise error reporting.
//
// # Core Types
//
// RuleSet: Root AST node containing metadata, variables, and rule definitions
//
// RuleDefinition: Individual screening rule with an action, priority, and condition tree
//
// ConditionNode: Condition expression (simple predicate or all/any/not combinator)
//
// ValueNode: Comparison value (string, number, boolean, array, variable reference,
// adjusted-limit reference, null)
//
// Location: Source location (file, line, column)
//
// # AST Structure
//
// The AST mirrors the SPL YAML structure:
//
//	RuleSet
//	├── Metadata (name, version, description)
//	├── Variables (map[string]*Variable)
//	└── Rules ([]*RuleDefinition)
//	    ├── Action (allow | flag | block)
//	    ├── Priority, Regulator, Limit
//	    └── When (*ConditionNode)
//	        ├── Simple (field, operator, value)
//	        └── Logical (all/any/not with children)
//
// # Immutability
//
// AST nodes should be treated as immutable after construction.
// The parser builds the AST once; the compiler and validators inspect it
// without modification.
package ast
