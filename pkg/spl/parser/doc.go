// Package parser parses SPL rule files (YAML) into Abstract Syntax Trees.
//
// The parser is intentionally dumb: it checks YAML syntax and the structural
// shape of a rule file, and produces ast nodes. Semantic checks (operator
// validity, field references, duplicate ids, variable resolution) belong to
// the compiler in pkg/policy/engine, which consumes the AST.
//
// # Rule file format
//
//	name: eu-settlement-screening
//	version: "1.0"
//	variables:
//	  high_value: 100000
//	rules:
//	  - id: block_unhosted_wallets
//	    regulator: AMLD5
//	    action: block
//	    priority: 20
//	    when:
//	      field: metadata.kyc_complete
//	      op: eq
//	      value: false
//	  - id: flag_over_limit
//	    action: flag
//	    priority: 10
//	    limit:
//	      base: 250000
//	    when:
//	      all:
//	        - field: amount
//	          op: gt
//	          value: "{{ limit }}"
//	        - field: currency
//	          op: eq
//	          value: EUR
//
// A rule without `when` always triggers; `value: "{{ variables.x }}"`
// references a rule-set variable and `value: "{{ limit }}"` references the
// rule's state-adjusted amount limit.
package parser
