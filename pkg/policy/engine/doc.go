// Package engine implements the deterministic transaction-screening engine.
//
// The engine evaluates every compiled rule's condition tree against a
// transaction and a read-only snapshot of the origin node's state vector,
// collects the rules that triggered, and resolves conflicts:
//
//	block > flag > allow        severity, always dominant
//	higher priority wins        within a severity tier
//	lexicographically smallest  rule id, final tie-break
//
// A triggered block rule can never be outranked by a flag or allow rule,
// whatever their priorities.
//
// Evaluation is total: a missing transaction field degrades the affected
// predicate to false (absence of data is itself compliance-relevant), and the
// engine always produces a Decision. Every rule and every condition node
// visited is recorded in the EvaluationTrace, so a decision is auditable
// without re-running the engine. All/any combinators evaluate all of their
// children; trace completeness is worth the constant factor.
//
// Rule sets are compiled once and replaced by atomic pointer swap, so an
// in-flight evaluation observes either the old set or the new set in full,
// never a mixture.
package engine
