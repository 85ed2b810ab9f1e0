package engine

import (
	"mercator-hq/saturn/pkg/spl/ast"
)

// severityRank orders actions by how restrictive they are. Severity always
// dominates priority: a triggered block outranks any flag, a flag outranks
// any allow.
func severityRank(action ast.Action) int {
	switch action {
	case ast.ActionBlock:
		return 2
	case ast.ActionFlag:
		return 1
	case ast.ActionAllow:
		return 0
	default:
		return -1
	}
}

// outranks reports whether rule a beats rule b under conflict resolution:
// higher severity first, then higher priority, then the lexicographically
// smaller rule id. Ids are unique, so the ordering is total and the winner
// deterministic.
func outranks(a, b *Rule) bool {
	sa, sb := severityRank(a.Action), severityRank(b.Action)
	if sa != sb {
		return sa > sb
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}

// selectWinner returns the triggered rule that wins conflict resolution, or
// nil when no rule triggered.
func selectWinner(triggered []*Rule) *Rule {
	var winner *Rule
	for _, rule := range triggered {
		if winner == nil || outranks(rule, winner) {
			winner = rule
		}
	}
	return winner
}
