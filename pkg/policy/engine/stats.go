package engine

import (
	"sync"

	"mercator-hq/saturn/pkg/spl/ast"
)

// Stats counts decisions since the engine started. Counters survive rule
// reloads; they reset only on restart.
type Stats struct {
	mu       sync.RWMutex
	total    uint64
	byAction map[ast.Action]uint64
	byRule   map[string]uint64
	defaults uint64
}

// StatsSnapshot is a point-in-time copy of the engine's decision counters.
type StatsSnapshot struct {
	// Total is the number of transactions screened.
	Total uint64 `json:"total_screened"`

	// Allowed, Flagged, Blocked break decisions down by final action.
	Allowed uint64 `json:"allowed"`
	Flagged uint64 `json:"flagged"`
	Blocked uint64 `json:"blocked"`

	// Defaults counts decisions where no rule triggered.
	Defaults uint64 `json:"defaults"`

	// ByRule counts wins per rule id.
	ByRule map[string]uint64 `json:"by_rule"`
}

// NewStats creates zeroed decision counters.
func NewStats() *Stats {
	return &Stats{
		byAction: make(map[ast.Action]uint64),
		byRule:   make(map[string]uint64),
	}
}

// Record counts one decision.
func (s *Stats) Record(decision *Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byAction[decision.Action]++
	if decision.Default {
		s.defaults++
	} else {
		s.byRule[decision.RuleID]++
	}
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byRule := make(map[string]uint64, len(s.byRule))
	for id, count := range s.byRule {
		byRule[id] = count
	}

	return StatsSnapshot{
		Total:    s.total,
		Allowed:  s.byAction[ast.ActionAllow],
		Flagged:  s.byAction[ast.ActionFlag],
		Blocked:  s.byAction[ast.ActionBlock],
		Defaults: s.defaults,
		ByRule:   byRule,
	}
}
