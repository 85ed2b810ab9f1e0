package source

import (
	"context"
	"sync"

	"mercator-hq/saturn/pkg/policy/engine"
	"mercator-hq/saturn/pkg/spl/ast"
)

// MemorySource is an in-memory rule source for testing.
type MemorySource struct {
	mu      sync.Mutex
	ruleSet *ast.RuleSet
	eventCh chan engine.RuleEvent
}

// NewMemorySource creates a new in-memory rule source.
func NewMemorySource(rs *ast.RuleSet) *MemorySource {
	return &MemorySource{
		ruleSet: rs,
		eventCh: make(chan engine.RuleEvent, 1),
	}
}

// LoadRules returns the rule set stored in memory.
func (s *MemorySource) LoadRules(ctx context.Context) (*ast.RuleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ruleSet, nil
}

// Watch returns a channel fed by SetRules. The channel is closed when the
// context is cancelled.
func (s *MemorySource) Watch(ctx context.Context) (<-chan engine.RuleEvent, error) {
	go func() {
		<-ctx.Done()
		close(s.eventCh)
	}()
	return s.eventCh, nil
}

// SetRules replaces the stored rule set and emits a modification event.
func (s *MemorySource) SetRules(rs *ast.RuleSet) {
	s.mu.Lock()
	s.ruleSet = rs
	s.mu.Unlock()

	select {
	case s.eventCh <- engine.RuleEvent{Type: engine.RuleEventModified, Path: "memory"}:
	default:
	}
}
