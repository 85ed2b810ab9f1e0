package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mercator-hq/saturn/pkg/spl/ast"
	"mercator-hq/saturn/pkg/throttle"
)

// RuleSource provides parsed rule sets to the engine.
type RuleSource interface {
	// LoadRules loads the rule set from the source.
	LoadRules(ctx context.Context) (*ast.RuleSet, error)

	// Watch watches for rule changes and sends events on the returned channel.
	// The channel is closed when the context is cancelled.
	Watch(ctx context.Context) (<-chan RuleEvent, error)
}

// RuleEvent represents a rule file change event.
type RuleEvent struct {
	// Type is the event type ("created", "modified", "deleted").
	Type RuleEventType

	// Path is the file path that changed.
	Path string

	// Error is any error that occurred while processing the event.
	Error error
}

// RuleEventType represents the type of rule file event.
type RuleEventType string

const (
	RuleEventCreated  RuleEventType = "created"
	RuleEventModified RuleEventType = "modified"
	RuleEventDeleted  RuleEventType = "deleted"
)

// StateSource supplies node state vectors and limit adjustment. Satisfied by
// *throttle.Throttle.
type StateSource interface {
	// Snapshot returns an immutable copy of the node's state vector.
	Snapshot(nodeID string) throttle.StateVector

	// Adjust scales a base limit by the state vector's adjustment factor.
	Adjust(baseLimit float64, sv throttle.StateVector) float64
}

// DecisionRecorder receives decision outcomes for metrics export.
type DecisionRecorder interface {
	DecisionEvaluated(action string, defaulted bool, duration time.Duration)
}

// ReloadRecorder receives rule reload outcomes. A DecisionRecorder that also
// implements it gets one call per reload attempt.
type ReloadRecorder interface {
	ReloadRecorded(success bool)
}

// Engine evaluates transactions against the currently loaded rule set.
//
// The compiled rule set is held behind an atomic pointer: Evaluate loads it
// once and works on that set for the whole call, while Reload swaps in a new
// set without blocking in-flight evaluations. A failed reload leaves the
// previous set serving.
type Engine struct {
	rules  atomic.Pointer[RuleSet]
	source RuleSource
	states StateSource

	stats    *Stats
	recorder DecisionRecorder
	logger   *slog.Logger

	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates an engine, loads the initial rule set from the source, and
// starts watching the source for changes. states may be nil, in which case
// every evaluation runs against the worst-case state vector.
func New(source RuleSource, states StateSource, logger *slog.Logger) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("rule source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		source: source,
		states: states,
		stats:  NewStats(),
		logger: logger.With("component", "engine"),
		stopCh: make(chan struct{}),
	}

	if err := e.Reload(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load initial rules: %w", err)
	}

	e.startWatching()

	return e, nil
}

// WithRecorder attaches a decision recorder for metrics export.
func (e *Engine) WithRecorder(r DecisionRecorder) *Engine {
	e.recorder = r
	return e
}

// Evaluate screens one transaction against the current rule set.
//
// Evaluation is total: every rule is evaluated, every condition node is
// traced, and a Decision is always produced for a valid transaction. Missing
// fields and type mismatches degrade predicates to false; they never abort
// the evaluation. When no rule triggers, the decision defaults to allow.
func (e *Engine) Evaluate(ctx context.Context, tx *Transaction) (*Decision, error) {
	if tx == nil {
		return nil, ErrNilTransaction
	}

	rs := e.rules.Load()
	if rs == nil {
		return nil, ErrNoRulesLoaded
	}

	start := time.Now()
	state := e.snapshot(tx.Origin)

	trace := &EvaluationTrace{
		TransactionID: tx.ID,
		State:         state,
		Rules:         make([]*RuleTrace, 0, len(rs.Rules)),
	}

	var triggered []*Rule
	traceByID := make(map[string]*RuleTrace, len(rs.Rules))

	for _, rule := range rs.Rules {
		var adjustedLimit *float64
		if rule.Limit != nil {
			adjusted := e.adjust(rule.Limit.Base, state)
			adjustedLimit = &adjusted
		}

		ruleTrace := evaluateRule(rule, tx, state, adjustedLimit)
		trace.Rules = append(trace.Rules, ruleTrace)
		traceByID[rule.ID] = ruleTrace

		if ruleTrace.Triggered {
			triggered = append(triggered, rule)
		}
	}

	decision := &Decision{
		Action:         ast.ActionAllow,
		Default:        true,
		TriggeredRules: make([]string, 0, len(triggered)),
		Trace:          trace,
	}
	for _, rule := range triggered {
		decision.TriggeredRules = append(decision.TriggeredRules, rule.ID)
	}

	if winner := selectWinner(triggered); winner != nil {
		decision.Action = winner.Action
		decision.RuleID = winner.ID
		decision.Default = false
		traceByID[winner.ID].Winner = true
	}

	e.stats.Record(decision)
	if e.recorder != nil {
		e.recorder.DecisionEvaluated(string(decision.Action), decision.Default, time.Since(start))
	}

	e.logger.Debug("transaction evaluated",
		"transaction_id", tx.ID,
		"action", decision.Action,
		"rule_id", decision.RuleID,
		"triggered_count", len(triggered),
		"duration", time.Since(start),
	)

	return decision, nil
}

// Reload loads and compiles the rule set from the source and swaps it in
// atomically. On failure the previous rule set keeps serving.
func (e *Engine) Reload(ctx context.Context) error {
	err := e.reload(ctx)
	if r, ok := e.recorder.(ReloadRecorder); ok {
		r.ReloadRecorded(err == nil)
	}
	return err
}

func (e *Engine) reload(ctx context.Context) error {
	def, err := e.source.LoadRules(ctx)
	if err != nil {
		return &ReloadError{Source: "source", Cause: err}
	}

	compiled, err := Compile(def)
	if err != nil {
		return &ReloadError{Source: def.SourceFile, Cause: err}
	}

	e.rules.Store(compiled)

	e.logger.Info("rules loaded",
		"rule_set", compiled.Name,
		"version", compiled.Version,
		"rule_count", compiled.Len(),
		"source", compiled.Source,
	)

	return nil
}

// CurrentRules returns the compiled rule set currently serving, or nil.
func (e *Engine) CurrentRules() *RuleSet {
	return e.rules.Load()
}

// Stats returns the engine's decision counters.
func (e *Engine) Stats() *Stats {
	return e.stats
}

// Close stops the rule watcher. Safe to call multiple times.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.stopCh)
	})
	e.wg.Wait()
	return nil
}

// snapshot returns the origin node's state vector as a trace snapshot.
// Without a state source the worst-case vector applies.
func (e *Engine) snapshot(nodeID string) StateSnapshot {
	sv := throttle.WorstCase()
	if e.states != nil {
		sv = e.states.Snapshot(nodeID)
	}
	return StateSnapshot{
		Node:       nodeID,
		Stress:     sv.Stress,
		Centrality: sv.Centrality,
		Friction:   sv.Friction,
		Observed:   sv.Observed,
	}
}

// adjust scales a base limit by the snapshot's adjustment factor.
func (e *Engine) adjust(baseLimit float64, state StateSnapshot) float64 {
	sv := throttle.StateVector{
		Stress:     state.Stress,
		Centrality: state.Centrality,
		Friction:   state.Friction,
		Observed:   state.Observed,
	}
	if e.states != nil {
		return e.states.Adjust(baseLimit, sv)
	}
	return throttle.DefaultAdjustmentWeights().Adjust(baseLimit, sv)
}

// startWatching subscribes to rule source events and reloads on change.
func (e *Engine) startWatching() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		eventCh, err := e.source.Watch(ctx)
		if err != nil {
			e.logger.Error("failed to start rule watcher", "error", err)
			return
		}
		if eventCh == nil {
			return
		}

		for {
			select {
			case <-e.stopCh:
				return
			case event, ok := <-eventCh:
				if !ok {
					return
				}
				e.handleRuleEvent(ctx, event)
			}
		}
	}()
}

// handleRuleEvent reloads rules after a source change. A broken rule file
// logs the compilation errors and leaves the previous set serving.
func (e *Engine) handleRuleEvent(ctx context.Context, event RuleEvent) {
	e.logger.Info("rule source changed",
		"type", event.Type,
		"path", event.Path,
	)

	if err := e.Reload(ctx); err != nil {
		e.logger.Error("failed to reload rules after change, keeping previous set",
			"error", err,
			"path", event.Path,
		)
	}
}
