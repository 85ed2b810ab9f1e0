package throttle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/saturn/pkg/throttle/storage"
)

// Config contains configuration for the network throttle.
type Config struct {
	// Weights controls the limit adjustment function.
	Weights AdjustmentWeights

	// FlowCapacity is the reference amount against which a single observed
	// transaction is measured for stress purposes. An observation of
	// FlowCapacity or more counts as full utilization.
	FlowCapacity float64

	// Smoothing is the EWMA coefficient for stress and friction updates,
	// in (0, 1]. Higher values react faster to recent observations.
	Smoothing float64

	// Storage persists node flow state. Defaults to an in-memory backend.
	Storage storage.Backend
}

// DefaultConfig returns the throttle configuration used when none is provided.
func DefaultConfig() Config {
	return Config{
		Weights:      DefaultAdjustmentWeights(),
		FlowCapacity: 1_000_000,
		Smoothing:    0.2,
	}
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if !c.Weights.Valid() {
		return fmt.Errorf("adjustment weights must be within [0, 1]")
	}
	if c.FlowCapacity <= 0 {
		return fmt.Errorf("flow capacity must be positive, got %v", c.FlowCapacity)
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		return fmt.Errorf("smoothing must be within (0, 1], got %v", c.Smoothing)
	}
	return nil
}

// Throttle maintains per-node state vectors and computes state-aware limits.
//
// Mutation (Observe, Decay, Restore) is serialized by an internal lock.
// Snapshot and ComputeLimit copy state under a read lock, so evaluations read
// an immutable snapshot and never interleave with a half-applied update.
type Throttle struct {
	mu        sync.RWMutex
	nodes     map[string]*nodeState
	totalFlow float64

	weights   AdjustmentWeights
	capacity  float64
	smoothing float64

	storage storage.Backend
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a network throttle from the given configuration.
func New(cfg Config, logger *slog.Logger) (*Throttle, error) {
	if cfg.Weights == (AdjustmentWeights{}) {
		cfg.Weights = DefaultAdjustmentWeights()
	}
	if cfg.FlowCapacity == 0 {
		cfg.FlowCapacity = DefaultConfig().FlowCapacity
	}
	if cfg.Smoothing == 0 {
		cfg.Smoothing = DefaultConfig().Smoothing
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid throttle config: %w", err)
	}
	if cfg.Storage == nil {
		cfg.Storage = storage.NewMemoryBackend()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Throttle{
		nodes:     make(map[string]*nodeState),
		weights:   cfg.Weights,
		capacity:  cfg.FlowCapacity,
		smoothing: cfg.Smoothing,
		storage:   cfg.Storage,
		logger:    logger.With("component", "throttle"),
	}, nil
}

// WithMetrics attaches Prometheus metrics to the throttle.
func (t *Throttle) WithMetrics(m *Metrics) *Throttle {
	t.metrics = m
	return t
}

// Restore loads persisted node state from storage.
// It is called once at startup, before the throttle starts observing.
func (t *Throttle) Restore(ctx context.Context) error {
	records, err := t.storage.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore throttle state: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, record := range records {
		t.nodes[record.NodeID] = &nodeState{
			inflow:       record.Inflow,
			outflow:      record.Outflow,
			observations: record.Observations,
			stress:       clamp01(record.Stress),
			friction:     clamp01(record.Friction),
			updatedAt:    record.UpdatedAt,
		}
		// Each observed amount appears exactly once as an inflow, so the
		// inflow sum reconstructs total observed flow.
		t.totalFlow += record.Inflow
	}

	t.logger.Info("throttle state restored",
		"node_count", len(records),
		"total_flow", t.totalFlow,
	)
	return nil
}

// Observe records a settled transaction, updating the state of both endpoint
// nodes. This is the single writer path; it runs between evaluations, never
// during one.
func (t *Throttle) Observe(ctx context.Context, obs Observation) {
	if obs.Amount < 0 {
		t.logger.Warn("ignoring observation with negative amount",
			"origin", obs.Origin,
			"destination", obs.Destination,
			"amount", obs.Amount,
		)
		return
	}

	settledAt := obs.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now()
	}

	t.mu.Lock()

	origin := t.nodeLocked(obs.Origin)
	origin.outflow += obs.Amount
	t.updateSignalsLocked(origin, obs, settledAt)

	dest := t.nodeLocked(obs.Destination)
	dest.inflow += obs.Amount
	t.updateSignalsLocked(dest, obs, settledAt)

	t.totalFlow += obs.Amount

	originRecord := t.recordLocked(obs.Origin, origin)
	destRecord := t.recordLocked(obs.Destination, dest)

	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.ObservationRecorded(obs.DataGap)
	}

	for _, record := range []*storage.NodeRecord{originRecord, destRecord} {
		if err := t.storage.Save(ctx, record); err != nil {
			t.logger.Warn("failed to persist node state",
				"node_id", record.NodeID,
				"error", err,
			)
		}
	}
}

// Snapshot returns an immutable copy of the node's state vector.
// Unknown nodes (no observed history) get the worst-case vector and are
// throttled hardest; this is a warning condition, never an error.
func (t *Throttle) Snapshot(nodeID string) StateVector {
	t.mu.RLock()
	node, ok := t.nodes[nodeID]
	if !ok || node.observations == 0 {
		t.mu.RUnlock()
		t.logger.Debug("no observed history for node, using worst-case state vector",
			"node_id", nodeID,
		)
		if t.metrics != nil {
			t.metrics.WorstCaseFallback(nodeID)
		}
		return WorstCase()
	}

	sv := StateVector{
		Stress:     node.stress,
		Centrality: t.centralityLocked(node),
		Friction:   node.friction,
		Observed:   true,
	}
	t.mu.RUnlock()

	return sv
}

// ComputeLimit returns the permissible amount for a node given a base limit.
// It never fails: nodes without history fall back to the worst-case vector.
func (t *Throttle) ComputeLimit(nodeID string, baseLimit float64) float64 {
	sv := t.Snapshot(nodeID)
	adjusted := t.weights.Adjust(baseLimit, sv)

	if t.metrics != nil {
		t.metrics.LimitAdjusted(t.weights.Factor(sv))
	}

	return adjusted
}

// Adjust scales a base limit by the adjustment factor for an already-taken
// snapshot. Evaluations that need several limits against one consistent state
// snapshot use this instead of ComputeLimit.
func (t *Throttle) Adjust(baseLimit float64, sv StateVector) float64 {
	if t.metrics != nil {
		t.metrics.LimitAdjusted(t.weights.Factor(sv))
	}
	return t.weights.Adjust(baseLimit, sv)
}

// Decay relaxes every node's stress and friction toward zero by the given
// factor in [0, 1). Quiet nodes recover capacity between bursts; flow totals
// and centrality are untouched.
func (t *Throttle) Decay(factor float64) {
	if factor < 0 || factor >= 1 {
		t.logger.Warn("ignoring decay with out-of-range factor", "factor", factor)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, node := range t.nodes {
		node.stress *= factor
		node.friction *= factor
	}
}

// NodeCount returns the number of nodes with observed history.
func (t *Throttle) NodeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

// Close releases the storage backend.
func (t *Throttle) Close() error {
	return t.storage.Close()
}

// nodeLocked returns the mutable state for a node, creating it if needed.
// Caller must hold the write lock.
func (t *Throttle) nodeLocked(nodeID string) *nodeState {
	node, ok := t.nodes[nodeID]
	if !ok {
		node = &nodeState{}
		t.nodes[nodeID] = node
	}
	return node
}

// updateSignalsLocked applies one observation to a node's stress and friction
// EWMAs. Caller must hold the write lock.
func (t *Throttle) updateSignalsLocked(node *nodeState, obs Observation, settledAt time.Time) {
	utilization := clamp01(obs.Amount / t.capacity)
	node.stress = (1-t.smoothing)*node.stress + t.smoothing*utilization

	gap := 0.0
	if obs.DataGap {
		gap = 1.0
	}
	node.friction = (1-t.smoothing)*node.friction + t.smoothing*gap

	node.observations++
	node.updatedAt = settledAt
}

// centralityLocked computes a node's normalized flow share.
// Caller must hold at least the read lock.
func (t *Throttle) centralityLocked(node *nodeState) float64 {
	if t.totalFlow <= 0 {
		return 0
	}
	// Every observed amount contributes once to some node's inflow and once
	// to some node's outflow, so 2*totalFlow normalizes the share to [0, 1].
	return clamp01((node.inflow + node.outflow) / (2 * t.totalFlow))
}

// recordLocked builds a storage record from current node state.
// Caller must hold the write lock.
func (t *Throttle) recordLocked(nodeID string, node *nodeState) *storage.NodeRecord {
	return &storage.NodeRecord{
		NodeID:       nodeID,
		Inflow:       node.inflow,
		Outflow:      node.outflow,
		Observations: node.observations,
		Stress:       node.stress,
		Friction:     node.friction,
		UpdatedAt:    node.updatedAt,
	}
}
