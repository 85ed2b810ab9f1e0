package storage

import (
	"context"
	"time"
)

// Backend defines the interface for throttle node-state persistence.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Save persists the record for a node, replacing any existing record.
	Save(ctx context.Context, record *NodeRecord) error

	// Load retrieves the record for a node.
	// Returns nil if no record exists. Returns error on system failure.
	Load(ctx context.Context, nodeID string) (*NodeRecord, error)

	// List returns all stored node records.
	// Returns an empty slice if no records exist.
	List(ctx context.Context) ([]*NodeRecord, error)

	// Delete removes the record for a node. No-op if it doesn't exist.
	Delete(ctx context.Context, nodeID string) error

	// Close releases any resources held by the backend.
	// The backend must not be used after Close.
	Close() error
}

// NodeRecord is the persisted flow state for a single node.
type NodeRecord struct {
	// NodeID is the node identifier.
	NodeID string

	// Inflow is the total observed amount received by the node.
	Inflow float64

	// Outflow is the total observed amount sent by the node.
	Outflow float64

	// Observations is the number of settled transactions observed.
	Observations int64

	// Stress is the node's exponentially weighted capacity utilization.
	Stress float64

	// Friction is the node's exponentially weighted data-gap score.
	Friction float64

	// UpdatedAt is when this record was last modified.
	UpdatedAt time.Time
}
