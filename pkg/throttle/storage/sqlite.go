package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend implements Backend using SQLite for persistence.
// It provides durable storage for single-instance deployments where node flow
// history must survive restarts.
//
// SQLiteBackend uses a write-ahead log (WAL) for better concurrent performance.
type SQLiteBackend struct {
	db        *sql.DB
	dbPath    string
	mu        sync.RWMutex
	closeOnce sync.Once

	saveStmt   *sql.Stmt
	loadStmt   *sql.Stmt
	listStmt   *sql.Stmt
	deleteStmt *sql.Stmt
}

// SQLiteBackendConfig configures the SQLite backend.
type SQLiteBackendConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteBackend creates a new SQLite storage backend with default settings.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	return NewSQLiteBackendWithConfig(SQLiteBackendConfig{
		DBPath:      dbPath,
		BusyTimeout: 5 * time.Second,
	})
}

// NewSQLiteBackendWithConfig creates a new SQLite backend with custom configuration.
func NewSQLiteBackendWithConfig(cfg SQLiteBackendConfig) (*SQLiteBackend, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{
		db:     db,
		dbPath: cfg.DBPath,
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return backend, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS node_states (
		node_id TEXT NOT NULL PRIMARY KEY,
		inflow REAL NOT NULL,
		outflow REAL NOT NULL,
		observations INTEGER NOT NULL,
		stress REAL NOT NULL,
		friction REAL NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_node_updated_at ON node_states(updated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO node_states (node_id, inflow, outflow, observations, stress, friction, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (node_id) DO UPDATE SET
			inflow = excluded.inflow,
			outflow = excluded.outflow,
			observations = excluded.observations,
			stress = excluded.stress,
			friction = excluded.friction,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT node_id, inflow, outflow, observations, stress, friction, updated_at
		FROM node_states
		WHERE node_id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT node_id, inflow, outflow, observations, stress, friction, updated_at
		FROM node_states
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`
		DELETE FROM node_states WHERE node_id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	return nil
}

// Save persists the record for a node.
func (s *SQLiteBackend) Save(ctx context.Context, record *NodeRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if record.NodeID == "" {
		return fmt.Errorf("node id cannot be empty")
	}

	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.saveStmt.ExecContext(ctx,
		record.NodeID,
		record.Inflow,
		record.Outflow,
		record.Observations,
		record.Stress,
		record.Friction,
		updatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save node state: %w", err)
	}
	return nil
}

// Load retrieves the record for a node, or nil if none exists.
func (s *SQLiteBackend) Load(ctx context.Context, nodeID string) (*NodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.loadStmt.QueryRowContext(ctx, nodeID)
	record, err := scanNodeRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load node state: %w", err)
	}
	return record, nil
}

// List returns all stored node records.
func (s *SQLiteBackend) List(ctx context.Context) ([]*NodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list node states: %w", err)
	}
	defer rows.Close()

	var records []*NodeRecord
	for rows.Next() {
		record, err := scanNodeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node state: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate node states: %w", err)
	}

	return records, nil
}

// Delete removes the record for a node.
func (s *SQLiteBackend) Delete(ctx context.Context, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, nodeID); err != nil {
		return fmt.Errorf("failed to delete node state: %w", err)
	}
	return nil
}

// Close releases the database and prepared statements.
func (s *SQLiteBackend) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.listStmt, s.deleteStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}

// scanner abstracts sql.Row and sql.Rows for scanNodeRecord.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanNodeRecord scans a node_states row into a NodeRecord.
func scanNodeRecord(row scanner) (*NodeRecord, error) {
	var record NodeRecord
	var updatedAt int64

	err := row.Scan(
		&record.NodeID,
		&record.Inflow,
		&record.Outflow,
		&record.Observations,
		&record.Stress,
		&record.Friction,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.UpdatedAt = time.Unix(updatedAt, 0)
	return &record, nil
}
