package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "graphmem/pkg/errors"
	"graphmem/pkg/logger"
)

// Store is the storage facade over the Neo4j graph. It holds no long-lived
// session: every operation opens a short-lived one and releases it on all
// exit paths. Safe for concurrent use by independent callers.
type Store struct {
	driver      neo4j.DriverWithContext
	database    string
	logger      *zap.Logger
	initialized bool
}

// NewStore creates a store on an existing driver. An empty database name
// falls back to the server default.
func NewStore(driver neo4j.DriverWithContext, database string) *Store {
	return &Store{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
	}
}

// Open creates a driver from connection parameters and wraps it in a Store.
// Connectivity is not verified here; a bad endpoint or bad credentials
// surface at the first operation attempt.
func Open(uri, user, password, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return NewStore(driver, database), nil
}

// Driver exposes the underlying driver for wiring-level checks
// (VerifyConnectivity) and test cleanup.
func (s *Store) Driver() neo4j.DriverWithContext {
	return s.driver
}

// Close closes the underlying driver connection
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
}

func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
}

// HealthCheck executes a trivial round-trip query and reports reachability.
// Any underlying fault is reported as false, never propagated.
func (s *Store) HealthCheck(ctx context.Context) bool {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, "RETURN 1 AS ok", nil)
	if err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		return false
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
		}
		return false
	}
	return true
}

// Query is the parameterized-query escape hatch. It returns one map per
// record, keyed by the query's return aliases.
func (s *Store) Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rows = append(rows, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	return rows, nil
}

// ExecuteBatch runs each statement independently within one session. This is
// not a transaction: earlier statements stay committed when a later one
// fails, and the error reports the failing index.
func (s *Store) ExecuteBatch(ctx context.Context, statements []Statement) error {
	if len(statements) == 0 {
		return nil
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	for i, stmt := range statements {
		result, err := session.Run(ctx, stmt.Query, stmt.Params)
		if err != nil {
			return fmt.Errorf("failed to execute batch statement %d: %w", i, err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("failed to execute batch statement %d: %w", i, err)
		}
	}

	return nil
}
