package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Uniqueness constraints and lookup indexes over the node types. All
// statements are declarative (IF NOT EXISTS), so re-running them is safe.
var schemaStatements = []string{
	`CREATE CONSTRAINT thread_id_unique IF NOT EXISTS FOR (t:Thread) REQUIRE t.id IS UNIQUE`,
	`CREATE CONSTRAINT message_id_unique IF NOT EXISTS FOR (m:Message) REQUIRE m.id IS UNIQUE`,
	`CREATE INDEX thread_resource_id IF NOT EXISTS FOR (t:Thread) ON (t.resourceId)`,
	`CREATE INDEX message_thread_id IF NOT EXISTS FOR (m:Message) ON (m.threadId)`,
	`CREATE INDEX message_created_at IF NOT EXISTS FOR (m:Message) ON (m.createdAt)`,
}

// EnsureSchema declares the constraints and indexes the store relies on. It
// is a no-op after the first successful run on this instance; the flag is
// only set once every statement has succeeded, so a failed run is retried in
// full on the next call. Concurrent first calls may redundantly re-run the
// idempotent statements, which is harmless.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		result, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	s.initialized = true
	s.logger.Info("Graph schema ready", zap.Int("statements", len(schemaStatements)))
	return nil
}
