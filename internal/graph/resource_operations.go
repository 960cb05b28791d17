package graph

import (
	"context"
	"fmt"
	"time"
)

// ============================================================================
// Resource Operations
// ============================================================================

// CreateResource creates or refreshes a resource node. Resources have an
// independent lifecycle from threads; association is by resourceId value.
func (s *Store) CreateResource(ctx context.Context, req CreateResourceRequest) (*Resource, error) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MERGE (r:Resource {id: $resourceID})
		ON CREATE SET
			r.metadata = $metadata,
			r.createdAt = datetime($now),
			r.updatedAt = datetime($now)
		ON MATCH SET
			r.metadata = $metadata,
			r.updatedAt = datetime($now)
		RETURN r
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"resourceID": req.ID,
		"metadata":   encodeMetadata(req.Metadata),
		"now":        now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if result.Next(ctx) {
		return resourceFromRecord(result.Record(), "r"), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return nil, fmt.Errorf("failed to create resource: no record returned")
}

// GetResource retrieves a resource by id; a missing resource is (nil, nil).
func (s *Store) GetResource(ctx context.Context, resourceID string) (*Resource, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (r:Resource {id: $resourceID})
		RETURN r
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"resourceID": resourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	if result.Next(ctx) {
		return resourceFromRecord(result.Record(), "r"), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	return nil, nil
}

// UpdateResource replaces a resource's metadata and bumps updatedAt. A
// missing resource is (nil, nil).
func (s *Store) UpdateResource(ctx context.Context, req UpdateResourceRequest) (*Resource, error) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (r:Resource {id: $resourceID})
		SET r.metadata = $metadata,
		    r.updatedAt = datetime($now)
		RETURN r
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"resourceID": req.ID,
		"metadata":   encodeMetadata(req.Metadata),
		"now":        now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}

	if result.Next(ctx) {
		return resourceFromRecord(result.Record(), "r"), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}

	return nil, nil
}
