package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// Thread Operations
// ============================================================================

// CreateThread creates a thread, generating an id when the caller supplies
// none. Creating an id that already exists updates the existing thread in
// place rather than failing the uniqueness constraint.
func (s *Store) CreateThread(ctx context.Context, req CreateThreadRequest) (*Thread, error) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	threadID := req.ID
	if threadID == "" {
		threadID = uuid.New().String()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MERGE (t:Thread {id: $threadID})
		ON CREATE SET
			t.resourceId = $resourceID,
			t.title = $title,
			t.metadata = $metadata,
			t.createdAt = datetime($now),
			t.updatedAt = datetime($now)
		ON MATCH SET
			t.resourceId = $resourceID,
			t.title = $title,
			t.metadata = $metadata,
			t.updatedAt = datetime($now)
		RETURN t
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"threadID":   threadID,
		"resourceID": req.ResourceID,
		"title":      req.Title,
		"metadata":   encodeMetadata(req.Metadata),
		"now":        now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	if result.Next(ctx) {
		return threadFromRecord(result.Record(), "t"), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	return nil, fmt.Errorf("failed to create thread: no record returned")
}

// GetThread retrieves a thread by id; a missing thread is (nil, nil).
func (s *Store) GetThread(ctx context.Context, threadID string) (*Thread, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (t:Thread {id: $threadID})
		RETURN t
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"threadID": threadID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}

	if result.Next(ctx) {
		return threadFromRecord(result.Record(), "t"), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}

	return nil, nil
}

// ThreadsByResource lists all threads with a matching resourceId, sorted by
// an allow-listed field (default createdAt descending).
func (s *Store) ThreadsByResource(ctx context.Context, req ListThreadsRequest) ([]*Thread, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (t:Thread {resourceId: $resourceID})
		RETURN t
		ORDER BY t.%s %s
	`, threadSortField(req.SortBy), sortDirection(req.SortDir))

	result, err := session.Run(ctx, query, map[string]interface{}{
		"resourceID": req.ResourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	threads := []*Thread{}
	for result.Next(ctx) {
		if thread := threadFromRecord(result.Record(), "t"); thread != nil {
			threads = append(threads, thread)
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	return threads, nil
}

// ThreadsByResourcePaginated returns one zero-indexed page of threads plus a
// total computed by a separate count query. The page and count queries run
// concurrently, each on its own session.
func (s *Store) ThreadsByResourcePaginated(ctx context.Context, req ListThreadsPageRequest) (*ThreadPage, error) {
	page := req.Page
	if page < 0 {
		page = 0
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 40
	}

	listQuery := fmt.Sprintf(`
		MATCH (t:Thread {resourceId: $resourceID})
		RETURN t
		ORDER BY t.%s %s
		SKIP $skip LIMIT $limit
	`, threadSortField(req.SortBy), sortDirection(req.SortDir))

	var threads []*Thread
	var total int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		session := s.readSession(gctx)
		defer session.Close(gctx)

		result, err := session.Run(gctx, listQuery, map[string]interface{}{
			"resourceID": req.ResourceID,
			"skip":       page * perPage,
			"limit":      perPage,
		})
		if err != nil {
			return fmt.Errorf("failed to list threads: %w", err)
		}
		threads = []*Thread{}
		for result.Next(gctx) {
			if thread := threadFromRecord(result.Record(), "t"); thread != nil {
				threads = append(threads, thread)
			}
		}
		return result.Err()
	})

	g.Go(func() error {
		session := s.readSession(gctx)
		defer session.Close(gctx)

		result, err := session.Run(gctx, `
			MATCH (t:Thread {resourceId: $resourceID})
			RETURN count(t) AS total
		`, map[string]interface{}{
			"resourceID": req.ResourceID,
		})
		if err != nil {
			return fmt.Errorf("failed to count threads: %w", err)
		}
		if result.Next(gctx) {
			total = getInt64FromRecord(result.Record(), "total")
		}
		return result.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ThreadPage{
		Threads: threads,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		HasMore: int64((page+1)*perPage) < total,
	}, nil
}

// UpdateThread applies the provided field changes and bumps updatedAt. A
// missing thread is (nil, nil).
func (s *Store) UpdateThread(ctx context.Context, req UpdateThreadRequest) (*Thread, error) {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)
	params := map[string]interface{}{
		"threadID": req.ID,
		"now":      now,
	}

	setClauses := []string{"t.updatedAt = datetime($now)"}
	if req.Title != nil {
		setClauses = append(setClauses, "t.title = $title")
		params["title"] = *req.Title
	}
	if req.Metadata != nil {
		setClauses = append(setClauses, "t.metadata = $metadata")
		params["metadata"] = encodeMetadata(req.Metadata)
	}

	query := fmt.Sprintf(`
		MATCH (t:Thread {id: $threadID})
		SET %s
		RETURN t
	`, strings.Join(setClauses, ", "))

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update thread: %w", err)
	}

	if result.Next(ctx) {
		return threadFromRecord(result.Record(), "t"), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to update thread: %w", err)
	}

	return nil, nil
}

// DeleteThread removes the thread node and its edges. Messages under the
// thread are NOT cascade-deleted: they lose their containment edge but stay
// individually retrievable by id. Callers that want a full teardown must
// delete the messages themselves.
func (s *Store) DeleteThread(ctx context.Context, threadID string) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (t:Thread {id: $threadID})
		DETACH DELETE t
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"threadID": threadID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}

	s.logger.Info("Thread deleted", zap.String("thread_id", threadID))
	return nil
}
