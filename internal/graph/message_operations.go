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

// Default cap on messages returned by ListMessages when no explicit limit is
// given.
const defaultMessageLimit = 100

// Defaults applied to auto-created threads
const (
	defaultThreadTitle      = "New Thread"
	defaultThreadResourceID = "default"
)

// ============================================================================
// Message Operations
// ============================================================================

// CreateMessage writes a message in two stages with distinct failure domains.
// Stage one commits the message node and its containment edge — creating the
// owning thread with defaults if the threadId is unknown — and must succeed
// or the whole operation fails. Stage two extracts entities from the content
// and links them into the graph; its failures are logged per entity and per
// pair and never abort the already-durable message.
func (s *Store) CreateMessage(ctx context.Context, req CreateMessageRequest) (*Message, error) {
	if req.ThreadID == "" {
		return nil, fmt.Errorf("failed to create message: threadId is required")
	}

	messageID := req.ID
	if messageID == "" {
		messageID = uuid.New().String()
	}
	role := req.Role
	if role == "" {
		role = RoleUser
	}
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		MERGE (t:Thread {id: $threadID})
		ON CREATE SET
			t.resourceId = $defaultResourceID,
			t.title = $defaultTitle,
			t.metadata = '{}',
			t.createdAt = datetime($now),
			t.updatedAt = datetime($now)
		CREATE (m:Message {
			id: $messageID,
			threadId: $threadID,
			role: $role,
			content: $content,
			metadata: $metadata,
			createdAt: datetime($now)
		})
		CREATE (t)-[:CONTAINS]->(m)
		RETURN m
	`

	session := s.writeSession(ctx)
	message, err := func() (*Message, error) {
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, map[string]interface{}{
			"threadID":          req.ThreadID,
			"messageID":         messageID,
			"role":              role,
			"content":           req.Content,
			"metadata":          encodeMetadata(req.Metadata),
			"defaultResourceID": defaultThreadResourceID,
			"defaultTitle":      defaultThreadTitle,
			"now":               now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create message: %w", err)
		}
		if result.Next(ctx) {
			return messageFromRecord(result.Record(), "m"), nil
		}
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to create message: %w", err)
		}
		return nil, fmt.Errorf("failed to create message: no record returned")
	}()
	if err != nil {
		return nil, err
	}

	// Stage two: best-effort enrichment. The message is already committed.
	if len(req.Content) >= minExtractableLength {
		entities := ExtractEntities(req.Content)
		if len(entities) > 0 {
			failed := s.linkMessageEntities(ctx, messageID, entities)
			if failed > 0 {
				s.logger.Warn("Entity linking partially failed",
					zap.String("message_id", messageID),
					zap.Int("failed_steps", failed),
					zap.Int("entities", len(entities)),
				)
			}
		}
	}

	return message, nil
}

// GetMessageByID retrieves a message by id; a missing message is (nil, nil).
func (s *Store) GetMessageByID(ctx context.Context, messageID string) (*Message, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (m:Message {id: $messageID})
		RETURN m
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"messageID": messageID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	if result.Next(ctx) {
		return messageFromRecord(result.Record(), "m"), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return nil, nil
}

// GetMessagesByID returns the messages matching the given ids, ordered by
// createdAt ascending. Unknown ids are silently omitted.
func (s *Store) GetMessagesByID(ctx context.Context, messageIDs []string) ([]*Message, error) {
	if len(messageIDs) == 0 {
		return []*Message{}, nil
	}

	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (m:Message)
		WHERE m.id IN $messageIDs
		RETURN m
		ORDER BY m.createdAt ASC, m.id ASC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"messageIDs": messageIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	messages := []*Message{}
	for result.Next(ctx) {
		if message := messageFromRecord(result.Record(), "m"); message != nil {
			messages = append(messages, message)
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return messages, nil
}

// ListMessages returns a thread's messages ordered by createdAt ascending,
// ties broken by id. A nil Limit applies the default cap; an explicit zero
// limit means "no messages requested" and returns empty without querying.
func (s *Store) ListMessages(ctx context.Context, req ListMessagesRequest) ([]*Message, error) {
	limit := defaultMessageLimit
	if req.Limit != nil {
		if *req.Limit == 0 {
			return []*Message{}, nil
		}
		limit = *req.Limit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (t:Thread {id: $threadID})-[:CONTAINS]->(m:Message)
		RETURN m
		ORDER BY m.createdAt ASC, m.id ASC
		SKIP $offset LIMIT $limit
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"threadID": req.ThreadID,
		"offset":   offset,
		"limit":    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := []*Message{}
	for result.Next(ctx) {
		if message := messageFromRecord(result.Record(), "m"); message != nil {
			messages = append(messages, message)
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

// ListMessagesPaginated returns one zero-indexed page of a thread's messages
// plus pagination metadata from a separate count query. The page and count
// queries run concurrently, each on its own session.
func (s *Store) ListMessagesPaginated(ctx context.Context, req ListMessagesPageRequest) (*MessagePage, error) {
	page := req.Page
	if page < 0 {
		page = 0
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 40
	}

	var messages []*Message
	var total int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		session := s.readSession(gctx)
		defer session.Close(gctx)

		result, err := session.Run(gctx, `
			MATCH (t:Thread {id: $threadID})-[:CONTAINS]->(m:Message)
			RETURN m
			ORDER BY m.createdAt ASC, m.id ASC
			SKIP $skip LIMIT $limit
		`, map[string]interface{}{
			"threadID": req.ThreadID,
			"skip":     page * perPage,
			"limit":    perPage,
		})
		if err != nil {
			return fmt.Errorf("failed to list messages: %w", err)
		}
		messages = []*Message{}
		for result.Next(gctx) {
			if message := messageFromRecord(result.Record(), "m"); message != nil {
				messages = append(messages, message)
			}
		}
		return result.Err()
	})

	g.Go(func() error {
		session := s.readSession(gctx)
		defer session.Close(gctx)

		result, err := session.Run(gctx, `
			MATCH (t:Thread {id: $threadID})-[:CONTAINS]->(m:Message)
			RETURN count(m) AS total
		`, map[string]interface{}{
			"threadID": req.ThreadID,
		})
		if err != nil {
			return fmt.Errorf("failed to count messages: %w", err)
		}
		if result.Next(gctx) {
			total = getInt64FromRecord(result.Record(), "total")
		}
		return result.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &MessagePage{
		Messages: messages,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
		HasMore:  int64((page+1)*perPage) < total,
	}, nil
}

// UpdateMessage applies the provided field changes. A missing message is
// (nil, nil).
func (s *Store) UpdateMessage(ctx context.Context, req UpdateMessageRequest) (*Message, error) {
	params := map[string]interface{}{
		"messageID": req.ID,
	}

	var setClauses []string
	if req.Role != nil {
		setClauses = append(setClauses, "m.role = $role")
		params["role"] = *req.Role
	}
	if req.Content != nil {
		setClauses = append(setClauses, "m.content = $content")
		params["content"] = *req.Content
	}
	if req.Metadata != nil {
		setClauses = append(setClauses, "m.metadata = $metadata")
		params["metadata"] = encodeMetadata(req.Metadata)
	}
	if len(setClauses) == 0 {
		return s.GetMessageByID(ctx, req.ID)
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (m:Message {id: $messageID})
		SET %s
		RETURN m
	`, strings.Join(setClauses, ", "))

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}

	if result.Next(ctx) {
		return messageFromRecord(result.Record(), "m"), nil
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}

	return nil, nil
}

// DeleteMessage removes a message together with its containment and mention
// edges.
func (s *Store) DeleteMessage(ctx context.Context, messageID string) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (m:Message {id: $messageID})
		DETACH DELETE m
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"messageID": messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}

// DeleteMessages removes all messages in the id list, detaching their edges.
// An empty list is a no-op success.
func (s *Store) DeleteMessages(ctx context.Context, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (m:Message)
		WHERE m.id IN $messageIDs
		DETACH DELETE m
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"messageIDs": messageIDs,
	})
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	s.logger.Info("Messages deleted", zap.Int("count", len(messageIDs)))
	return nil
}
