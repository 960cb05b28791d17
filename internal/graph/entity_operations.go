package graph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// Entity Operations
// ============================================================================

// raiseOnlyClause renders the shared raise-only confidence merge for an
// ON MATCH SET: the stored confidence becomes max(existing, incoming).
func raiseOnlyClause(varName string) string {
	return fmt.Sprintf(
		"CASE WHEN %s.confidence >= $confidence THEN %s.confidence ELSE $confidence END",
		varName, varName,
	)
}

// linkMessageEntities runs the best-effort enrichment stage for a committed
// message: entity upserts with mention edges, then pairwise relation edges
// between co-occurring entities. Each step is isolated — a failure is logged
// and counted, never propagated. Returns the number of failed steps.
func (s *Store) linkMessageEntities(ctx context.Context, messageID string, entities []ExtractedEntity) int {
	failed := 0

	for _, entity := range entities {
		if err := s.UpsertEntityMention(ctx, messageID, entity); err != nil {
			failed++
			s.logger.Warn("Failed to link entity",
				zap.String("message_id", messageID),
				zap.String("entity_type", string(entity.Type)),
				zap.String("entity_value", entity.Value),
				zap.Error(err),
			)
		}
	}

	if len(entities) < 2 {
		return failed
	}

	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			if err := s.MergeEntityRelation(ctx, entities[i], entities[j]); err != nil {
				failed++
				s.logger.Warn("Failed to link entity pair",
					zap.String("message_id", messageID),
					zap.String("source", entities[i].Value),
					zap.String("target", entities[j].Value),
					zap.Error(err),
				)
			}
		}
	}

	return failed
}

// UpsertEntityMention merges the entity node keyed by (type, value) — first
// observation sets confidence and creation time, repeats only ever raise the
// confidence — and records a mention edge from the message. Mention edges are
// additive: repeated extraction runs add new edges rather than deduplicating.
func (s *Store) UpsertEntityMention(ctx context.Context, messageID string, entity ExtractedEntity) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	now := time.Now().UTC().Format(time.RFC3339)

	query := fmt.Sprintf(`
		MATCH (m:Message {id: $messageID})
		MERGE (e:Entity {type: $type, value: $value})
		ON CREATE SET
			e.confidence = $confidence,
			e.createdAt = datetime($now)
		ON MATCH SET
			e.confidence = %s
		CREATE (m)-[:MENTIONS {confidence: $confidence}]->(e)
	`, raiseOnlyClause("e"))

	_, err := session.Run(ctx, query, map[string]interface{}{
		"messageID":  messageID,
		"type":       string(entity.Type),
		"value":      entity.Value,
		"confidence": entity.Confidence,
		"now":        now,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert entity mention: %w", err)
	}

	return nil
}

// MergeEntityRelation derives the typed relation between an ordered entity
// pair and merges the edge by (source, target, label). Edge confidence is the
// min of the pair's confidences and follows the raise-only rule on repeats.
// The label comes from the fixed precedence table, never from caller input,
// so splicing it into the query is safe.
func (s *Store) MergeEntityRelation(ctx context.Context, source, target ExtractedEntity) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	relType := relationTypeFor(source.Type, target.Type)
	confidence := minConfidence(source.Confidence, target.Confidence)
	now := time.Now().UTC().Format(time.RFC3339)

	query := fmt.Sprintf(`
		MATCH (a:Entity {type: $sourceType, value: $sourceValue})
		MATCH (b:Entity {type: $targetType, value: $targetValue})
		MERGE (a)-[r:%s]->(b)
		ON CREATE SET
			r.confidence = $confidence,
			r.createdAt = datetime($now)
		ON MATCH SET
			r.confidence = %s
	`, relType, raiseOnlyClause("r"))

	_, err := session.Run(ctx, query, map[string]interface{}{
		"sourceType":  string(source.Type),
		"sourceValue": source.Value,
		"targetType":  string(target.Type),
		"targetValue": target.Value,
		"confidence":  confidence,
		"now":         now,
	})
	if err != nil {
		return fmt.Errorf("failed to merge entity relation: %w", err)
	}

	return nil
}

// MessageEntities returns the entities mentioned by a message, in mention
// order of creation.
func (s *Store) MessageEntities(ctx context.Context, messageID string) ([]ExtractedEntity, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (m:Message {id: $messageID})-[:MENTIONS]->(e:Entity)
		WITH DISTINCT e
		ORDER BY e.createdAt ASC
		RETURN e.type AS type, e.value AS value, e.confidence AS confidence
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"messageID": messageID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message entities: %w", err)
	}

	entities := []ExtractedEntity{}
	for result.Next(ctx) {
		record := result.Record()
		entity := ExtractedEntity{}
		if val, ok := record.Get("type"); ok {
			if str, ok := val.(string); ok {
				entity.Type = EntityType(str)
			}
		}
		if val, ok := record.Get("value"); ok {
			if str, ok := val.(string); ok {
				entity.Value = str
			}
		}
		if val, ok := record.Get("confidence"); ok {
			if f, ok := val.(float64); ok {
				entity.Confidence = f
			}
		}
		entities = append(entities, entity)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to get message entities: %w", err)
	}

	return entities, nil
}
