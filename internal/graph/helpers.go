package graph

import (
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Record and Property Helpers
// ============================================================================

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return i
	}
	if i, ok := val.(int); ok {
		return int64(i)
	}
	return 0
}

func nodeFromRecord(record *neo4j.Record, key string) (neo4j.Node, bool) {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return neo4j.Node{}, false
	}
	node, ok := val.(neo4j.Node)
	return node, ok
}

func getStringProp(props map[string]any, key string) string {
	val, ok := props[key]
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// getTimeProp accepts the store's native temporal type (surfaced by the
// driver as time.Time) as well as an ISO-8601 string property.
func getTimeProp(props map[string]any, key string) time.Time {
	val, ok := props[key]
	if !ok || val == nil {
		return time.Time{}
	}
	if t, ok := val.(time.Time); ok {
		return t
	}
	if str, ok := val.(string); ok {
		if t, err := time.Parse(time.RFC3339, str); err == nil {
			return t
		}
	}
	return time.Time{}
}

// getMetadataProp parses the JSON-encoded metadata property. Absent, empty
// or malformed metadata maps to an empty map, never nil.
func getMetadataProp(props map[string]any, key string) map[string]any {
	metadata := map[string]any{}
	str := getStringProp(props, key)
	if str == "" {
		return metadata
	}
	if err := json.Unmarshal([]byte(str), &metadata); err != nil {
		return map[string]any{}
	}
	return metadata
}

// encodeMetadata serializes metadata to its JSON string property form. A nil
// map encodes as the empty object so reads always parse.
func encodeMetadata(metadata map[string]any) string {
	if len(metadata) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// ============================================================================
// Node to Domain Mapping
// ============================================================================

func threadFromProps(props map[string]any) *Thread {
	return &Thread{
		ID:         getStringProp(props, "id"),
		ResourceID: getStringProp(props, "resourceId"),
		Title:      getStringProp(props, "title"),
		CreatedAt:  getTimeProp(props, "createdAt"),
		UpdatedAt:  getTimeProp(props, "updatedAt"),
		Metadata:   getMetadataProp(props, "metadata"),
	}
}

func messageFromProps(props map[string]any) *Message {
	return &Message{
		ID:        getStringProp(props, "id"),
		ThreadID:  getStringProp(props, "threadId"),
		Role:      getStringProp(props, "role"),
		Content:   getStringProp(props, "content"),
		CreatedAt: getTimeProp(props, "createdAt"),
		Metadata:  getMetadataProp(props, "metadata"),
	}
}

func resourceFromProps(props map[string]any) *Resource {
	return &Resource{
		ID:        getStringProp(props, "id"),
		Metadata:  getMetadataProp(props, "metadata"),
		UpdatedAt: getTimeProp(props, "updatedAt"),
	}
}

// Several callers use a nil mapped value to mean "not found", so a missing
// node maps to nil rather than an error.

func threadFromRecord(record *neo4j.Record, key string) *Thread {
	node, ok := nodeFromRecord(record, key)
	if !ok {
		return nil
	}
	return threadFromProps(node.Props)
}

func messageFromRecord(record *neo4j.Record, key string) *Message {
	node, ok := nodeFromRecord(record, key)
	if !ok {
		return nil
	}
	return messageFromProps(node.Props)
}

func resourceFromRecord(record *neo4j.Record, key string) *Resource {
	node, ok := nodeFromRecord(record, key)
	if !ok {
		return nil
	}
	return resourceFromProps(node.Props)
}
