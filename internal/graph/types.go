package graph

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Thread represents a conversation session scoping an ordered sequence of messages
type Thread struct {
	ID         string         `json:"id"`
	ResourceID string         `json:"resourceId"`
	Title      string         `json:"title"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Metadata   map[string]any `json:"metadata"`
}

// Message represents a single utterance in a thread
type Message struct {
	ID        string         `json:"id"`
	ThreadID  string         `json:"threadId"`
	Role      string         `json:"role"` // user, assistant, system, tool
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	Metadata  map[string]any `json:"metadata"`
}

// Resource represents an external actor (typically an end user). Resources are
// associated with threads by matching resourceId values, not by a graph edge.
type Resource struct {
	ID        string         `json:"id"`
	Metadata  map[string]any `json:"metadata"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// EntityType classifies an extracted entity node
type EntityType string

const (
	EntityPerson     EntityType = "Person"
	EntityTopic      EntityType = "Topic"
	EntityTechnology EntityType = "Technology"
	EntityQuestion   EntityType = "Question"
)

// ExtractedEntity is a confidence-scored entity candidate derived from message
// content. Entity identity in the graph is the (type, value) pair.
type ExtractedEntity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
}

// Relationship types between co-occurring entities
const (
	RelationRelatedTo    = "RELATED_TO"
	RelationInterestedIn = "INTERESTED_IN"
	RelationUses         = "USES"
	RelationImplements   = "IMPLEMENTS"
)

// relationTypeFor derives the relationship label for an ordered entity pair.
// The table is directional: only the listed orderings fire the specific label,
// swapped orderings fall through to RELATED_TO.
func relationTypeFor(source, target EntityType) string {
	switch {
	case source == EntityPerson && target == EntityTopic:
		return RelationInterestedIn
	case source == EntityPerson && target == EntityTechnology:
		return RelationUses
	case source == EntityTopic && target == EntityTechnology:
		return RelationImplements
	default:
		return RelationRelatedTo
	}
}

// maxConfidence is the raise-only merge rule: a repeat observation may raise a
// stored confidence but never lower it.
func maxConfidence(existing, incoming float64) float64 {
	if existing >= incoming {
		return existing
	}
	return incoming
}

func minConfidence(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}

// SortDirection for thread listings
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// threadSortFields is the allow-list of sortable thread properties. Caller
// input never reaches the query string directly.
var threadSortFields = map[string]string{
	"id":        "id",
	"title":     "title",
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
}

func threadSortField(field string) string {
	if prop, ok := threadSortFields[field]; ok {
		return prop
	}
	return "createdAt"
}

func sortDirection(dir SortDirection) string {
	if dir == SortAscending {
		return "ASC"
	}
	return "DESC"
}

// CreateThreadRequest creates a thread; ID is generated when empty.
type CreateThreadRequest struct {
	ID         string
	ResourceID string
	Title      string
	Metadata   map[string]any
}

// UpdateThreadRequest updates thread fields; nil fields are left untouched.
type UpdateThreadRequest struct {
	ID       string
	Title    *string
	Metadata map[string]any
}

// ListThreadsRequest lists all threads owned by a resource, sorted.
type ListThreadsRequest struct {
	ResourceID string
	SortBy     string
	SortDir    SortDirection
}

// ListThreadsPageRequest is the paginated variant; Page is zero-indexed.
type ListThreadsPageRequest struct {
	ResourceID string
	SortBy     string
	SortDir    SortDirection
	Page       int
	PerPage    int
}

// ThreadPage is one page of threads with pagination metadata
type ThreadPage struct {
	Threads []*Thread `json:"threads"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"perPage"`
	HasMore bool      `json:"hasMore"`
}

// CreateMessageRequest creates a message; ID is generated when empty. The
// owning thread is auto-created when ThreadID is unknown.
type CreateMessageRequest struct {
	ID       string
	ThreadID string
	Role     string
	Content  string
	Metadata map[string]any
}

// UpdateMessageRequest updates message fields; nil fields are left untouched.
type UpdateMessageRequest struct {
	ID       string
	Role     *string
	Content  *string
	Metadata map[string]any
}

// ListMessagesRequest lists messages in a thread ordered by createdAt
// ascending. Limit semantics: nil requests the default cap, an explicit 0
// requests no messages at all and short-circuits to an empty result.
type ListMessagesRequest struct {
	ThreadID string
	Limit    *int
	Offset   int
}

// ListMessagesPageRequest is the paginated variant; Page is zero-indexed.
type ListMessagesPageRequest struct {
	ThreadID string
	Page     int
	PerPage  int
}

// MessagePage is one page of messages with pagination metadata
type MessagePage struct {
	Messages []*Message `json:"messages"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PerPage  int        `json:"perPage"`
	HasMore  bool       `json:"hasMore"`
}

// CreateResourceRequest creates or refreshes a resource
type CreateResourceRequest struct {
	ID       string
	Metadata map[string]any
}

// UpdateResourceRequest replaces a resource's metadata
type UpdateResourceRequest struct {
	ID       string
	Metadata map[string]any
}

// Statement is one parameterized query for the batch executor
type Statement struct {
	Query  string
	Params map[string]any
}
