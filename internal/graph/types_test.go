package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationTypeFor(t *testing.T) {
	tests := []struct {
		source EntityType
		target EntityType
		want   string
	}{
		{EntityPerson, EntityTopic, RelationInterestedIn},
		{EntityPerson, EntityTechnology, RelationUses},
		{EntityTopic, EntityTechnology, RelationImplements},
		// The table is directional: swapped orderings fall through
		{EntityTopic, EntityPerson, RelationRelatedTo},
		{EntityTechnology, EntityPerson, RelationRelatedTo},
		{EntityTechnology, EntityTopic, RelationRelatedTo},
		{EntityPerson, EntityPerson, RelationRelatedTo},
		{EntityQuestion, EntityTopic, RelationRelatedTo},
		{EntityTopic, EntityQuestion, RelationRelatedTo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, relationTypeFor(tt.source, tt.target),
			"%s -> %s", tt.source, tt.target)
	}
}

func TestConfidenceMerge(t *testing.T) {
	// Raise-only: the result is max(existing, incoming) in either order
	assert.Equal(t, 0.9, maxConfidence(0.6, 0.9))
	assert.Equal(t, 0.9, maxConfidence(0.9, 0.6))
	assert.Equal(t, 0.8, maxConfidence(0.8, 0.8))

	assert.Equal(t, 0.6, minConfidence(0.6, 0.9))
	assert.Equal(t, 0.6, minConfidence(0.9, 0.6))
}

func TestThreadSortAllowList(t *testing.T) {
	assert.Equal(t, "createdAt", threadSortField("createdAt"))
	assert.Equal(t, "updatedAt", threadSortField("updatedAt"))
	assert.Equal(t, "title", threadSortField("title"))
	assert.Equal(t, "id", threadSortField("id"))

	// Unrecognized fields never reach the query string
	assert.Equal(t, "createdAt", threadSortField("id) DETACH DELETE t //"))
	assert.Equal(t, "createdAt", threadSortField(""))

	assert.Equal(t, "ASC", sortDirection(SortAscending))
	assert.Equal(t, "DESC", sortDirection(SortDescending))
	assert.Equal(t, "DESC", sortDirection("sideways"))
}
