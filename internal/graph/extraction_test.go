package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func findEntity(entities []ExtractedEntity, entityType EntityType, value string) (ExtractedEntity, bool) {
	for _, e := range entities {
		if e.Type == entityType && e.Value == value {
			return e, true
		}
	}
	return ExtractedEntity{}, false
}

func TestExtractEntities_Introduction(t *testing.T) {
	entities := ExtractEntities("Hi, my name is Dawn and I love graph databases.")

	person, ok := findEntity(entities, EntityPerson, "Dawn")
	assert.True(t, ok, "expected a Person entity for Dawn")
	assert.Equal(t, 0.9, person.Confidence)

	topic, ok := findEntity(entities, EntityTopic, "graph databases")
	assert.True(t, ok, "expected a Topic entity for graph databases")
	assert.Equal(t, 0.8, topic.Confidence)

	tech, ok := findEntity(entities, EntityTechnology, "graph database")
	assert.True(t, ok, "expected the vocabulary match on the substring")
	assert.Equal(t, 0.9, tech.Confidence)
}

func TestExtractEntities_PersonFrames(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"name is", "Well, my name is Alice Smith today", "Alice Smith"},
		{"i'm", "I'm Bob by the way", "Bob"},
		{"call me", "You can call me Charlie", "Charlie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := ExtractEntities(tt.text)
			_, ok := findEntity(entities, EntityPerson, tt.want)
			assert.True(t, ok, "expected Person %q in %q", tt.want, tt.text)
		})
	}
}

func TestExtractEntities_PersonDenylists(t *testing.T) {
	for _, text := range []string{
		"my name is Not important",
		"I'm Sure about this",
		"call me They",
	} {
		for _, e := range ExtractEntities(text) {
			assert.NotEqual(t, EntityPerson, e.Type, "denylisted word extracted from %q: %+v", text, e)
		}
	}
}

func TestExtractEntities_TopicBounds(t *testing.T) {
	// Too short after the marker
	entities := ExtractEntities("I love it. Nothing else")
	_, ok := findEntity(entities, EntityTopic, "it")
	assert.False(t, ok)

	// Too long: fifty or more characters up to the terminator
	long := "I enjoy " + strings.Repeat("x", 60) + "."
	for _, e := range ExtractEntities(long) {
		assert.NotEqual(t, EntityTopic, e.Type)
	}

	// Filler phrases are rejected
	entities = ExtractEntities("I would like to discuss the weather.")
	for _, e := range entities {
		assert.NotEqual(t, EntityTopic, e.Type, "filler topic extracted: %+v", e)
	}

	entities = ExtractEntities("I am passionate about hiking and camping!")
	topic, ok := findEntity(entities, EntityTopic, "hiking and camping")
	assert.True(t, ok)
	assert.Equal(t, 0.8, topic.Confidence)
}

func TestExtractEntities_TechnologyVocabulary(t *testing.T) {
	entities := ExtractEntities("We run Neo4j and Python in production")

	_, ok := findEntity(entities, EntityTechnology, "neo4j")
	assert.True(t, ok, "vocabulary values are normalized to lowercase")
	_, ok = findEntity(entities, EntityTechnology, "python")
	assert.True(t, ok)
}

func TestExtractEntities_Question(t *testing.T) {
	entities := ExtractEntities("What is a graph database?")

	question, ok := findEntity(entities, EntityQuestion, "What is a graph database?...")
	assert.True(t, ok)
	assert.Equal(t, 0.6, question.Confidence)

	// A "?" without an interrogative word is not a question entity
	for _, e := range ExtractEntities("Really? I had no idea.") {
		assert.NotEqual(t, EntityQuestion, e.Type)
	}

	// An interrogative word without a "?" is not a question entity
	for _, e := range ExtractEntities("Tell me what you did.") {
		assert.NotEqual(t, EntityQuestion, e.Type)
	}
}

func TestExtractEntities_QuestionPreviewTruncation(t *testing.T) {
	text := "Why does the pagination layer recount the total on every single page load?"
	entities := ExtractEntities(text)

	question, ok := findEntity(entities, EntityQuestion, string([]rune(text)[:50])+"...")
	assert.True(t, ok)
	assert.Equal(t, 0.6, question.Confidence)
}

func TestExtractEntities_ShortContent(t *testing.T) {
	assert.Nil(t, ExtractEntities(""))
	assert.Nil(t, ExtractEntities("ok"))
}

func TestExtractEntities_Deterministic(t *testing.T) {
	text := "I'm Dana, I love machine learning. What should I read?"
	first := ExtractEntities(text)
	second := ExtractEntities(text)
	assert.Equal(t, first, second)
}
