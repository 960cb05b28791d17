package graph

import (
	"regexp"
	"strings"
)

// Extraction confidences per rule
const (
	personConfidence     = 0.9
	topicConfidence      = 0.8
	technologyConfidence = 0.9
	questionConfidence   = 0.6
)

// Content shorter than this yields no entities and skips linking entirely.
const minExtractableLength = 3

const questionPreviewLength = 50

// Introduction frames that precede a person name. The frame itself is
// case-insensitive; the captured name must be a run of capitalized tokens.
var personPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i:\bname is)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`),
	regexp.MustCompile(`(?i:\bI'm)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`),
	regexp.MustCompile(`(?i:\bcall me)\s+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*)`),
}

var personCommonWords = map[string]bool{
	"The":   true,
	"This":  true,
	"That":  true,
	"There": true,
	"Here":  true,
	"What":  true,
	"When":  true,
	"Where": true,
	"Who":   true,
	"How":   true,
	"Why":   true,
	"Yes":   true,
	"No":    true,
	"Not":   true,
	"Just":  true,
	"Going": true,
	"Sure":  true,
	"Okay":  true,
}

var personPronouns = map[string]bool{
	"I":    true,
	"He":   true,
	"She":  true,
	"It":   true,
	"We":   true,
	"You":  true,
	"They": true,
}

// Interest markers followed by the topic text, up to the next sentence
// terminator.
var topicPattern = regexp.MustCompile(`(?i)\b(?:love|like|enjoy|interested in|passionate about)\s+([^.!?]+)`)

var topicFillers = []string{"to discuss", "about them"}

// Fixed technology vocabulary; matched case-insensitively, values stored
// lowercase.
var technologyVocabulary = []string{
	"neo4j",
	"graph database",
	"database",
	"machine learning",
	"ai",
	"python",
	"javascript",
	"typescript",
	"react",
	"node.js",
}

var interrogativePattern = regexp.MustCompile(`(?i)\b(?:what|how|why|when|where|who)\b`)

// ExtractEntities derives typed, confidence-scored entity candidates from
// message content. It is pure and deterministic; the rules run independently,
// so one text can yield entities from several rules. Extraction order matters
// downstream: relationship derivation pairs entities in this order.
func ExtractEntities(text string) []ExtractedEntity {
	if len(text) < minExtractableLength {
		return nil
	}

	var entities []ExtractedEntity
	entities = append(entities, extractPersons(text)...)
	entities = append(entities, extractTopics(text)...)
	entities = append(entities, extractTechnologies(text)...)
	entities = append(entities, extractQuestions(text)...)
	return entities
}

func extractPersons(text string) []ExtractedEntity {
	var entities []ExtractedEntity
	seen := map[string]bool{}

	for _, pattern := range personPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(match[1])
			if name == "" || seen[name] {
				continue
			}
			if personCommonWords[name] || personPronouns[name] {
				continue
			}
			seen[name] = true
			entities = append(entities, ExtractedEntity{
				Type:       EntityPerson,
				Value:      name,
				Confidence: personConfidence,
			})
		}
	}

	return entities
}

func extractTopics(text string) []ExtractedEntity {
	var entities []ExtractedEntity
	seen := map[string]bool{}

	for _, match := range topicPattern.FindAllStringSubmatch(text, -1) {
		topic := strings.TrimSpace(match[1])
		if len(topic) <= 2 || len(topic) >= 50 {
			continue
		}
		if containsFiller(topic) || seen[topic] {
			continue
		}
		seen[topic] = true
		entities = append(entities, ExtractedEntity{
			Type:       EntityTopic,
			Value:      topic,
			Confidence: topicConfidence,
		})
	}

	return entities
}

func containsFiller(topic string) bool {
	lower := strings.ToLower(topic)
	for _, filler := range topicFillers {
		if strings.Contains(lower, filler) {
			return true
		}
	}
	return false
}

func extractTechnologies(text string) []ExtractedEntity {
	var entities []ExtractedEntity
	lower := strings.ToLower(text)

	for _, term := range technologyVocabulary {
		if strings.Contains(lower, term) {
			entities = append(entities, ExtractedEntity{
				Type:       EntityTechnology,
				Value:      term,
				Confidence: technologyConfidence,
			})
		}
	}

	return entities
}

func extractQuestions(text string) []ExtractedEntity {
	if !strings.Contains(text, "?") || !interrogativePattern.MatchString(text) {
		return nil
	}

	preview := []rune(text)
	if len(preview) > questionPreviewLength {
		preview = preview[:questionPreviewLength]
	}

	return []ExtractedEntity{{
		Type:       EntityQuestion,
		Value:      string(preview) + "...",
		Confidence: questionConfidence,
	}}
}
