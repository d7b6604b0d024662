package conversation

import (
	"testing"

	"github.com/Akshay-i95/edify-v3/edify/config"
	"github.com/stretchr/testify/assert"
)

func newTestExtractor() *TopicExtractorImpl {
	cfg := config.DefaultConversation()
	return NewTopicExtractor(&cfg)
}

// TestTopicExtractorImpl_Extract tests digest extraction from markup-laden text
func TestTopicExtractorImpl_Extract(t *testing.T) {
	extractor := newTestExtractor()

	text := `<style>body { background: linear-gradient(red, blue); }</style>
**Formative assessment** is ongoing feedback used during learning to adjust teaching.
---
Here are some extra notes. Teachers can apply formative assessment in every classroom lesson.`

	digest := extractor.Extract(text, 3)

	assert.Equal(t, 3, digest.SourceTurnIndex)
	assert.Contains(t, digest.TopicSentence, "formative assessment")
	assert.NotEmpty(t, digest.Keywords)
	assert.Contains(t, digest.Keywords, "formative")
	assert.Contains(t, digest.Keywords, "assessment")

	// Presentation vocabulary must never leak into keywords
	assert.NotContains(t, digest.Keywords, "style")
	assert.NotContains(t, digest.Keywords, "background")
	assert.NotContains(t, digest.Keywords, "gradient")
}

// TestTopicExtractorImpl_Extract_pureMarkup tests that pure styling noise
// yields an empty digest rather than an error
func TestTopicExtractorImpl_Extract_pureMarkup(t *testing.T) {
	extractor := newTestExtractor()

	digest := extractor.Extract(`<style>.card { padding: 4px; }</style><div></div>--- *** ___`, 0)

	assert.Empty(t, digest.TopicSentence)
	assert.Empty(t, digest.Keywords)
	assert.True(t, digest.Empty())
}

// TestTopicExtractorImpl_pickTopicSentence tests sentence scoring preferences
func TestTopicExtractorImpl_pickTopicSentence(t *testing.T) {
	extractor := newTestExtractor()

	// Domain-salient sentence wins over boilerplate
	cleaned := "Here are some things I found. Formative assessment gives teachers ongoing evidence of student learning."
	assert.Contains(t, extractor.pickTopicSentence(cleaned), "Formative assessment")

	// With no scoring signal, the first non-empty sentence is the fallback
	assert.Equal(t, "Cats sleep", extractor.pickTopicSentence("Cats sleep. Dogs bark."))
}

// TestTopicExtractorImpl_Keywords tests frequency ranking and the size cap
func TestTopicExtractorImpl_Keywords(t *testing.T) {
	extractor := newTestExtractor()

	keywords := extractor.Keywords("assessment assessment assessment feedback feedback rubric grading teaching evidence progress observation portfolio")

	assert.LessOrEqual(t, len(keywords), 8)
	assert.Equal(t, "assessment", keywords[0])
	assert.Equal(t, "feedback", keywords[1])
}

// TestTopicExtractorImpl_Keywords_short tests that short tokens are dropped
func TestTopicExtractorImpl_Keywords_short(t *testing.T) {
	extractor := newTestExtractor()

	keywords := extractor.Keywords("go is ok but curriculum design matters")

	assert.NotContains(t, keywords, "go")
	assert.NotContains(t, keywords, "is")
	assert.Contains(t, keywords, "curriculum")
}
