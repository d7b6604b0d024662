package conversation

import (
	"fmt"
	"strings"
)

// pronouns that signal a reference to prior content when they lead a short
// clause ("what about that one", "explain them")
var referencePronouns = map[string]struct{}{
	"it": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"they": {}, "them": {}, "he": {}, "she": {}, "him": {}, "her": {},
}

// normalizeQuery lower-cases and strips trailing punctuation for cue matching
func normalizeQuery(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	return strings.Trim(q, ".,!?;: ")
}

// matchesContinuationCue reports whether the query is structurally an
// explicit continuation request: an exact cue match, a cue-led short clause,
// or a pronoun-led short clause. The cue list is a deliberately small
// allow-list; expand it from observed false negatives rather than trying to
// enumerate natural language.
func matchesContinuationCue(query string, cues []string) bool {
	q := normalizeQuery(query)
	if q == "" {
		return false
	}
	words := strings.Fields(q)

	for _, cue := range cues {
		cue = strings.ToLower(cue)
		if q == cue {
			return true
		}
		if strings.HasPrefix(q, cue+" ") && len(words) <= 6 {
			return true
		}
	}

	if len(words) <= 5 {
		if _, ok := referencePronouns[words[0]]; ok {
			return true
		}
	}

	return false
}

// containsPronoun reports whether any query word is a reference pronoun
func containsPronoun(query string) bool {
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?;:")
		if _, ok := referencePronouns[w]; ok {
			return true
		}
	}
	return false
}

// classifyFocus identifies what aspect a follow-up query is asking about.
// Word-count buckets come first; content cues refine longer queries.
func classifyFocus(query string) QueryFocus {
	q := strings.ToLower(query)
	words := strings.Fields(q)

	switch {
	case len(words) <= 3:
		return FocusClarification
	case len(words) <= 6:
		return FocusElaboration
	case containsAny(q, "example", "instance", "case"):
		return FocusExamples
	case containsAny(q, "different", "other", "alternative"):
		return FocusAlternatives
	case containsAny(q, "detail", "specific", "explain"):
		return FocusDetails
	default:
		return FocusGeneralExpansion
	}
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// buildEnhancedQuery appends prior-topic context to the query in a fixed
// template consumed by the downstream retrieval layer. An empty digest
// leaves the query untouched.
func buildEnhancedQuery(query string, digest TopicDigest, maxKeywords int) string {
	if digest.Empty() {
		return query
	}

	keywords := digest.Keywords
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	return fmt.Sprintf("%s (context: %s; keywords: %s)",
		query, digest.TopicSentence, strings.Join(keywords, ", "))
}
