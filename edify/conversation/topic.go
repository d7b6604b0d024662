package conversation

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Akshay-i95/edify-v3/edify/config"
)

// TopicExtractorImpl implements TopicExtractor over markup-laden assistant text
type TopicExtractorImpl struct {
	config    *config.ConversationConfig
	stopWords map[string]struct{}
}

var (
	styleBlockRe = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	dividerRe    = regexp.MustCompile(`-{3,}`)
	emphasisRe   = regexp.MustCompile("[*_#`~]")
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[.!?]+`)
	tokenRe      = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

// baseStopWords covers common English function words plus presentation-layer
// vocabulary so styling terms can never leak into topic keywords.
var baseStopWords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
	"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
	"how", "man", "new", "now", "old", "see", "two", "way", "who", "did",
	"its", "let", "put", "say", "she", "too", "use", "that", "this", "with",
	"they", "have", "been", "will", "from", "also", "what", "when", "where",
	"which", "while", "would", "could", "should", "there", "their", "about",
	"into", "more", "some", "such", "than", "then", "them", "these", "those",
	// Presentation-layer terms
	"style", "background", "gradient", "linear", "padding", "margin",
	"color", "font", "size", "width", "height", "display", "border",
	"class", "div", "span", "css", "html",
	// Scaffolding terms from generated answers
	"reasoning", "analysis", "question", "response", "answer",
}

// NewTopicExtractor creates a new topic extractor
func NewTopicExtractor(cfg *config.ConversationConfig) *TopicExtractorImpl {
	stop := make(map[string]struct{}, len(baseStopWords)+len(cfg.ExtraStopWords))
	for _, w := range baseStopWords {
		stop[w] = struct{}{}
	}
	for _, w := range cfg.ExtraStopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &TopicExtractorImpl{config: cfg, stopWords: stop}
}

// Extract produces a topic digest from the given assistant text. Text that is
// pure markup yields an empty digest; callers must treat that as "no topic
// available", not as an error.
func (te *TopicExtractorImpl) Extract(text string, sourceIndex int) TopicDigest {
	cleaned := te.Clean(text)
	if cleaned == "" {
		return TopicDigest{SourceTurnIndex: sourceIndex}
	}

	return TopicDigest{
		TopicSentence:   te.pickTopicSentence(cleaned),
		Keywords:        te.Keywords(cleaned),
		SourceTurnIndex: sourceIndex,
	}
}

// Clean strips style blocks, markup tags, markdown decoration, and emphasis
// markers, then normalizes whitespace.
func (te *TopicExtractorImpl) Clean(text string) string {
	cleaned := styleBlockRe.ReplaceAllString(text, "")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, "")
	cleaned = dividerRe.ReplaceAllString(cleaned, "")
	cleaned = emphasisRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// pickTopicSentence scores each sentence and returns the best one, falling
// back to the first non-empty cleaned sentence when nothing clears the floor.
func (te *TopicExtractorImpl) pickTopicSentence(cleaned string) string {
	sentences := sentenceRe.Split(cleaned, -1)

	best := ""
	bestScore := 0
	fallback := ""

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if fallback == "" {
			fallback = sentence
		}

		score := te.scoreSentence(sentence)
		if score > bestScore {
			best = sentence
			bestScore = score
		}
	}

	if best == "" {
		return fallback
	}
	return best
}

// scoreSentence rates a sentence's fitness as a topic summary. Domain-salient
// terms dominate, a 6-30 word length is preferred, and boilerplate phrases
// penalize.
func (te *TopicExtractorImpl) scoreSentence(sentence string) int {
	lower := strings.ToLower(sentence)
	score := 0

	for _, term := range te.config.DomainTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			score += 3
		}
	}

	words := len(strings.Fields(sentence))
	if words >= 6 && words <= 30 {
		score += 2
	}

	for _, phrase := range te.config.StopPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			score -= 2
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

// Keywords tokenizes cleaned text, removes stop words, and returns the top
// MaxKeywords unique tokens ranked by frequency. Ties break on first
// occurrence so results are deterministic.
func (te *TopicExtractorImpl) Keywords(cleaned string) []string {
	tokens := te.Tokens(cleaned)
	if len(tokens) == 0 {
		return nil
	}

	counts := make(map[string]int, len(tokens))
	firstSeen := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		counts[tok]++
		if _, seen := firstSeen[tok]; !seen {
			firstSeen[tok] = i
		}
	}

	unique := make([]string, 0, len(counts))
	for tok := range counts {
		unique = append(unique, tok)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return firstSeen[unique[i]] < firstSeen[unique[j]]
	})

	if len(unique) > te.config.MaxKeywords {
		unique = unique[:te.config.MaxKeywords]
	}
	return unique
}

// Tokens returns the lower-cased alphabetic tokens of length >= 3 that are
// not stop words, in order of appearance.
func (te *TopicExtractorImpl) Tokens(text string) []string {
	var tokens []string
	for _, raw := range tokenRe.FindAllString(text, -1) {
		tok := strings.ToLower(raw)
		if _, stop := te.stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
