package conversation

import (
	"context"
	"strings"

	"github.com/Akshay-i95/edify-v3/edify/config"

	"github.com/rs/zerolog"
)

// ContinuityScorerImpl implements Scorer. It combines semantic similarity,
// lexical overlap, and structural heuristics into one composite confidence.
type ContinuityScorerImpl struct {
	config    *config.ConversationConfig
	embedder  Embedder
	extractor *TopicExtractorImpl
	metrics   *MetricsCollector
	logger    zerolog.Logger
}

// NewContinuityScorer creates a new continuity scorer
func NewContinuityScorer(cfg *config.ConversationConfig, embedder Embedder, extractor *TopicExtractorImpl, metrics *MetricsCollector, logger zerolog.Logger) *ContinuityScorerImpl {
	return &ContinuityScorerImpl{config: cfg, embedder: embedder, extractor: extractor, metrics: metrics, logger: logger}
}

// Score computes the continuity confidence for the current query against the
// prior exchange. An unavailable embedder degrades the score to lexical and
// structural signals only; it never aborts the decision.
func (cs *ContinuityScorerImpl) Score(ctx context.Context, in ScoreInput) ContinuityScore {
	query := strings.TrimSpace(in.CurrentQuery)
	if len(query) < cs.config.MinQueryChars {
		// Too short to carry semantic signal beyond the upstream pattern check.
		return ContinuityScore{ComplexityFactor: 1.0}
	}

	// Memoization is scoped to one request: a fresh gateway per score call.
	gateway := NewEmbeddingGateway(cs.embedder, cs.metrics)
	vectors := gateway.EncodeAll(ctx, query, in.PreviousQuestion, in.PreviousTopic)
	queryVec, questionVec, topicVec := vectors[0], vectors[1], vectors[2]

	score := ContinuityScore{
		QueryComplexity: complexityScore(query),
	}

	if queryVec != nil {
		if questionVec != nil {
			score.SemanticToQuestion = Cosine(queryVec, questionVec)
			score.SemanticAvailable = true
		}
		if topicVec != nil {
			score.SemanticToResponse = Cosine(queryVec, topicVec)
			score.SemanticAvailable = true
		}
	}

	score.LexicalOverlapBonus = cs.lexicalOverlap(query, in.TopicKeywords)
	score.ComplexityFactor = cs.complexityFactor(query)

	// The max(q, r) term lets the response-topic similarity carry the signal
	// when the previous question embedding is degenerate.
	primary := score.SemanticToQuestion
	if score.SemanticToResponse > primary {
		primary = score.SemanticToResponse
	}
	depth := float64(in.TurnCount) / 10.0
	if depth > 1 {
		depth = 1
	}

	weighted := cs.config.SemanticWeight*primary +
		cs.config.ResponseWeight*score.SemanticToResponse +
		cs.config.DepthWeight*depth
	score.Composite = clamp01(weighted*score.ComplexityFactor + score.LexicalOverlapBonus)

	cs.logger.Debug().
		Float64("q_similarity", score.SemanticToQuestion).
		Float64("r_similarity", score.SemanticToResponse).
		Float64("lexical_bonus", score.LexicalOverlapBonus).
		Int("turn_count", in.TurnCount).
		Bool("semantic_available", score.SemanticAvailable).
		Float64("composite", score.Composite).
		Msg("continuity score computed")

	return score
}

// lexicalOverlap returns the fraction of query tokens present in the prior
// topic's keyword set, scaled into [0, LexicalBonusCap].
func (cs *ContinuityScorerImpl) lexicalOverlap(query string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	tokens := cs.extractor.Tokens(query)
	if len(tokens) == 0 {
		return 0
	}

	kwSet := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kwSet[kw] = struct{}{}
	}

	matched := 0
	for _, tok := range tokens {
		if _, ok := kwSet[tok]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(tokens)) * cs.config.LexicalBonusCap
}

// complexityFactor boosts short queries, which are disproportionately likely
// to be follow-ups such as "tell me more".
func (cs *ContinuityScorerImpl) complexityFactor(query string) float64 {
	if len(strings.Fields(query)) <= cs.config.ShortQueryWords {
		return cs.config.ShortQueryFactor
	}
	return 1.0
}

// complexityScore rates a text by length and vocabulary uniqueness,
// normalized to [0, 1].
func complexityScore(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}

	lengthScore := float64(len(words)) / 20.0
	if lengthScore > 1 {
		lengthScore = 1
	}
	uniquenessScore := float64(len(unique)) / float64(len(words))

	return (lengthScore + uniquenessScore) / 2.0
}
