package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Akshay-i95/edify-v3/edify/config"

	"github.com/rs/zerolog"
)

// Engine is the main entry point for continuity detection. It coordinates
// normalization, compression, topic extraction, scoring, and assembly.
// The engine is stateless across requests: every call builds its own
// conversation window and discards it on completion, so it is safe to share
// one Engine between any number of goroutines.
type Engine struct {
	config *config.ConversationConfig

	// Core components
	normalizer Normalizer
	extractor  TopicExtractor
	scorer     Scorer
	policy     ThresholdPolicy

	// Infrastructure
	metrics *MetricsCollector
	tracer  Tracer
	logger  zerolog.Logger
}

// EngineConfig holds all configuration for initializing the engine
type EngineConfig struct {
	Config   *config.ConversationConfig
	Embedder Embedder // Required: the external embedding collaborator
	Logger   zerolog.Logger
	Tracer   Tracer // Optional

	// Optional overrides for testing/customization
	Normalizer Normalizer
	Extractor  TopicExtractor
	Scorer     Scorer
	Policy     ThresholdPolicy
}

// NewEngine creates a fully wired continuity engine
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Config == nil {
		return nil, fmt.Errorf("conversation config is required")
	}
	if err := (&config.Config{Conversation: *cfg.Config}).Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:  cfg.Config,
		metrics: NewMetricsCollector(),
		tracer:  cfg.Tracer,
		logger:  cfg.Logger,
	}

	extractorImpl := NewTopicExtractor(cfg.Config)
	if cfg.Extractor != nil {
		e.extractor = cfg.Extractor
	} else {
		e.extractor = extractorImpl
	}

	if cfg.Normalizer != nil {
		e.normalizer = cfg.Normalizer
	} else {
		compressor := NewCompressor(cfg.Config, extractorImpl)
		e.normalizer = NewNormalizer(cfg.Config, compressor)
	}

	if cfg.Scorer != nil {
		e.scorer = cfg.Scorer
	} else {
		e.scorer = NewContinuityScorer(cfg.Config, cfg.Embedder, extractorImpl, e.metrics, cfg.Logger)
	}

	if cfg.Policy != nil {
		e.policy = cfg.Policy
	} else {
		e.policy = NewThresholdPolicy(cfg.Config)
	}

	return e, nil
}

// Metrics returns the engine's metrics collector
func (e *Engine) Metrics() *MetricsCollector {
	return e.metrics
}

// DetectRaw runs continuity detection over decoded-JSON message input, as
// received from the chat transport layer. Returns ErrMalformedHistory when
// the input is not a message sequence.
func (e *Engine) DetectRaw(ctx context.Context, currentQuery string, rawMessages any) (*ContinuityResult, error) {
	messages, err := ParseMessages(rawMessages)
	if err != nil {
		return nil, err
	}
	return e.Detect(ctx, currentQuery, messages)
}

// DetectOptions carries per-call overrides
type DetectOptions struct {
	HistoryBudget int // 0 means the configured budget
}

// Detect decides whether currentQuery is a follow-up to the prior exchange
// and, when it is, produces the enhanced retrieval query. Only
// ErrMalformedHistory propagates; embedding failures degrade the score.
func (e *Engine) Detect(ctx context.Context, currentQuery string, messages []Message) (*ContinuityResult, error) {
	return e.DetectWithOptions(ctx, currentQuery, messages, DetectOptions{})
}

// DetectWithOptions is Detect with caller-tunable settings.
func (e *Engine) DetectWithOptions(ctx context.Context, currentQuery string, messages []Message, opts DetectOptions) (result *ContinuityResult, err error) {
	start := time.Now()
	if e.tracer != nil {
		var finish func(error)
		ctx, finish = e.tracer.StartSpan(ctx, "continuity_detect", map[string]any{
			"message_count": len(messages),
		})
		defer func() { finish(err) }()
	}

	budget := opts.HistoryBudget
	if budget <= 0 {
		budget = e.config.HistoryBudget
	}
	window, err := e.normalizer.Normalize(messages, budget)
	if err != nil {
		return nil, fmt.Errorf("history normalization failed: %w", err)
	}
	if window.Compressed {
		e.metrics.RecordCompression()
	}

	turnCount := window.SourceLen
	threshold := e.policy.Threshold(turnCount)

	result = &ContinuityResult{
		Method:    MethodNone,
		Threshold: threshold,
		TurnCount: turnCount,
	}

	// Empty history trivially yields a fresh query.
	if turnCount == 0 {
		e.finish(result, start)
		return result, nil
	}

	// The digest comes from the most recent assistant turn; the previous
	// question is the user turn that preceded it. Either may be absent.
	question, response, hasExchange := lastExchange(window)
	var digest TopicDigest
	if hasExchange {
		digest = e.extractor.Extract(response.Text, response.Index)
		result.PreviousTopic = digest.TopicSentence
		result.PreviousKeywords = digest.Keywords
		result.PreviousQuestion = question.Text
	}

	// Cheap short-circuit for unambiguous continuation cues; avoids
	// embedding calls entirely.
	if matchesContinuationCue(currentQuery, e.config.ContinuationCues) {
		result.IsFollowUp = true
		result.Method = MethodPattern
		result.Confidence = e.config.PatternConfidence
		result.Focus = classifyFocus(currentQuery)
		result.EnhancedQuery = buildEnhancedQuery(currentQuery, digest, e.config.EnhanceKeywords)
		e.finish(result, start)
		return result, nil
	}

	// Semantic scoring needs a prior exchange whose response is substantial
	// enough to carry a topic.
	if !hasExchange || len(strings.TrimSpace(response.Text)) < e.config.MinResponseChars {
		e.finish(result, start)
		return result, nil
	}

	score := e.scorer.Score(ctx, ScoreInput{
		CurrentQuery:     currentQuery,
		PreviousQuestion: question.Text,
		PreviousTopic:    digest.TopicSentence,
		TopicKeywords:    digest.Keywords,
		TurnCount:        turnCount,
	})
	result.Score = score
	result.Confidence = score.Composite

	// A degraded embedder can never produce a semantic acceptance: when in
	// doubt, treat the query as fresh rather than anchor it to stale context.
	if score.SemanticAvailable && score.Composite >= threshold {
		result.IsFollowUp = true
		result.Method = MethodSemantic
		result.Focus = classifyFocus(currentQuery)
		result.EnhancedQuery = buildEnhancedQuery(currentQuery, digest, e.config.EnhanceKeywords)
	}

	e.finish(result, start)
	return result, nil
}

// finish records metrics and logs the decision
func (e *Engine) finish(result *ContinuityResult, start time.Time) {
	e.metrics.RecordDecision(result)
	e.logger.Info().
		Bool("is_follow_up", result.IsFollowUp).
		Str("method", string(result.Method)).
		Float64("confidence", result.Confidence).
		Float64("threshold", result.Threshold).
		Int("turn_count", result.TurnCount).
		Dur("duration", time.Since(start)).
		Msg("continuity decision")
}

// lastExchange finds the most recent assistant turn and the user turn that
// preceded it. ok reports whether an assistant turn exists; the question turn
// may be zero-valued when no user turn precedes it.
func lastExchange(window *ConversationWindow) (question, response Turn, ok bool) {
	found := false
	for i := len(window.Turns) - 1; i >= 0; i-- {
		turn := window.Turns[i]
		if !found {
			if turn.Role == RoleAssistant {
				response = turn
				found = true
			}
			continue
		}
		if turn.Role == RoleUser {
			return turn, response, true
		}
	}
	return Turn{}, response, found
}
