package conversation

import "context"

// Embedder generates embeddings for text content
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimension() int
}

// Normalizer converts raw caller messages into a bounded conversation window
type Normalizer interface {
	Normalize(messages []Message, budget int) (*ConversationWindow, error)
}

// TopicExtractor distills a topic digest from prior assistant text
type TopicExtractor interface {
	Extract(text string, sourceIndex int) TopicDigest
}

// Scorer computes the continuity confidence for a candidate follow-up
type Scorer interface {
	Score(ctx context.Context, input ScoreInput) ContinuityScore
}

// ThresholdPolicy computes the follow-up acceptance bar for a conversation
type ThresholdPolicy interface {
	Threshold(turnCount int) float64
}

// Tracer records spans and events for engine stages
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error))
	Event(ctx context.Context, name string, attrs map[string]any)
}

// Turn roles as carried by callers
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Supporting types and structs

// Message is a raw conversation entry as supplied by the calling chat layer.
// Content is either a plain string or a list of structured content parts.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a structured message content list
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Turn is one normalized conversation entry. Immutable once created;
// Index is the turn's position in the caller's original message list.
type Turn struct {
	Role  string `json:"role"`
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// ConversationWindow is the bounded, request-scoped view of the conversation.
// Never shared between requests.
type ConversationWindow struct {
	Turns      []Turn `json:"turns"`
	ThreadSeed string `json:"thread_seed"`
	SourceLen  int    `json:"source_len"` // Conversational turns seen before capping
	Compressed bool   `json:"compressed"` // Whether older turns were folded into a digest
}

// TopicDigest is a compact summary distilled from a prior turn's text
type TopicDigest struct {
	TopicSentence   string   `json:"topic_sentence"`
	Keywords        []string `json:"keywords"` // Ranked, deduplicated
	SourceTurnIndex int      `json:"source_turn_index"`
}

// Empty reports whether the digest carries no usable topic
func (d TopicDigest) Empty() bool {
	return d.TopicSentence == "" && len(d.Keywords) == 0
}

// ScoreInput carries everything the continuity scorer needs for one decision
type ScoreInput struct {
	CurrentQuery     string   `json:"current_query"`
	PreviousQuestion string   `json:"previous_question"`
	PreviousTopic    string   `json:"previous_topic"`
	TopicKeywords    []string `json:"topic_keywords"`
	TurnCount        int      `json:"turn_count"`
}

// ContinuityScore is the decomposed confidence that the current query
// continues the prior exchange
type ContinuityScore struct {
	SemanticToQuestion  float64 `json:"semantic_to_question"`
	SemanticToResponse  float64 `json:"semantic_to_response"`
	LexicalOverlapBonus float64 `json:"lexical_overlap_bonus"`
	ComplexityFactor    float64 `json:"complexity_factor"`
	QueryComplexity     float64 `json:"query_complexity"`
	Composite           float64 `json:"composite"`
	SemanticAvailable   bool    `json:"semantic_available"` // False when the embedder was degraded
}

// DetectionMethod identifies which stage decided the outcome
type DetectionMethod string

const (
	MethodPattern  DetectionMethod = "pattern"
	MethodSemantic DetectionMethod = "semantic"
	MethodNone     DetectionMethod = "none"
)

// QueryFocus classifies what a follow-up query is asking for
type QueryFocus string

const (
	FocusClarification    QueryFocus = "clarification"
	FocusElaboration      QueryFocus = "elaboration"
	FocusExamples         QueryFocus = "examples"
	FocusAlternatives     QueryFocus = "alternatives"
	FocusDetails          QueryFocus = "details"
	FocusGeneralExpansion QueryFocus = "general_expansion"
)

// ContinuityResult is the engine's output for one inbound query.
// IsFollowUp is true only when Confidence >= Threshold; Threshold is always
// reported for auditability even on a negative decision.
type ContinuityResult struct {
	IsFollowUp       bool            `json:"is_follow_up"`
	Confidence       float64         `json:"confidence"`
	Method           DetectionMethod `json:"method"`
	PreviousTopic    string          `json:"previous_topic"`
	PreviousKeywords []string        `json:"previous_keywords"`
	PreviousQuestion string          `json:"previous_question"`
	Threshold        float64         `json:"threshold"`
	Focus            QueryFocus      `json:"focus,omitempty"`
	EnhancedQuery    string          `json:"enhanced_query,omitempty"`
	TurnCount        int             `json:"turn_count"`
	Score            ContinuityScore `json:"score"`
}
