package conversation

import (
	"fmt"
	"strings"

	"github.com/Akshay-i95/edify-v3/edify/config"

	"github.com/google/uuid"
)

// NormalizerImpl implements Normalizer. It reduces raw role-tagged messages
// to a canonical, bounded turn sequence.
type NormalizerImpl struct {
	config     *config.ConversationConfig
	compressor *CompressorImpl
}

// NewNormalizer creates a new turn normalizer
func NewNormalizer(cfg *config.ConversationConfig, compressor *CompressorImpl) *NormalizerImpl {
	return &NormalizerImpl{config: cfg, compressor: compressor}
}

// ParseMessages converts caller input, typically decoded JSON, into typed
// messages. Returns ErrMalformedHistory when the input is not a sequence. A
// nil input is valid and yields zero messages.
func ParseMessages(raw any) ([]Message, error) {
	if raw == nil {
		return nil, nil
	}

	switch seq := raw.(type) {
	case []Message:
		return seq, nil
	case []any:
		messages := make([]Message, 0, len(seq))
		for _, entry := range seq {
			obj, ok := entry.(map[string]any)
			if !ok {
				// Non-object entries carry no role or content; skip them
				// rather than failing the whole history.
				continue
			}
			messages = append(messages, messageFromMap(obj))
		}
		return messages, nil
	case []map[string]any:
		messages := make([]Message, 0, len(seq))
		for _, obj := range seq {
			messages = append(messages, messageFromMap(obj))
		}
		return messages, nil
	default:
		return nil, fmt.Errorf("%w: expected a message sequence, got %T", ErrMalformedHistory, raw)
	}
}

func messageFromMap(obj map[string]any) Message {
	role, _ := obj["role"].(string)
	return Message{Role: role, Content: obj["content"]}
}

// Normalize produces a ConversationWindow with at most budget turns. A
// leading system turn is retained; overflow is folded into a digest turn by
// the compressor, never silently dropped. Empty history is valid and yields
// an empty window.
func (n *NormalizerImpl) Normalize(messages []Message, budget int) (*ConversationWindow, error) {
	if budget <= 0 {
		budget = n.config.HistoryBudget
	}
	// A window needs room for a retained system turn plus at least one
	// conversational turn; smaller caller budgets are clamped, not rejected.
	if budget < 2 {
		budget = 2
	}

	window := &ConversationWindow{ThreadSeed: uuid.NewString()}

	var system *Turn
	var turns []Turn
	for i, msg := range messages {
		text := extractText(msg.Content)
		if strings.TrimSpace(text) == "" {
			continue
		}

		switch msg.Role {
		case RoleSystem:
			if system == nil && len(turns) == 0 {
				system = &Turn{Role: RoleSystem, Text: text, Index: i}
			}
			// Later system turns are instructions, not conversation; drop.
		case RoleUser, RoleAssistant:
			turns = append(turns, Turn{Role: msg.Role, Text: text, Index: i})
		default:
			// Tool or unknown roles carry no conversational signal.
		}
	}

	window.SourceLen = len(turns)

	capacity := budget
	if system != nil {
		capacity--
	}

	if len(turns) > capacity {
		dropped := turns[:len(turns)-(capacity-1)]
		kept := turns[len(turns)-(capacity-1):]
		digest := n.compressor.Compress(dropped)
		turns = append([]Turn{digest}, kept...)
		window.Compressed = true
	}

	if system != nil {
		window.Turns = append(window.Turns, *system)
	}
	window.Turns = append(window.Turns, turns...)

	return window, nil
}

// extractText reduces message content to plain text. Structured parts are
// reduced to their text sub-parts; parts lacking text are dropped without
// failing the turn.
func extractText(content any) string {
	switch c := content.(type) {
	case nil:
		return ""
	case string:
		return c
	case []ContentPart:
		var parts []string
		for _, p := range c {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
		return strings.Join(parts, " ")
	case []any:
		var parts []string
		for _, entry := range c {
			switch p := entry.(type) {
			case string:
				if p != "" {
					parts = append(parts, p)
				}
			case map[string]any:
				if text, ok := p["text"].(string); ok && text != "" {
					parts = append(parts, text)
				}
			case ContentPart:
				if p.Text != "" {
					parts = append(parts, p.Text)
				}
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
