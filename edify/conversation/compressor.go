package conversation

import (
	"strings"

	"github.com/Akshay-i95/edify-v3/edify/config"
)

// CompressorImpl collapses turns that fall outside the history budget into a
// single synthetic digest turn, preserving a trace of earlier context.
type CompressorImpl struct {
	config    *config.ConversationConfig
	extractor *TopicExtractorImpl
}

// NewCompressor creates a new context compressor
func NewCompressor(cfg *config.ConversationConfig, extractor *TopicExtractorImpl) *CompressorImpl {
	return &CompressorImpl{config: cfg, extractor: extractor}
}

// Compress folds the dropped turns into one system turn whose text is the
// deduplicated concatenation of their topic keywords, capped at the
// configured token budget. The synthetic turn carries index -1.
func (c *CompressorImpl) Compress(dropped []Turn) Turn {
	seen := make(map[string]struct{})
	var tokens []string

	for _, turn := range dropped {
		for _, kw := range c.extractor.Keywords(c.extractor.Clean(turn.Text)) {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			tokens = append(tokens, kw)
			if len(tokens) >= c.config.DigestTokenCap {
				return Turn{Role: RoleSystem, Text: strings.Join(tokens, " "), Index: -1}
			}
		}
	}

	return Turn{Role: RoleSystem, Text: strings.Join(tokens, " "), Index: -1}
}
