package config

import (
	"fmt"
	"strings"

	internal "github.com/Akshay-i95/edify-v3/edify"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Conversation ConversationConfig `mapstructure:"conversation"`
	Embedding    EmbeddingConfig    `mapstructure:"embedding"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ConversationConfig stores continuity engine tunables.
//
// The threshold and scoring constants were tuned empirically against the
// production corpus; treat them as a starting point, not fixed law.
type ConversationConfig struct {
	// Window settings
	HistoryBudget  int `mapstructure:"history_budget"`   // Max turns kept in a window
	DigestTokenCap int `mapstructure:"digest_token_cap"` // Max tokens in a compressed digest turn

	// Dynamic threshold settings
	BaseThreshold  float64 `mapstructure:"base_threshold"`  // Acceptance bar at turn zero
	ThresholdFloor float64 `mapstructure:"threshold_floor"` // Bar never drops below this
	TurnBoostStep  float64 `mapstructure:"turn_boost_step"` // Bar reduction per prior turn
	TurnBoostCap   float64 `mapstructure:"turn_boost_cap"`  // Max total bar reduction

	// Continuity scoring settings
	SemanticWeight   float64 `mapstructure:"semantic_weight"`    // Weight of max(q-sim, r-sim)
	ResponseWeight   float64 `mapstructure:"response_weight"`    // Weight of response-topic similarity
	DepthWeight      float64 `mapstructure:"depth_weight"`       // Weight of conversation depth
	LexicalBonusCap  float64 `mapstructure:"lexical_bonus_cap"`  // Max lexical overlap bonus
	ShortQueryWords  int     `mapstructure:"short_query_words"`  // Word count treated as "short"
	ShortQueryFactor float64 `mapstructure:"short_query_factor"` // Multiplier for short queries
	MinQueryChars    int     `mapstructure:"min_query_chars"`    // Queries shorter than this skip scoring
	MinResponseChars int     `mapstructure:"min_response_chars"` // Prior responses shorter than this carry no topic

	// Pattern short-circuit settings
	PatternConfidence float64  `mapstructure:"pattern_confidence"` // Confidence assigned to cue matches
	ContinuationCues  []string `mapstructure:"continuation_cues"`  // Explicit continuation phrases

	// Topic extraction settings
	MaxKeywords     int      `mapstructure:"max_keywords"`     // Keywords kept per topic digest
	EnhanceKeywords int      `mapstructure:"enhance_keywords"` // Keywords appended to an enhanced query
	DomainTerms     []string `mapstructure:"domain_terms"`     // Subject-matter phrases that boost sentences
	StopPhrases     []string `mapstructure:"stop_phrases"`     // Boilerplate phrases that penalize sentences
	ExtraStopWords  []string `mapstructure:"extra_stop_words"` // Additions to the keyword stop-word set
}

// EmbeddingConfig stores embedding collaborator configurations.
type EmbeddingConfig struct {
	Dims      int `mapstructure:"dims"`       // Expected embedding dimensions (0 = accept any)
	BatchSize int `mapstructure:"batch_size"` // Batch size for encode calls
	TimeoutMs int `mapstructure:"timeout_ms"` // Per-call timeout budget
}

// LoggingConfig stores structured logging configurations.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // zerolog level name
	Pretty bool   `mapstructure:"pretty"` // Console writer instead of JSON
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults apply.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// WatchConfig re-reads the config file on change and invokes onChange with
// the freshly unmarshalled result. Unmarshal failures keep the old config.
func WatchConfig(onChange func(*Config)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}
		onChange(&cfg)
	})
	viper.WatchConfig()
}

// Validate checks config invariants that the engine depends on.
func (c *Config) Validate() error {
	cc := c.Conversation
	if cc.HistoryBudget < 2 {
		return fmt.Errorf("conversation.history_budget must be >= 2, got %d", cc.HistoryBudget)
	}
	if cc.ThresholdFloor <= 0 || cc.ThresholdFloor > cc.BaseThreshold {
		return fmt.Errorf("conversation.threshold_floor must be in (0, base_threshold], got %f", cc.ThresholdFloor)
	}
	if cc.TurnBoostStep < 0 || cc.TurnBoostCap < 0 {
		return fmt.Errorf("conversation.turn_boost_step and turn_boost_cap must be non-negative")
	}
	if cc.MaxKeywords <= 0 {
		return fmt.Errorf("conversation.max_keywords must be positive, got %d", cc.MaxKeywords)
	}
	// The pattern short-circuit reports PatternConfidence as the decision
	// confidence, so it must clear the highest bar the threshold policy can
	// set (BaseThreshold).
	if cc.PatternConfidence < cc.BaseThreshold || cc.PatternConfidence > 1 {
		return fmt.Errorf("conversation.pattern_confidence must be in [base_threshold, 1], got %f", cc.PatternConfidence)
	}
	return nil
}

// DefaultConversation returns the built-in conversation tunables without
// consulting viper. Library embedders can start from these and override.
func DefaultConversation() ConversationConfig {
	return ConversationConfig{
		HistoryBudget:  internal.DefaultHistoryBudget,
		DigestTokenCap: 12,

		// Threshold: base bar of 0.25 that relaxes by 0.02 per prior turn,
		// capped at 0.15 total, never below 0.10.
		BaseThreshold:  0.25,
		ThresholdFloor: 0.10,
		TurnBoostStep:  0.02,
		TurnBoostCap:   0.15,

		SemanticWeight:   0.7,
		ResponseWeight:   0.2,
		DepthWeight:      0.1,
		LexicalBonusCap:  0.15,
		ShortQueryWords:  5,
		ShortQueryFactor: 1.2,
		MinQueryChars:    5,
		MinResponseChars: 20,

		PatternConfidence: 0.85,
		ContinuationCues: []string{
			"more",
			"tell me more",
			"more details",
			"more examples",
			"explain further",
			"explain more",
			"go on",
			"continue",
			"elaborate",
			"what else",
			"what about",
			"give examples",
			"can you give examples",
			"give me examples",
			"how so",
		},

		MaxKeywords:     8,
		EnhanceKeywords: 3,
		DomainTerms: []string{
			"formative assessment",
			"summative assessment",
			"lesson plan",
			"learning outcome",
			"curriculum",
			"pedagogy",
			"classroom",
			"teachers can",
			"students learn",
		},
		StopPhrases: []string{
			"here are some",
			"let me know",
			"feel free to",
			"i hope this helps",
			"this reasoning was",
		},
		ExtraStopWords: []string{},
	}
}

func setDefaults() {
	cc := DefaultConversation()

	viper.SetDefault("conversation.history_budget", cc.HistoryBudget)
	viper.SetDefault("conversation.digest_token_cap", cc.DigestTokenCap)

	viper.SetDefault("conversation.base_threshold", cc.BaseThreshold)
	viper.SetDefault("conversation.threshold_floor", cc.ThresholdFloor)
	viper.SetDefault("conversation.turn_boost_step", cc.TurnBoostStep)
	viper.SetDefault("conversation.turn_boost_cap", cc.TurnBoostCap)

	viper.SetDefault("conversation.semantic_weight", cc.SemanticWeight)
	viper.SetDefault("conversation.response_weight", cc.ResponseWeight)
	viper.SetDefault("conversation.depth_weight", cc.DepthWeight)
	viper.SetDefault("conversation.lexical_bonus_cap", cc.LexicalBonusCap)
	viper.SetDefault("conversation.short_query_words", cc.ShortQueryWords)
	viper.SetDefault("conversation.short_query_factor", cc.ShortQueryFactor)
	viper.SetDefault("conversation.min_query_chars", cc.MinQueryChars)
	viper.SetDefault("conversation.min_response_chars", cc.MinResponseChars)

	viper.SetDefault("conversation.pattern_confidence", cc.PatternConfidence)
	viper.SetDefault("conversation.continuation_cues", cc.ContinuationCues)

	viper.SetDefault("conversation.max_keywords", cc.MaxKeywords)
	viper.SetDefault("conversation.enhance_keywords", cc.EnhanceKeywords)
	viper.SetDefault("conversation.domain_terms", cc.DomainTerms)
	viper.SetDefault("conversation.stop_phrases", cc.StopPhrases)
	viper.SetDefault("conversation.extra_stop_words", cc.ExtraStopWords)

	// Embedding defaults
	viper.SetDefault("embedding.dims", 0)
	viper.SetDefault("embedding.batch_size", 32)
	viper.SetDefault("embedding.timeout_ms", 2000)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.pretty", false)
}
