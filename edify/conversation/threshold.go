package conversation

import (
	"github.com/Akshay-i95/edify-v3/edify/config"
)

// ThresholdPolicyImpl implements ThresholdPolicy. Longer conversations lower
// the acceptance bar: accumulated context makes ambiguous short queries more
// likely to be continuations. A floor keeps the bar from collapsing to zero.
type ThresholdPolicyImpl struct {
	config *config.ConversationConfig
}

// NewThresholdPolicy creates a new dynamic threshold policy
func NewThresholdPolicy(cfg *config.ConversationConfig) *ThresholdPolicyImpl {
	return &ThresholdPolicyImpl{config: cfg}
}

// Threshold returns the follow-up acceptance bar for a conversation with the
// given turn count.
func (tp *ThresholdPolicyImpl) Threshold(turnCount int) float64 {
	if turnCount < 0 {
		turnCount = 0
	}

	boost := float64(turnCount) * tp.config.TurnBoostStep
	if boost > tp.config.TurnBoostCap {
		boost = tp.config.TurnBoostCap
	}

	threshold := tp.config.BaseThreshold - boost
	if threshold < tp.config.ThresholdFloor {
		return tp.config.ThresholdFloor
	}
	return threshold
}
