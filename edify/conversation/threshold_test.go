package conversation

import (
	"testing"

	"github.com/Akshay-i95/edify-v3/edify/config"
	"github.com/stretchr/testify/assert"
)

// TestThresholdPolicyImpl_Threshold tests the dynamic bar values
func TestThresholdPolicyImpl_Threshold(t *testing.T) {
	cfg := config.DefaultConversation()
	policy := NewThresholdPolicy(&cfg)

	assert.InDelta(t, 0.25, policy.Threshold(0), 1e-9)
	assert.InDelta(t, 0.23, policy.Threshold(1), 1e-9)
	assert.InDelta(t, 0.15, policy.Threshold(5), 1e-9)

	// Boost cap reached at 0.25 - 0.15 = 0.10
	assert.InDelta(t, 0.10, policy.Threshold(8), 1e-9)
	assert.InDelta(t, 0.10, policy.Threshold(100), 1e-9)
}

// TestThresholdPolicyImpl_monotonicity tests that the bar never rises with
// conversation length and never drops below the floor
func TestThresholdPolicyImpl_monotonicity(t *testing.T) {
	cfg := config.DefaultConversation()
	policy := NewThresholdPolicy(&cfg)

	prev := policy.Threshold(0)
	for turns := 1; turns <= 50; turns++ {
		current := policy.Threshold(turns)
		assert.LessOrEqual(t, current, prev)
		assert.GreaterOrEqual(t, current, 0.10)
		prev = current
	}

	// Negative counts clamp to zero
	assert.Equal(t, policy.Threshold(0), policy.Threshold(-3))
}
