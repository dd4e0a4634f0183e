package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/escalation-service/internal/domain"
)

func TestPolicyIntervalLookup(t *testing.T) {
	policy := DefaultPolicy()

	assert.Equal(t, 2*time.Minute, policy.Interval("Zone A", domain.TicketPriorityCritical))
	assert.Equal(t, 10*time.Minute, policy.Interval("Zone A", domain.TicketPriorityLow))
	assert.Equal(t, 9*time.Minute, policy.Interval("Zone B", domain.TicketPriorityMedium))
	assert.Equal(t, 16*time.Minute, policy.Interval("Zone E", domain.TicketPriorityLow))
}

func TestPolicyIntervalDefaults(t *testing.T) {
	policy := DefaultPolicy()

	// Unknown zone falls back to the default zone's row.
	assert.Equal(t, 2*time.Minute, policy.Interval("Zone Z", domain.TicketPriorityCritical))
	// Unknown priority falls back to the fixed default interval.
	assert.Equal(t, 10*time.Minute, policy.Interval("Zone A", "urgent"))
}

func TestPolicyCeilings(t *testing.T) {
	policy := DefaultPolicy()

	assert.Equal(t, domain.Tier3, policy.Ceiling(domain.TicketPriorityLow))
	assert.Equal(t, domain.Tier3, policy.Ceiling(domain.TicketPriorityHigh))
	assert.Equal(t, domain.Tier4, policy.Ceiling(domain.TicketPriorityCritical))
	assert.Equal(t, domain.Tier3, policy.Ceiling("unknown"))
}

func TestPolicyFlowIsForwardOnly(t *testing.T) {
	policy := DefaultPolicy()

	next, ok := policy.Next(domain.Tier1)
	assert.True(t, ok)
	assert.Equal(t, domain.Tier2, next)

	next, ok = policy.Next(domain.Tier3)
	assert.True(t, ok)
	assert.Equal(t, domain.Tier4, next)

	_, ok = policy.Next(domain.Tier4)
	assert.False(t, ok)
}

func TestPolicyReminderIntervals(t *testing.T) {
	policy := DefaultPolicy()

	assert.Equal(t, 8*time.Minute, policy.ReminderInterval(domain.TicketPriorityLow))
	assert.Equal(t, 2*time.Minute, policy.ReminderInterval(domain.TicketPriorityCritical))
	assert.Equal(t, 8*time.Minute, policy.ReminderInterval(""))
}
