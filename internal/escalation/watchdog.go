package escalation

import (
	"time"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// Watchdog decides when an unassigned ticket needs a repeat alert. Alerts
// keep firing at the priority's reminder interval for as long as the ticket
// stays unassigned.
type Watchdog struct {
	policy *Policy
}

// NewWatchdog builds a watchdog over the given policy.
func NewWatchdog(policy *Policy) *Watchdog {
	return &Watchdog{policy: policy}
}

// ShouldAlert reports whether an unassigned-ticket alert is due. Tickets
// with an assignee never alert.
func (w *Watchdog) ShouldAlert(t *domain.Ticket, now time.Time) bool {
	if t.AssigneeID != nil {
		return false
	}

	threshold := w.policy.ReminderInterval(t.EffectivePriority())

	if t.LastUnassignedNotification == nil {
		return now.Sub(t.CreatedAt) >= threshold
	}
	return !now.Before(t.LastUnassignedNotification.Add(threshold))
}
