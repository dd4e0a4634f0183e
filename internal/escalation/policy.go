package escalation

import (
	"time"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// Policy is the immutable escalation rule table: escalation intervals per
// (zone, priority), the forward-only tier flow, per-priority ceiling tiers
// and the unassigned-ticket reminder intervals. Build it once at startup
// and pass it explicitly into the evaluator and watchdog.
type Policy struct {
	defaultZone       string
	defaultInterval   time.Duration
	defaultCeiling    domain.EscalationLevel
	defaultReminder   time.Duration
	intervals         map[string]map[domain.TicketPriority]time.Duration
	ceilings          map[domain.TicketPriority]domain.EscalationLevel
	flow              map[domain.EscalationLevel]domain.EscalationLevel
	reminderIntervals map[domain.TicketPriority]time.Duration
}

// DefaultPolicy returns the canonical rule table.
func DefaultPolicy() *Policy {
	return &Policy{
		defaultZone:     "Zone A",
		defaultInterval: 10 * time.Minute,
		defaultCeiling:  domain.Tier3,
		defaultReminder: 8 * time.Minute,
		intervals: map[string]map[domain.TicketPriority]time.Duration{
			"Zone A": {
				domain.TicketPriorityCritical: 2 * time.Minute,
				domain.TicketPriorityHigh:     5 * time.Minute,
				domain.TicketPriorityMedium:   8 * time.Minute,
				domain.TicketPriorityLow:      10 * time.Minute,
			},
			"Zone B": {
				domain.TicketPriorityCritical: 6 * time.Minute,
				domain.TicketPriorityHigh:     7 * time.Minute,
				domain.TicketPriorityMedium:   9 * time.Minute,
				domain.TicketPriorityLow:      10 * time.Minute,
			},
			"Zone C": {
				domain.TicketPriorityCritical: 8 * time.Minute,
				domain.TicketPriorityHigh:     9 * time.Minute,
				domain.TicketPriorityMedium:   11 * time.Minute,
				domain.TicketPriorityLow:      12 * time.Minute,
			},
			"Zone D": {
				domain.TicketPriorityCritical: 10 * time.Minute,
				domain.TicketPriorityHigh:     11 * time.Minute,
				domain.TicketPriorityMedium:   13 * time.Minute,
				domain.TicketPriorityLow:      14 * time.Minute,
			},
			"Zone E": {
				domain.TicketPriorityCritical: 12 * time.Minute,
				domain.TicketPriorityHigh:     13 * time.Minute,
				domain.TicketPriorityMedium:   15 * time.Minute,
				domain.TicketPriorityLow:      16 * time.Minute,
			},
		},
		ceilings: map[domain.TicketPriority]domain.EscalationLevel{
			domain.TicketPriorityLow:      domain.Tier3,
			domain.TicketPriorityMedium:   domain.Tier3,
			domain.TicketPriorityHigh:     domain.Tier3,
			domain.TicketPriorityCritical: domain.Tier4,
		},
		flow: map[domain.EscalationLevel]domain.EscalationLevel{
			domain.Tier1: domain.Tier2,
			domain.Tier2: domain.Tier3,
			domain.Tier3: domain.Tier4,
		},
		reminderIntervals: map[domain.TicketPriority]time.Duration{
			domain.TicketPriorityLow:      8 * time.Minute,
			domain.TicketPriorityMedium:   6 * time.Minute,
			domain.TicketPriorityHigh:     4 * time.Minute,
			domain.TicketPriorityCritical: 2 * time.Minute,
		},
	}
}

// DefaultZone is the zone applied to tickets created without one.
func (p *Policy) DefaultZone() string {
	return p.defaultZone
}

// Interval returns the escalation threshold for a zone and priority.
// Unknown zones fall back to the default zone's row, unknown priorities to
// a fixed default interval; a table miss is never an error.
func (p *Policy) Interval(zone string, priority domain.TicketPriority) time.Duration {
	row, ok := p.intervals[zone]
	if !ok {
		row = p.intervals[p.defaultZone]
	}
	if interval, ok := row[priority]; ok {
		return interval
	}
	return p.defaultInterval
}

// Ceiling returns the highest tier a ticket of the priority may reach.
func (p *Policy) Ceiling(priority domain.TicketPriority) domain.EscalationLevel {
	if ceiling, ok := p.ceilings[priority]; ok {
		return ceiling
	}
	return p.defaultCeiling
}

// Next returns the tier after level in the forward-only sequence. The
// second return is false at the end of the sequence.
func (p *Policy) Next(level domain.EscalationLevel) (domain.EscalationLevel, bool) {
	next, ok := p.flow[level]
	return next, ok
}

// ReminderInterval returns the unassigned-ticket alert spacing for a priority.
func (p *Policy) ReminderInterval(priority domain.TicketPriority) time.Duration {
	if interval, ok := p.reminderIntervals[priority]; ok {
		return interval
	}
	return p.defaultReminder
}
