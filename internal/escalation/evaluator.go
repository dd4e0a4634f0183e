package escalation

import (
	"time"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// NoopReason explains why an evaluation produced no tier advance. These are
// preconditions, not errors; the next sweep re-evaluates from scratch.
type NoopReason string

const (
	ReasonOutsideWorkingHours NoopReason = "outside_working_hours"
	ReasonUnassigned          NoopReason = "unassigned"
	ReasonNotDue              NoopReason = "not_due"
	ReasonAtCeiling           NoopReason = "at_ceiling"
	ReasonTerminalLevel       NoopReason = "terminal_level"
)

// Decision is the intent produced by one evaluation. The evaluator never
// touches storage or the network; the escalation service applies the
// decision's side effects.
type Decision struct {
	// Zone is the effective zone used for the threshold lookup.
	Zone string
	// AssignDefaultZone is set when the ticket had no zone and the default
	// must be persisted.
	AssignDefaultZone bool
	// Advance is true when the ticket must move FromLevel -> ToLevel.
	Advance   bool
	FromLevel domain.EscalationLevel
	ToLevel   domain.EscalationLevel
	// MarkSLABreached is set when the due date has passed on an unresolved
	// ticket at the moment of the advance.
	MarkSLABreached bool
	// Reason is populated when Advance is false.
	Reason NoopReason
}

// Evaluator decides whether a ticket is due for its next escalation tier.
type Evaluator struct {
	policy *Policy
	hours  *WorkingHours
}

// NewEvaluator builds an evaluator over the given policy and gate.
func NewEvaluator(policy *Policy, hours *WorkingHours) *Evaluator {
	return &Evaluator{policy: policy, hours: hours}
}

// Evaluate runs the transition rule for one ticket at the given instant.
// Only one tier advance is produced per evaluation even if several
// thresholds have elapsed; catch-up happens one sweep at a time.
func (e *Evaluator) Evaluate(t *domain.Ticket, now time.Time) Decision {
	d := Decision{}

	if t.Zone == nil || *t.Zone == "" {
		d.Zone = e.policy.DefaultZone()
		d.AssignDefaultZone = true
	} else {
		d.Zone = *t.Zone
	}

	if !e.hours.Open(now) {
		d.Reason = ReasonOutsideWorkingHours
		return d
	}

	if !t.Assigned() {
		d.Reason = ReasonUnassigned
		return d
	}

	priority := t.EffectivePriority()
	threshold := e.policy.Interval(d.Zone, priority)

	reference := t.AssignedAt
	if t.EscalatedAt != nil {
		reference = t.EscalatedAt
	}
	if now.Before(reference.Add(threshold)) {
		d.Reason = ReasonNotDue
		return d
	}

	level := domain.Tier1
	if t.CurrentEscalationLevel != nil {
		level = *t.CurrentEscalationLevel
	}

	if level.AtOrAbove(e.policy.Ceiling(priority)) {
		d.Reason = ReasonAtCeiling
		return d
	}

	next, ok := e.policy.Next(level)
	if !ok {
		d.Reason = ReasonTerminalLevel
		return d
	}

	if t.DueDate != nil && t.ResolvedAt == nil && now.After(*t.DueDate) {
		d.MarkSLABreached = true
	}

	d.Advance = true
	d.FromLevel = level
	d.ToLevel = next
	return d
}
