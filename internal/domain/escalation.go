package domain

import "time"

// EscalationLevel is a support tier. Levels only move forward.
type EscalationLevel string

const (
	Tier1 EscalationLevel = "Tier 1"
	Tier2 EscalationLevel = "Tier 2"
	Tier3 EscalationLevel = "Tier 3"
	Tier4 EscalationLevel = "Tier 4"
)

var levelRank = map[EscalationLevel]int{
	Tier1: 1,
	Tier2: 2,
	Tier3: 3,
	Tier4: 4,
}

// Rank returns the ordinal position of the level, or 0 for unknown levels.
func (l EscalationLevel) Rank() int {
	return levelRank[l]
}

// AtOrAbove reports whether l is at or beyond other in the tier sequence.
func (l EscalationLevel) AtOrAbove(other EscalationLevel) bool {
	return l.Rank() >= other.Rank()
}

// EscalationHistory is an append-only audit record for one escalation step.
type EscalationHistory struct {
	ID        string
	TicketID  string
	FromLevel EscalationLevel
	ToLevel   EscalationLevel
	Note      string
	CreatedAt time.Time
}
