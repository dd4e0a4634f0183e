package domain

// Customer is an account whose tickets an overseer user may watch.
type Customer struct {
	ID         string
	Name       string
	OverseerID *string
}

// Terminal is a physical site a ticket can reference. Its custodian user
// receives notifications for the terminal's tickets.
type Terminal struct {
	ID          string
	Name        string
	CustodianID *string
}
