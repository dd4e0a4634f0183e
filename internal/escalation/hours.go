package escalation

import "time"

const (
	workdayStartHour = 9
	workdayEndHour   = 17
)

// WorkingHours gates automatic actions to the business-hour window of a
// fixed local timezone.
type WorkingHours struct {
	loc *time.Location
}

// NewWorkingHours loads the timezone for the gate.
func NewWorkingHours(timezone string) (*WorkingHours, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &WorkingHours{loc: loc}, nil
}

// Location returns the gate's timezone, shared with notification formatting.
func (w *WorkingHours) Location() *time.Location {
	return w.loc
}

// Open reports whether now falls on a weekday between 09:00 and 17:59 local
// time. The 17th hour is inside the window.
func (w *WorkingHours) Open(now time.Time) bool {
	local := now.In(w.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := local.Hour()
	return hour >= workdayStartHour && hour <= workdayEndHour
}
