package domain

import "time"

// Privileged group names whose members see every notification addressed
// to them on the live channel.
const (
	GroupAdmin    = "Admin"
	GroupDirector = "Director"
	GroupManager  = "Manager"
	GroupStaff    = "Staff"
)

// User is the domain model for portal users. Groups carries the names of
// the user's access groups; TerminalID links the user's profile to the
// terminal they may be custodian of.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsSuperuser  bool
	Groups       []string
	TerminalID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InAnyGroup reports whether the user belongs to one of the named groups.
func (u *User) InAnyGroup(names ...string) bool {
	for _, name := range names {
		for _, group := range u.Groups {
			if group == name {
				return true
			}
		}
	}
	return false
}

// Elevated reports whether the user holds an unfiltered notification scope.
func (u *User) Elevated() bool {
	return u.IsSuperuser || u.InAnyGroup(GroupAdmin, GroupDirector, GroupManager, GroupStaff)
}
