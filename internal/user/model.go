package user

import "time"

// User represents one registered identity, keyed externally by phone number.
// ActivatedInviteCode is empty until the user activates another user's
// invite code; once set it is never overwritten.
type User struct {
	ID                  string
	Phone               string
	InviteCode          string
	ActivatedInviteCode string
	CreatedAt           time.Time
}

// HasActivated reports whether the user has already activated an invite code.
func (u User) HasActivated() bool {
	return u.ActivatedInviteCode != ""
}
