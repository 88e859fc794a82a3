package domain

import "time"

// DefaultMaxUsers caps accounts per institution unless configured otherwise.
const DefaultMaxUsers = 10000

type Institution struct {
	ID          string
	Name        string
	Code        string // unique short code, e.g. "UNSW"
	EmailDomain string
	Address     string
	Phone       string
	Website     string
	AdminEmail  string
	IsActive    bool
	MaxUsers    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Remaining reports how many more accounts the institution can take given
// count existing users and pending invites.
func (i Institution) Remaining(count int) int {
	return max(i.MaxUsers-count, 0)
}
