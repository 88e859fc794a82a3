package domain

import "time"

// DefaultInviteTTL is how long an invitation link stays usable.
const DefaultInviteTTL = 30 * 24 * time.Hour

type InviteState string

const (
	InviteActive  InviteState = "active"
	InviteUsed    InviteState = "used"
	InviteExpired InviteState = "expired"
)

// Invite is a single-use capability to create one account for one email.
// Only TokenHash is stored; the raw token is handed out once at issuance.
type Invite struct {
	ID             string
	TokenHash      string
	InstitutionID  string
	Email          string
	UserType       UserType
	GraduationYear *int
	Identifier     string // student or alumni number
	Department     string
	Profile        ProfileData

	Used      bool
	Expired   bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UsedAt    *time.Time

	CreatedBy string
	UsedBy    string
	BatchID   string

	// Captured when the invite is consumed.
	IPAddress string
	UserAgent string
}

// State reports the invite's lifecycle state at now. An invite past its
// expiry timestamp reads as expired even before the flag is persisted.
func (i Invite) State(now time.Time) InviteState {
	switch {
	case i.Used:
		return InviteUsed
	case i.Expired || !now.Before(i.ExpiresAt):
		return InviteExpired
	default:
		return InviteActive
	}
}

// Consumable is true only for unused, unexpired invites before ExpiresAt.
func (i Invite) Consumable(now time.Time) bool {
	return i.State(now) == InviteActive
}

// ConsumeAudit is the request metadata recorded when an invite is used.
type ConsumeAudit struct {
	UserID    string
	IPAddress string
	UserAgent string
	At        time.Time
}
