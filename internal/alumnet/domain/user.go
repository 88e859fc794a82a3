package domain

import "time"

type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleInstitutionAdmin Role = "institution_admin"
	RoleAlumni           Role = "alumni"
	RoleStudent          Role = "student"
)

func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleInstitutionAdmin
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string // argon2id PHC
	Role          Role
	Status        UserStatus
	FirstName     string
	LastName      string
	InstitutionID string // empty for super admins
	InvitedBy     string
	InviteID      string

	// MustChangePassword is set for admin accounts created with a generated password.
	MustChangePassword bool

	MFAEnabled  *time.Time
	MFASecret   string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
