package domain

import "fmt"

// UserType is the kind of account an invite or import batch targets.
type UserType string

const (
	UserTypeAlumni  UserType = "alumni"
	UserTypeStudent UserType = "student"
)

func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserTypeAlumni, UserTypeStudent:
		return UserType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUserType, s)
}

// Role is the account role granted to a user of this type.
func (t UserType) Role() Role {
	if t == UserTypeStudent {
		return RoleStudent
	}
	return RoleAlumni
}
