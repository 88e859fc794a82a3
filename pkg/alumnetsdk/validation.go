package alumnetsdk

import (
	"regexp"
	"strings"
)

const (
	requiredReason = "required"
	onlyUsername   = "must only contain a-z, A-Z, 0-9, ., _ or -"
)

var reUsername = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Validate checks the bootstrap request fields. It returns a map of field
// names to problems, or nil when the request is acceptable.
func (b BootstrapRequest) Validate() map[string]string {
	errs := make(map[string]string)

	username := strings.TrimSpace(b.Username)
	switch {
	case username == "":
		errs["username"] = requiredReason
	case len(username) < 3 || len(username) > 32:
		errs["username"] = "must be 3-32 characters"
	case !reUsername.MatchString(username):
		errs["username"] = onlyUsername
	}

	email := strings.TrimSpace(b.Email)
	switch {
	case email == "":
		errs["email"] = requiredReason
	case !strings.Contains(email, "@"):
		errs["email"] = "invalid email format"
	}

	switch {
	case b.Password == "":
		errs["password"] = requiredReason
	case len(b.Password) < 8:
		errs["password"] = "too short (min 8)"
	case len(b.Password) > 128:
		errs["password"] = "too long (max 128)"
	}

	if len(b.FirstName) > 64 {
		errs["first_name"] = "too long (max 64)"
	}
	if len(b.LastName) > 64 {
		errs["last_name"] = "too long (max 64)"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
