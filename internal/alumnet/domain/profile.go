package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Year bounds shared by the importer and issuance-time profile validation.
const (
	MinYear                     = 1900
	EnrollmentYearLookahead     = 1
	ExpectedGraduationLookahead = 10
)

// ProfileData is the pre-filled profile attached to an invite. It is one of
// AlumniProfile or StudentProfile and is validated when the invite is issued,
// so account creation can trust its shape.
type ProfileData interface {
	UserType() UserType
	Validate(now time.Time) error
	Identity() Identity
	profileData()
}

// Identity is the subset of profile fields an invite pins on the account.
type Identity struct {
	FirstName      string
	LastName       string
	Email          string
	Department     string
	GraduationYear int
	Identifier     string
}

type AlumniProfile struct {
	AlumniID        string   `json:"alumni_id,omitempty"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	GraduationYear  int      `json:"graduation_year"`
	GraduationMonth *int     `json:"graduation_month,omitempty"`
	Department      string   `json:"department"`
	DegreeType      string   `json:"degree_type,omitempty"`
	Major           string   `json:"major,omitempty"`
	Minor           string   `json:"minor,omitempty"`
	CurrentPosition string   `json:"current_position,omitempty"`
	CurrentCompany  string   `json:"current_company,omitempty"`
	Location        string   `json:"location,omitempty"`
	LinkedInURL     string   `json:"linkedin_url,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	Skills          []string `json:"skills,omitempty"`
}

func (AlumniProfile) UserType() UserType { return UserTypeAlumni }
func (AlumniProfile) profileData()       {}

func (p AlumniProfile) Identity() Identity {
	return Identity{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Department:     p.Department,
		GraduationYear: p.GraduationYear,
		Identifier:     p.AlumniID,
	}
}

func (p AlumniProfile) Validate(now time.Time) error {
	var problems []string
	problems = append(problems, validateCommon(p.FirstName, p.LastName, p.Email, p.Department)...)
	if p.GraduationYear < MinYear || p.GraduationYear > now.Year() {
		problems = append(problems, "Invalid graduation year")
	}
	if p.GraduationMonth != nil && (*p.GraduationMonth < 1 || *p.GraduationMonth > 12) {
		problems = append(problems, "Invalid graduation month")
	}
	return profileError(problems)
}

type StudentProfile struct {
	FirstName              string   `json:"first_name"`
	LastName               string   `json:"last_name"`
	Email                  string   `json:"email"`
	StudentID              string   `json:"student_id,omitempty"`
	EnrollmentYear         int      `json:"enrollment_year"`
	ExpectedGraduationYear int      `json:"expected_graduation_year"`
	CurrentYear            *int     `json:"current_year,omitempty"`
	CurrentSemester        string   `json:"current_semester,omitempty"`
	Department             string   `json:"department"`
	Major                  string   `json:"major,omitempty"`
	Minor                  string   `json:"minor,omitempty"`
	Phone                  string   `json:"phone,omitempty"`
	Address                string   `json:"address,omitempty"`
	Bio                    string   `json:"bio,omitempty"`
	Skills                 []string `json:"skills,omitempty"`
	Interests              []string `json:"interests,omitempty"`
	CareerInterests        []string `json:"career_interests,omitempty"`
}

func (StudentProfile) UserType() UserType { return UserTypeStudent }
func (StudentProfile) profileData()       {}

func (p StudentProfile) Identity() Identity {
	return Identity{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Department:     p.Department,
		GraduationYear: p.ExpectedGraduationYear,
		Identifier:     p.StudentID,
	}
}

func (p StudentProfile) Validate(now time.Time) error {
	var problems []string
	problems = append(problems, validateCommon(p.FirstName, p.LastName, p.Email, p.Department)...)
	year := now.Year()
	if p.EnrollmentYear < MinYear || p.EnrollmentYear > year+EnrollmentYearLookahead {
		problems = append(problems, "Invalid enrollment year")
	}
	if p.ExpectedGraduationYear < year || p.ExpectedGraduationYear > year+ExpectedGraduationLookahead {
		problems = append(problems, "Invalid expected graduation year")
	}
	if p.CurrentYear != nil && *p.CurrentYear < 1 {
		problems = append(problems, "Invalid current year")
	}
	return profileError(problems)
}

func validateCommon(first, last, email, department string) []string {
	var problems []string
	if strings.TrimSpace(first) == "" {
		problems = append(problems, "First name is required")
	}
	if strings.TrimSpace(last) == "" {
		problems = append(problems, "Last name is required")
	}
	switch {
	case strings.TrimSpace(email) == "":
		problems = append(problems, "Email is required")
	case !strings.Contains(email, "@"):
		problems = append(problems, "Invalid email format")
	}
	if strings.TrimSpace(department) == "" {
		problems = append(problems, "Department is required")
	}
	return problems
}

func profileError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(problems, "; "))
}

type profileEnvelope struct {
	Type UserType        `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodeProfile serialises p with its type tag. A nil profile encodes as nil.
func EncodeProfile(p ProfileData) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(profileEnvelope{Type: p.UserType(), Data: data})
}

// DecodeProfile reverses EncodeProfile.
func DecodeProfile(b []byte) (ProfileData, error) {
	if len(b) == 0 {
		return nil, nil
	}

	var env profileEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	return ParseProfile(env.Type, env.Data)
}

// ParseProfile decodes untagged profile JSON as the profile type of ut.
// Empty input yields a nil profile.
func ParseProfile(ut UserType, data []byte) (ProfileData, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	switch ut {
	case UserTypeAlumni:
		var p AlumniProfile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
		return p, nil
	case UserTypeStudent:
		var p StudentProfile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: unknown profile type %q", ErrInvalidProfile, ut)
}

// Profile is the persisted alumni or student profile owned by exactly one user.
type Profile struct {
	UserID        string
	InstitutionID string
	Data          ProfileData
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfileUpdate lists the profile fields an owner may change. Nil fields are
// left alone. Identity fields (names, email, department, years, identifiers)
// come from the invite and are not editable.
type ProfileUpdate struct {
	// alumni and student
	Major  *string
	Minor  *string
	Phone  *string
	Bio    *string
	Skills *[]string

	// alumni only
	GraduationMonth *int
	DegreeType      *string
	CurrentPosition *string
	CurrentCompany  *string
	Location        *string
	LinkedInURL     *string

	// student only
	CurrentYear     *int
	CurrentSemester *string
	Address         *string
	Interests       *[]string
	CareerInterests *[]string
}

// Apply returns p with u merged in. Setting a field that the profile type
// does not have, or an out of range value, fails with ErrInvalidProfile.
func (u ProfileUpdate) Apply(p ProfileData) (ProfileData, error) {
	switch p := p.(type) {
	case AlumniProfile:
		if u.CurrentYear != nil || u.CurrentSemester != nil || u.Address != nil ||
			u.Interests != nil || u.CareerInterests != nil {
			return nil, fmt.Errorf("%w: student fields cannot be set on an alumni profile", ErrInvalidProfile)
		}
		setString(&p.Major, u.Major)
		setString(&p.Minor, u.Minor)
		setString(&p.Phone, u.Phone)
		setString(&p.Bio, u.Bio)
		setList(&p.Skills, u.Skills)
		setString(&p.DegreeType, u.DegreeType)
		setString(&p.CurrentPosition, u.CurrentPosition)
		setString(&p.CurrentCompany, u.CurrentCompany)
		setString(&p.Location, u.Location)
		setString(&p.LinkedInURL, u.LinkedInURL)
		if u.GraduationMonth != nil {
			if m := *u.GraduationMonth; m < 1 || m > 12 {
				return nil, fmt.Errorf("%w: Invalid graduation month", ErrInvalidProfile)
			}
			month := *u.GraduationMonth
			p.GraduationMonth = &month
		}
		return p, nil

	case StudentProfile:
		if u.GraduationMonth != nil || u.DegreeType != nil || u.CurrentPosition != nil ||
			u.CurrentCompany != nil || u.Location != nil || u.LinkedInURL != nil {
			return nil, fmt.Errorf("%w: alumni fields cannot be set on a student profile", ErrInvalidProfile)
		}
		setString(&p.Major, u.Major)
		setString(&p.Minor, u.Minor)
		setString(&p.Phone, u.Phone)
		setString(&p.Bio, u.Bio)
		setList(&p.Skills, u.Skills)
		setString(&p.CurrentSemester, u.CurrentSemester)
		setString(&p.Address, u.Address)
		setList(&p.Interests, u.Interests)
		setList(&p.CareerInterests, u.CareerInterests)
		if u.CurrentYear != nil {
			if *u.CurrentYear < 1 {
				return nil, fmt.Errorf("%w: Invalid current year", ErrInvalidProfile)
			}
			year := *u.CurrentYear
			p.CurrentYear = &year
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: no profile to update", ErrInvalidProfile)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// setList trims entries and drops empty ones, like the importer does.
func setList(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	out := make([]string, 0, len(*v))
	for _, s := range *v {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}
