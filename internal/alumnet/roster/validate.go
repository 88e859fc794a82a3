package roster

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
)

// Record is a row that passed validation and is ready for an invite.
type Record struct {
	RowNumber      int
	Email          string
	GraduationYear int
	Identifier     string
	Department     string
	Profile        domain.ProfileData
}

// Validate splits t into clean records and rejected rows. Every row lands in
// exactly one of the two; a row with any error is never partially accepted.
func Validate(t Table, ut domain.UserType, now time.Time) ([]Record, []domain.RowError) {
	var (
		cleaned  []Record
		rejected []domain.RowError
	)
	for _, row := range t.Rows {
		var (
			rec  Record
			errs []string
		)
		if ut == domain.UserTypeStudent {
			rec, errs = validateStudent(row, now)
		} else {
			rec, errs = validateAlumni(row, now)
		}

		if len(errs) > 0 {
			rejected = append(rejected, domain.RowError{
				RowNumber: row.Number,
				Email:     rec.Email,
				Errors:    errs,
			})
			continue
		}
		rec.RowNumber = row.Number
		cleaned = append(cleaned, rec)
	}
	return cleaned, rejected
}

type common struct {
	firstName, lastName, email, department string
}

func validateCommon(row Row) (common, []string) {
	var (
		c    common
		errs []string
	)
	if c.firstName = row.Get("first_name"); c.firstName == "" {
		errs = append(errs, "First name is required")
	}
	if c.lastName = row.Get("last_name"); c.lastName == "" {
		errs = append(errs, "Last name is required")
	}

	switch email := strings.ToLower(row.Get("email")); {
	case email == "":
		errs = append(errs, "Email is required")
	case !strings.Contains(email, "@"):
		errs = append(errs, "Invalid email format")
	default:
		c.email = email
	}

	if c.department = row.Get("department"); c.department == "" {
		errs = append(errs, "Department is required")
	}
	return c, errs
}

func validateAlumni(row Row, now time.Time) (Record, []string) {
	c, errs := validateCommon(row)
	p := domain.AlumniProfile{
		FirstName:  c.firstName,
		LastName:   c.lastName,
		Email:      c.email,
		Department: c.department,
	}

	switch year, ok := parseInt(row.Get("graduation_year")); {
	case !ok:
		errs = append(errs, "Graduation year must be a valid number")
	case year < domain.MinYear || year > now.Year():
		errs = append(errs, "Invalid graduation year")
	default:
		p.GraduationYear = year
	}

	if raw := row.Get("graduation_month"); raw != "" {
		month, ok := parseInt(raw)
		if !ok || month < 1 || month > 12 {
			errs = append(errs, "Invalid graduation month")
		} else {
			p.GraduationMonth = &month
		}
	}

	p.DegreeType = row.Get("degree_type")
	p.Major = row.Get("major")
	p.Minor = row.Get("minor")
	p.CurrentPosition = row.Get("current_position")
	p.CurrentCompany = row.Get("current_company")
	p.Location = row.Get("location")
	p.LinkedInURL = row.Get("linkedin_url")
	p.Phone = row.Get("phone")
	p.Bio = row.Get("bio")
	p.Skills = splitList(row.Get("skills"))
	p.AlumniID = localPart(c.email)

	return Record{
		Email:          c.email,
		GraduationYear: p.GraduationYear,
		Identifier:     p.AlumniID,
		Department:     c.department,
		Profile:        p,
	}, errs
}

func validateStudent(row Row, now time.Time) (Record, []string) {
	c, errs := validateCommon(row)
	p := domain.StudentProfile{
		FirstName:  c.firstName,
		LastName:   c.lastName,
		Email:      c.email,
		Department: c.department,
	}
	year := now.Year()

	switch enrolled, ok := parseInt(row.Get("enrollment_year")); {
	case !ok:
		errs = append(errs, "Enrollment year must be a valid number")
	case enrolled < domain.MinYear || enrolled > year+domain.EnrollmentYearLookahead:
		errs = append(errs, "Invalid enrollment year")
	default:
		p.EnrollmentYear = enrolled
	}

	switch expected, ok := parseInt(row.Get("expected_graduation_year")); {
	case !ok:
		errs = append(errs, "Expected graduation year must be a valid number")
	case expected < year || expected > year+domain.ExpectedGraduationLookahead:
		errs = append(errs, "Invalid expected graduation year")
	default:
		p.ExpectedGraduationYear = expected
	}

	if raw := row.Get("current_year"); raw != "" {
		current, ok := parseInt(raw)
		if !ok || current < 1 {
			errs = append(errs, "Current year must be a valid number")
		} else {
			p.CurrentYear = &current
		}
	}

	p.StudentID = row.Get("student_id")
	if p.StudentID == "" {
		p.StudentID = localPart(c.email)
	}
	p.CurrentSemester = row.Get("current_semester")
	p.Major = row.Get("major")
	p.Minor = row.Get("minor")
	p.Phone = row.Get("phone")
	p.Address = row.Get("address")
	p.Bio = row.Get("bio")
	p.Skills = splitList(row.Get("skills"))
	p.Interests = splitList(row.Get("interests"))
	p.CareerInterests = splitList(row.Get("career_interests"))

	return Record{
		Email:          c.email,
		GraduationYear: p.ExpectedGraduationYear,
		Identifier:     p.StudentID,
		Department:     c.department,
		Profile:        p,
	}, errs
}

// parseInt accepts whole numbers, including spreadsheet renderings like "2020.0".
func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
