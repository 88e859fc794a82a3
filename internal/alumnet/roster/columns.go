package roster

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
)

var requiredColumns = map[domain.UserType][]string{
	domain.UserTypeAlumni: {"first_name", "last_name", "email", "graduation_year", "department"},
	domain.UserTypeStudent: {
		"first_name", "last_name", "email", "enrollment_year", "expected_graduation_year", "department",
	},
}

var templateColumns = map[domain.UserType][]string{
	domain.UserTypeAlumni: {
		"first_name", "last_name", "email", "graduation_year", "graduation_month",
		"department", "degree_type", "major", "minor", "current_position",
		"current_company", "location", "linkedin_url", "phone", "bio", "skills",
	},
	domain.UserTypeStudent: {
		"first_name", "last_name", "email", "student_id", "enrollment_year",
		"expected_graduation_year", "current_year", "current_semester",
		"department", "major", "minor", "phone", "address", "bio",
		"skills", "interests", "career_interests",
	},
}

var templateSamples = map[domain.UserType]map[string]string{
	domain.UserTypeAlumni: {
		"first_name":       "John",
		"last_name":        "Doe",
		"email":            "john.doe@example.com",
		"graduation_year":  "2020",
		"graduation_month": "5",
		"department":       "Computer Science",
		"degree_type":      "Bachelor's",
		"major":            "Software Engineering",
		"minor":            "Mathematics",
		"current_position": "Software Engineer",
		"current_company":  "Tech Corp",
		"location":         "San Francisco, CA",
		"linkedin_url":     "https://linkedin.com/in/johndoe",
		"phone":            "+1-555-0123",
		"bio":              "Experienced software engineer with 5+ years in web development",
		"skills":           "Python, JavaScript, React, Node.js",
	},
	domain.UserTypeStudent: {
		"first_name":               "Jane",
		"last_name":                "Smith",
		"email":                    "jane.smith@student.example.edu",
		"student_id":               "STU12345",
		"enrollment_year":          "2022",
		"expected_graduation_year": "2026",
		"current_year":             "2",
		"current_semester":         "Fall 2024",
		"department":               "Computer Science",
		"major":                    "Computer Science",
		"minor":                    "Business",
		"phone":                    "+1-555-0124",
		"address":                  "123 Campus Dr, University City, State 12345",
		"bio":                      "Second-year computer science student interested in AI and machine learning",
		"skills":                   "Python, Java, HTML, CSS",
		"interests":                "Artificial Intelligence, Web Development, Gaming",
		"career_interests":         "Software Development, Data Science, Research",
	},
}

// RequiredColumns lists the headers an upload for ut must carry.
func RequiredColumns(ut domain.UserType) []string {
	return append([]string(nil), requiredColumns[ut]...)
}

// TemplateColumns is the full column set accepted for ut, in template order.
func TemplateColumns(ut domain.UserType) []string {
	return append([]string(nil), templateColumns[ut]...)
}

// MissingColumns returns the required headers absent from t.
func MissingColumns(t Table, ut domain.UserType) []string {
	var missing []string
	for _, col := range requiredColumns[ut] {
		if !t.has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// CheckColumns wraps ErrMissingColumns with the list of absent headers.
func CheckColumns(t Table, ut domain.UserType) error {
	missing := MissingColumns(t, ut)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
}

// Template renders the import template for ut as CSV: header plus one sample row.
func Template(ut domain.UserType) ([]byte, error) {
	columns, ok := templateColumns[ut]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidUserType, ut)
	}

	sample := make([]string, len(columns))
	for i, col := range columns {
		sample[i] = templateSamples[ut][col]
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll([][]string{columns, sample}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TemplateFilename is the attachment name for the template download.
func TemplateFilename(ut domain.UserType) string {
	return string(ut) + "_import_template.csv"
}
