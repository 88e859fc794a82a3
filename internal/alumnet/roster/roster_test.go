package roster_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/roster"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var now = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func parseCSV(t *testing.T, body string) roster.Table {
	t.Helper()
	table, err := roster.Parse("upload.csv", strings.NewReader(body))
	require.NoError(t, err)
	return table
}

func TestValidateAlumniRows(t *testing.T) {
	t.Parallel()

	table := parseCSV(t, "first_name,last_name,email,graduation_year,department\n"+
		"Alice,Smith,Alice@Inst.edu,2020,Engineering\n"+
		"Bob,,bob@inst.edu,2019,Science\n"+
		"Carol,Jones,carol@inst.edu,2018,Arts\n")
	require.Len(t, table.Rows, 3)

	cleaned, rejected := roster.Validate(table, domain.UserTypeAlumni, now)
	require.Len(t, cleaned, 2)
	require.Len(t, rejected, 1)

	require.Equal(t, 3, rejected[0].RowNumber)
	require.Equal(t, []string{"Last name is required"}, rejected[0].Errors)
	require.Equal(t, "bob@inst.edu", rejected[0].Email)

	require.Equal(t, 2, cleaned[0].RowNumber)
	require.Equal(t, "alice@inst.edu", cleaned[0].Email)
	require.Equal(t, 2020, cleaned[0].GraduationYear)
	require.NoError(t, cleaned[0].Profile.Validate(now))
}

func TestValidateEveryRowLandsOnce(t *testing.T) {
	t.Parallel()

	table := parseCSV(t, "first_name,last_name,email,graduation_year,department,skills,graduation_month\n"+
		"A,B,a@x.edu,1899,D,,\n"+
		"A,B,a@x.edu,2026,D,,\n"+
		"A,B,a@x.edu,abc,D,,\n"+
		"A,B,no-at-sign,2000,D,,\n"+
		"A,B,a@x.edu,2000.0,D,\" go , ,sql \",13\n"+
		"A,B,a@x.edu,1900,D,\" go , ,sql \",6\n")

	cleaned, rejected := roster.Validate(table, domain.UserTypeAlumni, now)
	require.Equal(t, len(table.Rows), len(cleaned)+len(rejected))
	require.Len(t, cleaned, 1)

	require.Equal(t, []string{"Invalid graduation year"}, rejected[0].Errors)
	require.Equal(t, []string{"Invalid graduation year"}, rejected[1].Errors)
	require.Equal(t, []string{"Graduation year must be a valid number"}, rejected[2].Errors)
	require.Equal(t, []string{"Invalid email format"}, rejected[3].Errors)
	require.Equal(t, []string{"Invalid graduation month"}, rejected[4].Errors)

	p := cleaned[0].Profile.(domain.AlumniProfile)
	require.Equal(t, []string{"go", "sql"}, p.Skills)
	require.Equal(t, 6, *p.GraduationMonth)
	require.Equal(t, 7, cleaned[0].RowNumber)
}

func TestValidateStudentRows(t *testing.T) {
	t.Parallel()

	table := parseCSV(t, "first_name,last_name,email,enrollment_year,expected_graduation_year,department,student_id,interests\n"+
		"Jane,Smith,jane@uni.edu,2023,2027,CS,STU1,\"AI, Web\"\n"+
		"Jim,Smith,jim@uni.edu,2023,2024,CS,,\n"+
		"Jo,Smith,jo@uni.edu,2027,2036,CS,,\n"+
		"Jack,Smith,jack@uni.edu,x,y,CS,,\n")

	cleaned, rejected := roster.Validate(table, domain.UserTypeStudent, now)
	require.Len(t, cleaned, 1)
	require.Len(t, rejected, 3)

	p := cleaned[0].Profile.(domain.StudentProfile)
	require.Equal(t, "STU1", cleaned[0].Identifier)
	require.Equal(t, 2027, cleaned[0].GraduationYear)
	require.Equal(t, []string{"AI", "Web"}, p.Interests)

	require.Equal(t, []string{"Invalid expected graduation year"}, rejected[0].Errors)
	require.Equal(t, []string{"Invalid enrollment year", "Invalid expected graduation year"}, rejected[1].Errors)
	require.Equal(t, []string{
		"Enrollment year must be a valid number",
		"Expected graduation year must be a valid number",
	}, rejected[2].Errors)
}

func TestParseCSV(t *testing.T) {
	t.Parallel()

	t.Run("blank records keep their row number", func(t *testing.T) {
		table := parseCSV(t, "\xEF\xBB\xBF first_name ,last_name\nA,B\n,\nC,D\n")
		require.Equal(t, []string{"first_name", "last_name"}, table.Headers)
		require.Len(t, table.Rows, 2)
		require.Equal(t, 2, table.Rows[0].Number)
		require.Equal(t, 4, table.Rows[1].Number)
		require.Equal(t, "C", table.Rows[1].Get("first_name"))
	})

	t.Run("multi-line cells do not shift row numbers", func(t *testing.T) {
		table := parseCSV(t, "first_name,last_name,email,graduation_year,department,bio\n"+
			"Alice,Smith,a@x.edu,2020,Arts,\"line one\nline two\nline three\"\n"+
			"Bob,,b@x.edu,2019,Arts,\n")
		require.Len(t, table.Rows, 2)
		require.Equal(t, "line one\nline two\nline three", table.Rows[0].Get("bio"))

		cleaned, rejected := roster.Validate(table, domain.UserTypeAlumni, now)
		require.Len(t, cleaned, 1)
		require.Len(t, rejected, 1)
		require.Equal(t, 2, cleaned[0].RowNumber)
		require.Equal(t, 3, rejected[0].RowNumber)
		require.Equal(t, []string{"Last name is required"}, rejected[0].Errors)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := roster.Parse("x.csv", strings.NewReader("first_name,last_name\n"))
		require.ErrorIs(t, err, roster.ErrEmptyFile)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := roster.Parse("x.csv", strings.NewReader(""))
		require.ErrorIs(t, err, roster.ErrEmptyFile)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := roster.Parse("x.xls", strings.NewReader("whatever"))
		require.ErrorIs(t, err, roster.ErrUnsupportedFormat)
		_, err = roster.Parse("x.txt", strings.NewReader("whatever"))
		require.ErrorIs(t, err, roster.ErrUnsupportedFormat)
		require.False(t, roster.Supported("x.pdf"))
		require.True(t, roster.Supported("X.XLSX"))
	})
}

func TestParseXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"first_name", "last_name", "email", "graduation_year", "department"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Alice", "Smith", "alice@inst.edu", 2020, "Engineering"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"Bob", "", "bob@inst.edu", 2019, "Science"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := roster.Parse("roster.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	cleaned, rejected := roster.Validate(table, domain.UserTypeAlumni, now)
	require.Len(t, cleaned, 1)
	require.Equal(t, 2020, cleaned[0].GraduationYear)
	require.Len(t, rejected, 1)
	require.Equal(t, 4, rejected[0].RowNumber)

	_, err = roster.Parse("broken.xlsx", strings.NewReader("not a zip"))
	require.ErrorIs(t, err, roster.ErrUnreadable)
}

func TestMissingColumns(t *testing.T) {
	t.Parallel()

	table := parseCSV(t, "first_name,email,department\nA,a@x.edu,D\n")
	require.Equal(t, []string{"last_name", "graduation_year"}, roster.MissingColumns(table, domain.UserTypeAlumni))

	err := roster.CheckColumns(table, domain.UserTypeStudent)
	require.ErrorIs(t, err, roster.ErrMissingColumns)
	require.ErrorContains(t, err, "last_name, enrollment_year, expected_graduation_year")

	t.Run("case sensitive", func(t *testing.T) {
		table := parseCSV(t, "First_Name,last_name,email,graduation_year,department\nA,B,a@x.edu,2000,D\n")
		require.Equal(t, []string{"first_name"}, roster.MissingColumns(table, domain.UserTypeAlumni))
	})
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	for _, ut := range []domain.UserType{domain.UserTypeAlumni, domain.UserTypeStudent} {
		t.Run(string(ut), func(t *testing.T) {
			raw, err := roster.Template(ut)
			require.NoError(t, err)

			table, err := roster.Parse(roster.TemplateFilename(ut), bytes.NewReader(raw))
			require.NoError(t, err)
			require.Equal(t, roster.TemplateColumns(ut), table.Headers)
			require.Empty(t, roster.MissingColumns(table, ut))
			require.Len(t, table.Rows, 1)
		})
	}

	_, err := roster.Template("staff")
	require.ErrorIs(t, err, domain.ErrInvalidUserType)
}

func TestCheckFormat(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"grads.csv", "GRADS.CSV", "grads.xlsx"} {
		require.NoError(t, roster.CheckFormat(name), name)
		require.True(t, roster.Supported(name), name)
	}

	err := roster.CheckFormat("grads.xls")
	require.ErrorIs(t, err, roster.ErrUnsupportedFormat)
	require.ErrorContains(t, err, ".xls")

	for _, name := range []string{"grads.txt", "grads", "grads.xlsx.pdf"} {
		require.ErrorIs(t, roster.CheckFormat(name), roster.ErrUnsupportedFormat, name)
		require.False(t, roster.Supported(name), name)
	}

	_, err = roster.Parse("grads.ods", strings.NewReader("x"))
	require.ErrorIs(t, err, roster.ErrUnsupportedFormat)
}
