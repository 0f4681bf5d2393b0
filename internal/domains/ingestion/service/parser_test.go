package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourseRows(t *testing.T) {
	csvData := strings.Join([]string{
		"Organization,Title,Number,Short Description,Verified Price,Start Date",
		"edx,CSV Course,csv_123,Short desc,50,2020-01-25",
		"edx,Second Course,csv_456,Another desc,100,2020-02-01",
	}, "\n")

	rows, err := ParseCourseRows(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "edx", rows[0].Organization)
	assert.Equal(t, "CSV Course", rows[0].Title)
	assert.Equal(t, "csv_123", rows[0].Number)
	assert.Equal(t, "Short desc", rows[0].ShortDescription)
	assert.Equal(t, "50", rows[0].VerifiedPrice)
	assert.Equal(t, "Second Course", rows[1].Title)
}

func TestParseCourseRowsBOMAndCase(t *testing.T) {
	csvData := "\ufeffORGANIZATION,title,Course Enrollment Track\nedx,BOM Course,Verified and Audit\n"

	rows, err := ParseCourseRows(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "edx", rows[0].Organization)
	assert.Equal(t, "BOM Course", rows[0].Title)
	assert.Equal(t, "Verified and Audit", rows[0].CourseEnrollmentTrack)
}

func TestParseCourseRowsRaggedRecords(t *testing.T) {
	// Hand-edited exports sometimes carry short rows; extra columns are
	// dropped and missing ones stay empty.
	csvData := "Organization,Title,Number\nedx,Short Row\n"

	rows, err := ParseCourseRows(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Short Row", rows[0].Title)
	assert.Empty(t, rows[0].Number)
}

func TestParseCourseRowsLevelTypeAlias(t *testing.T) {
	csvData := "Title,Level Type\nAliased,Introductory\n"

	rows, err := ParseCourseRows(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, "Introductory", rows[0].CourseLevel)
}

func TestParseCourseRowsValuesTrimmed(t *testing.T) {
	csvData := "Title,Staff\n  Padded Course  ,\"Ada Lovelace, Alan Turing\"\n"

	rows, err := ParseCourseRows(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, "Padded Course", rows[0].Title)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, rows[0].StaffList())
}

func TestParseCourseRowsEmptyBody(t *testing.T) {
	rows, err := ParseCourseRows(strings.NewReader("Title,Number\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
