package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseKey(t *testing.T) {
	row := &CourseRow{Organization: "edx", Number: "csv_123"}
	assert.Equal(t, "edx+csv_123", row.CourseKey())

	row.OrganizationShortCodeOverride = "edx2"
	assert.Equal(t, "edx2+csv_123", row.CourseKey())
}

func TestSubjects(t *testing.T) {
	row := &CourseRow{PrimarySubject: "Computer Science", TertiarySubject: "  "}
	assert.Equal(t, []string{"Computer Science"}, row.Subjects())

	row.SecondarySubject = "Business"
	row.TertiarySubject = "Design"
	assert.Equal(t, []string{"Computer Science", "Business", "Design"}, row.Subjects())
}

func TestStaffList(t *testing.T) {
	row := &CourseRow{Staff: "Ada Lovelace, Alan Turing , "}
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, row.StaffList())

	assert.Nil(t, (&CourseRow{}).StaffList())
}

func TestFutureVariant(t *testing.T) {
	assert.False(t, (&CourseRow{}).FutureVariant())
	assert.False(t, (&CourseRow{IsFutureVariant: "False"}).FutureVariant())
	assert.True(t, (&CourseRow{IsFutureVariant: "True"}).FutureVariant())
	assert.True(t, (&CourseRow{IsFutureVariant: " true "}).FutureVariant())
}

func TestParseDate(t *testing.T) {
	t.Run("empty yields nil", func(t *testing.T) {
		got, err := ParseDate("", "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("iso layout", func(t *testing.T) {
		got, err := ParseDate("2024-03-05", "")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("us layout with clock", func(t *testing.T) {
		got, err := ParseDate("01/25/2050", "12:30:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2050, time.January, 25, 12, 30, 0, 0, time.UTC), *got)
	})

	t.Run("two digit year", func(t *testing.T) {
		got, err := ParseDate("06/15/24", "")
		require.NoError(t, err)
		assert.Equal(t, 2024, got.Year())
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := ParseDate("not-a-date", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid date "not-a-date"`)
	})

	t.Run("unparseable clock is ignored", func(t *testing.T) {
		got, err := ParseDate("2024-03-05", "noon")
		require.NoError(t, err)
		assert.Equal(t, 0, got.Hour())
	})
}
