package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunSuffixForStart(t *testing.T) {
	tests := []struct {
		start time.Time
		want  string
	}{
		{time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC), "1T2017"},
		{time.Date(2017, time.April, 30, 0, 0, 0, 0, time.UTC), "1T2017"},
		{time.Date(2017, time.May, 1, 0, 0, 0, 0, time.UTC), "2T2017"},
		{time.Date(2017, time.August, 31, 0, 0, 0, 0, time.UTC), "2T2017"},
		{time.Date(2017, time.September, 1, 0, 0, 0, 0, time.UTC), "3T2017"},
		{time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), "3T2020"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RunSuffixForStart(tt.start))
	}
}

func TestIncrementSuffix(t *testing.T) {
	assert.Equal(t, "a", IncrementSuffix(""))
	assert.Equal(t, "b", IncrementSuffix("a"))
	assert.Equal(t, "aa", IncrementSuffix("z"))
	assert.Equal(t, "ba", IncrementSuffix("az"))
	assert.Equal(t, "ca", IncrementSuffix("bz"))
	assert.Equal(t, "aaa", IncrementSuffix("zz"))
}

func TestNextAvailableRun(t *testing.T) {
	existing := map[string]bool{}
	assert.Equal(t, "1T2017", NextAvailableRun("1T2017", existing))

	existing["1T2017"] = true
	assert.Equal(t, "1T2017a", NextAvailableRun("1T2017", existing))

	existing["1T2017a"] = true
	assert.Equal(t, "1T2017b", NextAvailableRun("1T2017", existing))
}

func TestCourseRunKey(t *testing.T) {
	assert.Equal(t, "course-v1:edx+csv_123+1T2020", CourseRunKey("edx+csv_123", "1T2020"))
}

func TestRunFromKey(t *testing.T) {
	assert.Equal(t, "1T2020", RunFromKey("course-v1:edx+csv_123+1T2020"))
	assert.Equal(t, "1T2017a", RunFromKey("course-v1:edx+csv_123+1T2017a"))
	assert.Equal(t, "", RunFromKey("edx/csv_123/1T2020"))
	assert.Equal(t, "", RunFromKey("course-v1:broken"))
}
