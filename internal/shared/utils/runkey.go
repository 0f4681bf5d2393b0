package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RunSuffixForStart computes the base run suffix for a start date:
// {trimester}T{year} where trimester = ceil(month/4).
func RunSuffixForStart(start time.Time) string {
	trimester := int(math.Ceil(float64(start.Month()) / 4.0))
	return fmt.Sprintf("%dT%d", trimester, start.Year())
}

// IncrementSuffix returns the next letter combination for a run suffix tail:
// "" -> "a", "a" -> "b", "z" -> "aa", "az" -> "ba".
func IncrementSuffix(input string) string {
	lpart := strings.TrimRight(input, "z")
	numReplacements := len(input) - len(lpart)

	var next string
	if lpart == "" {
		next = "a"
	} else {
		next = lpart[:len(lpart)-1] + incrementCharacter(lpart[len(lpart)-1])
	}

	return next + strings.Repeat("a", numReplacements)
}

func incrementCharacter(c byte) string {
	if c == 'z' {
		return "a"
	}
	return string(c + 1)
}

// NextAvailableRun appends incrementing letter suffixes to root until the
// candidate is not among existingRuns (e.g. 1T2017, 1T2017a, 1T2017b, ...).
func NextAvailableRun(root string, existingRuns map[string]bool) string {
	suffix := ""
	candidate := root

	for existingRuns[candidate] {
		suffix = IncrementSuffix(suffix)
		candidate = root + suffix
	}

	return candidate
}

// CourseRunKey assembles the studio-style run key for a course key and run
// value, e.g. course-v1:edx+csv_123+1T2020.
func CourseRunKey(courseKey, run string) string {
	return fmt.Sprintf("course-v1:%s+%s", courseKey, run)
}

// RunFromKey extracts the run value from a course run key. Returns "" when
// the key is not in the course-v1 format.
func RunFromKey(runKey string) string {
	rest, ok := strings.CutPrefix(runKey, "course-v1:")
	if !ok {
		return ""
	}
	parts := strings.Split(rest, "+")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-1]
}
