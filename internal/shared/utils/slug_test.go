package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Intro to Python", "intro-to-python"},
		{"punctuation stripped", "AI & Machine Learning!", "ai-machine-learning"},
		{"repeated spaces collapse", "Data   Science", "data-science"},
		{"surrounding whitespace", "  Leading Edge  ", "leading-edge"},
		{"already a slug", "supply-chain-management", "supply-chain-management"},
		{"dangling hyphens trimmed", "-edge case-", "edge-case"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlug(tt.input))
		})
	}
}

func TestSubdirectorySlug(t *testing.T) {
	got := SubdirectorySlug("MITx", "Supply Chain Design")
	assert.Equal(t, "executive-education/mitx-supply-chain-design", got)
}

func TestNextAvailableSlug(t *testing.T) {
	taken := map[string]bool{}
	isTaken := func(s string) bool { return taken[s] }

	assert.Equal(t, "python-basics", NextAvailableSlug("python-basics", isTaken))

	taken["python-basics"] = true
	assert.Equal(t, "python-basics-2", NextAvailableSlug("python-basics", isTaken))

	taken["python-basics-2"] = true
	assert.Equal(t, "python-basics-3", NextAvailableSlug("python-basics", isTaken))
}
