package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"English", "en-us"},
		{"english - united states", "en-us"},
		{"Spanish - Spain", "es-es"},
		{"  Japanese  ", "ja-jp"},
		{"es-es", "es-es"}, // already a tag
	}

	for _, tt := range tests {
		got, err := LanguageCode(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestLanguageCodeCoversPartnerDisplayNames(t *testing.T) {
	// Every display name the product API snapshot can emit must resolve, or
	// the run update for that product fails downstream.
	for partner, display := range partnerLanguages {
		_, err := LanguageCode(display)
		assert.NoError(t, err, "%s -> %s", partner, display)
	}
}

func TestLanguageCodeInvalid(t *testing.T) {
	_, err := LanguageCode("Klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Klingon")
	assert.Contains(t, err.Error(), "invalid ietf language")
}

func TestLanguageCodesDedup(t *testing.T) {
	got, err := LanguageCodes([]string{"English", "english - united states", "Spanish"})
	require.NoError(t, err)
	assert.Equal(t, []string{"en-us", "es"}, got)
}

func TestLanguageCodesPropagatesError(t *testing.T) {
	_, err := LanguageCodes([]string{"English", "Klingon"})
	assert.Error(t, err)
}
