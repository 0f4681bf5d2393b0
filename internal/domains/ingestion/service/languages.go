package service

import (
	"fmt"
	"strings"
)

// languageCodes is the controlled vocabulary mapping partner-supplied
// language names to ietf tags.
var languageCodes = map[string]string{
	"english":                       "en-us",
	"english - united states":       "en-us",
	"english - great britain":       "en-gb",
	"spanish":                       "es",
	"spanish - spain":               "es-es",
	"spanish - spain (modern)":      "es-es",
	"spanish - latin america":       "es-419",
	"french":                        "fr",
	"french - france":               "fr-fr",
	"german":                        "de-de",
	"italian":                       "it-it",
	"portuguese":                    "pt-pt",
	"portuguese - brazil":           "pt-br",
	"arabic":                        "ar-sa",
	"arabic - united arab emirates": "ar-ae",
	"chinese - simplified":          "zh-cmn",
	"chinese - traditional":         "zh-hk",
	"mandarin - simplified":         "zh-cmn",
	"japanese":                      "ja-jp",
	"korean":                        "ko-kr",
	"hindi":                         "hi",
	"russian":                       "ru",
	"dutch":                         "nl-nl",
	"swedish":                       "sv-se",
	"turkish":                       "tr-tr",
	"indonesian":                    "id-id",
}

// knownTags accepts values that already arrive as ietf tags.
var knownTags = func() map[string]bool {
	tags := make(map[string]bool, len(languageCodes))
	for _, code := range languageCodes {
		tags[code] = true
	}
	return tags
}()

// LanguageCode resolves a partner-supplied language value to an ietf tag.
func LanguageCode(value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if code, ok := languageCodes[normalized]; ok {
		return code, nil
	}
	if knownTags[normalized] {
		return normalized, nil
	}
	return "", fmt.Errorf("Language %s from provided string %s is either missing or an invalid ietf language", value, value)
}

// LanguageCodes resolves a list of language values, dropping duplicates while
// keeping input order.
func LanguageCodes(values []string) ([]string, error) {
	var codes []string
	seen := make(map[string]bool)
	for _, v := range values {
		code, err := LanguageCode(v)
		if err != nil {
			return nil, err
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes, nil
}
