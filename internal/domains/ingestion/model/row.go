package model

import (
	"fmt"
	"strings"
	"time"
)

// CourseRow is one CSV row with headers normalized to snake_case. Values stay
// raw strings until the loader needs them typed; required-data validation
// runs on presence, not parseability.
type CourseRow struct {
	Organization             string
	Title                    string
	Number                   string
	CourseEnrollmentTrack    string
	CourseRunEnrollmentTrack string

	Image                    string
	OrganizationLogoOverride string

	ShortDescription         string
	LongDescription          string
	WhatWillYouLearn         string
	Syllabus                 string
	Prerequisites            string
	LearnerTestimonials      string
	FrequentlyAskedQuestions string
	AdditionalInformation    string
	AboutVideoLink           string

	CourseLevel      string
	PrimarySubject   string
	SecondarySubject string
	TertiarySubject  string

	PublishDate  string
	StartDate    string
	StartTime    string
	EndDate      string
	EndTime      string
	RegCloseDate string
	RegCloseTime string

	CoursePacing        string
	Staff               string
	MinimumEffort       string
	MaximumEffort       string
	Length              string
	ContentLanguage     string
	TranscriptLanguage  string
	ExpectedProgramType string
	ExpectedProgramName string

	VerifiedPrice string
	Collaborators string
	Slug          string
	VariantID     string

	ExternalIdentifier          string
	ExternalCourseMarketingType string
	RedirectURL                 string
	OrganicURL                  string

	Stat1     string
	Stat1Text string
	Stat2     string
	Stat2Text string

	MetaTitle       string
	MetaDescription string
	MetaKeywords    string

	OrganizationShortCodeOverride string
	LeadCaptureFormURL            string
	CertificateHeader             string
	CertificateText               string
	TaxiFormID                    string
	PostSubmitURL                 string

	FixedPriceUSD   string
	RestrictionType string
	IsFutureVariant string
}

// CourseKey builds {org}+{number} with the short code override applied.
func (r *CourseRow) CourseKey() string {
	org := r.Organization
	if r.OrganizationShortCodeOverride != "" {
		org = r.OrganizationShortCodeOverride
	}
	return org + "+" + r.Number
}

// Subjects returns the non-empty subject names in primary-first order.
func (r *CourseRow) Subjects() []string {
	var subjects []string
	for _, s := range []string{r.PrimarySubject, r.SecondarySubject, r.TertiarySubject} {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	return subjects
}

// StaffList splits the comma-separated instructor names.
func (r *CourseRow) StaffList() []string {
	return splitList(r.Staff)
}

// TranscriptLanguages splits the comma-separated transcript language names.
func (r *CourseRow) TranscriptLanguages() []string {
	return splitList(r.TranscriptLanguage)
}

// MetaKeywordList splits the comma-separated SEO keywords.
func (r *CourseRow) MetaKeywordList() []string {
	return splitList(r.MetaKeywords)
}

// FutureVariant interprets the is_future_variant column, defaulting false.
func (r *CourseRow) FutureVariant() bool {
	return strings.EqualFold(strings.TrimSpace(r.IsFutureVariant), "true")
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Date layouts accepted across partner exports.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/06",
	time.RFC3339,
}

// ParseDate parses a date column, combining it with an optional "HH:MM:SS"
// time column in UTC. Empty input yields nil.
func ParseDate(date, clock string) (*time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			if clock = strings.TrimSpace(clock); clock != "" {
				if c, cerr := time.Parse("15:04:05", clock); cerr == nil {
					t = time.Date(t.Year(), t.Month(), t.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.UTC)
				}
			}
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", date)
}
