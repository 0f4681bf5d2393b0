package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Course is one row of the draft/official pair. Both rows share the UUID;
// the Draft flag tells them apart. The draft row is the only mutable one,
// changes propagate to the official row when the run status allows it.
type Course struct {
	UUID             uuid.UUID `json:"uuid"`
	Partner          string    `json:"partner"`
	Key              string    `json:"key"` // {org}+{number}
	Title            string    `json:"title"`
	ShortDescription string    `json:"short_description"`
	FullDescription  string    `json:"full_description"`
	Syllabus         string    `json:"syllabus"`
	Subjects         []string  `json:"subjects"`
	Organizations    []string  `json:"organizations"`
	Type             string    `json:"type"`           // course type slug
	ProductSource    string    `json:"product_source"` // source slug
	Draft            bool      `json:"draft"`

	ActiveURLSlug  string   `json:"active_url_slug"`
	URLSlugHistory []string `json:"url_slug_history"`

	ImageKey        string `json:"image_key"`
	LogoOverrideKey string `json:"logo_override_key"`

	AdditionalMetadata *AdditionalMetadata `json:"additional_metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseRunStatus is the lifecycle state of a run. Ingestion only ever moves
// a run toward Published, never the reverse.
type CourseRunStatus string

const (
	StatusUnpublished    CourseRunStatus = "unpublished"
	StatusLegalReview    CourseRunStatus = "review_by_legal"
	StatusInternalReview CourseRunStatus = "review_by_internal"
	StatusReviewed       CourseRunStatus = "reviewed"
	StatusPublished      CourseRunStatus = "published"
	StatusArchived       CourseRunStatus = "archived"
)

// InReview reports whether the status is one of the review states.
func (s CourseRunStatus) InReview() bool {
	return s == StatusLegalReview || s == StatusInternalReview || s == StatusReviewed
}

// SaveTier describes how far a save is allowed to cascade.
type SaveTier int

const (
	// SaveDraftOnly writes only the draft row.
	SaveDraftOnly SaveTier = iota
	// SaveDraftAndOfficial writes the draft row and propagates to official.
	SaveDraftAndOfficial
)

// AllowedSaveTier computes the cascade tier from a run's current status:
// published and in-review runs propagate to official, everything else stays
// draft-only.
func AllowedSaveTier(status CourseRunStatus) SaveTier {
	if status == StatusPublished || status.InReview() {
		return SaveDraftAndOfficial
	}
	return SaveDraftOnly
}

// CourseRun is one row of the run's draft/official pair.
type CourseRun struct {
	UUID       uuid.UUID `json:"uuid"`
	CourseUUID uuid.UUID `json:"course_uuid"`
	Key        string    `json:"key"` // course-v1:{courseKey}+{run}
	Draft      bool      `json:"draft"`

	Status        CourseRunStatus `json:"status"`
	Start         *time.Time      `json:"start,omitempty"`
	End           *time.Time      `json:"end,omitempty"`
	EnrollmentEnd *time.Time      `json:"enrollment_end,omitempty"`
	GoLiveDate    *time.Time      `json:"go_live_date,omitempty"`

	Pacing              string   `json:"pacing"`
	Language            string   `json:"language"` // ietf tag
	TranscriptLanguages []string `json:"transcript_languages"`
	Staff               []string `json:"staff"`
	MinEffort           int      `json:"min_effort"`
	MaxEffort           int      `json:"max_effort"`
	WeeksToComplete     int      `json:"weeks_to_complete"`

	VariantID       *uuid.UUID       `json:"variant_id,omitempty"`
	RestrictionType *string          `json:"restriction_type,omitempty"`
	IsFutureVariant bool             `json:"is_future_variant"`
	FixedPriceUSD   *decimal.Decimal `json:"fixed_price_usd,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunValue extracts the run portion of the key (e.g. 1T2020a).
func (r *CourseRun) RunValue() string {
	if idx := strings.LastIndexByte(r.Key, '+'); idx >= 0 {
		return r.Key[idx+1:]
	}
	return ""
}
