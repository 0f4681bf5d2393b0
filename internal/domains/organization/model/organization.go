package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrCourseTypeNotFound    = errors.New("course type not found")
	ErrCourseRunTypeNotFound = errors.New("course run type not found")
	ErrSourceNotFound        = errors.New("product source not found")
)

// Course type slugs with special ingestion behavior.
const (
	CourseTypeExecutiveEducation = "executive-education-2u"
	CourseTypeBootcamp           = "bootcamp-2u"
	CourseTypeVerifiedAudit      = "verified-audit"
	CourseTypeProfessional       = "professional"
)

// Organization is a partner-scoped authoring organization. The Key prefixes
// course keys ({org}+{number}).
type Organization struct {
	UUID    uuid.UUID `json:"uuid"`
	Partner string    `json:"partner"`
	Key     string    `json:"key"`
	Name    string    `json:"name"`
	LogoKey string    `json:"logo_key"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseType maps an enrollment track name from the CSV to a course type
// slug and its offer modes.
type CourseType struct {
	UUID            uuid.UUID `json:"uuid"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	EntitlementMode string    `json:"entitlement_mode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExecEd reports whether the type carries exec-ed product metadata.
func (t *CourseType) IsExecEd() bool {
	return t.Slug == CourseTypeExecutiveEducation
}

// IsBootcamp reports whether the type carries bootcamp product metadata.
func (t *CourseType) IsBootcamp() bool {
	return t.Slug == CourseTypeBootcamp
}

// CourseRunType maps a run enrollment track name to its seat type.
type CourseRunType struct {
	UUID     uuid.UUID `json:"uuid"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	SeatType string    `json:"seat_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Source is the upstream product source (e.g. an external partner platform).
// Archival is scoped to one source so other sources' products stay untouched.
type Source struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
