package model

import "time"

// ExternalProductStatus is the partner-facing status stored on
// AdditionalMetadata. The archival sweeper flips Published to Archived for
// products absent from an ingestion batch.
type ExternalProductStatus string

const (
	ProductStatusPublished ExternalProductStatus = "published"
	ProductStatusArchived  ExternalProductStatus = "archived"
)

// External course marketing types, exec-ed/bootcamp only.
const (
	MarketingTypeShortCourse = "short_course"
	MarketingTypeSprint      = "sprint"
	MarketingTypeCourseStack = "course_stack"
)

// AdditionalMetadata carries exec-ed/bootcamp product attributes. The
// ExternalIdentifier is the archival matching key within a product source.
type AdditionalMetadata struct {
	ExternalIdentifier          string                `json:"external_identifier"`
	ExternalURL                 string                `json:"external_url"`
	ExternalCourseMarketingType string                `json:"external_course_marketing_type"`
	ProductStatus               ExternalProductStatus `json:"product_status"`

	OrganicURL  string `json:"organic_url"`
	RedirectURL string `json:"redirect_url"`

	LeadCaptureFormURL string `json:"lead_capture_form_url"`
	TaxiFormID         string `json:"taxi_form_id"`

	CertificateHeader string `json:"certificate_header"`
	CertificateText   string `json:"certificate_text"`
	Facts             []Fact `json:"facts"`

	StartDate            *time.Time `json:"start_date,omitempty"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	ProductMeta *ProductMeta `json:"product_meta,omitempty"`
}

// Fact is a marketing stat shown on the course page ("90%", "learners who...").
type Fact struct {
	Heading string `json:"heading"`
	Blurb   string `json:"blurb"`
}

// ProductMeta holds SEO attributes for the product page.
type ProductMeta struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Clone returns a deep copy so the official row never aliases draft state.
func (m *AdditionalMetadata) Clone() *AdditionalMetadata {
	if m == nil {
		return nil
	}
	out := *m
	out.Facts = append([]Fact(nil), m.Facts...)
	if m.ProductMeta != nil {
		pm := *m.ProductMeta
		pm.Keywords = append([]string(nil), m.ProductMeta.Keywords...)
		out.ProductMeta = &pm
	}
	return &out
}
