package service

import (
	"strings"

	coursemodel "catalog-backend/internal/domains/course/model"
	orgmodel "catalog-backend/internal/domains/organization/model"

	"catalog-backend/internal/domains/ingestion/model"
)

// requiredField pairs a column accessor with the display name used in the
// MISSING_REQUIRED_DATA message. Registry order is message order.
type requiredField struct {
	display string
	value   func(*model.CourseRow) string
}

// Common to every course type.
var baseRequiredFields = []requiredField{
	{"title", func(r *model.CourseRow) string { return r.Title }},
	{"number", func(r *model.CourseRow) string { return r.Number }},
	{"cardUrl", func(r *model.CourseRow) string { return r.Image }},
	{"short_description", func(r *model.CourseRow) string { return r.ShortDescription }},
	{"long_description", func(r *model.CourseRow) string { return r.LongDescription }},
	{"what_will_you_learn", func(r *model.CourseRow) string { return r.WhatWillYouLearn }},
	{"course_level", func(r *model.CourseRow) string { return r.CourseLevel }},
	{"primary_subject", func(r *model.CourseRow) string { return r.PrimarySubject }},
	{"verified_price", func(r *model.CourseRow) string { return r.VerifiedPrice }},
	{"publish_date", func(r *model.CourseRow) string { return r.PublishDate }},
	{"start_date", func(r *model.CourseRow) string { return r.StartDate }},
	{"end_date", func(r *model.CourseRow) string { return r.EndDate }},
	{"course_pacing", func(r *model.CourseRow) string { return r.CoursePacing }},
	{"minimum_effort", func(r *model.CourseRow) string { return r.MinimumEffort }},
	{"maximum_effort", func(r *model.CourseRow) string { return r.MaximumEffort }},
	{"length", func(r *model.CourseRow) string { return r.Length }},
	{"content_language", func(r *model.CourseRow) string { return r.ContentLanguage }},
}

// Exec-ed and bootcamp products always need their landing URLs.
var externalURLFields = []requiredField{
	{"redirect_url", func(r *model.CourseRow) string { return r.RedirectURL }},
	{"organic_url", func(r *model.CourseRow) string { return r.OrganicURL }},
}

// Marketing collateral is only enforced for products of the designated
// external source; other sources supply it post-ingestion.
var certificateFields = []requiredField{
	{"certificate_header", func(r *model.CourseRow) string { return r.CertificateHeader }},
	{"certificate_text", func(r *model.CourseRow) string { return r.CertificateText }},
}

var statFields = []requiredField{
	{"stat1_text", func(r *model.CourseRow) string { return r.Stat1Text }},
}

// ValidationContext carries the resolved row context the required-field
// registry is keyed on.
type ValidationContext struct {
	CourseTypeSlug string
	MarketingType  string
	ProductSource  string
	ExternalSource string
}

func (c ValidationContext) externalProduct() bool {
	return c.CourseTypeSlug == orgmodel.CourseTypeExecutiveEducation ||
		c.CourseTypeSlug == orgmodel.CourseTypeBootcamp
}

// requiredFields assembles the registry for the row's (enrollment track,
// marketing type) combination, in display order.
func requiredFields(ctx ValidationContext) []requiredField {
	fields := append([]requiredField(nil), baseRequiredFields...)
	if !ctx.externalProduct() {
		return fields
	}

	fields = append(fields, externalURLFields...)
	if ctx.ProductSource != ctx.ExternalSource {
		return fields
	}

	switch ctx.MarketingType {
	case coursemodel.MarketingTypeSprint:
		fields = append(fields, statFields...)
	case coursemodel.MarketingTypeCourseStack:
		// course stacks carry no per-course marketing collateral
	default:
		fields = append(fields, certificateFields...)
		fields = append(fields, statFields...)
	}
	return fields
}

// ValidateRequiredData reports the MISSING_REQUIRED_DATA error for a row, or
// nil when every required column is supplied. Display names come out in
// registry insertion order, deduplicated.
func ValidateRequiredData(row *model.CourseRow, ctx ValidationContext) *model.IngestionError {
	var missing []string
	seen := make(map[string]bool)
	for _, f := range requiredFields(ctx) {
		if strings.TrimSpace(f.value(row)) != "" || seen[f.display] {
			continue
		}
		seen[f.display] = true
		missing = append(missing, f.display)
	}
	if len(missing) == 0 {
		return nil
	}
	err := model.NewError(model.MissingRequiredData, row.Title, strings.Join(missing, ", "))
	return &err
}
