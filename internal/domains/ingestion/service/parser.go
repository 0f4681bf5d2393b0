package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"catalog-backend/internal/domains/ingestion/model"
)

// ParseCourseRows reads a partner CSV into normalized rows. Headers are
// lowercased with spaces collapsed to underscores so hand-edited exports
// ("Short Description") and API snapshots ("short_description") both bind.
func ParseCourseRows(r io.Reader) ([]*model.CourseRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = normalizeHeader(h)
	}

	var rows []*model.CourseRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}

		row := &model.CourseRow{}
		for i, value := range record {
			if i >= len(columns) {
				break
			}
			setField(row, columns[i], strings.TrimSpace(value))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.ReplaceAll(h, " ", "_")
}

func setField(row *model.CourseRow, column, value string) {
	switch column {
	case "organization":
		row.Organization = value
	case "title":
		row.Title = value
	case "number":
		row.Number = value
	case "course_enrollment_track":
		row.CourseEnrollmentTrack = value
	case "course_run_enrollment_track":
		row.CourseRunEnrollmentTrack = value
	case "image":
		row.Image = value
	case "organization_logo_override":
		row.OrganizationLogoOverride = value
	case "short_description":
		row.ShortDescription = value
	case "long_description":
		row.LongDescription = value
	case "what_will_you_learn":
		row.WhatWillYouLearn = value
	case "syllabus":
		row.Syllabus = value
	case "prerequisites":
		row.Prerequisites = value
	case "learner_testimonials":
		row.LearnerTestimonials = value
	case "frequently_asked_questions":
		row.FrequentlyAskedQuestions = value
	case "additional_information":
		row.AdditionalInformation = value
	case "about_video_link":
		row.AboutVideoLink = value
	case "course_level", "level_type":
		row.CourseLevel = value
	case "primary_subject":
		row.PrimarySubject = value
	case "secondary_subject":
		row.SecondarySubject = value
	case "tertiary_subject":
		row.TertiarySubject = value
	case "publish_date":
		row.PublishDate = value
	case "start_date":
		row.StartDate = value
	case "start_time":
		row.StartTime = value
	case "end_date":
		row.EndDate = value
	case "end_time":
		row.EndTime = value
	case "reg_close_date":
		row.RegCloseDate = value
	case "reg_close_time":
		row.RegCloseTime = value
	case "course_pacing":
		row.CoursePacing = value
	case "staff":
		row.Staff = value
	case "minimum_effort":
		row.MinimumEffort = value
	case "maximum_effort":
		row.MaximumEffort = value
	case "length":
		row.Length = value
	case "content_language":
		row.ContentLanguage = value
	case "transcript_language":
		row.TranscriptLanguage = value
	case "expected_program_type":
		row.ExpectedProgramType = value
	case "expected_program_name":
		row.ExpectedProgramName = value
	case "verified_price":
		row.VerifiedPrice = value
	case "collaborators":
		row.Collaborators = value
	case "slug":
		row.Slug = value
	case "variant_id":
		row.VariantID = value
	case "external_identifier":
		row.ExternalIdentifier = value
	case "external_course_marketing_type":
		row.ExternalCourseMarketingType = value
	case "redirect_url":
		row.RedirectURL = value
	case "organic_url":
		row.OrganicURL = value
	case "stat1":
		row.Stat1 = value
	case "stat1_text":
		row.Stat1Text = value
	case "stat2":
		row.Stat2 = value
	case "stat2_text":
		row.Stat2Text = value
	case "meta_title":
		row.MetaTitle = value
	case "meta_description":
		row.MetaDescription = value
	case "meta_keywords":
		row.MetaKeywords = value
	case "organization_short_code_override":
		row.OrganizationShortCodeOverride = value
	case "lead_capture_form_url":
		row.LeadCaptureFormURL = value
	case "certificate_header":
		row.CertificateHeader = value
	case "certificate_text":
		row.CertificateText = value
	case "taxi_form_id":
		row.TaxiFormID = value
	case "post_submit_url":
		row.PostSubmitURL = value
	case "fixed_price_usd":
		row.FixedPriceUSD = value
	case "restriction_type":
		row.RestrictionType = value
	case "is_future_variant":
		row.IsFutureVariant = value
	}
}
