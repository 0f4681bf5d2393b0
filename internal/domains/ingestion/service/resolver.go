package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	coursemodel "catalog-backend/internal/domains/course/model"
	orgmodel "catalog-backend/internal/domains/organization/model"

	"catalog-backend/internal/domains/ingestion/model"
)

// rowFields is the typed projection of a validated row. Parsing failures
// surface as course create/update errors, not validation errors.
type rowFields struct {
	publishDate *time.Time
	start       *time.Time
	end         *time.Time
	regClose    *time.Time

	minEffort int
	maxEffort int
	weeks     int

	price      decimal.Decimal
	fixedPrice *decimal.Decimal

	variantID   *uuid.UUID
	restriction *string
	future      bool
}

func parseRowFields(row *model.CourseRow) (*rowFields, error) {
	fields := &rowFields{future: row.FutureVariant()}

	var err error
	if fields.publishDate, err = model.ParseDate(row.PublishDate, ""); err != nil {
		return nil, fmt.Errorf("publish_date: %w", err)
	}
	if fields.start, err = model.ParseDate(row.StartDate, row.StartTime); err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	if fields.end, err = model.ParseDate(row.EndDate, row.EndTime); err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}
	if fields.regClose, err = model.ParseDate(row.RegCloseDate, row.RegCloseTime); err != nil {
		return nil, fmt.Errorf("reg_close_date: %w", err)
	}

	if fields.minEffort, err = parseOptionalInt(row.MinimumEffort); err != nil {
		return nil, fmt.Errorf("minimum_effort: %w", err)
	}
	if fields.maxEffort, err = parseOptionalInt(row.MaximumEffort); err != nil {
		return nil, fmt.Errorf("maximum_effort: %w", err)
	}
	if fields.weeks, err = parseOptionalInt(row.Length); err != nil {
		return nil, fmt.Errorf("length: %w", err)
	}

	if fields.price, err = decimal.NewFromString(strings.TrimSpace(row.VerifiedPrice)); err != nil {
		return nil, fmt.Errorf("verified_price: %w", err)
	}

	// An empty or "None" fixed price clears any existing override.
	if value := strings.TrimSpace(row.FixedPriceUSD); value != "" && !strings.EqualFold(value, "none") {
		fixed, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("fixed_price_usd: %w", err)
		}
		fields.fixedPrice = &fixed
	}

	if value := strings.TrimSpace(row.VariantID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("variant_id: %w", err)
		}
		fields.variantID = &id
	}

	if value := strings.TrimSpace(row.RestrictionType); value != "" && !strings.EqualFold(value, "none") {
		fields.restriction = &value
	}

	return fields, nil
}

func parseOptionalInt(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

// ensureParagraph wraps plain text in a paragraph tag; already-marked-up
// values pass through.
func ensureParagraph(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "<") {
		return value
	}
	return "<p>" + value + "</p>"
}

// applyCourseFields writes the row's course-level fields onto the draft.
func applyCourseFields(course *coursemodel.Course, row *model.CourseRow, org *orgmodel.Organization, courseType *orgmodel.CourseType) {
	course.Title = row.Title
	course.ShortDescription = ensureParagraph(row.ShortDescription)
	course.FullDescription = ensureParagraph(row.LongDescription)
	course.Syllabus = ensureParagraph(row.Syllabus)
	course.Subjects = row.Subjects()
	course.Organizations = []string{org.Key}
	course.Type = courseType.Slug
}

// buildMetadata assembles the external product metadata for exec-ed and
// bootcamp rows; other types carry none.
func buildMetadata(row *model.CourseRow, fields *rowFields, courseType *orgmodel.CourseType) *coursemodel.AdditionalMetadata {
	if !courseType.IsExecEd() && !courseType.IsBootcamp() {
		return nil
	}

	metadata := &coursemodel.AdditionalMetadata{
		ExternalIdentifier:          row.ExternalIdentifier,
		ExternalURL:                 row.RedirectURL,
		ExternalCourseMarketingType: row.ExternalCourseMarketingType,
		ProductStatus:               coursemodel.ProductStatusPublished,
		OrganicURL:                  row.OrganicURL,
		RedirectURL:                 row.RedirectURL,
		LeadCaptureFormURL:          row.LeadCaptureFormURL,
		TaxiFormID:                  row.TaxiFormID,
		CertificateHeader:           row.CertificateHeader,
		CertificateText:             row.CertificateText,
		StartDate:                   fields.start,
		EndDate:                     fields.end,
		RegistrationDeadline:        fields.regClose,
	}

	if row.Stat1 != "" || row.Stat1Text != "" {
		metadata.Facts = append(metadata.Facts, coursemodel.Fact{Heading: row.Stat1, Blurb: row.Stat1Text})
	}
	if row.Stat2 != "" || row.Stat2Text != "" {
		metadata.Facts = append(metadata.Facts, coursemodel.Fact{Heading: row.Stat2, Blurb: row.Stat2Text})
	}

	if row.MetaTitle != "" || row.MetaDescription != "" || row.MetaKeywords != "" {
		metadata.ProductMeta = &coursemodel.ProductMeta{
			Title:       row.MetaTitle,
			Description: row.MetaDescription,
			Keywords:    row.MetaKeywordList(),
		}
	}
	return metadata
}

// matchRun finds the row's target among the course's draft runs: by variant
// id when variant editing is on and the row carries one, otherwise by
// start/end date equality.
func matchRun(runs []*coursemodel.CourseRun, fields *rowFields, variantIDEditable bool) *coursemodel.CourseRun {
	if variantIDEditable && fields.variantID != nil {
		for _, run := range runs {
			if run.VariantID != nil && *run.VariantID == *fields.variantID {
				return run
			}
		}
		return nil
	}

	for _, run := range runs {
		if timesEqual(run.Start, fields.start) && timesEqual(run.End, fields.end) {
			return run
		}
	}
	return nil
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// applyRunFields writes the row's run-level fields onto the run. The
// language vocabulary check happens here so an invalid language rejects only
// the run update.
func applyRunFields(run *coursemodel.CourseRun, row *model.CourseRow, fields *rowFields) error {
	language, err := LanguageCode(row.ContentLanguage)
	if err != nil {
		return err
	}
	transcripts, err := LanguageCodes(row.TranscriptLanguages())
	if err != nil {
		return err
	}

	run.Start = fields.start
	run.End = fields.end
	run.EnrollmentEnd = fields.regClose
	run.GoLiveDate = fields.publishDate
	run.Pacing = normalizePacing(row.CoursePacing)
	run.Language = language
	run.TranscriptLanguages = transcripts
	run.Staff = row.StaffList()
	run.MinEffort = fields.minEffort
	run.MaxEffort = fields.maxEffort
	run.WeeksToComplete = fields.weeks
	run.VariantID = fields.variantID
	run.RestrictionType = fields.restriction
	run.IsFutureVariant = fields.future
	run.FixedPriceUSD = fields.fixedPrice
	return nil
}

func normalizePacing(pacing string) string {
	if strings.EqualFold(strings.TrimSpace(pacing), "instructor-paced") {
		return "instructor_paced"
	}
	return "self_paced"
}
