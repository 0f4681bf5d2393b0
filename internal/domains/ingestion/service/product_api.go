package service

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	coursemodel "catalog-backend/internal/domains/course/model"

	"catalog-backend/internal/domains/ingestion/client"
	"catalog-backend/internal/domains/ingestion/model"
)

// Column order of the exec-ed CSV snapshot.
var snapshotHeader = []string{
	"Organization", "Organization Short Code Override", "Organization Logo Override",
	"Title", "Number", "Course Enrollment Track", "Course Run Enrollment Track",
	"Image", "Short Description", "Long Description", "What Will You Learn",
	"Course Level", "Primary Subject", "Secondary Subject", "Tertiary Subject",
	"Verified Price", "Syllabus", "Learner Testimonials", "Frequently Asked Questions",
	"About Video Link", "Publish Date", "Start Date", "Start Time", "End Date", "End Time",
	"Reg Close Date", "Reg Close Time", "Course Pacing", "Staff",
	"Minimum Effort", "Maximum Effort", "Length", "Content Language", "Transcript Language",
	"Redirect Url", "Organic Url", "Stat1", "Stat1 Text", "Stat2", "Stat2 Text",
	"Meta Title", "Meta Description", "Meta Keywords", "Slug", "External Identifier",
	"Lead Capture Form Url", "Certificate Header", "Certificate Text",
	"External Course Marketing Type", "Taxi Form Id", "Post Submit Url",
	"Variant Id", "Fixed Price Usd", "Restriction Type", "Is Future Variant",
}

// Partner language names to catalog display names.
var partnerLanguages = map[string]string{
	"español":   "Spanish - Spain (Modern)",
	"english":   "English - United States",
	"français":  "French - France",
	"português": "Portuguese - Brazil",
	"mandarin":  "Mandarin - Simplified",
	"العربية":   "Arabic - United Arab Emirates",
}

// Scheduling columns an operator-supplied input CSV wins over the API.
var inputPreferredColumns = []string{
	"Start Date", "Start Time", "End Date", "End Time", "Reg Close Date", "Reg Close Time",
}

// ProductCSVService turns the partner product API payload into the CSV the
// ingestion loader consumes, one row per variant.
type ProductCSVService struct {
	products client.ProductAPIClient
}

func NewProductCSVService(products client.ProductAPIClient) *ProductCSVService {
	return &ProductCSVService{products: products}
}

// PopulateCSV fetches products and writes the snapshot CSV to w. Rows from
// inputRows (keyed by title) contribute operator-maintained scheduling
// columns when present.
func (s *ProductCSVService) PopulateCSV(ctx context.Context, w io.Writer, inputRows []*model.CourseRow) error {
	products, err := s.products.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch products: %w", err)
	}
	return s.WriteProductsCSV(w, products, inputRows)
}

// WriteProductsCSV writes the snapshot CSV for an already-fetched product
// list.
func (s *ProductCSVService) WriteProductsCSV(w io.Writer, products []client.Product, inputRows []*model.CourseRow) error {
	inputByTitle := make(map[string]*model.CourseRow, len(inputRows))
	for _, row := range inputRows {
		inputByTitle[row.Title] = row
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(snapshotHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range products {
		product := &products[i]
		variants := product.AllVariants()
		if len(variants) == 0 {
			log.Info().Msgf("Skipping product %s ingestion as it has no variants", product.Name)
			continue
		}

		for j := range variants {
			record := transformProduct(product, &variants[j], inputByTitle[product.Name])
			row := make([]string, len(snapshotHeader))
			for k, column := range snapshotHeader {
				row[k] = record[column]
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		log.Info().Msgf("Data population and transformation completed for CSV row title %s", product.Name)
	}

	writer.Flush()
	return writer.Error()
}

func transformProduct(p *client.Product, v *client.Variant, input *model.CourseRow) map[string]string {
	minEffort, maxEffort := parseEffort(p.Effort)

	restrictionType := "None"
	publishDate := time.Now().UTC().Format("01/02/2006")
	if v.Restricted() {
		restrictionType = coursemodel.RestrictionB2BEnterprise
	} else if v.Scheduled() {
		// Future variants go live when the presentation starts.
		publishDate = v.StartDate
	}

	postSubmitURL := decodeURL(p.ProspectusURL)
	if postSubmitURL == "" && strings.EqualFold(p.ProductType, coursemodel.MarketingTypeSprint) {
		postSubmitURL = decodeURL(p.EdxPlpURL)
	}

	taxiFormID := ""
	if p.EdxTaxiFormID != nil {
		taxiFormID = *p.EdxTaxiFormID
	}

	record := map[string]string{
		"Organization":                     p.UniversityAbbreviation,
		"Organization Short Code Override": p.AltUniversityAbbreviation,
		"Organization Logo Override":       decodeURL(p.LogoURL),
		"Title":                            p.Name,
		"Number":                           p.Abbreviation,
		"Course Enrollment Track":          "Executive Education(2U)",
		"Course Run Enrollment Track":      "Unpaid Executive Education",
		"Image":                            decodeURL(p.CardURL),
		"Short Description":                p.Blurb,
		"Long Description":                 p.Introduction + p.IsThisCourseForYou,
		"What Will You Learn":              p.WhatWillSetYouApart,
		"Course Level":                     "Introductory",
		"Primary Subject":                  p.AltSubjectMatter,
		"Verified Price":                   v.FinalPrice.String(),
		"Syllabus":                         composeSyllabus(p.Curriculum),
		"Learner Testimonials":             composeTestimonials(p.Testimonials),
		"Frequently Asked Questions":       composeFAQs(p.FAQs),
		"About Video Link":                 p.VideoURL,
		"Publish Date":                     publishDate,
		"Start Date":                       v.StartDate,
		"Start Time":                       "00:00:00",
		"End Date":                         v.EndDate,
		"End Time":                         "00:00:00",
		"Reg Close Date":                   v.FinalRegCloseDate,
		"Reg Close Time":                   "00:00:00",
		"Course Pacing":                    "Instructor-Paced",
		"Minimum Effort":                   minEffort,
		"Maximum Effort":                   maxEffort,
		"Length":                           strconv.Itoa(p.DurationWeeks),
		"Content Language":                 displayLanguage(p.Language),
		"Transcript Language":              displayLanguage(p.Language),
		"Redirect Url":                     decodeURL(p.EdxRedirectURL),
		"Organic Url":                      decodeURL(p.EdxPlpURL),
		"Meta Title":                       p.MetaTitle,
		"Meta Description":                 p.MetaDescription,
		"Meta Keywords":                    p.MetaKeywords,
		"Slug":                             p.Slug,
		"External Identifier":              p.ID,
		"Lead Capture Form Url":            decodeURL(p.LcfURL),
		"External Course Marketing Type":   p.ProductType,
		"Taxi Form Id":                     taxiFormID,
		"Post Submit Url":                  postSubmitURL,
		"Variant Id":                       v.ID,
		"Fixed Price Usd":                  v.EnterprisePrice.String(),
		"Restriction Type":                 restrictionType,
		"Is Future Variant":                strconv.FormatBool(v.Scheduled() && !v.Restricted()),
	}
	if p.Certificate != nil {
		record["Certificate Header"] = p.Certificate.Headline
		record["Certificate Text"] = p.Certificate.Blurb
	}
	if p.Stats != nil {
		record["Stat1"] = p.Stats.Stat1
		record["Stat1 Text"] = p.Stats.Stat1Blurb
		record["Stat2"] = p.Stats.Stat2
		record["Stat2 Text"] = p.Stats.Stat2Blurb
	}

	if input != nil {
		overlay := map[string]string{
			"Start Date":     input.StartDate,
			"Start Time":     input.StartTime,
			"End Date":       input.EndDate,
			"End Time":       input.EndTime,
			"Reg Close Date": input.RegCloseDate,
			"Reg Close Time": input.RegCloseTime,
		}
		for _, column := range inputPreferredColumns {
			if value := overlay[column]; value != "" {
				record[column] = value
			}
		}
	}
	return record
}

// decodeURL unwraps the partner API's base64-encoded URL fields, tolerating
// trailing garbage after the padding.
func decodeURL(encoded string) string {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return ""
	}
	if idx := strings.Index(encoded, "="); idx >= 0 {
		end := idx
		for end < len(encoded) && encoded[end] == '=' {
			end++
		}
		encoded = encoded[:end]
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// parseEffort extracts the bounds of strings like "7–10 hours per week".
func parseEffort(effort string) (string, string) {
	fields := strings.FieldsFunc(effort, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) >= 2 {
		return fields[0], fields[1]
	}
	if len(fields) == 1 {
		return fields[0], fields[0]
	}
	return "", ""
}

func displayLanguage(language string) string {
	if name, ok := partnerLanguages[strings.ToLower(strings.TrimSpace(language))]; ok {
		return name
	}
	return "English - United States"
}

func composeSyllabus(c *client.Curriculum) string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("<div>")
	if c.Blurb != "" {
		fmt.Fprintf(&b, "<p>%s</p>", c.Blurb)
	}
	for _, m := range c.Modules {
		fmt.Fprintf(&b, "<p><b>Module %d: </b>%s</p>", m.ModuleNumber, m.Description)
	}
	b.WriteString("</div>")
	return b.String()
}

func composeTestimonials(testimonials []client.Testimonial) string {
	if len(testimonials) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<div>")
	for _, t := range testimonials {
		fmt.Fprintf(&b, "<p><i>\"%s\"</i></p><p>-%s (%s)</p>", t.Text, t.Name, t.Title)
	}
	b.WriteString("</div>")
	return b.String()
}

func composeFAQs(faqs []client.FAQ) string {
	if len(faqs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<div>")
	for _, f := range faqs {
		fmt.Fprintf(&b, "<p><b>%s</b></p>%s", f.Headline, f.Blurb)
	}
	b.WriteString("</div>")
	return b.String()
}
