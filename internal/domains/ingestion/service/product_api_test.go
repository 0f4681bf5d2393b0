package service

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coursemodel "catalog-backend/internal/domains/course/model"

	"catalog-backend/internal/domains/ingestion/client"
	"catalog-backend/internal/domains/ingestion/model"
)

func b64(url string) string {
	return base64.StdEncoding.EncodeToString([]byte(url))
}

func sampleProduct() client.Product {
	taxiForm := "taxi-42"
	return client.Product{
		ID:                     "12345",
		Name:                   "Supply Chain Design",
		Abbreviation:           "SCD01",
		Blurb:                  "Design better chains",
		Language:               "Español",
		AltSubjectMatter:       "Business",
		UniversityAbbreviation: "MITx",
		CardURL:                b64("https://cdn.example.com/card.jpg"),
		EdxRedirectURL:         b64("https://example.com/redirect"),
		EdxPlpURL:              b64("https://example.com/organic"),
		DurationWeeks:          8,
		Effort:                 "7–10 hours per week",
		Introduction:           "<p>Intro.</p>",
		IsThisCourseForYou:     "<p>For you.</p>",
		WhatWillSetYouApart:    "<p>Apart.</p>",
		ProductType:            "short_course",
		EdxTaxiFormID:          &taxiForm,
		Variant: &client.Variant{
			ID:                "variant-1",
			FinalPrice:        json.Number("1500"),
			EnterprisePrice:   json.Number("1800"),
			StartDate:         "2025-03-01",
			EndDate:           "2025-05-01",
			FinalRegCloseDate: "2025-02-20",
			WebsiteVisibility: "public",
			Status:            "active",
		},
		Certificate: &client.Certificate{Headline: "About the certificate", Blurb: "For special people"},
		Stats:       &client.Stats{Stat1: "90%", Stat1Blurb: "of learners", Stat2: "100", Stat2Blurb: "countries"},
	}
}

// readSnapshot parses the written CSV into one map per row, keyed by header.
func readSnapshot(t *testing.T, buf *bytes.Buffer) []map[string]string {
	t.Helper()
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, column := range header {
			row[column] = record[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func writeSnapshot(t *testing.T, products []client.Product, input []*model.CourseRow) []map[string]string {
	t.Helper()
	var buf bytes.Buffer
	svc := NewProductCSVService(nil)
	require.NoError(t, svc.WriteProductsCSV(&buf, products, input))
	return readSnapshot(t, &buf)
}

func TestWriteProductsCSV(t *testing.T) {
	rows := writeSnapshot(t, []client.Product{sampleProduct()}, nil)
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, "MITx", row["Organization"])
	assert.Equal(t, "Supply Chain Design", row["Title"])
	assert.Equal(t, "SCD01", row["Number"])
	assert.Equal(t, "Executive Education(2U)", row["Course Enrollment Track"])
	assert.Equal(t, "Unpaid Executive Education", row["Course Run Enrollment Track"])
	assert.Equal(t, "https://cdn.example.com/card.jpg", row["Image"], "url fields are base64 decoded")
	assert.Equal(t, "https://example.com/redirect", row["Redirect Url"])
	assert.Equal(t, "https://example.com/organic", row["Organic Url"])
	assert.Equal(t, "<p>Intro.</p><p>For you.</p>", row["Long Description"])
	assert.Equal(t, "1500", row["Verified Price"])
	assert.Equal(t, "1800", row["Fixed Price Usd"])
	assert.Equal(t, "7", row["Minimum Effort"])
	assert.Equal(t, "10", row["Maximum Effort"])
	assert.Equal(t, "8", row["Length"])
	assert.Equal(t, "Spanish - Spain (Modern)", row["Content Language"])
	assert.Equal(t, "12345", row["External Identifier"])
	assert.Equal(t, "variant-1", row["Variant Id"])
	assert.Equal(t, "taxi-42", row["Taxi Form Id"])
	assert.Equal(t, "About the certificate", row["Certificate Header"])
	assert.Equal(t, "90%", row["Stat1"])
	assert.Equal(t, "of learners", row["Stat1 Text"])
	assert.Equal(t, "None", row["Restriction Type"])
	assert.Equal(t, "false", row["Is Future Variant"])

	// Active variants go live immediately.
	assert.Equal(t, time.Now().UTC().Format("01/02/2006"), row["Publish Date"])
}

func TestWriteProductsCSVSkipsProductsWithoutVariants(t *testing.T) {
	product := sampleProduct()
	product.Variant = nil

	rows := writeSnapshot(t, []client.Product{product}, nil)
	assert.Empty(t, rows)
}

func TestWriteProductsCSVFlattensVariantShapes(t *testing.T) {
	product := sampleProduct()
	product.Variants = []client.Variant{{ID: "variant-2", Status: "active"}}
	product.FutureVariants = []client.Variant{{ID: "variant-3", StartDate: "2027-01-01"}}
	product.CustomPresentations = []client.Variant{{ID: "variant-4", WebsiteVisibility: "private"}}

	rows := writeSnapshot(t, []client.Product{product}, nil)
	require.Len(t, rows, 4)

	byVariant := make(map[string]map[string]string)
	for _, row := range rows {
		byVariant[row["Variant Id"]] = row
	}

	assert.Equal(t, "true", byVariant["variant-3"]["Is Future Variant"])
	assert.Equal(t, "2027-01-01", byVariant["variant-3"]["Publish Date"],
		"future variants publish when the presentation starts")

	assert.Equal(t, coursemodel.RestrictionB2BEnterprise, byVariant["variant-4"]["Restriction Type"])
	assert.Equal(t, "false", byVariant["variant-4"]["Is Future Variant"],
		"restricted variants never report as future")

	assert.Equal(t, "None", byVariant["variant-2"]["Restriction Type"])
}

func TestWriteProductsCSVInputOverridesScheduling(t *testing.T) {
	input := []*model.CourseRow{{
		Title:        "Supply Chain Design",
		StartDate:    "04/01/2025",
		EndDate:      "06/01/2025",
		RegCloseDate: "03/20/2025",
	}}

	rows := writeSnapshot(t, []client.Product{sampleProduct()}, input)
	require.Len(t, rows, 1)

	assert.Equal(t, "04/01/2025", rows[0]["Start Date"])
	assert.Equal(t, "06/01/2025", rows[0]["End Date"])
	assert.Equal(t, "03/20/2025", rows[0]["Reg Close Date"])
	// Empty overlay columns keep the API value.
	assert.Equal(t, "00:00:00", rows[0]["Start Time"])
}

func TestWriteProductsCSVSprintPostSubmitURL(t *testing.T) {
	product := sampleProduct()
	product.ProductType = "Sprint"
	product.ProspectusURL = ""

	rows := writeSnapshot(t, []client.Product{product}, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://example.com/organic", rows[0]["Post Submit Url"],
		"sprints fall back to the marketing page url")
}

func TestWriteProductsCSVParsesBackThroughLoader(t *testing.T) {
	var buf bytes.Buffer
	svc := NewProductCSVService(nil)
	require.NoError(t, svc.WriteProductsCSV(&buf, []client.Product{sampleProduct()}, nil))

	rows, err := ParseCourseRows(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Supply Chain Design", rows[0].Title)
	assert.Equal(t, "variant-1", rows[0].VariantID)
	assert.Equal(t, "None", rows[0].RestrictionType)
}

func TestDecodeURL(t *testing.T) {
	assert.Equal(t, "https://example.com", decodeURL(b64("https://example.com")))
	assert.Equal(t, "", decodeURL(""))
	assert.Equal(t, "", decodeURL("%%not-base64%%"))

	// Trailing garbage after the padding is dropped before decoding.
	assert.Equal(t, "ab", decodeURL("YWI=extra"))
}

func TestParseEffort(t *testing.T) {
	min, max := parseEffort("7–10 hours per week")
	assert.Equal(t, "7", min)
	assert.Equal(t, "10", max)

	min, max = parseEffort("10 hours per week")
	assert.Equal(t, "10", min)
	assert.Equal(t, "10", max)

	min, max = parseEffort("flexible")
	assert.Empty(t, min)
	assert.Empty(t, max)
}

func TestDisplayLanguage(t *testing.T) {
	assert.Equal(t, "Spanish - Spain (Modern)", displayLanguage("Español"))
	assert.Equal(t, "English - United States", displayLanguage("english"))
	assert.Equal(t, "English - United States", displayLanguage("Valyrian"))
}
