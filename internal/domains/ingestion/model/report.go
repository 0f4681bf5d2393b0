package model

// ProductRecord is one entry in the created/updated product lists of the
// ingestion report.
type ProductRecord struct {
	UUID                        string  `json:"uuid"`
	ExternalCourseMarketingType *string `json:"external_course_marketing_type"`
	URLSlug                     string  `json:"url_slug"`
	Rerun                       *bool   `json:"rerun"`
	CourseRunVariantID          *string `json:"course_run_variant_id"`
	RestrictionType             *string `json:"restriction_type"`
	IsFutureVariant             bool    `json:"is_future_variant"`
}

// IngestionStats is the end-of-batch summary emailed to staff and returned
// by the trigger endpoint.
type IngestionStats struct {
	TotalProductsCount    int              `json:"total_products_count"`
	SuccessCount          int              `json:"success_count"`
	FailureCount          int              `json:"failure_count"`
	CreatedProductsCount  int              `json:"created_products_count"`
	CreatedProducts       []ProductRecord  `json:"created_products"`
	UpdatedProductsCount  int              `json:"updated_products_count"`
	UpdatedProducts       []ProductRecord  `json:"updated_products"`
	ArchivedProductsCount int              `json:"archived_products_count"`
	ArchivedProducts      []string         `json:"archived_products"`
	Errors                []IngestionError `json:"errors"`
}

// NewIngestionStats returns a zeroed summary with non-nil slices so the JSON
// report always carries arrays, never null.
func NewIngestionStats() *IngestionStats {
	return &IngestionStats{
		CreatedProducts:  []ProductRecord{},
		UpdatedProducts:  []ProductRecord{},
		ArchivedProducts: []string{},
		Errors:           []IngestionError{},
	}
}

// RecordCreated registers a product that entered the catalog this batch.
func (s *IngestionStats) RecordCreated(record ProductRecord) {
	s.CreatedProducts = append(s.CreatedProducts, record)
	s.CreatedProductsCount++
	s.SuccessCount++
}

// RecordUpdated registers a product whose existing run was refreshed.
func (s *IngestionStats) RecordUpdated(record ProductRecord) {
	s.UpdatedProducts = append(s.UpdatedProducts, record)
	s.UpdatedProductsCount++
	s.SuccessCount++
}

// RecordArchived registers products swept out of the catalog, by external
// identifier.
func (s *IngestionStats) RecordArchived(externalIdentifiers []string) {
	s.ArchivedProducts = append(s.ArchivedProducts, externalIdentifiers...)
	s.ArchivedProductsCount += len(externalIdentifiers)
}

// RecordFailure registers a row that could not be ingested.
func (s *IngestionStats) RecordFailure(err IngestionError) {
	s.Errors = append(s.Errors, err)
	s.FailureCount++
}

// RecordError registers a non-fatal error on an otherwise ingested row.
func (s *IngestionStats) RecordError(err IngestionError) {
	s.Errors = append(s.Errors, err)
}
