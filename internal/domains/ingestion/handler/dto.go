package handler

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// IngestCSVRequest is bound from the multipart form of the ingestion
// trigger. The CSV itself travels as the "csv" file part.
type IngestCSVRequest struct {
	Partner       string `form:"partner"`
	ProductType   string `form:"product_type"`
	ProductSource string `form:"product_source"`
}

func (r IngestCSVRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Partner, validation.Required),
		validation.Field(&r.ProductSource, validation.Required),
		validation.Field(&r.ProductType, validation.In(
			"executive-education-2u", "bootcamp-2u", "verified-audit", "professional",
		)),
	)
}
