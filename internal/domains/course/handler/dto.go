package handler

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ListCoursesRequest is bound from query parameters on the catalog listing.
type ListCoursesRequest struct {
	Partner string `form:"partner"`
	Type    string `form:"type"`
	Source  string `form:"source"`
	Page    int    `form:"page,default=1"`
	Limit   int    `form:"limit,default=20"`
	SortBy  string `form:"sort_by"`
	SortDir string `form:"sort_dir"`
}

func (r ListCoursesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Partner, validation.Required),
		validation.Field(&r.Page, validation.Min(1)),
		validation.Field(&r.Limit, validation.Min(1), validation.Max(100)),
		validation.Field(&r.SortBy, validation.In("key", "title", "created_at", "updated_at")),
		validation.Field(&r.SortDir, validation.In("asc", "desc")),
	)
}

// SearchCoursesRequest is bound from query parameters on full-text search.
type SearchCoursesRequest struct {
	Partner string `form:"partner"`
	Query   string `form:"q"`
	Limit   int    `form:"limit,default=20"`
}

func (r SearchCoursesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Partner, validation.Required),
		validation.Field(&r.Query, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.Limit, validation.Min(1), validation.Max(100)),
	)
}
