package repository

import (
	"context"

	"catalog-backend/internal/domains/organization/model"
)

// OrganizationRepository resolves the reference data an ingestion row names:
// the authoring organization, the enrollment tracks and the product source.
type OrganizationRepository interface {
	GetOrganizationByKey(ctx context.Context, partner, key string) (*model.Organization, error)
	GetCourseTypeByName(ctx context.Context, name string) (*model.CourseType, error)
	GetCourseRunTypeByName(ctx context.Context, name string) (*model.CourseRunType, error)
	GetSourceBySlug(ctx context.Context, slug string) (*model.Source, error)
}
