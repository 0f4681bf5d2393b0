package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	coursemodel "catalog-backend/internal/domains/course/model"
	"catalog-backend/internal/domains/course/repository"
)

// Archiver sweeps previously ingested products that dropped out of the
// current batch. Scope is one (product source, course type) pair; products
// of other sources are never touched even when external identifiers collide.
type Archiver struct {
	courses repository.CourseRepository
}

func NewArchiver(courses repository.CourseRepository) *Archiver {
	return &Archiver{courses: courses}
}

// Archive flips the external product status to archived on every published
// product of the source/type whose external identifier is absent from
// ingestedIdentifiers. Both the draft and official rows are updated. Returns
// the archived external identifiers.
func (a *Archiver) Archive(ctx context.Context, source, courseType string, ingestedIdentifiers map[string]bool) ([]string, error) {
	published, err := a.courses.ListPublishedProducts(ctx, source, courseType)
	if err != nil {
		return nil, fmt.Errorf("failed to list published products: %w", err)
	}

	var archived []string
	for _, official := range published {
		identifier := official.AdditionalMetadata.ExternalIdentifier
		if identifier == "" || ingestedIdentifiers[identifier] {
			continue
		}

		if err := a.archiveCourse(ctx, official); err != nil {
			return archived, err
		}
		archived = append(archived, identifier)
	}

	log.Info().Msgf("Archived %d products in CSV Ingestion for source %s and product type %s.",
		len(archived), source, courseType)
	return archived, nil
}

func (a *Archiver) archiveCourse(ctx context.Context, official *coursemodel.Course) error {
	official.AdditionalMetadata.ProductStatus = coursemodel.ProductStatusArchived
	if err := a.courses.SaveCourse(ctx, official); err != nil {
		return fmt.Errorf("failed to archive official course %s: %w", official.Key, err)
	}

	draft, err := a.courses.GetCourseByUUID(ctx, official.UUID, true)
	if err != nil {
		// Officials created before drafts existed have nothing else to update.
		return nil
	}
	if draft.AdditionalMetadata != nil {
		draft.AdditionalMetadata.ProductStatus = coursemodel.ProductStatusArchived
		if err := a.courses.SaveCourse(ctx, draft); err != nil {
			return fmt.Errorf("failed to archive draft course %s: %w", draft.Key, err)
		}
	}
	return nil
}
