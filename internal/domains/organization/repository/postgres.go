package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog-backend/internal/domains/organization/model"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates an OrganizationRepository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) OrganizationRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetOrganizationByKey(ctx context.Context, partner, key string) (*model.Organization, error) {
	query := `
		SELECT uuid, partner, key, name, logo_key, created_at, updated_at
		FROM organizations
		WHERE partner = $1 AND key = $2`

	var org model.Organization
	err := r.db.QueryRow(ctx, query, partner, key).Scan(
		&org.UUID, &org.Partner, &org.Key, &org.Name, &org.LogoKey,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

func (r *postgresRepository) GetCourseTypeByName(ctx context.Context, name string) (*model.CourseType, error) {
	query := `
		SELECT uuid, name, slug, entitlement_mode, created_at, updated_at
		FROM course_types
		WHERE LOWER(name) = LOWER($1)`

	var t model.CourseType
	err := r.db.QueryRow(ctx, query, name).Scan(
		&t.UUID, &t.Name, &t.Slug, &t.EntitlementMode, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCourseTypeNotFound
		}
		return nil, fmt.Errorf("failed to get course type: %w", err)
	}
	return &t, nil
}

func (r *postgresRepository) GetCourseRunTypeByName(ctx context.Context, name string) (*model.CourseRunType, error) {
	query := `
		SELECT uuid, name, slug, seat_type, created_at, updated_at
		FROM course_run_types
		WHERE LOWER(name) = LOWER($1)`

	var t model.CourseRunType
	err := r.db.QueryRow(ctx, query, name).Scan(
		&t.UUID, &t.Name, &t.Slug, &t.SeatType, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCourseRunTypeNotFound
		}
		return nil, fmt.Errorf("failed to get course run type: %w", err)
	}
	return &t, nil
}

func (r *postgresRepository) GetSourceBySlug(ctx context.Context, slug string) (*model.Source, error) {
	query := `
		SELECT uuid, name, slug, created_at, updated_at
		FROM sources
		WHERE slug = $1`

	var s model.Source
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&s.UUID, &s.Name, &s.Slug, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSourceNotFound
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return &s, nil
}
