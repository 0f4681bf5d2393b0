package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog-backend/internal/domains/course/model"
	"catalog-backend/pkg/database"
)

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a CourseRepository backed by PostgreSQL.
// Metadata is stored as JSONB, search runs on a tsvector over the title and
// descriptions.
func NewPostgresRepository(db *pgxpool.Pool) CourseRepository {
	return &postgresRepository{db: db}
}

const courseColumns = `uuid, partner, key, title, short_description, full_description,
	syllabus, subjects, organizations, type, product_source, draft,
	active_url_slug, url_slug_history, image_key, logo_override_key,
	additional_metadata, created_at, updated_at`

func (r *postgresRepository) scanCourse(row pgx.Row) (*model.Course, error) {
	var c model.Course
	var metadata []byte
	err := row.Scan(
		&c.UUID, &c.Partner, &c.Key, &c.Title, &c.ShortDescription, &c.FullDescription,
		&c.Syllabus, &c.Subjects, &c.Organizations, &c.Type, &c.ProductSource, &c.Draft,
		&c.ActiveURLSlug, &c.URLSlugHistory, &c.ImageKey, &c.LogoOverrideKey,
		&metadata, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &c.AdditionalMetadata); err != nil {
			return nil, fmt.Errorf("failed to decode course metadata: %w", err)
		}
	}
	return &c, nil
}

func (r *postgresRepository) GetCourseByKey(ctx context.Context, partner, key string, draft bool) (*model.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE partner = $1 AND key = $2 AND draft = $3`, courseColumns)
	return r.scanCourse(r.db.QueryRow(ctx, query, partner, key, draft))
}

func (r *postgresRepository) GetCourseByUUID(ctx context.Context, id uuid.UUID, draft bool) (*model.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE uuid = $1 AND draft = $2`, courseColumns)
	return r.scanCourse(r.db.QueryRow(ctx, query, id, draft))
}

func (r *postgresRepository) SaveCourse(ctx context.Context, course *model.Course) error {
	return r.saveCourse(ctx, r.db, course)
}

func (r *postgresRepository) saveCourse(ctx context.Context, db execer, course *model.Course) error {
	metadata, err := json.Marshal(course.AdditionalMetadata)
	if err != nil {
		return fmt.Errorf("failed to encode course metadata: %w", err)
	}

	query := `
		INSERT INTO courses (uuid, partner, key, title, short_description, full_description,
			syllabus, subjects, organizations, type, product_source, draft,
			active_url_slug, url_slug_history, image_key, logo_override_key,
			additional_metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		ON CONFLICT (uuid, draft) DO UPDATE SET
			title = EXCLUDED.title,
			short_description = EXCLUDED.short_description,
			full_description = EXCLUDED.full_description,
			syllabus = EXCLUDED.syllabus,
			subjects = EXCLUDED.subjects,
			organizations = EXCLUDED.organizations,
			type = EXCLUDED.type,
			product_source = EXCLUDED.product_source,
			active_url_slug = EXCLUDED.active_url_slug,
			url_slug_history = EXCLUDED.url_slug_history,
			image_key = EXCLUDED.image_key,
			logo_override_key = EXCLUDED.logo_override_key,
			additional_metadata = EXCLUDED.additional_metadata,
			updated_at = NOW()`

	_, err = db.Exec(ctx, query,
		course.UUID, course.Partner, course.Key, course.Title,
		course.ShortDescription, course.FullDescription, course.Syllabus,
		course.Subjects, course.Organizations, course.Type, course.ProductSource,
		course.Draft, course.ActiveURLSlug, course.URLSlugHistory,
		course.ImageKey, course.LogoOverrideKey, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to save course: %w", err)
	}
	return nil
}

func (r *postgresRepository) SlugInUse(ctx context.Context, partner, slug string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM courses
			WHERE partner = $1 AND (active_url_slug = $2 OR $2 = ANY(url_slug_history))
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, partner, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) ListCourses(ctx context.Context, filter ListFilter) ([]*model.Course, int, error) {
	conditions := []string{"draft = FALSE"}
	args := []interface{}{}
	argIdx := 1

	addCondition := func(column, value string) {
		if value == "" {
			return
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}
	addCondition("partner", filter.Partner)
	addCondition("type", filter.Type)
	addCondition("product_source", filter.Source)

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM courses WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	sortBy := "key"
	switch filter.SortBy {
	case "title", "created_at", "updated_at", "key":
		sortBy = filter.SortBy
	}
	sortDir := "ASC"
	if strings.EqualFold(filter.SortDir, "desc") {
		sortDir = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		courseColumns, where, sortBy, sortDir, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		c, err := r.scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, c)
	}
	return courses, total, rows.Err()
}

func (r *postgresRepository) SearchCourses(ctx context.Context, partner, query string, limit int) ([]*model.Course, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM courses
		WHERE partner = $1 AND draft = FALSE
		  AND to_tsvector('english', title || ' ' || short_description || ' ' || full_description)
		      @@ plainto_tsquery('english', $2)
		ORDER BY ts_rank(
			to_tsvector('english', title || ' ' || short_description || ' ' || full_description),
			plainto_tsquery('english', $2)) DESC
		LIMIT $3`, courseColumns)

	rows, err := r.db.Query(ctx, sql, partner, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		c, err := r.scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *postgresRepository) ListPublishedProducts(ctx context.Context, source, courseType string) ([]*model.Course, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM courses
		WHERE draft = FALSE AND product_source = $1 AND type = $2
		  AND additional_metadata->>'product_status' = 'published'
		ORDER BY key`, courseColumns)

	rows, err := r.db.Query(ctx, query, source, courseType)
	if err != nil {
		return nil, fmt.Errorf("failed to list published products: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		c, err := r.scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

const runColumns = `uuid, course_uuid, key, draft, status, start_date, end_date,
	enrollment_end, go_live_date, pacing, language, transcript_languages, staff,
	min_effort, max_effort, weeks_to_complete, variant_id, restriction_type,
	is_future_variant, fixed_price_usd, created_at, updated_at`

func (r *postgresRepository) scanRun(row pgx.Row) (*model.CourseRun, error) {
	var run model.CourseRun
	err := row.Scan(
		&run.UUID, &run.CourseUUID, &run.Key, &run.Draft, &run.Status,
		&run.Start, &run.End, &run.EnrollmentEnd, &run.GoLiveDate,
		&run.Pacing, &run.Language, &run.TranscriptLanguages, &run.Staff,
		&run.MinEffort, &run.MaxEffort, &run.WeeksToComplete,
		&run.VariantID, &run.RestrictionType, &run.IsFutureVariant,
		&run.FixedPriceUSD, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCourseRunNotFound
		}
		return nil, fmt.Errorf("failed to scan course run: %w", err)
	}
	return &run, nil
}

func (r *postgresRepository) GetRunByKey(ctx context.Context, key string, draft bool) (*model.CourseRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_runs WHERE key = $1 AND draft = $2`, runColumns)
	return r.scanRun(r.db.QueryRow(ctx, query, key, draft))
}

func (r *postgresRepository) ListRunsForCourse(ctx context.Context, courseUUID uuid.UUID, draft bool) ([]*model.CourseRun, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_runs WHERE course_uuid = $1 AND draft = $2 ORDER BY created_at`, runColumns)

	rows, err := r.db.Query(ctx, query, courseUUID, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to list course runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.CourseRun
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *postgresRepository) ListRunValues(ctx context.Context, courseKey string) (map[string]bool, error) {
	query := `SELECT DISTINCT key FROM course_runs WHERE key LIKE $1`

	rows, err := r.db.Query(ctx, query, "course-v1:"+courseKey+"+%")
	if err != nil {
		return nil, fmt.Errorf("failed to list run values: %w", err)
	}
	defer rows.Close()

	prefix := "course-v1:" + courseKey + "+"
	values := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan run key: %w", err)
		}
		values[strings.TrimPrefix(key, prefix)] = true
	}
	return values, rows.Err()
}

func (r *postgresRepository) SaveRun(ctx context.Context, run *model.CourseRun) error {
	return r.saveRun(ctx, r.db, run)
}

func (r *postgresRepository) saveRun(ctx context.Context, db execer, run *model.CourseRun) error {
	query := `
		INSERT INTO course_runs (uuid, course_uuid, key, draft, status, start_date, end_date,
			enrollment_end, go_live_date, pacing, language, transcript_languages, staff,
			min_effort, max_effort, weeks_to_complete, variant_id, restriction_type,
			is_future_variant, fixed_price_usd, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
		ON CONFLICT (uuid, draft) DO UPDATE SET
			status = EXCLUDED.status,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			enrollment_end = EXCLUDED.enrollment_end,
			go_live_date = EXCLUDED.go_live_date,
			pacing = EXCLUDED.pacing,
			language = EXCLUDED.language,
			transcript_languages = EXCLUDED.transcript_languages,
			staff = EXCLUDED.staff,
			min_effort = EXCLUDED.min_effort,
			max_effort = EXCLUDED.max_effort,
			weeks_to_complete = EXCLUDED.weeks_to_complete,
			variant_id = EXCLUDED.variant_id,
			restriction_type = EXCLUDED.restriction_type,
			is_future_variant = EXCLUDED.is_future_variant,
			fixed_price_usd = EXCLUDED.fixed_price_usd,
			updated_at = NOW()`

	_, err := db.Exec(ctx, query,
		run.UUID, run.CourseUUID, run.Key, run.Draft, run.Status,
		run.Start, run.End, run.EnrollmentEnd, run.GoLiveDate,
		run.Pacing, run.Language, run.TranscriptLanguages, run.Staff,
		run.MinEffort, run.MaxEffort, run.WeeksToComplete,
		run.VariantID, run.RestrictionType, run.IsFutureVariant, run.FixedPriceUSD,
	)
	if err != nil {
		return fmt.Errorf("failed to save course run: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetSeatForRun(ctx context.Context, runUUID uuid.UUID, draft bool) (*model.Seat, error) {
	query := `
		SELECT uuid, course_run_uuid, type, price, currency, restriction_type, draft, created_at, updated_at
		FROM seats WHERE course_run_uuid = $1 AND draft = $2`

	var s model.Seat
	err := r.db.QueryRow(ctx, query, runUUID, draft).Scan(
		&s.UUID, &s.CourseRunUUID, &s.Type, &s.Price, &s.Currency,
		&s.RestrictionType, &s.Draft, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSeatNotFound
		}
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}
	return &s, nil
}

func (r *postgresRepository) SaveSeat(ctx context.Context, seat *model.Seat) error {
	return r.saveSeat(ctx, r.db, seat)
}

func (r *postgresRepository) saveSeat(ctx context.Context, db execer, seat *model.Seat) error {
	query := `
		INSERT INTO seats (uuid, course_run_uuid, type, price, currency, restriction_type, draft, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (uuid, draft) DO UPDATE SET
			type = EXCLUDED.type,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			restriction_type = EXCLUDED.restriction_type,
			updated_at = NOW()`

	_, err := db.Exec(ctx, query,
		seat.UUID, seat.CourseRunUUID, seat.Type, seat.Price, seat.Currency,
		seat.RestrictionType, seat.Draft,
	)
	if err != nil {
		return fmt.Errorf("failed to save seat: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetEntitlement(ctx context.Context, courseUUID uuid.UUID, draft bool) (*model.CourseEntitlement, error) {
	query := `
		SELECT uuid, course_uuid, mode, price, currency, draft, created_at, updated_at
		FROM course_entitlements WHERE course_uuid = $1 AND draft = $2`

	var e model.CourseEntitlement
	err := r.db.QueryRow(ctx, query, courseUUID, draft).Scan(
		&e.UUID, &e.CourseUUID, &e.Mode, &e.Price, &e.Currency,
		&e.Draft, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEntitlementNotFound
		}
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	return &e, nil
}

func (r *postgresRepository) SaveEntitlement(ctx context.Context, entitlement *model.CourseEntitlement) error {
	return r.saveEntitlement(ctx, r.db, entitlement)
}

func (r *postgresRepository) saveEntitlement(ctx context.Context, db execer, entitlement *model.CourseEntitlement) error {
	query := `
		INSERT INTO course_entitlements (uuid, course_uuid, mode, price, currency, draft, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (uuid, draft) DO UPDATE SET
			mode = EXCLUDED.mode,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			updated_at = NOW()`

	_, err := db.Exec(ctx, query,
		entitlement.UUID, entitlement.CourseUUID, entitlement.Mode,
		entitlement.Price, entitlement.Currency, entitlement.Draft,
	)
	if err != nil {
		return fmt.Errorf("failed to save entitlement: %w", err)
	}
	return nil
}

func (r *postgresRepository) SaveOfficialSnapshot(ctx context.Context, course *model.Course, run *model.CourseRun, seat *model.Seat, entitlement *model.CourseEntitlement) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if err := r.saveCourse(ctx, tx, course); err != nil {
			return err
		}
		if err := r.saveRun(ctx, tx, run); err != nil {
			return err
		}
		if seat != nil {
			if err := r.saveSeat(ctx, tx, seat); err != nil {
				return err
			}
		}
		if entitlement != nil {
			if err := r.saveEntitlement(ctx, tx, entitlement); err != nil {
				return err
			}
		}
		return nil
	})
}
