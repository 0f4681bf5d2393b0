package repository

import (
	"context"

	"github.com/google/uuid"

	"catalog-backend/internal/domains/course/model"
)

// ListFilter narrows catalog listings.
type ListFilter struct {
	Partner string
	Type    string
	Source  string
	Page    int
	Limit   int
	SortBy  string
	SortDir string
}

// CourseRepository stores the draft/official pairs for courses, runs and
// offers. Saves are upserts keyed on (uuid, draft); lookups name the tier
// they read so callers never mix drafts into official listings by accident.
type CourseRepository interface {
	GetCourseByKey(ctx context.Context, partner, key string, draft bool) (*model.Course, error)
	GetCourseByUUID(ctx context.Context, id uuid.UUID, draft bool) (*model.Course, error)
	SaveCourse(ctx context.Context, course *model.Course) error
	SlugInUse(ctx context.Context, partner, slug string) (bool, error)
	ListCourses(ctx context.Context, filter ListFilter) ([]*model.Course, int, error)
	SearchCourses(ctx context.Context, partner, query string, limit int) ([]*model.Course, error)
	// ListPublishedProducts returns official courses of the given source and
	// type whose external product status is still published.
	ListPublishedProducts(ctx context.Context, source, courseType string) ([]*model.Course, error)

	GetRunByKey(ctx context.Context, key string, draft bool) (*model.CourseRun, error)
	ListRunsForCourse(ctx context.Context, courseUUID uuid.UUID, draft bool) ([]*model.CourseRun, error)
	// ListRunValues returns the run portion of every run key under the course
	// key, across both tiers. Used to pick the next free rerun suffix.
	ListRunValues(ctx context.Context, courseKey string) (map[string]bool, error)
	SaveRun(ctx context.Context, run *model.CourseRun) error

	GetSeatForRun(ctx context.Context, runUUID uuid.UUID, draft bool) (*model.Seat, error)
	SaveSeat(ctx context.Context, seat *model.Seat) error
	GetEntitlement(ctx context.Context, courseUUID uuid.UUID, draft bool) (*model.CourseEntitlement, error)
	SaveEntitlement(ctx context.Context, entitlement *model.CourseEntitlement) error

	// SaveOfficialSnapshot writes a course together with its run, seat and
	// entitlement atomically. Seat and entitlement may be nil. Used when the
	// draft tier propagates to official so readers never see a half-published
	// course.
	SaveOfficialSnapshot(ctx context.Context, course *model.Course, run *model.CourseRun, seat *model.Seat, entitlement *model.CourseEntitlement) error
}
