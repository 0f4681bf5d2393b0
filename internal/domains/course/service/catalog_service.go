package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"catalog-backend/internal/domains/course/model"
	"catalog-backend/internal/domains/course/repository"
	"catalog-backend/pkg/cache"
)

const (
	courseCacheTTL   = 10 * time.Minute
	catalogCacheTTL  = 5 * time.Minute
	cacheKeyPrefix   = "catalog:"
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// CatalogService serves the read side of the catalog. Official rows only;
// drafts never leave the ingestion pipeline.
type CatalogService interface {
	GetCourse(ctx context.Context, partner, key string) (*model.Course, error)
	GetCourseRuns(ctx context.Context, partner, key string) ([]*model.CourseRun, error)
	ListCourses(ctx context.Context, filter repository.ListFilter) ([]*model.Course, int, error)
	SearchCourses(ctx context.Context, partner, query string, limit int) ([]*model.Course, error)
	// InvalidateCache drops every cached catalog entry. Ingestion calls this
	// after a batch commits.
	InvalidateCache(ctx context.Context) error
}

type catalogService struct {
	courses repository.CourseRepository
	cache   cache.Cache
}

func NewCatalogService(courses repository.CourseRepository, c cache.Cache) CatalogService {
	return &catalogService{courses: courses, cache: c}
}

func (s *catalogService) GetCourse(ctx context.Context, partner, key string) (*model.Course, error) {
	cacheKey := fmt.Sprintf("%scourse:%s:%s", cacheKeyPrefix, partner, key)

	var cached model.Course
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("course cache read failed")
	} else if hit {
		return &cached, nil
	}

	course, err := s.courses.GetCourseByKey(ctx, partner, key, false)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, course, courseCacheTTL); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("course cache write failed")
	}
	return course, nil
}

func (s *catalogService) GetCourseRuns(ctx context.Context, partner, key string) ([]*model.CourseRun, error) {
	course, err := s.courses.GetCourseByKey(ctx, partner, key, false)
	if err != nil {
		return nil, err
	}
	return s.courses.ListRunsForCourse(ctx, course.UUID, false)
}

func (s *catalogService) ListCourses(ctx context.Context, filter repository.ListFilter) ([]*model.Course, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	type listResult struct {
		Courses []*model.Course `json:"courses"`
		Total   int             `json:"total"`
	}
	cacheKey := fmt.Sprintf("%slist:%s:%s:%s:%d:%d:%s:%s", cacheKeyPrefix,
		filter.Partner, filter.Type, filter.Source, filter.Page, filter.Limit,
		filter.SortBy, filter.SortDir)

	var cached listResult
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("catalog cache read failed")
	} else if hit {
		return cached.Courses, cached.Total, nil
	}

	courses, total, err := s.courses.ListCourses(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if err := s.cache.Set(ctx, cacheKey, listResult{Courses: courses, Total: total}, catalogCacheTTL); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("catalog cache write failed")
	}
	return courses, total, nil
}

func (s *catalogService) SearchCourses(ctx context.Context, partner, query string, limit int) ([]*model.Course, error) {
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return s.courses.SearchCourses(ctx, partner, query, limit)
}

func (s *catalogService) InvalidateCache(ctx context.Context) error {
	return s.cache.DeletePattern(ctx, cacheKeyPrefix+"*")
}
