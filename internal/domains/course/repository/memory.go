package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"catalog-backend/internal/domains/course/model"
)

// MemoryRepository is an in-memory CourseRepository for tests. It copies on
// read and write so callers observe the same value semantics a database
// round-trip gives them.
type MemoryRepository struct {
	mu           sync.RWMutex
	courses      map[string]*model.Course
	runs         map[string]*model.CourseRun
	seats        map[string]*model.Seat
	entitlements map[string]*model.CourseEntitlement
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		courses:      make(map[string]*model.Course),
		runs:         make(map[string]*model.CourseRun),
		seats:        make(map[string]*model.Seat),
		entitlements: make(map[string]*model.CourseEntitlement),
	}
}

func tierKey(id uuid.UUID, draft bool) string {
	if draft {
		return id.String() + "|draft"
	}
	return id.String() + "|official"
}

func cloneCourse(c *model.Course) *model.Course {
	out := *c
	out.Subjects = append([]string(nil), c.Subjects...)
	out.Organizations = append([]string(nil), c.Organizations...)
	out.URLSlugHistory = append([]string(nil), c.URLSlugHistory...)
	out.AdditionalMetadata = c.AdditionalMetadata.Clone()
	return &out
}

func cloneRun(r *model.CourseRun) *model.CourseRun {
	out := *r
	out.TranscriptLanguages = append([]string(nil), r.TranscriptLanguages...)
	out.Staff = append([]string(nil), r.Staff...)
	return &out
}

func (r *MemoryRepository) GetCourseByKey(_ context.Context, partner, key string, draft bool) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		if c.Partner == partner && c.Key == key && c.Draft == draft {
			return cloneCourse(c), nil
		}
	}
	return nil, model.ErrCourseNotFound
}

func (r *MemoryRepository) GetCourseByUUID(_ context.Context, id uuid.UUID, draft bool) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.courses[tierKey(id, draft)]; ok {
		return cloneCourse(c), nil
	}
	return nil, model.ErrCourseNotFound
}

func (r *MemoryRepository) SaveCourse(_ context.Context, course *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[tierKey(course.UUID, course.Draft)] = cloneCourse(course)
	return nil
}

func (r *MemoryRepository) SlugInUse(_ context.Context, partner, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		if c.Partner != partner {
			continue
		}
		if c.ActiveURLSlug == slug {
			return true, nil
		}
		for _, old := range c.URLSlugHistory {
			if old == slug {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *MemoryRepository) ListCourses(_ context.Context, filter ListFilter) ([]*model.Course, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*model.Course
	for _, c := range r.courses {
		if c.Draft {
			continue
		}
		if filter.Partner != "" && c.Partner != filter.Partner {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		if filter.Source != "" && c.ProductSource != filter.Source {
			continue
		}
		matched = append(matched, cloneCourse(c))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Key < matched[j].Key })

	total := len(matched)
	if filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		if offset >= len(matched) {
			return nil, total, nil
		}
		end := offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}
	return matched, total, nil
}

func (r *MemoryRepository) SearchCourses(_ context.Context, partner, query string, limit int) ([]*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var matched []*model.Course
	for _, c := range r.courses {
		if c.Draft || c.Partner != partner {
			continue
		}
		if strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.ShortDescription), q) ||
			strings.Contains(strings.ToLower(c.FullDescription), q) {
			matched = append(matched, cloneCourse(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Key < matched[j].Key })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryRepository) ListPublishedProducts(_ context.Context, source, courseType string) ([]*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*model.Course
	for _, c := range r.courses {
		if c.Draft || c.ProductSource != source || c.Type != courseType {
			continue
		}
		if c.AdditionalMetadata == nil || c.AdditionalMetadata.ProductStatus != model.ProductStatusPublished {
			continue
		}
		matched = append(matched, cloneCourse(c))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Key < matched[j].Key })
	return matched, nil
}

func (r *MemoryRepository) GetRunByKey(_ context.Context, key string, draft bool) (*model.CourseRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, run := range r.runs {
		if run.Key == key && run.Draft == draft {
			return cloneRun(run), nil
		}
	}
	return nil, model.ErrCourseRunNotFound
}

func (r *MemoryRepository) ListRunsForCourse(_ context.Context, courseUUID uuid.UUID, draft bool) ([]*model.CourseRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var runs []*model.CourseRun
	for _, run := range r.runs {
		if run.CourseUUID == courseUUID && run.Draft == draft {
			runs = append(runs, cloneRun(run))
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.Before(runs[j].CreatedAt) })
	return runs, nil
}

func (r *MemoryRepository) ListRunValues(_ context.Context, courseKey string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefix := "course-v1:" + courseKey + "+"
	values := make(map[string]bool)
	for _, run := range r.runs {
		if strings.HasPrefix(run.Key, prefix) {
			values[strings.TrimPrefix(run.Key, prefix)] = true
		}
	}
	return values, nil
}

func (r *MemoryRepository) SaveRun(_ context.Context, run *model.CourseRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[tierKey(run.UUID, run.Draft)] = cloneRun(run)
	return nil
}

func (r *MemoryRepository) GetSeatForRun(_ context.Context, runUUID uuid.UUID, draft bool) (*model.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.seats {
		if s.CourseRunUUID == runUUID && s.Draft == draft {
			out := *s
			return &out, nil
		}
	}
	return nil, model.ErrSeatNotFound
}

func (r *MemoryRepository) SaveSeat(_ context.Context, seat *model.Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := *seat
	r.seats[tierKey(seat.UUID, seat.Draft)] = &out
	return nil
}

func (r *MemoryRepository) GetEntitlement(_ context.Context, courseUUID uuid.UUID, draft bool) (*model.CourseEntitlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entitlements {
		if e.CourseUUID == courseUUID && e.Draft == draft {
			out := *e
			return &out, nil
		}
	}
	return nil, model.ErrEntitlementNotFound
}

func (r *MemoryRepository) SaveEntitlement(_ context.Context, entitlement *model.CourseEntitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := *entitlement
	r.entitlements[tierKey(entitlement.UUID, entitlement.Draft)] = &out
	return nil
}

func (r *MemoryRepository) SaveOfficialSnapshot(ctx context.Context, course *model.Course, run *model.CourseRun, seat *model.Seat, entitlement *model.CourseEntitlement) error {
	if err := r.SaveCourse(ctx, course); err != nil {
		return err
	}
	if err := r.SaveRun(ctx, run); err != nil {
		return err
	}
	if seat != nil {
		if err := r.SaveSeat(ctx, seat); err != nil {
			return err
		}
	}
	if entitlement != nil {
		if err := r.SaveEntitlement(ctx, entitlement); err != nil {
			return err
		}
	}
	return nil
}

// CountCourses reports how many course rows exist across both tiers and how
// many are official. Test helper.
func (r *MemoryRepository) CountCourses() (all, official int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		all++
		if !c.Draft {
			official++
		}
	}
	return all, official
}

// CountRuns reports run rows across both tiers and the official subset.
func (r *MemoryRepository) CountRuns() (all, official int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, run := range r.runs {
		all++
		if !run.Draft {
			official++
		}
	}
	return all, official
}
