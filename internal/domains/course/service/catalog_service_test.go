package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-backend/internal/domains/course/model"
	"catalog-backend/internal/domains/course/repository"
)

// mapCache is an in-memory cache.Cache that serializes through JSON the way
// the Redis implementation does.
type mapCache struct {
	entries map[string][]byte
	gets    int
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.gets++
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *mapCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *mapCache) Ping(context.Context) error { return nil }

func seedCourse(t *testing.T, repo *repository.MemoryRepository, key, title string) *model.Course {
	t.Helper()
	course := &model.Course{
		UUID:    uuid.New(),
		Partner: "edx",
		Key:     key,
		Title:   title,
		Type:    "verified-audit",
	}
	require.NoError(t, repo.SaveCourse(context.Background(), course))
	return course
}

func TestGetCourseCachesOfficialRow(t *testing.T) {
	repo := repository.NewMemoryRepository()
	cache := newMapCache()
	svc := NewCatalogService(repo, cache)

	seeded := seedCourse(t, repo, "edx+csv_123", "CSV Course")

	course, err := svc.GetCourse(context.Background(), "edx", "edx+csv_123")
	require.NoError(t, err)
	assert.Equal(t, seeded.UUID, course.UUID)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from the cache.
	again, err := svc.GetCourse(context.Background(), "edx", "edx+csv_123")
	require.NoError(t, err)
	assert.Equal(t, seeded.UUID, again.UUID)
	assert.Equal(t, 1, cache.sets)
}

func TestGetCourseNeverServesDrafts(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewCatalogService(repo, newMapCache())

	draft := &model.Course{UUID: uuid.New(), Partner: "edx", Key: "edx+draft_1", Draft: true}
	require.NoError(t, repo.SaveCourse(context.Background(), draft))

	_, err := svc.GetCourse(context.Background(), "edx", "edx+draft_1")
	assert.ErrorIs(t, err, model.ErrCourseNotFound)
}

func TestListCoursesClampsPagination(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewCatalogService(repo, newMapCache())

	for i := 0; i < 25; i++ {
		seedCourse(t, repo, "edx+course_"+string(rune('a'+i)), "Course")
	}

	courses, total, err := svc.ListCourses(context.Background(), repository.ListFilter{Partner: "edx", Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, courses, 25, "oversized limit clamps to the max, not to zero")

	courses, total, err = svc.ListCourses(context.Background(), repository.ListFilter{Partner: "edx"})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, courses, 20, "default page size")
}

func TestInvalidateCacheDropsCatalogKeys(t *testing.T) {
	repo := repository.NewMemoryRepository()
	cache := newMapCache()
	svc := NewCatalogService(repo, cache)

	seedCourse(t, repo, "edx+csv_123", "CSV Course")
	_, err := svc.GetCourse(context.Background(), "edx", "edx+csv_123")
	require.NoError(t, err)
	require.NotEmpty(t, cache.entries)

	require.NoError(t, svc.InvalidateCache(context.Background()))
	assert.Empty(t, cache.entries)
}
