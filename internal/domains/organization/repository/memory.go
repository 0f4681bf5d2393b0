package repository

import (
	"context"
	"strings"
	"sync"

	"catalog-backend/internal/domains/organization/model"
)

// MemoryRepository is an in-memory OrganizationRepository used by tests.
type MemoryRepository struct {
	mu            sync.RWMutex
	organizations map[string]*model.Organization // partner|key
	courseTypes   map[string]*model.CourseType   // lowercased name
	runTypes      map[string]*model.CourseRunType
	sources       map[string]*model.Source
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		organizations: make(map[string]*model.Organization),
		courseTypes:   make(map[string]*model.CourseType),
		runTypes:      make(map[string]*model.CourseRunType),
		sources:       make(map[string]*model.Source),
	}
}

func (r *MemoryRepository) AddOrganization(org *model.Organization) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.organizations[org.Partner+"|"+org.Key] = org
}

func (r *MemoryRepository) AddCourseType(t *model.CourseType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courseTypes[strings.ToLower(t.Name)] = t
}

func (r *MemoryRepository) AddCourseRunType(t *model.CourseRunType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runTypes[strings.ToLower(t.Name)] = t
}

func (r *MemoryRepository) AddSource(s *model.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Slug] = s
}

func (r *MemoryRepository) GetOrganizationByKey(_ context.Context, partner, key string) (*model.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if org, ok := r.organizations[partner+"|"+key]; ok {
		return org, nil
	}
	return nil, model.ErrOrganizationNotFound
}

func (r *MemoryRepository) GetCourseTypeByName(_ context.Context, name string) (*model.CourseType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.courseTypes[strings.ToLower(name)]; ok {
		return t, nil
	}
	return nil, model.ErrCourseTypeNotFound
}

func (r *MemoryRepository) GetCourseRunTypeByName(_ context.Context, name string) (*model.CourseRunType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.runTypes[strings.ToLower(name)]; ok {
		return t, nil
	}
	return nil, model.ErrCourseRunTypeNotFound
}

func (r *MemoryRepository) GetSourceBySlug(_ context.Context, slug string) (*model.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sources[slug]; ok {
		return s, nil
	}
	return nil, model.ErrSourceNotFound
}
