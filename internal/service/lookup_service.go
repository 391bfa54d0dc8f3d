package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

const (
	departmentLookupKey = "lookup:departments"
	courseLookupKey     = "lookup:courses"
)

type lookupSource interface {
	Lookup(ctx context.Context) ([]models.LookupItem, error)
}

type lookupCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// lookupInvalidator is implemented by LookupService; writers call it after
// changing departments or courses.
type lookupInvalidator interface {
	Invalidate(ctx context.Context)
}

// LookupService serves cached dropdown data.
type LookupService struct {
	departments lookupSource
	courses     lookupSource
	cache       lookupCache
	ttl         time.Duration
	logger      *zap.Logger
}

// NewLookupService constructs the lookup service. cache may be nil.
func NewLookupService(departments, courses lookupSource, cache lookupCache, ttl time.Duration, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{departments: departments, courses: courses, cache: cache, ttl: ttl, logger: logger}
}

// Departments returns every department as value/text pairs.
func (s *LookupService) Departments(ctx context.Context) ([]models.LookupItem, error) {
	return s.load(ctx, departmentLookupKey, s.departments, "failed to load departments")
}

// Courses returns every course as value/text pairs.
func (s *LookupService) Courses(ctx context.Context) ([]models.LookupItem, error) {
	return s.load(ctx, courseLookupKey, s.courses, "failed to load courses")
}

// Invalidate drops cached lookups. Failures are logged only.
func (s *LookupService) Invalidate(ctx context.Context) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, departmentLookupKey, courseLookupKey); err != nil {
		s.logger.Warn("lookup invalidation failed", zap.Error(err))
	}
}

func (s *LookupService) load(ctx context.Context, key string, source lookupSource, failure string) ([]models.LookupItem, error) {
	if s.cache != nil {
		var cached []models.LookupItem
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}
	items, err := source.Lookup(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, failure)
	}
	if items == nil {
		items = []models.LookupItem{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, items, s.ttl)
	}
	return items, nil
}

type noLookups struct{}

func (noLookups) Invalidate(context.Context) {}

func lookupsOrNoop(l lookupInvalidator) lookupInvalidator {
	if l == nil {
		return noLookups{}
	}
	return l
}
