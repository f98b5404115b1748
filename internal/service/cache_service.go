package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

const (
	profileCacheKey     = "profile:school"
	dashboardKeyPrefix  = "dashboard"
	defaultProfileTTL   = 10 * time.Minute
	defaultDashboardTTL = 5 * time.Minute
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func dashboardCacheKey(session string) string {
	return fmt.Sprintf("%s:%s", dashboardKeyPrefix, session)
}

func dashboardCachePattern(session string) string {
	return fmt.Sprintf("%s:%s*", dashboardKeyPrefix, session)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is a thin policy layer over the Redis store: it owns the key
// naming and TTLs and degrades to a no-op when caching is disabled.
type CacheService struct {
	store        cacheStore
	enabled      bool
	profileTTL   time.Duration
	dashboardTTL time.Duration
	logger       *zap.Logger
}

// CacheServiceParams groups constructor dependencies.
type CacheServiceParams struct {
	Store        cacheStore
	Enabled      bool
	ProfileTTL   time.Duration
	DashboardTTL time.Duration
	Logger       *zap.Logger
}

// NewCacheService constructs the cache policy layer.
func NewCacheService(params CacheServiceParams) *CacheService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.ProfileTTL <= 0 {
		params.ProfileTTL = defaultProfileTTL
	}
	if params.DashboardTTL <= 0 {
		params.DashboardTTL = defaultDashboardTTL
	}
	return &CacheService{
		store:        params.Store,
		enabled:      params.Enabled && params.Store != nil,
		profileTTL:   params.ProfileTTL,
		dashboardTTL: params.DashboardTTL,
		logger:       params.Logger,
	}
}

// GetProfile loads the cached school profile into dest.
func (s *CacheService) GetProfile(ctx context.Context, dest interface{}) error {
	if !s.enabled {
		return appErrors.ErrCacheMiss
	}
	return s.store.Get(ctx, profileCacheKey, dest)
}

// SetProfile stores the school profile.
func (s *CacheService) SetProfile(ctx context.Context, value interface{}) error {
	if !s.enabled {
		return nil
	}
	return s.store.Set(ctx, profileCacheKey, value, s.profileTTL)
}

// InvalidateProfile drops the cached profile.
func (s *CacheService) InvalidateProfile(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	return s.store.DeleteByPattern(ctx, profileCacheKey)
}

// GetDashboard loads cached dashboard stats for the session into dest.
func (s *CacheService) GetDashboard(ctx context.Context, session string, dest interface{}) error {
	if !s.enabled {
		return appErrors.ErrCacheMiss
	}
	return s.store.Get(ctx, dashboardCacheKey(session), dest)
}

// SetDashboard stores dashboard stats for the session.
func (s *CacheService) SetDashboard(ctx context.Context, session string, value interface{}) error {
	if !s.enabled {
		return nil
	}
	return s.store.Set(ctx, dashboardCacheKey(session), value, s.dashboardTTL)
}

// Invalidate drops every cached entry matching the pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.enabled {
		return nil
	}
	return s.store.DeleteByPattern(ctx, pattern)
}
