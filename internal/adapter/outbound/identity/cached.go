package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/outbound"
)

const roleCacheName = "identity_roles"

// CacheRecorder receives cache hit and miss notifications.
type CacheRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// CachedIdentity decorates an IdentityPort with a cache-aside role cache.
// Cache errors never fail a lookup.
type CachedIdentity struct {
	inner    outbound.IdentityPort
	cache    outbound.RoleCachePort
	recorder CacheRecorder
	logger   *zap.Logger
}

// NewCachedIdentity creates a new cached identity port. recorder may be nil.
func NewCachedIdentity(inner outbound.IdentityPort, cache outbound.RoleCachePort, recorder CacheRecorder, logger *zap.Logger) *CachedIdentity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedIdentity{
		inner:    inner,
		cache:    cache,
		recorder: recorder,
		logger:   logger.Named("identity-cache"),
	}
}

// Compile-time interface check
var _ outbound.IdentityPort = (*CachedIdentity)(nil)

func (c *CachedIdentity) LookupUserRoles(ctx context.Context, userID int64) ([]model.UserRole, error) {
	roles, err := c.cache.GetRoles(ctx, userID)
	if err == nil {
		if c.recorder != nil {
			c.recorder.RecordCacheHit(roleCacheName)
		}
		return roles, nil
	}
	if c.recorder != nil {
		c.recorder.RecordCacheMiss(roleCacheName)
	}
	if !errors.Is(err, outbound.ErrCacheMiss) {
		c.logger.Warn("role cache read failed", zap.Int64("user_id", userID), zap.Error(err))
	}

	roles, err = c.inner.LookupUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetRoles(ctx, userID, roles); err != nil {
		c.logger.Warn("role cache write failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return roles, nil
}

func (c *CachedIdentity) LookupUsersByEmail(ctx context.Context, emails []string) ([]*model.IdentityUser, error) {
	return c.inner.LookupUsersByEmail(ctx, emails)
}
