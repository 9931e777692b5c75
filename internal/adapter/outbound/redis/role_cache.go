package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/outbound"
)

const roleCacheKeyPrefix = "identity:roles:"

// roleCache implements outbound.RoleCachePort.
type roleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache creates a new identity role cache adapter.
func NewRoleCache(client *redis.Client, ttl time.Duration) outbound.RoleCachePort {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &roleCache{client: client, ttl: ttl}
}

func roleKey(userID int64) string {
	return fmt.Sprintf("%s%d", roleCacheKeyPrefix, userID)
}

func (c *roleCache) GetRoles(ctx context.Context, userID int64) ([]model.UserRole, error) {
	data, err := c.client.Get(ctx, roleKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, outbound.ErrCacheMiss
		}
		return nil, err
	}

	var roles []model.UserRole
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("decode cached roles: %w", err)
	}
	return roles, nil
}

func (c *roleCache) SetRoles(ctx context.Context, userID int64, roles []model.UserRole) error {
	if roles == nil {
		roles = []model.UserRole{}
	}
	data, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, roleKey(userID), data, c.ttl).Err()
}
