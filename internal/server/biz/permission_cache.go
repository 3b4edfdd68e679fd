package biz

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/isolation"
	"github.com/gmcdash/gmcdash/internal/log"
	"github.com/gmcdash/gmcdash/internal/pkg/xcache"
)

// PermissionCache memoizes access decisions keyed by
// (project id, caller id, permission). It is the only state in the isolation
// layer that is shared across requests, so the backend must be safe for
// concurrent use; the xcache stores are.
//
// Entries are tagged with their project id so a membership change upstream can
// invalidate one project without touching the others.
type PermissionCache struct {
	cache xcache.Cache[bool]
	ttl   time.Duration
}

type PermissionCacheParams struct {
	fx.In

	CacheConfig     xcache.Config
	IsolationConfig isolation.Config
}

func NewPermissionCache(params PermissionCacheParams) *PermissionCache {
	cfg := params.IsolationConfig.WithDefaults()

	return &PermissionCache{
		cache: xcache.NewFromConfig[bool](params.CacheConfig),
		ttl:   cfg.CacheTTL,
	}
}

// NewMemoryPermissionCache builds a cache on the in-memory backend.
// Used by local development wiring and tests.
func NewMemoryPermissionCache(ttl time.Duration) *PermissionCache {
	return &PermissionCache{
		cache: xcache.NewMemoryWithOptions[bool](ttl, 2*ttl),
		ttl:   ttl,
	}
}

func cacheKey(projectID, callerID, permission string) string {
	if permission == "" {
		permission = "-"
	}

	return fmt.Sprintf("perm:%s:%s:%s", projectID, callerID, permission)
}

func projectTag(projectID string) string {
	return fmt.Sprintf("project:%s", projectID)
}

// Get returns the cached decision and whether one was present and fresh.
func (c *PermissionCache) Get(ctx context.Context, projectID, callerID, permission string) (bool, bool) {
	allowed, err := c.cache.Get(ctx, cacheKey(projectID, callerID, permission))
	if err != nil {
		return false, false
	}

	return allowed, true
}

// Put stores a decision with the configured TTL, tagged by project.
func (c *PermissionCache) Put(ctx context.Context, projectID, callerID, permission string, allowed bool) {
	err := c.cache.Set(ctx, cacheKey(projectID, callerID, permission), allowed,
		xcache.WithExpiration(c.ttl),
		xcache.WithTags([]string{projectTag(projectID)}),
	)
	if err != nil {
		log.Warn(ctx, "permission cache write failed", log.Cause(err))
	}
}

// InvalidateProject drops every cached decision for the project. Exposed as a
// hook for upstream membership changes.
func (c *PermissionCache) InvalidateProject(ctx context.Context, projectID string) error {
	return c.cache.Invalidate(ctx, xcache.WithInvalidateTags([]string{projectTag(projectID)}))
}
