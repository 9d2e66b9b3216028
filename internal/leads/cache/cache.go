// Package cache implements the cache-aside read path for leads. Entries are
// advisory snapshots; the repository stays authoritative and absence in the
// cache never means the lead does not exist.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	pkgredis "leadflow_backend/platform/redis"

	"github.com/google/uuid"
)

const keyPrefix = "lead:"

// LeadCache is a read-through cache over the lead repository.
type LeadCache struct {
	client *pkgredis.Client
	repo   repository.LeadsRepository
	ttl    time.Duration
	log    *logger.Logger
}

// New creates a lead cache with the configured entry TTL.
func New(client *pkgredis.Client, repo repository.LeadsRepository, ttl time.Duration, log *logger.Logger) *LeadCache {
	return &LeadCache{
		client: client,
		repo:   repo,
		ttl:    ttl,
		log:    log.WithComponent("lead-cache"),
	}
}

// Get returns the lead for id, serving a live cached entry when one exists and
// otherwise reading through to the repository and repopulating the cache.
// Redis failures degrade to a cache miss; NotFound from the repository
// propagates unchanged and is never cached.
func (c *LeadCache) Get(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	key := buildKey(id)

	data, err := c.client.Get(ctx, key)
	if err == nil {
		var lead repository.Lead
		if err := json.Unmarshal([]byte(data), &lead); err == nil {
			c.log.Debug("cache hit", "lead_id", id)
			return lead, nil
		}
		c.log.Warn("cache entry corrupt, falling back to store", "key", key)
	} else if !pkgredis.IsNilError(err) {
		c.log.Warn("cache get failed, falling back to store", "key", key, "error", err)
	}

	lead, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Lead{}, err
	}

	c.set(ctx, key, lead)
	c.log.Debug("cache miss, repopulated from store", "lead_id", id)

	return lead, nil
}

// Invalidate unconditionally removes any cached entry for id. Removing an
// absent entry is a success.
func (c *LeadCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, buildKey(id)); err != nil {
		return apperr.Wrap(apperr.KindInternal, fmt.Sprintf("cache invalidate failed: %v", err), err).WithOp("cache.Invalidate")
	}
	return nil
}

func (c *LeadCache) set(ctx context.Context, key string, lead repository.Lead) {
	data, err := json.Marshal(lead)
	if err != nil {
		c.log.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func buildKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}
