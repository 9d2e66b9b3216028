// Package leads provides the lead management bounded context: storage,
// cache-aside reads, HTTP handlers, and the enqueue side of AI enrichment.
package leads

import (
	"leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/cache"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	pkgredis "leadflow_backend/platform/redis"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.LeadsRepository
	cache   *cache.LeadCache
}

// NewModule creates and initializes the leads module with all its dependencies.
// The enqueuer is injected so the HTTP binary and tests control the queue
// implementation.
func NewModule(pool *pgxpool.Pool, rdb *pkgredis.Client, queue service.Enqueuer, val *validator.Validator, cfg config.CacheConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	leadCache := cache.New(rdb, repo, cfg.GetCacheTTL(), log)
	svc := service.New(repo, leadCache, queue, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
		cache:   leadCache,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.LeadsRepository {
	return m.repo
}

// Cache returns the cache-aside read path shared with the worker.
func (m *Module) Cache() *cache.LeadCache {
	return m.cache
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	group := ctx.V1.Group("/leads")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	// Producer-side bound on the enrichment pipeline: the queue itself has no
	// backpressure, so the enqueue rate is limited per client IP.
	group.POST("/:id/summarize", ctx.SummarizeRateLimiter.RateLimit(), m.handler.RequestSummary)
}

// Compile-time check that Module implements http.Module
var _ http.Module = (*Module)(nil)
