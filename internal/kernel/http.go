// Package kernel assembles the storefront's HTTP handler: the global
// middleware stack, the operational endpoints and the API routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/cubeshop/app/repositories"
	"github.com/shashiranjanraj/cubeshop/app/routes"
	"github.com/shashiranjanraj/cubeshop/app/services"
	"github.com/shashiranjanraj/cubeshop/pkg/auth"
	"github.com/shashiranjanraj/cubeshop/pkg/logger"
	"github.com/shashiranjanraj/cubeshop/pkg/metrics"
	"github.com/shashiranjanraj/cubeshop/pkg/middleware"
	"github.com/shashiranjanraj/cubeshop/pkg/reqid"
	"github.com/shashiranjanraj/cubeshop/pkg/response"
	"github.com/shashiranjanraj/cubeshop/pkg/router"
)

// Deps is everything the kernel needs from the outside. Redis may be nil.
type Deps struct {
	Store    repositories.Store
	Verifier auth.Verifier
	Redis    *redis.Client
	Services services.Options

	RateLimitPerMinute int
	CORSOrigins        []string
	TrustProxy         bool
}

// HTTPKernel owns the router built from Deps.
type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(d Deps) *HTTPKernel {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics: outermost for accurate total latency
	//  2. Recovery: turns panics into 500s
	//  3. Request ID: injected before anything logs
	//  4. Logger: logs request_id from context
	//  5. CORS
	//  6. Rate limiter: reject abusers before any store work
	//  7. Identify: attach the best-effort principal
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger(d.TrustProxy))
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.NewRateLimiter(d.Redis, d.RateLimitPerMinute, d.TrustProxy).Middleware)
	r.Use(middleware.Identify(d.Verifier))

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", health(d.Store))

	routes.RegisterAPI(r, services.New(d.Store, d.Services))

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }

func health(store repositories.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.WithCtx(r.Context()).Warn("health check failed", "error", err)
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
