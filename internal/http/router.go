// Package httpapi wires the HTTP transport (Gin) to the poll-cycle state,
// application services, middleware, and route handlers. It centralizes
// cross-cutting concerns such as tracing, correlation IDs, logging/redaction,
// panic recovery, metrics, CORS, security headers, idempotency, and rate
// limiting.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/whitesmile/frontdesk-backend/docs"
	"github.com/whitesmile/frontdesk-backend/internal/config"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	"github.com/whitesmile/frontdesk-backend/internal/http/handlers"
	"github.com/whitesmile/frontdesk-backend/internal/http/middleware"
	"github.com/whitesmile/frontdesk-backend/internal/poller"
	"github.com/whitesmile/frontdesk-backend/internal/repo"
	"github.com/whitesmile/frontdesk-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the dashboard API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with phone-number scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. Response compression, CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, p *poller.Poller, updater feeds.Updater, cfg config.Config, log zerolog.Logger) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope:  tabForRoute,
		},
		func(ctx context.Context, userID, tab, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, tab, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) Compress dashboard payloads; the poll snapshot JSON shrinks well
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← poll state + sheet write-back
	outboxSvc := &services.OutboxService{State: p, Updater: updater, Log: log}
	fuSvc := &services.FollowupService{State: p, Updater: updater, Log: log}
	recallSvc := &services.RecallService{State: p, Updater: updater, Log: log}

	h := handlers.New(p, outboxSvc, fuSvc, recallSvc)
	h.DB = db
	h.IdemTTL = cfg.IdempotencyTTL

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Dashboard counters and aggregates
		api.GET("/dashboard", h.GetDashboard)

		// Outbox queues
		api.GET("/outbox/send-now", h.ListSendNow)
		api.GET("/outbox/needs-review", h.ListNeedsReview)
		api.GET("/outbox/opened", h.ListOpened)
		api.GET("/outbox/completed-today", h.ListCompletedToday)

		// Outbox mutations
		api.POST("/outbox/:id/open", h.MarkOpened)
		api.POST("/outbox/:id/sent", h.MarkSent)
		api.POST("/outbox/:id/not-sent", h.MarkNotSent)
		api.PUT("/outbox/:id/details", h.UpdateDetails)

		// Follow-up queues
		api.GET("/followups/cancelled", h.ListCancelled)
		api.GET("/followups/reschedule", h.ListReschedule)
		api.POST("/followups/:kind/:id/close", h.CloseFollowup)

		// Recalls and the new-recall alert
		api.GET("/recalls", h.ListRecalls)
		api.POST("/recalls/:id/status", h.SetRecallStatus)
		api.GET("/recalls/alert", h.GetRecallAlert)
		api.DELETE("/recalls/alert", h.DismissRecallAlert)

		// Cross-tab patient directory
		api.GET("/patients", h.ListPatients)
	}
}

// tabForRoute maps a mutation route onto the sheet tab its idempotency
// records are stored under.
func tabForRoute(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case strings.Contains(path, "/outbox/"):
		return feeds.TabOutbox
	case strings.Contains(path, "/followups/"):
		if c.Param("kind") == "reschedule" {
			return feeds.TabReschedule
		}
		return feeds.TabCancelled
	case strings.Contains(path, "/recalls"):
		return feeds.TabRecall
	}
	return path
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
