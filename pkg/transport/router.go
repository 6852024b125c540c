package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/entrhq/mcp-bridge/pkg/logging"
	"github.com/entrhq/mcp-bridge/pkg/mcp"
	"github.com/entrhq/mcp-bridge/pkg/report"
)

const defaultMaxBodyBytes = 4 << 20

// HealthFunc reports whether the service is healthy plus extra fields to
// include in the /health body.
type HealthFunc func(ctx context.Context) (bool, map[string]interface{})

// Options configures the router.
type Options struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64

	// Health adds service-specific state to /health; nil reports ok
	Health HealthFunc

	// Reports enables the /report routes when set
	Reports *report.Store
}

type handler struct {
	mcp       *mcp.Server
	opts      Options
	startedAt time.Time
	logger    *logging.Logger
}

// NewRouter builds the HTTP routes for srv. ctx bounds background work such
// as rate limiter cleanup.
func NewRouter(ctx context.Context, srv *mcp.Server, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	h := &handler{
		mcp:       srv,
		opts:      opts,
		startedAt: time.Now(),
		logger:    logging.NewLogger("http"),
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(accessLog(h.logger))
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Mcp-Session-Id", "Mcp-Protocol-Version", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Mcp-Session-Id"},
		MaxAge:         300,
	}).Handler)

	router.Get("/health", h.health)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		if opts.RateLimitRPS > 0 {
			r.Use(rateLimitByIP(ctx, opts.RateLimitRPS, opts.RateLimitBurst))
		}
		r.Post("/mcp", h.handleMCP)
		r.Get("/mcp", h.methodNotAllowed)
		r.Delete("/mcp", h.methodNotAllowed)

		if opts.Reports != nil {
			r.Post("/report", h.postReport)
			r.Get("/report", h.viewReport)
			r.Get("/report.json", h.reportJSON)
		}
	})

	return router
}
