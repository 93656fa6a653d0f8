// Package server exposes the normalized district table to the dashboard's
// browser UI over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/district-lens/internal/district"
)

// TableSource loads the normalized table for a shapefile path.
// *district.Loader implements it.
type TableSource interface {
	Load(path string) (*district.Table, error)
}

// Config configures the HTTP surface.
type Config struct {
	// ShapefilePath is the dataset every endpoint serves.
	ShapefilePath string
	CORSOrigins   []string
	// ExportRPS and ExportBurst limit workbook exports across all clients.
	ExportRPS   float64
	ExportBurst int
	// CacheEntries and CacheTTL size the encoded response cache. Zero
	// entries disables it.
	CacheEntries int
	CacheTTL     time.Duration
}

// Server serves district data.
type Server struct {
	source  TableSource
	cfg     Config
	limiter *rate.Limiter
	cache   *ResponseCache
}

// New creates a Server reading tables from source.
func New(source TableSource, cfg Config) *Server {
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.ExportRPS <= 0 {
		cfg.ExportRPS = 1
	}
	if cfg.ExportBurst <= 0 {
		cfg.ExportBurst = 1
	}
	return &Server{
		source:  source,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.ExportRPS), cfg.ExportBurst),
		cache:   NewResponseCache(cfg.CacheEntries, cfg.CacheTTL),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Mount("/api", s.apiRoutes())
	return r
}

func (s *Server) apiRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/districts.geojson", s.handleGeoJSON)
	r.Get("/districts", s.handleDistricts)
	r.Get("/districts/{geoid}", s.handleDistrict)
	r.Get("/histogram", s.handleHistogram)
	r.Get("/scatter", s.handleScatter)
	r.Get("/summary", s.handleSummary)
	r.Get("/cache/stats", s.handleCacheStats)

	r.Group(func(r chi.Router) {
		r.Use(s.exportLimit)
		r.Get("/districts.xlsx", s.handleXLSX)
	})
	return r
}
