// Package http serves the analytics catalog over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"shopfloor/internal/analytics"
	"shopfloor/internal/cache"
	applog "shopfloor/internal/log"
	"shopfloor/internal/middleware/ratelimit"
	"shopfloor/internal/middleware/security"
	"shopfloor/internal/middleware/trace"
)

// ReportArchive stores resolved reports.
type ReportArchive interface {
	SaveReport(ctx context.Context, report analytics.Report) error
	LatestReport(ctx context.Context) (analytics.Report, error)
}

// ReportPublisher announces resolved reports.
type ReportPublisher interface {
	PublishReportComputed(ctx context.Context, report analytics.Report) error
}

// Options configures a Server. Fetcher is required; the rest is optional.
type Options struct {
	Addr      string
	Fetcher   analytics.Fetcher
	Archive   ReportArchive
	Publisher ReportPublisher
	Ready     func(ctx context.Context) error
	Analytics analytics.Options
	Logger    *applog.Logger

	CacheTTL    time.Duration
	CacheSize   int
	RateLimit   int // requests per minute per client
	PassTimeout time.Duration

	// TrustedProxies are CIDRs allowed to set the client address headers.
	TrustedProxies []string
}

const (
	defaultCacheTTL    = 30 * time.Second
	defaultCacheSize   = 16
	defaultPassTimeout = 30 * time.Second
	sideEffectTimeout  = 10 * time.Second

	latestReportKey = "latest"
)

type Server struct {
	http.Server

	fetcher   analytics.Fetcher
	archive   ReportArchive
	publisher ReportPublisher
	ready     func(ctx context.Context) error
	opts      analytics.Options

	logger     *applog.Logger
	structured *applog.StructuredLogger

	reports     *cache.LRUCache[analytics.Report]
	caches      *cache.Manager
	passes      singleflight.Group
	passTimeout time.Duration

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	sideEffects  sync.WaitGroup
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(o Options) *Server {
	if o.Logger == nil {
		o.Logger = applog.New(applog.DefaultConfig())
	}
	o.Logger = o.Logger.WithComponent(applog.ComponentHTTP)
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	if o.CacheSize <= 0 {
		o.CacheSize = defaultCacheSize
	}
	if o.PassTimeout <= 0 {
		o.PassTimeout = defaultPassTimeout
	}

	s := &Server{
		fetcher:     o.Fetcher,
		archive:     o.Archive,
		publisher:   o.Publisher,
		ready:       o.Ready,
		opts:        o.Analytics,
		logger:      o.Logger,
		structured:  applog.NewStructuredLogger(o.Logger),
		reports:     cache.NewLRUCache[analytics.Report](o.CacheSize, o.CacheTTL),
		caches:      cache.NewManager(o.Logger.Slog()),
		passTimeout: o.PassTimeout,
		limiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.RateLimit}),
		detector:    security.NewDetector(),
	}
	for _, cidr := range o.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			o.Logger.Warn("Ignoring trusted proxy", applog.FieldError, err.Error())
		}
	}
	s.tracer = trace.NewMiddleware(o.Logger, s.detector.ExtractClientIP)

	s.caches.Register(s.reports)
	s.caches.StartCleanup(o.CacheTTL)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /api/analytics", s.limited(s.handleAnalytics))
	mux.Handle("GET /api/analytics/{index}", s.limited(s.handleDefinition))
	mux.Handle("GET /api/reports/latest", s.limited(s.handleLatestArchived))
	mux.Handle("DELETE /api/reports/cache", s.limited(s.handlePurgeCache))
	mux.Handle("GET /api/time-entries/summary", s.limited(s.handleProjectSummary))

	s.Server = http.Server{
		Addr:              o.Addr,
		Handler:           security.Headers(s.tracer.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(o.Logger.Slog().Handler(), slog.LevelError),
	}
	return s
}

func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		TooManyRequests("rate limit exceeded, try again later").Write(w, r)
	})(h)
}

// Shutdown stops the HTTP server, then the background routines, and
// waits for pending archive and publish calls.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
		s.limiter.Stop()
		s.caches.Stop()

		done := make(chan struct{})
		go func() {
			s.sideEffects.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if shutdownErr == nil {
				shutdownErr = ctx.Err()
			}
		}
	})
	return shutdownErr
}
