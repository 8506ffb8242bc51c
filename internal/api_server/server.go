package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/oscargavin/foremost-sub001/internal/config"
	"github.com/oscargavin/foremost-sub001/internal/dispatch"
	"github.com/oscargavin/foremost-sub001/internal/generate"
	"github.com/oscargavin/foremost-sub001/internal/handlers"
	"github.com/oscargavin/foremost-sub001/internal/pipeline"
	"github.com/oscargavin/foremost-sub001/internal/ratelimit"
	"github.com/oscargavin/foremost-sub001/internal/service"
	"github.com/oscargavin/foremost-sub001/internal/store"
	"github.com/oscargavin/foremost-sub001/pkg/metrics"
	"github.com/oscargavin/foremost-sub001/pkg/middleware"
)

const gracefulShutdownTimeout = 5 * time.Second

type Server struct {
	cfg        *config.Config
	store      store.Store
	listener   net.Listener
	dispatcher *dispatch.Dispatcher
}

// New returns a new instance of the orchestration API server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	dispatcher *dispatch.Dispatcher,
) *Server {
	return &Server{
		cfg:        cfg,
		store:      store,
		listener:   listener,
		dispatcher: dispatcher,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://foremost.so", "https://www.foremost.so"},
			AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	generator := generate.NewGeminiClient(
		s.cfg.Generate.BaseUrl,
		s.cfg.Generate.ApiKey,
		s.cfg.Generate.Model,
		s.cfg.Generate.Timeout,
	)
	engine := pipeline.NewEngine(generator)

	scanSrv := service.NewScanService(engine, s.store)
	summarySrv := service.NewSummaryService(s.dispatcher)
	h := handlers.NewServiceHandler(scanSrv, summarySrv)

	limiter := ratelimit.NewLimiter(
		ratelimit.NewMemoryStore(),
		ratelimit.WithSweepInterval(s.cfg.RateLimit.SweepInterval),
	)

	window := s.cfg.RateLimit.Window
	router.Route("/api/v1", func(r chi.Router) {
		r.With(ratelimit.Middleware(limiter, "scan", ratelimit.Config{
			Window: window, MaxRequests: s.cfg.RateLimit.ScanRequests,
		})).Post("/scan", h.Scan)

		r.With(ratelimit.Middleware(limiter, "opportunities", ratelimit.Config{
			Window: window, MaxRequests: s.cfg.RateLimit.StreamRequests,
		})).Post("/opportunities", h.Opportunities)

		r.With(ratelimit.Middleware(limiter, "signals", ratelimit.Config{
			Window: window, MaxRequests: s.cfg.RateLimit.StreamRequests,
		})).Post("/signals", h.Signals)

		r.With(ratelimit.Middleware(limiter, "summary", ratelimit.Config{
			Window: window, MaxRequests: s.cfg.RateLimit.SummaryRequests,
		})).Post("/summary", h.Summary)

		r.Get("/runs", h.RecentRuns)
		r.Get("/info", h.Info)
	})
	router.Get("/health", h.Health)

	srv := &http.Server{Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Info("shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)

		// In-flight notifications outlive the HTTP listener.
		if err := s.dispatcher.Close(ctxTimeout); err != nil {
			zap.S().Named("api_server").Warnw("dispatcher drain interrupted", "error", err)
		}
	}()

	zap.S().Named("api_server").Infof("serving on %s", s.listener.Addr())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
