// Package server exposes the card over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/i18n"
	"github.com/kapu/digital-card-go/internal/qrcode"
	"github.com/kapu/digital-card-go/internal/service/cache"
	"github.com/kapu/digital-card-go/internal/share"
	"github.com/kapu/digital-card-go/internal/util"
	"github.com/kapu/digital-card-go/internal/web"
)

// CircuitReporter exposes the AI circuit breaker state for health checks.
type CircuitReporter interface {
	GetCircuitStatus() util.CircuitBreakerStatus
}

// Dependencies are the services the handlers use. Cache and Circuit may be nil.
type Dependencies struct {
	Profile        domain.ContactProfile
	Localizer      *i18n.Localizer
	Renderer       *web.Renderer
	Share          *share.Service
	QR             *qrcode.Generator
	QROptions      qrcode.Options
	Cache          cache.Store
	Circuit        CircuitReporter
	AllowedOrigins []string
	Logger         *zap.Logger
}

func (d *Dependencies) validate() error {
	switch {
	case d.Localizer == nil:
		return fmt.Errorf("localizer must not be nil")
	case d.Renderer == nil:
		return fmt.Errorf("renderer must not be nil")
	case d.Share == nil:
		return fmt.Errorf("share service must not be nil")
	case d.QR == nil:
		return fmt.Errorf("qr generator must not be nil")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return nil
}

// NewRouter wires the card routes.
func NewRouter(deps Dependencies) (http.Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	h := &handlers{deps: deps, logger: deps.Logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))

	r.Get("/", h.page)
	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/vcard", h.vcard)
		r.Get("/share", h.share)
		r.Get("/qr", h.qr)
		r.Get("/locales/{lang}", h.locales)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	})

	return r, nil
}

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server runs the HTTP listener.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

func New(cfg Config, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.http.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
