package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/run"
	"gitlab.com/equivcheck-2025.net/internal/handlers"
	"gitlab.com/equivcheck-2025.net/internal/handlers/contracts"
	"gitlab.com/equivcheck-2025.net/internal/handlers/response"
	"gitlab.com/equivcheck-2025.net/internal/handlers/runs"
)

type ServiceProvider struct {
	runService run.IRunService
	// middleware is nil when the API is open.
	middleware *handlers.MiddlewareProvider
	gatherer   prometheus.Gatherer
}

func NewServiceProvider(
	runService run.IRunService,
	middleware *handlers.MiddlewareProvider,
	gatherer prometheus.Gatherer,
) *ServiceProvider {
	return &ServiceProvider{
		runService: runService,
		middleware: middleware,
		gatherer:   gatherer,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            string
	ServiceName     string
	ServiceProvider *ServiceProvider
	logger          primary.Logger
}

func NewServer(port string, serviceName string, serviceProvider *ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	if s.ServiceProvider == nil || s.ServiceProvider.runService == nil {
		return errors.New("http server needs a run service")
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteSuccess(w, map[string]string{"status": "ok", "service": s.ServiceName})
	}).Methods("GET")
	if g := s.ServiceProvider.gatherer; g != nil {
		r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{})).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	if m := s.ServiceProvider.middleware; m != nil {
		api.Use(m.JWTMiddleware)
	}
	runs.NewRunHandler(s.ServiceProvider.runService, s.logger).RegisterRoutes(api)
	contracts.NewContractHandler(s.ServiceProvider.runService, s.logger).RegisterRoutes(api)

	s.router = r
	return nil
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background. Runs requested with wait hold their
// connection for the whole run, hence the long write timeout.
func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
