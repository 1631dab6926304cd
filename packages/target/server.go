// Package target provides a small HTTP server to aim smoke checks at. It
// serves a health check, a todo API backed by the store package, Prometheus
// metrics and static files.
package target

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/smokespec/packages/store"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8080
	DefaultRoot = "./dist"
)

// DefaultIndexFiles are tried in order when a directory is requested
var DefaultIndexFiles = []string{"index.html", "index.htm"}

// Server is the smoke target server
type Server struct {
	host     string
	port     int
	root     string
	defaults []string
	cors     bool
	logger   *zap.Logger
	store    *store.Store
}

// Option is a functional option for Server
type Option func(*Server)

// WithHost sets the listen host
func WithHost(host string) Option {
	return func(s *Server) {
		s.host = host
	}
}

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithRoot sets the directory static files are served from
func WithRoot(root string) Option {
	return func(s *Server) {
		s.root = root
	}
}

// WithDefaults sets the index files tried for a directory, in order
func WithDefaults(names ...string) Option {
	return func(s *Server) {
		s.defaults = names
	}
}

// WithCORS allows cross-origin requests from any origin
func WithCORS(enabled bool) Option {
	return func(s *Server) {
		s.cors = enabled
	}
}

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a target server storing todos in st
func NewServer(st *store.Store, opts ...Option) *Server {
	s := &Server{
		host:     DefaultHost,
		port:     DefaultPort,
		root:     DefaultRoot,
		defaults: DefaultIndexFiles,
		logger:   zap.NewNop(),
		store:    st,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// Handler builds the full request pipeline
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	app := r.NewRoute().Subrouter()
	app.Use(metricsMiddleware)

	app.HandleFunc("/healthcheck", s.handleHealthcheck).Methods("GET")
	app.HandleFunc("/api/todos", s.handleListTodos).Methods("GET")
	app.HandleFunc("/api/todos", s.handleCreateTodo).Methods("POST")
	app.HandleFunc("/api/todos/{id}", s.handleGetTodo).Methods("GET")
	app.HandleFunc("/api/todos/{id}", s.handleUpdateTodo).Methods("PUT")
	app.HandleFunc("/api/todos/{id}", s.handleDeleteTodo).Methods("DELETE")
	app.HandleFunc("/api/todos/{id}/done", s.handleTodoDone).Methods("PATCH")
	app.PathPrefix("/").HandlerFunc(s.handleStatic)

	var h http.Handler = r
	if s.cors {
		h = corsMiddleware(h)
	}
	return requestIDMiddleware(s.loggingMiddleware(h))
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("target server starting",
		zap.String("addr", s.Addr()),
		zap.String("root", s.root),
		zap.Bool("cors", s.cors),
		zap.String("db_driver", s.store.Driver()))

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		s.logger.Info("target server stopped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.Addr(), err)
	}
	return nil
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "OK")
}
