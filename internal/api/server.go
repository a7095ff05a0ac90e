// Package api serves the faqbase REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MikeSquared-Agency/faqbase/internal/auth"
	"github.com/MikeSquared-Agency/faqbase/internal/events"
	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

// Options holds the HTTP settings that are not dependencies.
type Options struct {
	StaticDir      string
	CORSOrigins    []string
	MaxUploadBytes int64
}

type Server struct {
	router *chi.Mux
	port   int
	store  store.Store
	auth   *auth.Authenticator
	events events.Publisher
	logger *slog.Logger
	opts   Options
}

func NewServer(port int, db store.Store, authn *auth.Authenticator, pub events.Publisher, logger *slog.Logger, opts Options) *Server {
	if pub == nil {
		pub = events.Nop{}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s := &Server{
		router: router,
		port:   port,
		store:  db,
		auth:   authn,
		events: pub,
		logger: logger,
		opts:   opts,
	}

	router.Get("/health", s.health)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Get("/auth/check", s.checkAuth)

		r.Route("/faqs", func(r chi.Router) {
			r.Get("/", s.listFAQs)
			r.Get("/search", s.searchFAQs)
			r.Get("/{id}", s.getFAQ)
			r.Post("/{id}/helpful", s.markHelpful)

			r.Group(func(r chi.Router) {
				r.Use(authn.RequireAdmin)
				r.Post("/", s.createFAQ)
				r.Post("/bulk", s.bulkCreateFAQs)
				r.Put("/{id}", s.updateFAQ)
				r.Delete("/{id}", s.deleteFAQ)
			})
		})

		r.Get("/categories", s.categories)
		r.Get("/stats", s.stats)
		r.Get("/documents/search", s.searchDocuments)

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAdmin)
			r.Get("/search-logs", s.searchLogs)
			r.Post("/extract-qa", s.extractQA)
			r.Get("/documents", s.listDocuments)
			r.Post("/documents", s.createDocument)
			r.Delete("/documents/{id}", s.deleteDocument)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
	})

	if opts.StaticDir != "" {
		router.NotFound(spaHandler(opts.StaticDir))
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
