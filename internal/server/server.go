// Package server serves a site for live preview, rendering pages on each request.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/matsen/pubsite/internal/bibtex"
	"github.com/matsen/pubsite/internal/config"
	"github.com/matsen/pubsite/internal/pipeline"
	"github.com/matsen/pubsite/internal/site"
	"github.com/matsen/pubsite/internal/source"
	"github.com/matsen/pubsite/internal/store"
)

// DefaultSearchLimit caps /api/search results when no limit is given.
const DefaultSearchLimit = 20

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins
}

// Server renders site pages on request.
type Server struct {
	cfg        Config
	builder    *site.Builder
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server that renders pages with builder.
func New(cfg Config, builder *site.Builder, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		builder: builder,
		logger:  logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		corsOpts := cors.Options{
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}
		if s.cfg.AllowAll {
			corsOpts.AllowedOrigins = []string{"*"}
		}
		r.Use(cors.Handler(corsOpts))

		r.Get("/publications", s.handlePublications)
		r.Get("/search", s.handleSearch)
	})

	r.Get("/*", s.handlePage)

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// requestLogger logs each request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// publicationsResponse is the JSON body of /api/publications.
type publicationsResponse struct {
	Counts     pipeline.Counts `json:"counts"`
	Journal    []bibtex.Entry  `json:"journal"`
	Conference []bibtex.Entry  `json:"conference"`
	Other      []bibtex.Entry  `json:"other"`
}

type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func (s *Server) handlePublications(w http.ResponseWriter, r *http.Request) {
	result := pipeline.Load(r.Context(), s.builder.Bibliography)
	if !result.OK() {
		s.logger.Error("could not load bibliography", zap.Error(result.Err()))
		s.writeSourceError(w, result.Err())
		return
	}

	buckets := pipeline.Partition(result.Entries())
	s.writeJSON(w, http.StatusOK, publicationsResponse{
		Counts:     buckets.Counts(),
		Journal:    nonNil(buckets.Journal),
		Conference: nonNil(buckets.Conference),
		Other:      nonNil(buckets.Other),
	})
}

// handleSearch indexes the bibliography in memory and runs a full-text query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing query parameter q"})
		return
	}
	limit := DefaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	result := pipeline.Load(r.Context(), s.builder.Bibliography)
	if !result.OK() {
		s.writeSourceError(w, result.Err())
		return
	}

	db, err := store.Open(store.MemoryPath)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	defer db.Close()

	if _, err := db.Rebuild(result.Entries()); err != nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	entries, err := db.Search(query, limit)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(entries))
}

// handlePage renders pages through the builder and serves other files as-is.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
	if name == "" || strings.HasSuffix(r.URL.Path, "/") {
		name = path.Join(name, "index.html")
	}

	if name == config.ConfigFile || s.builder.IsExcluded(name) {
		http.NotFound(w, r)
		return
	}

	siteRoot := s.builder.Config.SiteRoot(s.builder.Root)
	file := filepath.Join(siteRoot, filepath.FromSlash(name))

	info, err := os.Stat(file)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !s.builder.IsPage(name) {
		http.ServeFile(w, r, file)
		return
	}

	f, err := os.Open(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	out, _, err := s.builder.RenderPage(r.Context(), name, f)
	if err != nil {
		s.logger.Error("rendering page", zap.String("page", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

// Start listens on the configured port until ctx is canceled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("pubsite server listening", zap.String("addr", addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// writeSourceError reports a bibliography failure: 404 when the document is
// missing, 502 otherwise, with the upstream HTTP status when there is one.
func (s *Server) writeSourceError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if source.IsNotFound(err) {
		status = http.StatusNotFound
	}
	resp := errorResponse{Error: err.Error()}
	if code, ok := source.IsStatus(err); ok {
		resp.UpstreamStatus = code
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Int("status", status), zap.Error(err))
	}
}

func nonNil(entries []bibtex.Entry) []bibtex.Entry {
	if entries == nil {
		return []bibtex.Entry{}
	}
	return entries
}
