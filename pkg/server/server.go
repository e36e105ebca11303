package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/manifest"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Server is the project dev server: static resources, manifest rewriting
// and the live-reload event stream.
type Server struct {
	project  *config.Project
	rewriter *manifest.Rewriter
	hub      *Hub
	log      types.Logger
	http     *http.Server
}

// New assembles the dev server for a project
func New(project *config.Project, rewriter *manifest.Rewriter, hub *Hub, log types.Logger) *Server {
	s := &Server{
		project:  project,
		rewriter: rewriter,
		hub:      hub,
		log:      log,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", project.Port()),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// URL returns the server's base URL
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.project.Port())
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Info("dev server listening",
		"url", s.URL(),
		"project", s.project.Name(),
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return types.WrapError(err, "dev server failed")
	}
	return nil
}

// Shutdown drains connections and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/events", s.hub.ServeHTTP)
	r.Get("/manifest", s.handleManifest)
	r.With(s.rewriteManifests).Handle("/*", s.staticHandler())

	return r
}

// logRequests logs each request with its status and timing
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"project": s.project.Name(),
	})
}

// staticHandler serves res/ with dist/ as the fallback root, so bundled
// output is reachable at the same URLs as checked-in resources
func (s *Server) staticHandler() http.Handler {
	resDir := http.Dir(filepath.Join(s.project.Dir, consts.ResourcesDir))
	distDir := http.Dir(filepath.Join(s.project.Dir, consts.DistDir))
	resFiles := http.FileServer(resDir)
	distFiles := http.FileServer(distDir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dirHasFile(resDir, r.URL.Path) {
			resFiles.ServeHTTP(w, r)
			return
		}
		distFiles.ServeHTTP(w, r)
	})
}

// dirHasFile reports whether the http.Dir can open the request path.
// http.Dir.Open rejects traversal outside its root.
func dirHasFile(dir http.Dir, path string) bool {
	f, err := dir.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// writeJSON writes an indented JSON response body
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(body)
}

// writeError maps an error onto a JSON error body. AppError codes pass
// through; everything else becomes INTERNAL.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		appErr = types.NewAppError("INTERNAL", err.Error(), err)
	}

	s.log.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"code", appErr.Code,
		"error", err,
	)

	writeJSON(w, status, map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}
