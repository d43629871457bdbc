// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes conversions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/tyx/internal/convert"
	"github.com/pdiddy/tyx/internal/diag"
	"github.com/pdiddy/tyx/pkg/types"
)

// Server is the HTTP conversion endpoint. Requests share only the
// Converter, which keeps no per-document state.
type Server struct {
	router    chi.Router
	converter *convert.Converter
	log       *slog.Logger
	cfg       types.ServeConfig
}

// New creates and configures the server.
func New(c *convert.Converter, log *slog.Logger, cfg types.ServeConfig) *Server {
	s := &Server{converter: c, log: log, cfg: cfg}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/api/convert", s.handleConvert)
	r.Post("/api/roundtrip", s.handleRoundTrip)

	s.router = r
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting tyx server", "addr", s.cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// convertResponse is the body returned by /api/convert.
type convertResponse struct {
	Output              string            `json:"output"`
	Diagnostics         []diag.Diagnostic `json:"diagnostics"`
	UndefinedReferences []string          `json:"undefined_references"`
	UnusedLabels        []string          `json:"unused_labels"`
	Citations           []string          `json:"citations"`
}

// roundTripResponse is the body returned by /api/roundtrip.
type roundTripResponse struct {
	Equal        bool              `json:"equal"`
	Diff         string            `json:"diff"`
	Intermediate string            `json:"intermediate"`
	Diagnostics  []diag.Diagnostic `json:"diagnostics"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	dir, src, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	res, err := s.converter.Convert(src, dir)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, convertResponse{
		Output:              res.Output,
		Diagnostics:         nonNil(res.Diagnostics),
		UndefinedReferences: nonNilStrings(res.Undefined),
		UnusedLabels:        nonNilStrings(res.Unused),
		Citations:           nonNilStrings(res.Citations),
	})
}

func (s *Server) handleRoundTrip(w http.ResponseWriter, r *http.Request) {
	dir, src, ok := s.readRequest(w, r)
	if !ok {
		return
	}
	res, err := s.converter.RoundTrip(src, dir)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, roundTripResponse{
		Equal:        res.Equal,
		Diff:         res.Diff,
		Intermediate: res.Intermediate,
		Diagnostics:  nonNil(res.Diagnostics),
	})
}

// readRequest validates the direction parameter and reads the body within
// the configured size limit. It writes the error response itself.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (types.Direction, string, bool) {
	dir := types.Direction(r.URL.Query().Get("direction"))
	if dir == "" {
		dir = types.TeXToTypst
	}
	if !dir.Valid() {
		jsonError(w, fmt.Sprintf("unsupported direction %q", dir), http.StatusBadRequest)
		return "", "", false
	}
	limit := s.cfg.MaxBodyBytes
	if limit <= 0 {
		limit = types.DefaultConfig().Serve.MaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
			return "", "", false
		}
		jsonError(w, "reading body: "+err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	return dir, string(body), true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func nonNil(l diag.List) []diag.Diagnostic {
	if l == nil {
		return []diag.Diagnostic{}
	}
	return l
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
