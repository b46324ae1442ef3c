// Package server exposes segmentation and normalization over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phobologic/funcseg/internal/cache"
	"github.com/phobologic/funcseg/internal/model"
	"github.com/phobologic/funcseg/internal/normalize"
	"github.com/phobologic/funcseg/internal/pyast"
	"github.com/phobologic/funcseg/internal/segment"
)

// Options configures a Server.
type Options struct {
	MaxRequestSize int64        // bytes; 0 = 4 MiB
	Cache          *cache.Store // nil disables caching
	Version        string
}

// Server is the HTTP API server for funcseg.
type Server struct {
	router chi.Router
	log    *slog.Logger
	opts   Options
}

// New creates and configures the HTTP server.
func New(log *slog.Logger, opts Options) *Server {
	if opts.MaxRequestSize <= 0 {
		opts.MaxRequestSize = 4 << 20
	}
	s := &Server{log: log, opts: opts}
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
	r.Post("/segment", s.handleSegment)
	r.Post("/normalize", s.handleNormalize)

	s.router = r
}

// Request is the body accepted by /segment and /normalize.
type Request struct {
	Source string `json:"source"`
	Raw    bool   `json:"raw,omitempty"` // skip normalization
}

// SegmentResponse is returned by /segment.
type SegmentResponse struct {
	Segments []model.Segment `json:"segments"`
	Cached   bool            `json:"cached"`
}

// NormalizeResponse is returned by /normalize.
type NormalizeResponse struct {
	Text string `json:"text"`
}

type syntaxErrorBody struct {
	Error  string `json:"error"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.opts.Version})
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	n, variant := normalize.New(), "normalized"
	if req.Raw {
		n, variant = normalize.Identity(), "raw"
	}

	var key []byte
	if s.opts.Cache != nil {
		key = cache.Key([]byte(req.Source), variant)
		if segs, hit, err := s.opts.Cache.Get(key); err != nil {
			s.log.Warn("cache lookup failed", "error", err)
		} else if hit {
			writeJSON(w, http.StatusOK, SegmentResponse{Segments: nonNil(segs), Cached: true})
			return
		}
	}

	p := pyast.NewParser()
	defer p.Close()

	seq, err := segment.New(p, n).Source(r.Context(), []byte(req.Source))
	if err != nil {
		s.sourceError(w, err)
		return
	}
	segs := slices.Collect(seq)

	if s.opts.Cache != nil {
		if err := s.opts.Cache.Put(key, segs); err != nil {
			s.log.Warn("cache store failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, SegmentResponse{Segments: nonNil(segs)})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	n := normalize.New()
	if req.Raw {
		n = normalize.Identity()
	}

	p := pyast.NewParser()
	defer p.Close()

	text, err := segment.New(p, n).Normalized(r.Context(), []byte(req.Source))
	if err != nil {
		s.sourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NormalizeResponse{Text: text})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxRequestSize)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request exceeds max size", http.StatusRequestEntityTooLarge)
			return req, false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) sourceError(w http.ResponseWriter, err error) {
	var se *pyast.SyntaxError
	if errors.As(err, &se) {
		writeJSON(w, http.StatusUnprocessableEntity, syntaxErrorBody{
			Error:  se.Msg,
			Line:   se.Line,
			Column: se.Column,
		})
		return
	}
	s.log.Error("segmenting source", "error", err)
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func nonNil(segs []model.Segment) []model.Segment {
	if segs == nil {
		return []model.Segment{}
	}
	return segs
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
