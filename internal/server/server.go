// Package server exposes the simulator over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/geange/nfasim"
	"github.com/geange/nfasim/internal/cache"
	"github.com/geange/nfasim/internal/loader"
	"github.com/geange/nfasim/internal/metrics"
	"github.com/geange/nfasim/internal/record"
)

const maxBodyBytes = 4 << 20

// Request is the body of POST /simulate.
type Request struct {
	Label           string         `json:"label"`
	Automaton       map[string]any `json:"automaton"`
	Input           string         `json:"input"`
	UnionDuplicates bool           `json:"union_duplicates"`
}

// Response wraps the record and says whether it came from the cache.
type Response struct {
	Record *record.Record `json:"record"`
	Cached bool           `json:"cached"`
}

type errorBody struct {
	Error string `json:"error"`
}

type Server struct {
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	cache    cache.Store
	maxInput int
}

type Option func(*Server)

// WithCache enables the result cache.
func WithCache(store cache.Store) Option {
	return func(s *Server) {
		s.cache = store
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithMaxInputRunes bounds the input length; zero or less disables the check.
func WithMaxInputRunes(n int) Option {
	return func(s *Server) {
		s.maxInput = n
	}
}

// New creates a server whose collectors are registered on reg and served from
// /metrics through gatherer.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer, opts ...Option) *Server {
	s := &Server{
		log:      logrus.StandardLogger(),
		metrics:  metrics.New(reg),
		gatherer: gatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	r.Post("/simulate", s.simulate)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", fmt.Errorf("decode request: %w", err))
		return
	}
	if s.maxInput > 0 && utf8.RuneCountInString(req.Input) > s.maxInput {
		s.fail(w, http.StatusRequestEntityTooLarge, "input_too_long",
			fmt.Errorf("input longer than %d symbols", s.maxInput))
		return
	}

	desc, err := loader.Decode(req.Automaton)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "malformed", err)
		return
	}

	key, err := cache.Key(desc, req.Input, req.UnionDuplicates)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "malformed", err)
		return
	}
	if rec, ok := s.lookup(r, key); ok {
		rec.SourceLabel = req.Label
		s.respond(w, http.StatusOK, Response{Record: rec, Cached: true})
		return
	}

	a, err := desc.Build()
	if err != nil {
		s.fail(w, http.StatusBadRequest, "malformed", err)
		return
	}

	var opts []nfasim.IndexOption
	if req.UnionDuplicates {
		opts = append(opts, nfasim.WithUnionDuplicates())
	}
	res, err := nfasim.Run(a, req.Input, opts...)
	if errors.Is(err, nfasim.ErrInvalidAutomaton) {
		s.fail(w, http.StatusUnprocessableEntity, "invalid_automaton", err)
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "internal", err)
		return
	}
	s.metrics.ObserveRun(res)

	rec := record.New(req.Label, res)
	if s.cache != nil {
		if err := s.cache.Put(r.Context(), key, rec); err != nil {
			s.log.WithError(err).Warn("cache store failed")
		}
	}
	s.respond(w, http.StatusOK, Response{Record: rec})
}

// lookup consults the cache; cache errors count as a miss.
func (s *Server) lookup(r *http.Request, key string) (*record.Record, bool) {
	if s.cache == nil {
		return nil, false
	}
	rec, ok, err := s.cache.Get(r.Context(), key)
	if err != nil {
		s.log.WithError(err).Warn("cache lookup failed")
		ok = false
	}
	s.metrics.ObserveCache(ok)
	return rec, ok
}

func (s *Server) fail(w http.ResponseWriter, status int, reason string, err error) {
	s.metrics.ObserveFailure(reason)
	s.log.WithError(err).WithField("reason", reason).Info("simulation rejected")
	s.respond(w, status, errorBody{Error: err.Error()})
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Error("write response")
	}
}
