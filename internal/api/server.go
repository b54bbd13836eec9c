// Package api serves streams over HTTP. Each created stream is addressed by
// an opaque handle and every call on it is serialized.
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/samcharles93/clprng/internal/backend"
	"github.com/samcharles93/clprng/internal/logger"
	"github.com/samcharles93/clprng/internal/metrics"
	"github.com/samcharles93/clprng/internal/prng"
	"github.com/samcharles93/clprng/internal/stream"
)

const DefaultMaxCount = 1 << 20

type Options struct {
	Device backend.Device
	// Algorithm is used when a create request names none.
	Algorithm string
	// Defaults apply to fields a create request leaves unset.
	Defaults   stream.Config
	MaxStreams int
	// MaxCount caps the elements of one generate call.
	MaxCount int
	// RateLimit throttles generate calls across all streams. Zero disables it.
	RateLimit rate.Limit
	RateBurst int
	Gatherer  prometheus.Gatherer
	Metrics   *metrics.Metrics
	Logger    logger.Logger
}

type Server struct {
	dev      backend.Device
	alg      string
	defaults stream.Config
	store    *StreamStore
	limiter  *rate.Limiter
	maxCount int
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
	log      logger.Logger
	clock    func() time.Time
}

func NewServer(opts Options) *Server {
	if opts.MaxCount <= 0 {
		opts.MaxCount = DefaultMaxCount
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	s := &Server{
		dev:      opts.Device,
		alg:      opts.Algorithm,
		defaults: opts.Defaults,
		store:    NewStreamStore(opts.MaxStreams),
		maxCount: opts.MaxCount,
		gatherer: opts.Gatherer,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		clock:    time.Now,
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(opts.RateLimit, max(opts.RateBurst, 1))
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/algorithms", s.handleListAlgorithms)

	e.POST("/v1/streams", s.handleCreateStream)
	e.GET("/v1/streams", s.handleListStreams)
	e.GET("/v1/streams/:id", s.handleGetStream)
	e.POST("/v1/streams/:id/generate", s.handleGenerate)
	e.PUT("/v1/streams/:id/seed", s.handleSeed)
	e.PUT("/v1/streams/:id/precision", s.handlePrecision)
	e.DELETE("/v1/streams/:id", s.handleDeleteStream)

	if s.gatherer != nil {
		h := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
		e.GET("/metrics", func(c *echo.Context) error {
			h.ServeHTTP(c.Response(), c.Request())
			return nil
		})
	}
}

// Close releases every stream still held by the server.
func (s *Server) Close() error {
	var result *multierror.Error
	for _, e := range s.store.List() {
		if _, ok := s.store.Remove(e.id); ok {
			result = multierror.Append(result, e.close())
			s.metrics.StreamClosed()
		}
	}
	return result.ErrorOrNil()
}

func (s *Server) handleListAlgorithms(c *echo.Context) error {
	algs := prng.All()
	out := AlgorithmList{Object: "list", Data: make([]AlgorithmInfo, 0, len(algs))}
	for _, a := range algs {
		precisions := make([]string, len(a.Precisions))
		for i, p := range a.Precisions {
			precisions[i] = p.String()
		}
		out.Data = append(out.Data, AlgorithmInfo{
			Name:       a.Name,
			StateSize:  a.StateSize,
			NativeBits: a.NativeBits,
			Precisions: precisions,
		})
	}
	return writeJSON(c, http.StatusOK, out)
}

func (s *Server) handleCreateStream(c *echo.Context) error {
	if s.dev == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", nil, "no compute device configured")
	}
	req, err := decodeJSON[CreateStreamRequest](c.Request().Body)
	if err != nil {
		return writeStreamError(c, err)
	}
	if strings.TrimSpace(req.Algorithm) == "" {
		req.Algorithm = s.alg
	}
	if strings.TrimSpace(req.Algorithm) == "" {
		return writeBadRequest(c, "algorithm is required")
	}

	cfg := s.defaults
	cfg.Logger = s.log
	cfg.Metrics = s.metrics
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.WorkgroupSize > 0 {
		cfg.Launch.WorkgroupSize = req.WorkgroupSize
	}
	if req.WorkgroupCount > 0 {
		cfg.Launch.WorkgroupCount = req.WorkgroupCount
	}
	if req.BufferEntries > 0 {
		cfg.BufferEntries = req.BufferEntries
	}

	st := stream.New(cfg)
	if err := s.openStream(st, req); err != nil {
		if cerr := st.Close(); cerr != nil {
			s.log.Warn("close failed stream", "error", cerr)
		}
		return writeStreamError(c, err)
	}
	entry, err := s.store.Add(st, s.dev.Name(), s.clock())
	if err != nil {
		_ = st.Close()
		return writeStreamError(c, err)
	}
	s.metrics.StreamOpened()
	s.log.Info("stream created", "id", entry.id, "algorithm", st.Name(), "precision", st.Precision().String())
	return writeJSON(c, http.StatusCreated, entry.info())
}

func (s *Server) openStream(st *stream.Stream, req CreateStreamRequest) error {
	if err := st.Init(s.dev, req.Algorithm); err != nil {
		return err
	}
	var err error
	if req.Precision != "" {
		err = st.SetPrecision(req.Precision)
	} else {
		err = st.SetPrecisionValue(st.Precision())
	}
	if err != nil {
		return err
	}
	return st.ReadyGenerator()
}

func (s *Server) handleListStreams(c *echo.Context) error {
	entries := s.store.List()
	out := StreamList{Object: "list", Data: make([]StreamInfo, 0, len(entries))}
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			out.Data = append(out.Data, e.info())
		}
		e.mu.Unlock()
	}
	return writeJSON(c, http.StatusOK, out)
}

// withEntry runs fn with the stream addressed by the :id parameter locked.
func (s *Server) withEntry(c *echo.Context, fn func(e *streamEntry) error) error {
	id := c.Param("id")
	e, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, fmt.Sprintf("stream %q not found", id))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return writeNotFound(c, fmt.Sprintf("stream %q not found", id))
	}
	return fn(e)
}

func (s *Server) handleGetStream(c *echo.Context) error {
	return s.withEntry(c, func(e *streamEntry) error {
		return writeJSON(c, http.StatusOK, e.info())
	})
}

func (s *Server) handleGenerate(c *echo.Context) error {
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeStreamError(c, err)
	}
	if f := c.QueryParam("format"); f != "" {
		req.Format = f
	}
	if req.Count <= 0 || req.Count > s.maxCount {
		return writeBadRequest(c, fmt.Sprintf("count must be between 1 and %d", s.maxCount))
	}
	switch req.Format {
	case "", "json", "binary":
	default:
		return writeBadRequest(c, fmt.Sprintf("unknown format %q (expected json or binary)", req.Format))
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return writeError(c, http.StatusTooManyRequests, "rate_limit_error", nil, "generation rate limit exceeded")
	}

	return s.withEntry(c, func(e *streamEntry) error {
		if req.Format == "binary" {
			raw := make([]byte, req.Count*e.s.Precision().Size())
			if err := e.s.GenerateStream(req.Count, raw); err != nil {
				return writeStreamError(c, err)
			}
			return c.Blob(http.StatusOK, echo.MIMEOctetStream, raw)
		}
		values, err := generateValues(e.s, req.Count)
		if err != nil {
			return writeStreamError(c, err)
		}
		return writeJSON(c, http.StatusOK, GenerateResponse{
			ID:        e.id,
			Object:    "stream.output",
			Precision: e.s.Precision().String(),
			Count:     req.Count,
			Values:    values,
		})
	})
}

func generateValues(s *stream.Stream, n int) (any, error) {
	switch s.Precision() {
	case prng.Uint32:
		return stream.Generate[uint32](s, n)
	case prng.Uint64:
		return stream.Generate[uint64](s, n)
	case prng.Float32:
		return stream.Generate[float32](s, n)
	default:
		return stream.Generate[float64](s, n)
	}
}

func (s *Server) handleSeed(c *echo.Context) error {
	req, err := decodeJSON[SeedRequest](c.Request().Body)
	if err != nil {
		return writeStreamError(c, err)
	}
	if req.Seed == nil {
		return writeBadRequest(c, "seed is required")
	}
	return s.withEntry(c, func(e *streamEntry) error {
		if err := e.s.SetSeed(*req.Seed); err != nil {
			return writeStreamError(c, err)
		}
		return writeJSON(c, http.StatusOK, e.info())
	})
}

func (s *Server) handlePrecision(c *echo.Context) error {
	req, err := decodeJSON[PrecisionRequest](c.Request().Body)
	if err != nil {
		return writeStreamError(c, err)
	}
	if strings.TrimSpace(req.Precision) == "" {
		return writeBadRequest(c, "precision is required")
	}
	return s.withEntry(c, func(e *streamEntry) error {
		if err := e.s.SetPrecision(req.Precision); err != nil {
			return writeStreamError(c, err)
		}
		if err := e.s.ReadyGenerator(); err != nil {
			return writeStreamError(c, err)
		}
		return writeJSON(c, http.StatusOK, e.info())
	})
}

func (s *Server) handleDeleteStream(c *echo.Context) error {
	id := c.Param("id")
	e, ok := s.store.Remove(id)
	if !ok {
		return writeNotFound(c, fmt.Sprintf("stream %q not found", id))
	}
	if err := e.close(); err != nil {
		s.log.Warn("close stream", "id", id, "error", err)
	}
	s.metrics.StreamClosed()
	s.log.Info("stream deleted", "id", id)
	return writeJSON(c, http.StatusOK, DeleteStreamResponse{ID: id, Object: "stream.deleted", Deleted: true})
}
