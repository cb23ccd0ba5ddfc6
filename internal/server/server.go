// Package server provides the HTTP REST API over the voice profile engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/engine"
	"github.com/jonathan/voicedna/internal/observability"
	"github.com/jonathan/voicedna/internal/server/middleware"
	"github.com/jonathan/voicedna/internal/server/ratelimit"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options are the collaborators of a Server. Engine and Auth are required.
type Options struct {
	Engine         *engine.Engine
	Auth           middleware.TokenValidator
	Health         Pinger       // optional; /health always succeeds without it
	MetricsHandler http.Handler // defaults to promhttp.Handler()
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// Server represents the HTTP server
type Server struct {
	cfg     config.ServerConfig
	engine  *engine.Engine
	health  Pinger
	logger  *zap.Logger
	metrics *observability.Metrics
	limiter *ratelimit.Limiter
	handler http.Handler
}

// New builds the router and middleware chain.
func New(cfg config.Config, opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("server requires an engine")
	}
	if opts.Auth == nil {
		return nil, fmt.Errorf("server requires a token validator")
	}
	cfg = cfg.MergeWithDefaults(config.Default())

	s := &Server{
		cfg:     cfg.Server,
		engine:  opts.Engine,
		health:  opts.Health,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		limiter: ratelimit.NewLimiter(ratelimit.FromConfig(cfg.RateLimit)),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics()
	}
	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /referents", s.handleListReferents)

	authed := middleware.RequireUser(opts.Auth)
	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authed(h))
	}

	// Contributions
	route("POST /sessions", s.handleAnalyzeSession)
	route("POST /writing-samples", s.handleWritingSample)
	route("POST /writing-samples/import", s.handleImportSample)

	// Profile
	route("GET /profile", s.handleGetProfile)
	route("GET /profile/summary", s.handleGetSummary)
	route("PUT /profile/blend", s.handleSetBlend)
	route("POST /profile/recalibrate", s.handleRecalibrate)

	// Calibration
	route("POST /calibration/rounds", s.handleStartRound)
	route("GET /calibration/rounds", s.handleListRounds)
	route("POST /calibration/rounds/{id}/respond", s.handleRespondRound)
	route("POST /calibration/rounds/{id}/rate", s.handleRateRound)

	// Generation
	route("POST /compose", s.handleCompose)
	route("POST /generate", s.handleGenerate)
	route("POST /generate/stream", s.handleGenerateStream)

	s.handler = s.withLogging(s.withCORS(s.withRateLimit(mux)))
	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS answers preflight requests and sets CORS headers for allowed origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	anyOrigin := slices.Contains(s.cfg.AllowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case anyOrigin:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.cfg.AllowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit throttles by client IP and endpoint tier.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(clientIP(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Round(time.Second).Seconds())))
			}
			s.logger.Warn("rate limit exceeded",
				zap.String("client", clientIP(r)),
				zap.String("path", r.URL.Path),
				zap.Int("limit", info.Limit),
			)
			s.jsonResponse(w, http.StatusTooManyRequests, ErrorResponse{
				Error:   errorCode(http.StatusTooManyRequests),
				Message: "Rate limit exceeded. Please try again later.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request and records its latency.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, route, rec.status, elapsed.Seconds())
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", clientIP(r)),
		)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status, r.wroteHeader = status, true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Flush lets streaming handlers flush through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// clientIP uses the connection address; forwarded headers are not trusted.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps err to a status and writes the error body. Internal errors
// are logged and their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	s.jsonResponse(w, status, ErrorResponse{Error: errorCode(status), Message: publicMessage(status, err)})
}

func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// decodeJSON reads a bounded JSON body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.NewValidationError("body", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return types.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}
