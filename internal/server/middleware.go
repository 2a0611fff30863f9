package server

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var knownRoutes = map[string]bool{
	"/healthz":     true,
	"/metrics":     true,
	"/v1/emi":      true,
	"/v1/schedule": true,
	"/v1/compare":  true,
	"/v1/afford":   true,
	"/v1/schemes":  true,
	"/v1/history":  true,
	"/v1/recent":   true,
	"/v1/status":   true,
	"/v1/stream":   true,
}

// routeLabel keeps metric cardinality bounded for unknown paths.
func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func clientKey(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// instrument logs every request and records its status and latency.
func (s *Service) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := routeLabel(r.URL.Path)
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("client", clientKey(r)),
		)
	})
}

// rateLimit rejects clients over their allowance with 429. Limiter errors
// are logged and the request is let through.
func (s *Service) rateLimit(next http.Handler) http.Handler {
	if s.cfg.Limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		ok, err := s.cfg.Limiter.Allow(r.Context(), key)
		if err != nil {
			s.logger.Warn("rate limiter unavailable", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			s.metrics.rateLimited.Inc()
			s.writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
