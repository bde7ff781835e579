package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"kakeibo/internal/middleware/ratelimit"
)

// handleHealth performs basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady pings the store so a load balancer can hold traffic while it is down.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"store": "ok"}
	status, code := "ready", http.StatusOK
	if s.health == nil {
		checks["store"] = "not_configured"
	} else if err := s.health.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(code).Payload(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	var rl ratelimit.Metrics
	if s.limiter != nil {
		rl = s.limiter.GetMetrics()
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n\n", name, help, name, name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_server_errors_total", "Responses with a 5xx status", traceMetrics.ServerErrors)
	gauge("http_response_time_avg_microseconds", "Average response time", traceMetrics.AverageResponseTime)
	counter("transactions_recorded_total", "Transactions recorded through /add", atomic.LoadInt64(&s.recorded))
	counter("rate_limit_hits_total", "Requests rejected by the rate limiter", rl.TotalHits)
	gauge("rate_limit_active_clients", "Clients tracked by the rate limiter", rl.ClientCount)
	counter("security_suspicious_requests_total", "Requests matching scanner patterns", s.detector.SuspiciousRequests())
	gauge("uptime_seconds", "Seconds since the server started", int64(time.Since(s.started).Seconds()))
}
