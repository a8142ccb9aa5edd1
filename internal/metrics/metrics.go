// Package metrics collects Prometheus metrics for API traffic and scanning,
// and optionally serves them on /metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the scanner and the HTTP transport report to.
type Recorder interface {
	RecordRequest(method, route string, statusCode int, duration time.Duration)
	RecordNetworkFailure(method, route string)
	RecordScan(outcome string)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	networkFailures *prometheus.CounterVec
	scans           *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fridge_api_requests_total",
			Help: "API responses by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fridge_api_request_duration_seconds",
			Help:    "API round-trip latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		networkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fridge_api_network_failures_total",
			Help: "API requests that got no response",
		}, []string{"method", "route"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fridge_scans_total",
			Help: "Scan pipeline events by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(c.requests, c.latency, c.networkFailures, c.scans)
	return c
}

func (c *Collector) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordNetworkFailure(method, route string) {
	c.networkFailures.WithLabelValues(method, route).Inc()
}

// RecordScan counts accepted, rejected, submitted and failed scans.
func (c *Collector) RecordScan(outcome string) {
	c.scans.WithLabelValues(outcome).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordNetworkFailure(string, string)               {}
func (Nop) RecordScan(string)                                 {}

// Transport records every round trip through next.
type Transport struct {
	next http.RoundTripper
	rec  Recorder
}

func NewTransport(next http.RoundTripper, rec Recorder) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{next: next, rec: rec}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	route := Route(req.URL.Path)
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.rec.RecordNetworkFailure(req.Method, route)
		return nil, err
	}
	t.rec.RecordRequest(req.Method, route, resp.StatusCode, time.Since(start))
	return resp, nil
}

// Route collapses per-fridge paths so ids do not become label values.
func Route(path string) string {
	const items = "/api/fridge-items/"
	if strings.HasPrefix(path, items) && len(path) > len(items) {
		return items + ":id"
	}
	return path
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute returns a mux serving /metrics.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           SetupMetricsRoute(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
