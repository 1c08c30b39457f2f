// Package metrics exposes Prometheus collectors for scoring, control and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups every metric the service records. A nil *Collectors is valid
// and records nothing.
type Collectors struct {
	registry *prometheus.Registry

	scoreSubmissions   *prometheus.CounterVec
	controlTransitions *prometheus.CounterVec
	audienceVotes      *prometheus.CounterVec
	leaderboardLatency prometheus.Histogram
	realtimeClients    prometheus.Gauge
	httpLatency        *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collectors{
		registry: reg,
		scoreSubmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livescore_score_submissions_total",
				Help: "Score upserts by outcome.",
			},
			[]string{"outcome"},
		),
		controlTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livescore_control_transitions_total",
				Help: "Control-state operations by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		audienceVotes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livescore_audience_votes_total",
				Help: "Audience ballots by outcome.",
			},
			[]string{"outcome"},
		),
		leaderboardLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "livescore_leaderboard_compute_seconds",
				Help:    "Time spent recomputing the leaderboard.",
				Buckets: prometheus.DefBuckets,
			},
		),
		realtimeClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "livescore_realtime_clients",
				Help: "Connected realtime clients.",
			},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "livescore_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (c *Collectors) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collectors) ScoreSubmission(outcome string) {
	if c == nil {
		return
	}
	c.scoreSubmissions.WithLabelValues(outcome).Inc()
}

func (c *Collectors) ControlTransition(op, outcome string) {
	if c == nil {
		return
	}
	c.controlTransitions.WithLabelValues(op, outcome).Inc()
}

func (c *Collectors) AudienceVote(outcome string) {
	if c == nil {
		return
	}
	c.audienceVotes.WithLabelValues(outcome).Inc()
}

func (c *Collectors) LeaderboardComputed(d time.Duration) {
	if c == nil {
		return
	}
	c.leaderboardLatency.Observe(d.Seconds())
}

func (c *Collectors) RealtimeClients(n int) {
	if c == nil {
		return
	}
	c.realtimeClients.Set(float64(n))
}

// Middleware records request latency labelled by the matched route template.
func (c *Collectors) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		if c == nil {
			return
		}
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.httpLatency.
			WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collectors) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
