package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	rasterizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rasterize_total",
			Help: "Total document rasterizations by outcome and final stage",
		},
		[]string{"outcome", "stage"},
	)

	rasterizeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rasterize_duration_seconds",
			Help:    "Duration of document rasterization in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"engine"},
	)

	engineLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_loads_total",
			Help: "Rendering engine initializations by engine and result",
		},
		[]string{"engine", "result"},
	)

	feedbackRendersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedback_renders_total",
			Help: "Total feedback detail views rendered",
		},
	)
)

// ObserveRasterize records the outcome of one conversion.
func ObserveRasterize(engine, outcome, stage string, elapsed time.Duration) {
	rasterizeTotal.WithLabelValues(outcome, stage).Inc()
	rasterizeDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// IncEngineLoad counts a rendering engine initialization attempt.
func IncEngineLoad(engine, result string) {
	engineLoadsTotal.WithLabelValues(engine, result).Inc()
}

// IncFeedbackRender counts a rendered feedback view.
func IncFeedbackRender() {
	feedbackRendersTotal.Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
