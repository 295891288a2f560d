package devserver

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are exported on /metrics of the dev server.
type metrics struct {
	registry *prometheus.Registry
	reloads  prometheus.Counter
	clients  prometheus.Gauge
	requests *prometheus.CounterVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &metrics{
		registry: registry,
		reloads: factory.NewCounter(prometheus.CounterOpts{
			Name: "swig_devserver_reloads_total",
			Help: "Number of reload broadcasts sent to live reload clients.",
		}),
		clients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "swig_devserver_clients",
			Help: "Number of connected live reload clients.",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "swig_devserver_requests_total",
			Help: "Number of HTTP requests served, by status code.",
		}, []string{"code"}),
	}
}

// middleware counts every request by its final status code.
func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.requests.WithLabelValues(strconv.Itoa(c.Writer.Status())).Inc()
	}
}
