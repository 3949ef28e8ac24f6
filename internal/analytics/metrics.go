package analytics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clutchzone_http_requests_total",
		Help: "HTTP requests processed, by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clutchzone_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clutchzone_ws_connections",
		Help: "Currently open WebSocket connections.",
	})

	WSRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clutchzone_ws_rooms",
		Help: "Rooms with at least one member.",
	})

	WSMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clutchzone_ws_messages_total",
		Help: "Inbound WebSocket protocol messages, by type.",
	}, []string{"type"})

	UserRegistrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clutchzone_user_registrations_total",
		Help: "Successful account registrations.",
	})
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HubRecorder feeds hub state changes into the prometheus gauges. It
// satisfies realtime.MetricsRecorder so the realtime package stays free of
// a prometheus import.
type HubRecorder struct{}

func (HubRecorder) SetConnections(n int) { WSConnections.Set(float64(n)) }

func (HubRecorder) SetRooms(n int) { WSRooms.Set(float64(n)) }

func (HubRecorder) MessageIn(msgType string) { WSMessages.WithLabelValues(msgType).Inc() }
