package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issnotifier_cycles_total",
			Help: "Total number of polling cycles by outcome.",
		},
		[]string{"outcome"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issnotifier_notifications_total",
			Help: "Total number of notification attempts by result.",
		},
		[]string{"result"},
	)

	upstreamDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "issnotifier_upstream_duration_seconds",
			Help:    "Upstream request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream", "status"},
	)

	satelliteLatitude = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "issnotifier_satellite_latitude_degrees",
		Help: "Last reported satellite latitude.",
	})

	satelliteLongitude = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "issnotifier_satellite_longitude_degrees",
		Help: "Last reported satellite longitude.",
	})
)

func init() {
	prometheus.MustRegister(cyclesTotal)
	prometheus.MustRegister(notificationsTotal)
	prometheus.MustRegister(upstreamDurationSeconds)
	prometheus.MustRegister(satelliteLatitude)
	prometheus.MustRegister(satelliteLongitude)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCycle counts one finished polling cycle.
func RecordCycle(outcome string) {
	cyclesTotal.WithLabelValues(outcome).Inc()
}

// RecordNotification counts a notification attempt; ok=false means it was dropped.
func RecordNotification(ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	notificationsTotal.WithLabelValues(result).Inc()
}

// ObserveUpstream records how long a call to an external service took.
func ObserveUpstream(upstream string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	upstreamDurationSeconds.WithLabelValues(upstream, status).Observe(time.Since(start).Seconds())
}

// SetSatellitePosition exports the most recent position reading.
func SetSatellitePosition(latitude, longitude float64) {
	satelliteLatitude.Set(latitude)
	satelliteLongitude.Set(longitude)
}
