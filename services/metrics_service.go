package services

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"signalbox/internal/models"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalbox_http_requests_total",
			Help: "Total API requests",
		},
		[]string{"path", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signalbox_http_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	serviceStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signalbox_service_status",
			Help: "1 for the canonical status a service is currently in, 0 otherwise",
		},
		[]string{"service", "status"},
	)

	serviceActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signalbox_service_actions_total",
			Help: "Lifecycle actions issued to services",
		},
		[]string{"service", "action", "result"},
	)

	sdrDevices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signalbox_sdr_devices",
			Help: "SDR dongles found by the last inventory",
		},
	)

	totalRequests int64
	errorRequests int64
)

func init() {
	prometheus.MustRegister(requestCount, requestDuration, serviceStatus, serviceActions, sdrDevices)
}

// RecordRequest counts one API request, used by the gin middleware.
func RecordRequest(path string, code string, seconds float64, failed bool) {
	requestCount.WithLabelValues(path, code).Inc()
	requestDuration.WithLabelValues(path).Observe(seconds)
	atomic.AddInt64(&totalRequests, 1)
	if failed {
		atomic.AddInt64(&errorRequests, 1)
	}
}

func GetTotalRequestCount() int64 {
	return atomic.LoadInt64(&totalRequests)
}

func GetTotalErrorCount() int64 {
	return atomic.LoadInt64(&errorRequests)
}

func recordStatus(service string, status models.ServiceStatus) {
	for _, s := range models.AllStatuses {
		v := 0.0
		if s == status {
			v = 1
		}
		serviceStatus.WithLabelValues(service, string(s)).Set(v)
	}
}

func forgetStatus(service string) {
	for _, s := range models.AllStatuses {
		serviceStatus.DeleteLabelValues(service, string(s))
	}
}

func recordAction(service, action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	serviceActions.WithLabelValues(service, action, result).Inc()
}

func recordDevices(n int) {
	sdrDevices.Set(float64(n))
}
