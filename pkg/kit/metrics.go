package kit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelService = "service"
	labelMethod  = "method"
	labelPath    = "path"
	labelStatus  = "status"
	labelStore   = "store"
	labelKey     = "key"
	labelResult  = "result"

	defaultStatusCode = http.StatusOK
)

type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{labelService, labelMethod, labelPath, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP latency",
			},
			[]string{labelService, labelMethod, labelPath},
		),
	}

	reg.MustRegister(m.Requests, m.Latency)
	return m
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (m *Metrics) Middleware(service string, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{
				ResponseWriter: w,
				status:         defaultStatusCode,
			}

			start := time.Now()
			next.ServeHTTP(sw, r)

			path := pathLabel(r)
			m.Latency.WithLabelValues(service, r.Method, path).
				Observe(time.Since(start).Seconds())

			m.Requests.WithLabelValues(service, r.Method, path, strconv.Itoa(sw.status)).
				Inc()
		})
	}
}

// StorageMetrics tracks background persistence. A nil *StorageMetrics is
// valid and records nothing.
type StorageMetrics struct {
	Writes  *prometheus.CounterVec
	Pending *prometheus.GaugeVec
}

func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	m := &StorageMetrics{
		Writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_writes_total",
				Help: "Background storage writes by outcome",
			},
			[]string{labelStore, labelKey, labelResult},
		),
		Pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storage_queue_pending",
				Help: "Keys waiting in the write queue",
			},
			[]string{labelStore},
		),
	}

	reg.MustRegister(m.Writes, m.Pending)
	return m
}

func (m *StorageMetrics) ObserveWrite(store, key string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Writes.WithLabelValues(store, key, result).Inc()
}

func (m *StorageMetrics) SetPending(store string, n int) {
	if m == nil {
		return
	}
	m.Pending.WithLabelValues(store).Set(float64(n))
}
