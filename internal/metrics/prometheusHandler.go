package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working behind the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *HttpStatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "job_duration_seconds",
	Help:    "Total time spent running a job, by final status.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_sessions",
	Help: "Number of sessions held in memory",
})

var ingestedPages = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingest_pages_total",
	Help: "Pages seen by the ingestion pipeline, labelled loaded or indexed",
}, []string{"kind"})

var chunksPerUpload = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "ingest_chunks_per_upload",
	Help:    "Number of chunks produced by one upload.",
	Buckets: prometheus.ExponentialBuckets(1, 2, 12),
})

var truncatedUploads = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ingest_truncated_uploads_total",
	Help: "Uploads with more pages than the indexing limit",
})

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

func CaptureIngestMetrics(pagesLoaded int, pagesIndexed int, chunks int, truncated bool) {
	ingestedPages.WithLabelValues("loaded").Add(float64(pagesLoaded))
	ingestedPages.WithLabelValues("indexed").Add(float64(pagesIndexed))
	chunksPerUpload.Observe(float64(chunks))
	if truncated {
		truncatedUploads.Inc()
	}
}
