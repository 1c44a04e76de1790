package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics exposes Prometheus collectors for background jobs.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	breaches prometheus.Gauge
}

var (
	jobDefaultOnce sync.Once
	jobDefault     *JobMetrics
)

// NewJobMetrics registers the job metrics against the provided registerer.
// When the registerer is nil the default Prometheus registerer is used.
func NewJobMetrics(registerer prometheus.Registerer) *JobMetrics {
	if registerer == nil {
		jobDefaultOnce.Do(func() {
			jobDefault = buildJobMetrics(prometheus.DefaultRegisterer)
		})
		return jobDefault
	}
	return buildJobMetrics(registerer)
}

// JobTracker instruments a single job run.
type JobTracker struct {
	metrics *JobMetrics
	job     string
	start   time.Time
}

// Track spawns a tracker for the given job name.
func (m *JobMetrics) Track(job string) *JobTracker {
	if m == nil {
		return &JobTracker{job: job, start: time.Now()}
	}
	return &JobTracker{metrics: m, job: job, start: time.Now()}
}

// End finalises the tracker, recording duration and success/failure counts,
// and returns the provided error untouched.
func (t *JobTracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// SetLowStockBreaches records the breach count observed by the latest scan.
func (m *JobMetrics) SetLowStockBreaches(count int) {
	if m == nil {
		return
	}
	m.breaches.Set(float64(count))
}

func buildJobMetrics(registerer prometheus.Registerer) *JobMetrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockbook_jobs_total",
		Help: "Total job executions partitioned by job name and status.",
	}, []string{"job", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockbook_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	breaches := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stockbook_low_stock_breaches",
		Help: "Products at or below their minimum stock level per the latest scan.",
	})
	registerer.MustRegister(runs, duration, breaches)
	return &JobMetrics{runs: runs, duration: duration, breaches: breaches}
}
