package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aleister1102/hashwatch/internal/models"
)

const namespace = "hashwatch"

// Recorder collects per-run metrics on a private registry so they can be written to a
// node_exporter textfile at the end of a one-shot run.
type Recorder struct {
	registry      *prometheus.Registry
	checks        *prometheus.CounterVec
	fetchAttempts prometheus.Histogram
	checkDuration *prometheus.HistogramVec
	runDuration   prometheus.Gauge
	runFailed     prometheus.Gauge
	lastRun       prometheus.Gauge
	monitoredURLs prometheus.Gauge
}

// NewRecorder builds the application metrics and registers them
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "URL checks by outcome state",
			},
			[]string{"state"},
		),
		fetchAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_attempts",
			Help:      "fetch attempts needed per URL",
			Buckets:   []float64{1, 2, 3, 5, 8},
		}),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_seconds",
				Help:      "time spent checking one URL",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"state"},
		),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "wall-clock duration of the last run",
		}),
		runFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_partial_failure",
			Help:      "1 when the last run had failed URLs",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "unix time the last run finished",
		}),
		monitoredURLs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitored_urls",
			Help:      "number of URLs configured for the last run",
		}),
	}

	r.registry.MustRegister(
		r.checks,
		r.fetchAttempts,
		r.checkDuration,
		r.runDuration,
		r.runFailed,
		r.lastRun,
		r.monitoredURLs,
	)
	for _, state := range []models.CheckState{models.CheckStateUnchanged, models.CheckStateChanged, models.CheckStateFailed} {
		r.checks.WithLabelValues(string(state))
	}
	return r
}

// ObserveResult records one finished URL check.
func (r *Recorder) ObserveResult(result models.CheckResult) {
	state := string(result.State)
	r.checks.WithLabelValues(state).Inc()
	r.checkDuration.WithLabelValues(state).Observe(result.Duration.Seconds())
	if result.Attempts > 0 {
		r.fetchAttempts.Observe(float64(result.Attempts))
	}
}

// ObserveRun records the run summary.
func (r *Recorder) ObserveRun(report *models.RunReport) {
	r.runDuration.Set(report.Duration().Seconds())
	r.lastRun.Set(float64(report.FinishedAt.Unix()))
	r.monitoredURLs.Set(float64(report.Total()))
	if report.Status.IsSuccess() {
		r.runFailed.Set(0)
	} else {
		r.runFailed.Set(1)
	}
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
