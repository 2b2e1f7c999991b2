package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const MetricPrefix = "tidewatch_"

const (
	ReloadOutcomeSuccess  = "success"
	ReloadOutcomeDegraded = "degraded"
)

var RequestsTotalCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Name: MetricPrefix + "requests_total",
	Help: "Total number of incoming requests",
})

var ReloadsTotalCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: MetricPrefix + "reloads_total",
	Help: "Total number of source reloads by outcome",
}, []string{"outcome"})

var jobsLoadedDesc = prometheus.NewDesc(
	MetricPrefix+"jobs_loaded",
	"Number of jobs in the current snapshot",
	nil,
	nil,
)

var lastReloadTimeDesc = prometheus.NewDesc(
	MetricPrefix+"last_reload_timestamp_seconds",
	"Unix time of the last completed reload",
	nil,
	nil,
)

// JobStoreMetricsProvider reports the state of the current snapshot.
type JobStoreMetricsProvider interface {
	GetJobsLoaded() int
	GetLastReloadTime() time.Time
}

type JobStoreCollector struct {
	provider JobStoreMetricsProvider
}

func ExposeTidewatchMetrics(provider JobStoreMetricsProvider) {
	prometheus.MustRegister(RequestsTotalCounter)
	prometheus.MustRegister(ReloadsTotalCounter)
	prometheus.MustRegister(&JobStoreCollector{provider: provider})
}

// RecordReload counts one reload, degraded meaning the source could not be
// read and an empty snapshot was published.
func RecordReload(err error) {
	if err != nil {
		ReloadsTotalCounter.WithLabelValues(ReloadOutcomeDegraded).Inc()
	} else {
		ReloadsTotalCounter.WithLabelValues(ReloadOutcomeSuccess).Inc()
	}
}

func (c *JobStoreCollector) Describe(desc chan<- *prometheus.Desc) {
	desc <- jobsLoadedDesc
	desc <- lastReloadTimeDesc
}

func (c *JobStoreCollector) Collect(metrics chan<- prometheus.Metric) {
	metrics <- prometheus.MustNewConstMetric(
		jobsLoadedDesc, prometheus.GaugeValue, float64(c.provider.GetJobsLoaded()))

	lastReload := c.provider.GetLastReloadTime()
	if !lastReload.IsZero() {
		metrics <- prometheus.MustNewConstMetric(
			lastReloadTimeDesc, prometheus.GaugeValue, float64(lastReload.Unix()))
	}
}
