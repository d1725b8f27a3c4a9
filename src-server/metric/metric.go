// The `metric` package holds the prometheus collectors the pipeline
// reports into. They are only served when running in loop mode; a one-off
// run still updates them, they just never leave the process.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commcal_runs_total",
		Help: "The number of completed pipeline runs",
	})

	RunDurationSec = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "commcal_run_duration_sec",
		Help: "The duration of the last pipeline run in seconds",
	})

	SourceEvents = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "commcal_source_events",
		Help: "The number of events a source contributed on the last run",
	}, []string{"source"})

	SourceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commcal_source_failures_total",
		Help: "The number of failed fetches per source",
	}, []string{"source"})

	SourceStaleHours = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "commcal_source_stale_hours",
		Help: "How many hours old the snapshot a source is served from is, 0 when fresh",
	}, []string{"source"})
)
