package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/cdsim/internal/dynamo"
)

const namespace = "cdsim"

// Exporter publishes run progress as Prometheus metrics on its own registry.
// It is a dynamo.Observer: each sample updates the concentration gauges.
type Exporter struct {
	registry *prometheus.Registry
	labels   []string

	concentration *prometheus.GaugeVec
	simTime       prometheus.Gauge
	samples       prometheus.Counter
	steps         prometheus.Counter
	runs          *prometheus.CounterVec
	runSeconds    prometheus.Histogram
	finalMetrics  *prometheus.GaugeVec
}

func NewExporter(labels []string) *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		labels:   labels,
		concentration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "concentration",
			Help:      "Latest sampled concentration per species.",
		}, []string{"species"}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_time_seconds",
			Help:      "Simulated time of the latest sample.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Samples emitted.",
		}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Committed integration steps.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by outcome.",
		}, []string{"outcome"}),
		runSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		finalMetrics: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_metric",
			Help:      "Run metrics reported at the end of the last run.",
		}, []string{"metric"}),
	}
	e.registry.MustRegister(e.concentration, e.simTime, e.samples, e.steps, e.runs, e.runSeconds, e.finalMetrics)
	return e
}

func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func (e *Exporter) OnSample(x dynamo.State, t float64) {
	for i, v := range x {
		if i < len(e.labels) {
			e.concentration.WithLabelValues(e.labels[i]).Set(v)
		}
	}
	e.simTime.Set(t)
	e.samples.Inc()
}

// RecordRun accounts for a finished run.
func (e *Exporter) RecordRun(res *dynamo.Result, elapsed time.Duration) {
	outcome := "completed"
	if res.Diverged {
		outcome = "diverged"
	} else if len(res.Errors) > 0 {
		outcome = "failed"
	}
	e.runs.WithLabelValues(outcome).Inc()
	e.steps.Add(float64(res.StepsTaken))
	e.runSeconds.Observe(elapsed.Seconds())
	for name, v := range res.Metrics {
		e.finalMetrics.WithLabelValues(name).Set(v)
	}
}
