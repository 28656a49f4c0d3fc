// Package metrics adapts snaplerp.Metrics onto Prometheus collectors, so a
// process embedding the engine can expose buffer and interpolation health
// on a standard /metrics endpoint without the core package itself taking
// a dependency on Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/halvardsen/snaplerp"
)

// Source is anything that can produce a current Metrics snapshot; it is
// satisfied by (*snaplerp.Engine[S]).Metrics bound to its buffer.
type Source func() snaplerp.Metrics

// Recorder is a prometheus.Collector that reports the counters behind a
// snaplerp.Engine/Buffer pair on every scrape.
type Recorder struct {
	source Source

	admitted       *prometheus.Desc
	rejected       *prometheus.Desc
	computed       *prometheus.Desc
	underfull      *prometheus.Desc
	warming        *prometheus.Desc
	segmentsPopped *prometheus.Desc
	catchupEngaged *prometheus.Desc
	overshoots     *prometheus.Desc
}

// NewRecorder returns a Recorder that calls source on every Collect to
// read the current counters. namespace is used as the Prometheus metric
// namespace (e.g. "snaplerpd").
func NewRecorder(namespace string, source Source) *Recorder {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "buffer", name), help, nil, nil)
	}
	return &Recorder{
		source:         source,
		admitted:       desc("admitted_total", "Snapshots accepted by insert_if_new_enough."),
		rejected:       desc("rejected_total", "Snapshots dropped by the ACB/first-is-lagging rules."),
		computed:       desc("computed_total", "Compute calls that produced an interpolated snapshot."),
		underfull:      desc("underfull_total", "Compute calls that found fewer than two buffered snapshots."),
		warming:        desc("warming_total", "Compute calls blocked by the buffer-time gate."),
		segmentsPopped: desc("segments_popped_total", "Front-of-buffer evictions across all ticks."),
		catchupEngaged: desc("catchup_engaged_total", "Ticks where the buffer exceeded the catch-up threshold."),
		overshoots:     desc("overshoots_total", "Ticks clamped to the newest snapshot instead of interpolating."),
	}
}

// Describe implements prometheus.Collector.
func (r *Recorder) Describe(ch chan<- *prometheus.Desc) {
	ch <- r.admitted
	ch <- r.rejected
	ch <- r.computed
	ch <- r.underfull
	ch <- r.warming
	ch <- r.segmentsPopped
	ch <- r.catchupEngaged
	ch <- r.overshoots
}

// Collect implements prometheus.Collector.
func (r *Recorder) Collect(ch chan<- prometheus.Metric) {
	m := r.source()

	ch <- prometheus.MustNewConstMetric(r.admitted, prometheus.CounterValue, float64(m.Admitted))
	ch <- prometheus.MustNewConstMetric(r.rejected, prometheus.CounterValue, float64(m.Rejected))
	ch <- prometheus.MustNewConstMetric(r.computed, prometheus.CounterValue, float64(m.Computed))
	ch <- prometheus.MustNewConstMetric(r.underfull, prometheus.CounterValue, float64(m.Underfull))
	ch <- prometheus.MustNewConstMetric(r.warming, prometheus.CounterValue, float64(m.Warming))
	ch <- prometheus.MustNewConstMetric(r.segmentsPopped, prometheus.CounterValue, float64(m.SegmentsPopped))
	ch <- prometheus.MustNewConstMetric(r.catchupEngaged, prometheus.CounterValue, float64(m.CatchupEngaged))
	ch <- prometheus.MustNewConstMetric(r.overshoots, prometheus.CounterValue, float64(m.Overshoots))
}
