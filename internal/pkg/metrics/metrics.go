// Package metrics holds the Prometheus collectors for matcher activity.
//
// Collectors live on a private registry. Nothing is exposed over HTTP; the
// CLI reads the registry with Gather to print a summary.
package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "strsearch"

var (
	registry = prometheus.NewRegistry()

	scansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Number of scans performed, by algorithm.",
	}, []string{"algorithm"})

	matchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_total",
		Help:      "Number of matches reported, by algorithm.",
	}, []string{"algorithm"})

	bytesScannedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bytes_scanned_total",
		Help:      "Number of text bytes scanned, by algorithm.",
	}, []string{"algorithm"})

	buildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Time spent building matcher tables or automata.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"algorithm"})

	automatonStates = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "automaton_states",
		Help:      "State count of the most recently swapped-in automaton.",
	})

	automatonRebuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "automaton_rebuilds_total",
		Help:      "Automaton rebuilds by outcome (built, skipped, failed, cleared).",
	}, []string{"outcome"})
)

func init() {
	registry.MustRegister(
		scansTotal,
		matchesTotal,
		bytesScannedTotal,
		buildDuration,
		automatonStates,
		automatonRebuilds,
	)
}

// Registry returns the registry holding all collectors.
func Registry() *prometheus.Registry {
	return registry
}

// RecordScan counts one scan of n bytes that produced matches results.
func RecordScan(algorithm string, n, matches int) {
	scansTotal.WithLabelValues(algorithm).Inc()
	bytesScannedTotal.WithLabelValues(algorithm).Add(float64(n))
	matchesTotal.WithLabelValues(algorithm).Add(float64(matches))
}

// ObserveBuild records how long building a matcher took.
func ObserveBuild(algorithm string, d time.Duration) {
	buildDuration.WithLabelValues(algorithm).Observe(d.Seconds())
}

// SetAutomatonStates records the state count of the active automaton.
func SetAutomatonStates(n int) {
	automatonStates.Set(float64(n))
}

// RecordRebuild counts an automaton rebuild attempt.
func RecordRebuild(outcome string) {
	automatonRebuilds.WithLabelValues(outcome).Inc()
}

// Sample is one flattened metric value.
type Sample struct {
	Name   string            `json:"name" yaml:"name"`
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Value  float64           `json:"value" yaml:"value"`
}

// Snapshot gathers counters and gauges into a flat, sorted list.
// Histograms are reported as their sample count and sum.
func Snapshot() ([]Sample, error) {
	families, err := registry.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				samples = append(samples, Sample{Name: mf.GetName(), Labels: labels, Value: m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				samples = append(samples, Sample{Name: mf.GetName(), Labels: labels, Value: m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				samples = append(samples,
					Sample{Name: mf.GetName() + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: mf.GetName() + "_sum", Labels: labels, Value: h.GetSampleSum()},
				)
			}
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Name < samples[j].Name
	})
	return samples, nil
}
