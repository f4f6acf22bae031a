package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HostResolutionFailures counts failed name resolutions in broker matching.
func (m *Metrics) HostResolutionFailures() prometheus.Counter {
	return m.hostResolutionFailures
}

// FormatterResolutions counts formatter resolutions, labelled by format.
func (m *Metrics) FormatterResolutions() *prometheus.CounterVec {
	return m.formatterResolutions
}

// DecodeErrors counts undecodable records, labelled by format.
func (m *Metrics) DecodeErrors() *prometheus.CounterVec {
	return m.decodeErrors
}

func createCounter(namespace, name, help string) prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
	)
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
