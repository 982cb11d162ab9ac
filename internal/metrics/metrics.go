// internal/metrics/metrics.go

// Package metrics counts bus and acquisition activity for one run.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ade9000"

// Error kinds.
const (
	KindTransport = "transport"
	KindSink      = "sink"
	KindProtocol  = "protocol"
)

type Metrics struct {
	reg *prometheus.Registry

	cycles       prometheus.Counter
	waitPolls    prometheus.Counter
	transactions *prometheus.CounterVec
	retries      prometheus.Counter
	errors       *prometheus.CounterVec
	energy       *prometheus.GaugeVec
}

// New registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed measurement cycles.",
		}),
		waitPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wait_polls_total",
			Help:      "STATUS0 polls that found the energy-ready flag clear.",
		}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_transactions_total",
			Help:      "Register transactions on the bus.",
		}, []string{"op"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_retries_total",
			Help:      "Register transactions repeated after a transport failure.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by kind.",
		}, []string{"kind"}),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_wh",
			Help:      "Accumulated active energy per channel since start of run.",
		}, []string{"channel"}),
	}

	m.reg.MustRegister(m.cycles, m.waitPolls, m.transactions, m.retries, m.errors, m.energy)
	return m
}

func (m *Metrics) CycleDone() {
	if m == nil {
		return
	}
	m.cycles.Inc()
}

func (m *Metrics) WaitPoll() {
	if m == nil {
		return
	}
	m.waitPolls.Inc()
}

// Transaction counts one register access; op is "read" or "write".
func (m *Metrics) Transaction(op string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(op).Inc()
}

func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *Metrics) Error(kind string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetEnergy(channel string, wh float64) {
	if m == nil {
		return
	}
	m.energy.WithLabelValues(channel).Set(wh)
}

// Gatherer exposes the private registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.reg
}

// WriteTextfile dumps the registry in node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}
