package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RegisterDB exposes sql.DBStats for the pool under the given name.
func RegisterDB(reg prometheus.Registerer, db *sql.DB, name string) error {
	return reg.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Domain counts catalog and playlist mutations.
type Domain struct {
	Mutations *prometheus.CounterVec
}

// NewDomain registers the domain mutation counters on reg.
func NewDomain(reg prometheus.Registerer) *Domain {
	return &Domain{
		Mutations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "rhymcaffer_domain_mutations_total",
			Help: "Committed domain mutations by entity and operation",
		}, []string{"entity", "operation"}),
	}
}

// IncMutation records one committed mutation. Safe on a nil receiver.
func (d *Domain) IncMutation(entity, operation string) {
	if d == nil {
		return
	}
	d.Mutations.WithLabelValues(entity, operation).Inc()
}
