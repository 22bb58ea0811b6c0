// Package metrics exposes Prometheus collectors for capability binding and
// strategy dispatch.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-capability/framework/capability"
)

const namespace = "capbind"

// Collectors owns a private registry so several applications (and tests)
// can live in one process.
type Collectors struct {
	Registry *prometheus.Registry

	bindings   *prometheus.CounterVec
	dispatches *prometheus.CounterVec
}

var _ capability.DispatchObserver = (*Collectors)(nil)

// New registers the capability collectors plus the Go and process
// collectors on a fresh registry.
func New() *Collectors {
	c := &Collectors{
		Registry: prometheus.NewRegistry(),
		bindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bindings_total",
			Help:      "Implementations registered into the container, by capability, strategy and implementation.",
		}, []string{"capability", "strategy", "implementation"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_dispatch_total",
			Help:      "Strategy aggregate routing decisions, by capability, member and outcome.",
		}, []string{"capability", "member", "outcome"}),
	}
	c.Registry.MustRegister(
		c.bindings,
		c.dispatches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveBinding counts one implementation registration.
func (c *Collectors) ObserveBinding(t capability.Type, strategy capability.BindingStrategy, implementation string) {
	c.bindings.WithLabelValues(string(t), string(strategy), implementation).Inc()
}

// ObserveDispatch counts one routing decision. Unmatched discriminators are
// reported with an empty member label to keep cardinality bounded.
func (c *Collectors) ObserveDispatch(t capability.Type, discriminator string, matched bool) {
	if !matched {
		c.dispatches.WithLabelValues(string(t), "", "unknown_member").Inc()
		return
	}
	c.dispatches.WithLabelValues(string(t), discriminator, "routed").Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}
