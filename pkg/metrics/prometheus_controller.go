package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/workstream-hr/workstream/pkg/application"
)

// Workflow counters exported for the transition engine and the sweep.
var (
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstream_workflow_transitions_total",
		Help: "Workflow status transitions applied, by target status.",
	}, []string{"status"})

	SweepDeletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workstream_workflow_sweep_deletions_total",
		Help: "Duplicate workflow records removed by the deduplication sweep.",
	}, []string{"category"})
)

type PrometheusController struct {
	path string
}

func NewPrometheusController(path string) application.Controller {
	if path == "" {
		path = "/debug/prometheus"
	}
	return &PrometheusController{path: path}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.Handler()).Methods(http.MethodGet)
}
