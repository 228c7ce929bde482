package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	TasksPublished   = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_tasks_published_total", Help: "Orders handed to the task queue"})
	TasksConfirmed   = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_tasks_confirmed_total", Help: "Task publishes acked by the broker"})
	TasksNacked      = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_tasks_nacked_total", Help: "Task publishes nacked by the broker"})
	ResultsApplied   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "orders_results_applied_total", Help: "Result messages applied, by outcome"}, []string{"status"})
	ResultsDuplicate = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_results_duplicate_total", Help: "Results ignored because the order was already terminal"})
	ResultsMalformed = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_results_malformed_total", Help: "Unparsable result messages attributed via the pending list"})
	InFlightGauge    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "orders_inflight", Help: "Orders handed off but not yet resolved by a result"})
	LongWaitOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "orders_longwait_outcomes_total", Help: "Long-wait request resolutions, by outcome"}, []string{"outcome"})
	ProcessSeconds   = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "worker_process_seconds", Help: "Simulated processing duration per task", Buckets: prometheus.DefBuckets})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			TasksPublished,
			TasksConfirmed,
			TasksNacked,
			ResultsApplied,
			ResultsDuplicate,
			ResultsMalformed,
			InFlightGauge,
			LongWaitOutcomes,
			ProcessSeconds,
		)
	})
	return promhttp.Handler()
}
