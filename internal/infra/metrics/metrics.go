package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assistantRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_runs_total",
			Help: "Total number of assistant runs by terminal status",
		},
		[]string{"status"},
	)

	toolDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_dispatches_total",
			Help: "Total number of tool calls dispatched",
		},
		[]string{"tool", "result"},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads created",
		},
	)

	appointmentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appointments_created_total",
			Help: "Total number of appointments created",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

func RecordRun(status string) {
	assistantRuns.WithLabelValues(status).Inc()
}

func RecordToolDispatch(tool, result string) {
	toolDispatches.WithLabelValues(tool, result).Inc()
}

func RecordLeadCreated() {
	leadsCreated.Inc()
}

func RecordAppointmentCreated() {
	appointmentsCreated.Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
