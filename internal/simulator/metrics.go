package simulator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики симулятора.
var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulata_simulator_runs_started_total",
		Help: "Flow run simulations spawned",
	})

	runsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulata_simulator_runs_completed_total",
		Help: "Flow run simulations that reached COMPLETED",
	})

	runsAborted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulata_simulator_runs_aborted_total",
		Help: "Flow run simulations abandoned (external terminal state or shutdown)",
	})

	taskRunsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulata_simulator_task_runs_created_total",
		Help: "Task runs materialized by the simulator",
	})

	activeRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "simulata_simulator_active_runs",
		Help: "Flow run simulations currently in flight",
	})
)
