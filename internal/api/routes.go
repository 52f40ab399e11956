package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Work pools
	mux.Handle("POST /api/work_pools/{$}", chain(http.HandlerFunc(h.CreateWorkPool)))
	mux.Handle("GET /api/work_pools/{$}", chain(http.HandlerFunc(h.ListWorkPools)))
	mux.Handle("GET /api/work_pools/{name}", chain(http.HandlerFunc(h.GetWorkPool)))

	// Deployments
	mux.Handle("POST /api/deployments/{$}", chain(http.HandlerFunc(h.CreateDeployment)))
	mux.Handle("GET /api/deployments/{$}", chain(http.HandlerFunc(h.ListDeployments)))
	mux.Handle("GET /api/deployments/{id}", chain(http.HandlerFunc(h.GetDeployment)))
	mux.Handle("POST /api/deployments/{id}/create_flow_run", chain(http.HandlerFunc(h.CreateFlowRun)))

	// Flow runs
	mux.Handle("GET /api/flow_runs/{$}", chain(http.HandlerFunc(h.ListFlowRuns)))
	mux.Handle("GET /api/flow_runs/{id}", chain(http.HandlerFunc(h.GetFlowRun)))
	mux.Handle("POST /api/flow_runs/{id}/set_state", chain(http.HandlerFunc(h.SetFlowRunState)))
	mux.Handle("GET /api/flow_runs/{id}/task_runs", chain(http.HandlerFunc(h.ListFlowRunTaskRuns)))

	// Task runs
	mux.Handle("GET /api/task_runs/{id}", chain(http.HandlerFunc(h.GetTaskRun)))

	// Health
	mux.Handle("GET /api/health", chain(http.HandlerFunc(h.Health)))
}
