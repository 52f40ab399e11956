package api

import (
	"net/http"
)

// Health возвращает маркер живости и размеры реестров.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	counts := h.store.Count()

	Success(w, HealthResponse{
		Status:      "ok",
		Version:     Version,
		WorkPools:   counts.WorkPools,
		Deployments: counts.Deployments,
		FlowRuns:    counts.FlowRuns,
	})
}
