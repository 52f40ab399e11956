package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Simulata/internal/store"
	"github.com/shaiso/Simulata/internal/telemetry"
)

// CreateWorkPool создаёт work pool.
// POST /api/work_pools/
func (h *Handler) CreateWorkPool(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	pool, err := h.store.CreateWorkPool(store.WorkPoolSpec{
		Name:             req.Name,
		Type:             req.Type,
		Description:      req.Description,
		ConcurrencyLimit: req.ConcurrencyLimit,
		BaseJobTemplate:  req.BaseJobTemplate,
	})
	if HandleStoreError(w, h.logger, err) {
		return
	}

	telemetry.WithPool(h.logger, pool.Name).Info("work pool created", "type", pool.Type)

	Created(w, pool)
}

// ListWorkPools возвращает все work pools.
// GET /api/work_pools/
func (h *Handler) ListWorkPools(w http.ResponseWriter, _ *http.Request) {
	Success(w, h.store.ListWorkPools())
}

// GetWorkPool возвращает work pool по имени.
// GET /api/work_pools/{name}
func (h *Handler) GetWorkPool(w http.ResponseWriter, r *http.Request) {
	pool, err := h.store.GetWorkPool(r.PathValue("name"))
	if HandleStoreError(w, h.logger, err) {
		return
	}

	Success(w, pool)
}
