package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Simulata/internal/scheduler"
	"github.com/shaiso/Simulata/internal/store"
)

// CreateDeployment создаёт deployment, привязанный к work pool.
// POST /api/deployments/
func (h *Handler) CreateDeployment(w http.ResponseWriter, r *http.Request) {
	var req CreateDeploymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}
	if req.FlowName == "" {
		BadRequest(w, "flow_name is required")
		return
	}
	if req.WorkPoolName == "" {
		BadRequest(w, "work_pool_name is required")
		return
	}

	if req.Schedule != nil {
		if err := scheduler.ValidateSpec(req.Schedule); err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	dep, err := h.store.CreateDeployment(store.DeploymentSpec{
		Name:           req.Name,
		FlowName:       req.FlowName,
		WorkPoolName:   req.WorkPoolName,
		Parameters:     req.Parameters,
		Tags:           req.Tags,
		Description:    req.Description,
		Schedule:       req.Schedule,
		FlowDefinition: req.FlowDefinition,
	})
	if HandleStoreError(w, h.logger, err) {
		return
	}

	h.logger.Info("deployment created",
		"deployment_id", dep.ID,
		"name", dep.Name,
		"pool", dep.WorkPoolName,
	)

	Created(w, dep)
}

// ListDeployments возвращает все deployments.
// GET /api/deployments/
func (h *Handler) ListDeployments(w http.ResponseWriter, _ *http.Request) {
	Success(w, h.store.ListDeployments())
}

// GetDeployment возвращает deployment по ID.
// GET /api/deployments/{id}
func (h *Handler) GetDeployment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid deployment id")
		return
	}

	dep, err := h.store.GetDeployment(id)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	Success(w, dep)
}
