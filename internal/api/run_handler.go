package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Simulata/internal/domain"
)

// CreateFlowRun создаёт flow run для deployment и запускает его симуляцию.
// POST /api/deployments/{id}/create_flow_run
//
// Ответ возвращается сразу после вставки записи и постановки симуляции —
// ни одного перехода состояния обработчик не ждёт.
func (h *Handler) CreateFlowRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid deployment id")
		return
	}

	// Тело опционально: POST без тела запускает run без переопределений.
	var req CreateFlowRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(w, "invalid request body")
		return
	}

	run, err := h.store.CreateFlowRun(id, req.Parameters, req.Tags)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	// Fire-and-forget: симулятор продвигает run в фоне.
	h.simulator.Spawn(run.ID)

	h.logger.Info("flow run created",
		"run_id", run.ID,
		"deployment_id", id,
		"flow_name", run.FlowName,
	)

	if h.publisher != nil {
		if err := h.publisher.PublishFlowRunState(r.Context(), run); err != nil {
			h.logger.Warn("failed to publish flow_run.state", "run_id", run.ID, "error", err)
		}
	}

	Created(w, run)
}

// GetFlowRun возвращает flow run по ID.
// GET /api/flow_runs/{id}
func (h *Handler) GetFlowRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid flow run id")
		return
	}

	run, err := h.store.GetFlowRun(id)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	Success(w, run)
}

// ListFlowRuns возвращает все flow runs.
// GET /api/flow_runs/
func (h *Handler) ListFlowRuns(w http.ResponseWriter, _ *http.Request) {
	Success(w, h.store.ListFlowRuns())
}

// SetFlowRunState — административный override состояния run.
// POST /api/flow_runs/{id}/set_state
//
// Перезаписывает состояние безусловно; симулятор при следующем шаге
// обнаружит терминальный override и прекратит продвижение run.
func (h *Handler) SetFlowRunState(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid flow run id")
		return
	}

	var req SetStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Type == "" {
		BadRequest(w, "type is required")
		return
	}

	run, err := h.store.SetFlowRunState(id, domain.StateType(req.Type), req.Message)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	h.logger.Info("flow run state overridden",
		"run_id", run.ID,
		"state", run.State.Type,
	)

	if h.publisher != nil {
		if err := h.publisher.PublishFlowRunState(r.Context(), run); err != nil {
			h.logger.Warn("failed to publish flow_run.state", "run_id", run.ID, "error", err)
		}
	}

	Success(w, run)
}

// ListFlowRunTaskRuns возвращает task runs для flow run в порядке выполнения.
// GET /api/flow_runs/{id}/task_runs
func (h *Handler) ListFlowRunTaskRuns(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid flow run id")
		return
	}

	tasks, err := h.store.ListTaskRuns(id)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	Success(w, tasks)
}

// GetTaskRun возвращает task run по ID.
// GET /api/task_runs/{id}
func (h *Handler) GetTaskRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid task run id")
		return
	}

	task, err := h.store.GetTaskRun(id)
	if HandleStoreError(w, h.logger, err) {
		return
	}

	Success(w, task)
}
