package api

import (
	"github.com/shaiso/Simulata/internal/domain"
)

// Request-структуры API. Ответы — это доменные записи напрямую:
// их json-теги и есть wire-формат, отдельный слой Response-DTO не нужен.

// CreateWorkPoolRequest — запрос на создание work pool.
type CreateWorkPoolRequest struct {
	Name             string         `json:"name"`
	Type             string         `json:"type,omitempty"`
	Description      string         `json:"description,omitempty"`
	ConcurrencyLimit *int           `json:"concurrency_limit,omitempty"`
	BaseJobTemplate  map[string]any `json:"base_job_template,omitempty"`
}

// CreateDeploymentRequest — запрос на создание deployment.
type CreateDeploymentRequest struct {
	Name           string                 `json:"name"`
	FlowName       string                 `json:"flow_name"`
	WorkPoolName   string                 `json:"work_pool_name"`
	Parameters     map[string]any         `json:"parameters,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	Description    string                 `json:"description,omitempty"`
	Schedule       *domain.ScheduleSpec   `json:"schedule,omitempty"`
	FlowDefinition *domain.FlowDefinition `json:"flow_definition,omitempty"`
}

// CreateFlowRunRequest — запрос на создание flow run.
// Тело опционально: пустое тело эквивалентно запуску без переопределений.
type CreateFlowRunRequest struct {
	Parameters map[string]any `json:"parameters,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
}

// SetStateRequest — административный override состояния flow run.
type SetStateRequest struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// HealthResponse — ответ /api/health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	WorkPools   int    `json:"work_pools"`
	Deployments int    `json:"deployments"`
	FlowRuns    int    `json:"flow_runs"`
}
