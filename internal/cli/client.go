package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Response types (дублируются из domain, CLI не импортирует internal/domain) ---

// StateResponse — состояние run из API.
type StateResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// terminalStates — состояния, после которых run больше не меняется.
var terminalStates = map[string]bool{
	"COMPLETED":  true,
	"FAILED":     true,
	"CANCELLED":  true,
	"CRASHED":    true,
	"CANCELLING": true,
}

// IsTerminal сообщает, что run достиг конечного состояния.
func (s StateResponse) IsTerminal() bool {
	return terminalStates[s.Type]
}

// WorkPoolResponse — work pool из API.
type WorkPoolResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	Description      string         `json:"description"`
	ConcurrencyLimit *int           `json:"concurrency_limit"`
	BaseJobTemplate  map[string]any `json:"base_job_template"`
	Status           string         `json:"status"`
	PendingWork      int            `json:"pending_work"`
	Created          string         `json:"created"`
	Updated          string         `json:"updated"`
}

// DeploymentResponse — deployment из API.
type DeploymentResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	FlowName     string         `json:"flow_name"`
	WorkPoolName string         `json:"work_pool_name"`
	Parameters   map[string]any `json:"parameters"`
	Tags         []string       `json:"tags"`
	Description  string         `json:"description"`
	Schedule     *ScheduleSpec  `json:"schedule,omitempty"`
	Status       string         `json:"status"`
	Created      string         `json:"created"`
	Updated      string         `json:"updated"`
}

// ScheduleSpec — расписание deployment.
type ScheduleSpec struct {
	Cron            string `json:"cron,omitempty"`
	IntervalSeconds int    `json:"interval_seconds,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}

// FlowRunResponse — flow run из API.
type FlowRunResponse struct {
	ID           string         `json:"id"`
	DeploymentID string         `json:"deployment_id"`
	FlowName     string         `json:"flow_name"`
	WorkPoolName string         `json:"work_pool_name"`
	Parameters   map[string]any `json:"parameters"`
	Tags         []string       `json:"tags"`
	State        StateResponse  `json:"state"`
	TaskRuns     []string       `json:"task_runs"`
	Created      string         `json:"created"`
	StartTime    *string        `json:"start_time"`
	EndTime      *string        `json:"end_time"`
}

// TaskRunResponse — task run из API.
type TaskRunResponse struct {
	ID        string        `json:"id"`
	FlowRunID string        `json:"flow_run_id"`
	TaskKey   string        `json:"task_key"`
	Name      string        `json:"name"`
	Tool      string        `json:"mcp_tool"`
	State     StateResponse `json:"state"`
	Created   string        `json:"created"`
}

// HealthResponse — ответ health endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	WorkPools   int    `json:"work_pools"`
	Deployments int    `json:"deployments"`
	FlowRuns    int    `json:"flow_runs"`
}

// --- Request types ---

// CreateWorkPoolRequest — создание work pool.
type CreateWorkPoolRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateDeploymentRequest — создание deployment.
type CreateDeploymentRequest struct {
	Name         string         `json:"name"`
	FlowName     string         `json:"flow_name"`
	WorkPoolName string         `json:"work_pool_name"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Description  string         `json:"description,omitempty"`
	Schedule     *ScheduleSpec  `json:"schedule,omitempty"`
}

// CreateFlowRunRequest — создание flow run.
type CreateFlowRunRequest struct {
	Parameters map[string]any `json:"parameters,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
}

// SetStateRequest — принудительная смена состояния run.
type SetStateRequest struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// --- API error wrapper ---

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Simulata API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Work pools ---

// ListWorkPools возвращает все work pools.
func (c *Client) ListWorkPools() ([]WorkPoolResponse, error) {
	var pools []WorkPoolResponse
	err := c.get("/api/work_pools/", &pools)
	return pools, err
}

// CreateWorkPool создаёт work pool.
func (c *Client) CreateWorkPool(req CreateWorkPoolRequest) (*WorkPoolResponse, error) {
	var pool WorkPoolResponse
	err := c.post("/api/work_pools/", req, &pool)
	return &pool, err
}

// GetWorkPool возвращает work pool по имени.
func (c *Client) GetWorkPool(name string) (*WorkPoolResponse, error) {
	var pool WorkPoolResponse
	err := c.get("/api/work_pools/"+name, &pool)
	return &pool, err
}

// --- Deployments ---

// ListDeployments возвращает все deployments.
func (c *Client) ListDeployments() ([]DeploymentResponse, error) {
	var deps []DeploymentResponse
	err := c.get("/api/deployments/", &deps)
	return deps, err
}

// CreateDeployment создаёт deployment.
func (c *Client) CreateDeployment(req CreateDeploymentRequest) (*DeploymentResponse, error) {
	var dep DeploymentResponse
	err := c.post("/api/deployments/", req, &dep)
	return &dep, err
}

// GetDeployment возвращает deployment по ID.
func (c *Client) GetDeployment(id string) (*DeploymentResponse, error) {
	var dep DeploymentResponse
	err := c.get("/api/deployments/"+id, &dep)
	return &dep, err
}

// --- Flow runs ---

// ListFlowRuns возвращает все flow runs.
func (c *Client) ListFlowRuns() ([]FlowRunResponse, error) {
	var runs []FlowRunResponse
	err := c.get("/api/flow_runs/", &runs)
	return runs, err
}

// CreateFlowRun создаёт flow run для deployment.
func (c *Client) CreateFlowRun(deploymentID string, req CreateFlowRunRequest) (*FlowRunResponse, error) {
	var run FlowRunResponse
	err := c.post("/api/deployments/"+deploymentID+"/create_flow_run", req, &run)
	return &run, err
}

// GetFlowRun возвращает flow run по ID.
func (c *Client) GetFlowRun(id string) (*FlowRunResponse, error) {
	var run FlowRunResponse
	err := c.get("/api/flow_runs/"+id, &run)
	return &run, err
}

// SetFlowRunState принудительно выставляет состояние run.
func (c *Client) SetFlowRunState(id string, req SetStateRequest) (*FlowRunResponse, error) {
	var run FlowRunResponse
	err := c.post("/api/flow_runs/"+id+"/set_state", req, &run)
	return &run, err
}

// ListTaskRuns возвращает task runs для flow run.
func (c *Client) ListTaskRuns(flowRunID string) ([]TaskRunResponse, error) {
	var tasks []TaskRunResponse
	err := c.get("/api/flow_runs/"+flowRunID+"/task_runs", &tasks)
	return tasks, err
}

// GetTaskRun возвращает task run по ID.
func (c *Client) GetTaskRun(id string) (*TaskRunResponse, error) {
	var task TaskRunResponse
	err := c.get("/api/task_runs/"+id, &task)
	return &task, err
}

// --- Health ---

// Health возвращает состояние сервера и счётчики ресурсов.
func (c *Client) Health() (*HealthResponse, error) {
	var health HealthResponse
	err := c.get("/api/health", &health)
	return &health, err
}

// --- Watch ---

// WatchFlowRun опрашивает run с заданным интервалом, пока он не
// достигнет конечного состояния или не истечёт timeout.
// onUpdate вызывается при каждой смене состояния (и на первом опросе).
func (c *Client) WatchFlowRun(id string, interval, timeout time.Duration, onUpdate func(*FlowRunResponse)) (*FlowRunResponse, error) {
	deadline := time.Now().Add(timeout)
	var lastState string

	for {
		run, err := c.GetFlowRun(id)
		if err != nil {
			return nil, err
		}

		if run.State.Type != lastState {
			lastState = run.State.Type
			if onUpdate != nil {
				onUpdate(run)
			}
		}

		if run.State.IsTerminal() {
			return run, nil
		}

		if time.Now().After(deadline) {
			return run, fmt.Errorf("timed out after %s waiting for run %s (last state: %s)", timeout, id, run.State.Type)
		}

		time.Sleep(interval)
	}
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doJSON(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doJSON(http.MethodPost, path, body, result)
}

func (c *Client) doJSON(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
