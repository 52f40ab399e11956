package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Simulata/internal/domain"
)

// Store — in-memory хранилище ресурсов симулятора.
//
// Создаётся один раз на процесс и передаётся по ссылке в API handler,
// симулятор и scheduler. Реестры хранят записи в порядке вставки.
type Store struct {
	mu sync.RWMutex

	// pools — work pools по имени (имя — уникальный клиентский ключ).
	pools     map[string]*domain.WorkPool
	poolOrder []string

	// deployments — deployments по ID.
	deployments     map[uuid.UUID]*domain.Deployment
	deploymentOrder []uuid.UUID

	// flowRuns — flow runs по ID.
	flowRuns     map[uuid.UUID]*domain.FlowRun
	flowRunOrder []uuid.UUID

	// taskRuns — task runs по ID. Порядок хранится в FlowRun.TaskRuns.
	taskRuns map[uuid.UUID]*domain.TaskRun
}

// New создаёт пустой Store.
func New() *Store {
	return &Store{
		pools:       make(map[string]*domain.WorkPool),
		deployments: make(map[uuid.UUID]*domain.Deployment),
		flowRuns:    make(map[uuid.UUID]*domain.FlowRun),
		taskRuns:    make(map[uuid.UUID]*domain.TaskRun),
	}
}

// --- Work pools ---

// WorkPoolSpec — входные данные для создания work pool.
type WorkPoolSpec struct {
	Name             string
	Type             string
	Description      string
	ConcurrencyLimit *int
	BaseJobTemplate  map[string]any
}

// CreateWorkPool создаёт work pool.
// Возвращает ErrAlreadyExists, если пул с таким именем уже есть.
// Пустой Type заменяется на "process".
func (s *Store) CreateWorkPool(spec WorkPoolSpec) (domain.WorkPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pools[spec.Name]; exists {
		return domain.WorkPool{}, fmt.Errorf("work pool %q: %w", spec.Name, ErrAlreadyExists)
	}

	poolType := spec.Type
	if poolType == "" {
		poolType = "process"
	}

	template := spec.BaseJobTemplate
	if template == nil {
		template = map[string]any{}
	}

	now := time.Now().UTC()
	pool := &domain.WorkPool{
		ID:               uuid.New(),
		Name:             spec.Name,
		Type:             poolType,
		Description:      spec.Description,
		ConcurrencyLimit: spec.ConcurrencyLimit,
		BaseJobTemplate:  template,
		Status:           domain.PoolStatusReady,
		PendingWork:      0,
		Created:          now,
		Updated:          now,
	}

	s.pools[spec.Name] = pool
	s.poolOrder = append(s.poolOrder, spec.Name)

	return pool.Clone(), nil
}

// GetWorkPool возвращает work pool по имени.
func (s *Store) GetWorkPool(name string) (domain.WorkPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, exists := s.pools[name]
	if !exists {
		return domain.WorkPool{}, fmt.Errorf("work pool %q: %w", name, ErrNotFound)
	}

	return pool.Clone(), nil
}

// ListWorkPools возвращает все work pools в порядке создания.
func (s *Store) ListWorkPools() []domain.WorkPool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := make([]domain.WorkPool, 0, len(s.poolOrder))
	for _, name := range s.poolOrder {
		pools = append(pools, s.pools[name].Clone())
	}
	return pools
}

// FinishPoolWork уменьшает pending_work пула на единицу (не ниже нуля).
// Вызывается симулятором при терминальном завершении flow run.
func (s *Store) FinishPoolWork(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, exists := s.pools[name]
	if !exists {
		return fmt.Errorf("work pool %q: %w", name, ErrNotFound)
	}

	if pool.PendingWork > 0 {
		pool.PendingWork--
	}
	pool.Updated = time.Now().UTC()

	return nil
}

// --- Deployments ---

// DeploymentSpec — входные данные для создания deployment.
type DeploymentSpec struct {
	Name           string
	FlowName       string
	WorkPoolName   string
	Parameters     map[string]any
	Tags           []string
	Description    string
	Schedule       *domain.ScheduleSpec
	FlowDefinition *domain.FlowDefinition
}

// CreateDeployment создаёт deployment и увеличивает pending_work пула.
// Возвращает ErrNotFound, если указанный work pool не существует.
func (s *Store) CreateDeployment(spec DeploymentSpec) (domain.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool, exists := s.pools[spec.WorkPoolName]
	if !exists {
		return domain.Deployment{}, fmt.Errorf("work pool %q: %w", spec.WorkPoolName, ErrNotFound)
	}

	params := spec.Parameters
	if params == nil {
		params = map[string]any{}
	}
	tags := spec.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC()
	dep := &domain.Deployment{
		ID:             uuid.New(),
		Name:           spec.Name,
		FlowName:       spec.FlowName,
		WorkPoolName:   spec.WorkPoolName,
		Parameters:     params,
		Tags:           tags,
		Description:    spec.Description,
		Schedule:       spec.Schedule,
		FlowDefinition: spec.FlowDefinition,
		Status:         domain.PoolStatusReady,
		Created:        now,
		Updated:        now,
	}

	s.deployments[dep.ID] = dep
	s.deploymentOrder = append(s.deploymentOrder, dep.ID)

	pool.PendingWork++
	pool.Updated = now

	return dep.Clone(), nil
}

// GetDeployment возвращает deployment по ID.
func (s *Store) GetDeployment(id uuid.UUID) (domain.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dep, exists := s.deployments[id]
	if !exists {
		return domain.Deployment{}, fmt.Errorf("deployment %q: %w", id, ErrNotFound)
	}

	return dep.Clone(), nil
}

// ListDeployments возвращает все deployments в порядке создания.
func (s *Store) ListDeployments() []domain.Deployment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deps := make([]domain.Deployment, 0, len(s.deploymentOrder))
	for _, id := range s.deploymentOrder {
		deps = append(deps, s.deployments[id].Clone())
	}
	return deps
}

// --- Flow runs ---

// CreateFlowRun создаёт flow run для deployment.
//
// Параметры deployment сливаются с override (override побеждает по ключу),
// теги объединяются без дубликатов. Run создаётся в состоянии SCHEDULED;
// запуск симулятора — обязанность вызывающей стороны.
func (s *Store) CreateFlowRun(deploymentID uuid.UUID, overrideParams map[string]any, overrideTags []string) (domain.FlowRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dep, exists := s.deployments[deploymentID]
	if !exists {
		return domain.FlowRun{}, fmt.Errorf("deployment %q: %w", deploymentID, ErrNotFound)
	}

	now := time.Now().UTC()
	run := &domain.FlowRun{
		ID:             uuid.New(),
		DeploymentID:   deploymentID,
		FlowName:       dep.FlowName,
		WorkPoolName:   dep.WorkPoolName,
		Parameters:     domain.MergeParameters(dep.Parameters, overrideParams),
		Tags:           domain.UnionTags(dep.Tags, overrideTags),
		State:          domain.NewState(domain.StateScheduled, "Run scheduled"),
		FlowDefinition: dep.FlowDefinition.Clone(),
		TaskRuns:       []uuid.UUID{},
		Created:        now,
		Updated:        now,
	}

	s.flowRuns[run.ID] = run
	s.flowRunOrder = append(s.flowRunOrder, run.ID)

	return run.Clone(), nil
}

// GetFlowRun возвращает flow run по ID.
func (s *Store) GetFlowRun(id uuid.UUID) (domain.FlowRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.flowRuns[id]
	if !exists {
		return domain.FlowRun{}, fmt.Errorf("flow run %q: %w", id, ErrNotFound)
	}

	return run.Clone(), nil
}

// ListFlowRuns возвращает все flow runs в порядке создания.
func (s *Store) ListFlowRuns() []domain.FlowRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.FlowRun, 0, len(s.flowRunOrder))
	for _, id := range s.flowRunOrder {
		runs = append(runs, s.flowRuns[id].Clone())
	}
	return runs
}

// SetFlowRunState — административный override состояния run.
//
// Перезаписывает состояние безусловно, независимо от симулятора.
// Если тип терминально-успешный (COMPLETED), выставляет end_time.
func (s *Store) SetFlowRunState(id uuid.UUID, t domain.StateType, message string) (domain.FlowRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.flowRuns[id]
	if !exists {
		return domain.FlowRun{}, fmt.Errorf("flow run %q: %w", id, ErrNotFound)
	}

	now := time.Now().UTC()
	run.State = domain.State{Type: t, Message: message, Timestamp: now}
	run.Updated = now
	if t == domain.StateCompleted {
		run.EndTime = &now
	}

	return run.Clone(), nil
}

// AdvanceFlowRun — переход состояния, выполняемый симулятором.
//
// В отличие от SetFlowRunState, переход не применяется, если run уже
// в терминальном состоянии (например, внешний override успел выставить
// CANCELLED): возвращается (zero, false, nil), и симулятор обязан
// молча прекратить продвижение этого run.
//
// Переход в RUNNING выставляет start_time, переход в терминальное
// состояние — end_time.
func (s *Store) AdvanceFlowRun(id uuid.UUID, next domain.State) (domain.FlowRun, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.flowRuns[id]
	if !exists {
		return domain.FlowRun{}, false, fmt.Errorf("flow run %q: %w", id, ErrNotFound)
	}

	if run.State.Type.IsTerminal() {
		return domain.FlowRun{}, false, nil
	}

	now := time.Now().UTC()
	run.State = next
	run.Updated = now
	if next.Type == domain.StateRunning && run.StartTime == nil {
		start := next.Timestamp
		run.StartTime = &start
	}
	if next.Type.IsTerminal() {
		end := next.Timestamp
		run.EndTime = &end
	}

	return run.Clone(), true, nil
}

// --- Task runs ---

// AppendTaskRun материализует task run для задачи и дописывает его
// идентификатор в run.TaskRuns.
//
// Task run создаётся сразу в состоянии COMPLETED. Если run уже в
// терминальном состоянии, задача не материализуется и возвращается
// (zero, false, nil).
func (s *Store) AppendTaskRun(flowRunID uuid.UUID, def domain.TaskDef) (domain.TaskRun, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.flowRuns[flowRunID]
	if !exists {
		return domain.TaskRun{}, false, fmt.Errorf("flow run %q: %w", flowRunID, ErrNotFound)
	}

	if run.State.Type.IsTerminal() {
		return domain.TaskRun{}, false, nil
	}

	now := time.Now().UTC()
	task := &domain.TaskRun{
		ID:        uuid.New(),
		FlowRunID: flowRunID,
		TaskKey:   def.Key(),
		Name:      def.DisplayName(),
		Tool:      def.Tool,
		State:     domain.State{Type: domain.StateCompleted, Timestamp: now},
		Created:   now,
	}

	s.taskRuns[task.ID] = task
	run.TaskRuns = append(run.TaskRuns, task.ID)
	run.Updated = now

	return task.Clone(), true, nil
}

// GetTaskRun возвращает task run по ID.
func (s *Store) GetTaskRun(id uuid.UUID) (domain.TaskRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.taskRuns[id]
	if !exists {
		return domain.TaskRun{}, fmt.Errorf("task run %q: %w", id, ErrNotFound)
	}

	return task.Clone(), nil
}

// ListTaskRuns возвращает task runs для flow run в порядке выполнения.
func (s *Store) ListTaskRuns(flowRunID uuid.UUID) ([]domain.TaskRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.flowRuns[flowRunID]
	if !exists {
		return nil, fmt.Errorf("flow run %q: %w", flowRunID, ErrNotFound)
	}

	tasks := make([]domain.TaskRun, 0, len(run.TaskRuns))
	for _, id := range run.TaskRuns {
		tasks = append(tasks, s.taskRuns[id].Clone())
	}
	return tasks, nil
}

// --- Counts ---

// Counts — размеры реестров для health-эндпоинта.
type Counts struct {
	WorkPools   int
	Deployments int
	FlowRuns    int
}

// Count возвращает размеры реестров.
func (s *Store) Count() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Counts{
		WorkPools:   len(s.pools),
		Deployments: len(s.deployments),
		FlowRuns:    len(s.flowRuns),
	}
}
