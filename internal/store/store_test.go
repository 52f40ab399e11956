package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Simulata/internal/domain"
)

// --- Work pool tests ---

func TestCreateWorkPool(t *testing.T) {
	s := New()

	pool, err := s.CreateWorkPool(WorkPoolSpec{Name: "p1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool.Name != "p1" {
		t.Errorf("name = %q, want p1", pool.Name)
	}
	if pool.Type != "process" {
		t.Errorf("type = %q, want default process", pool.Type)
	}
	if pool.Status != domain.PoolStatusReady {
		t.Errorf("status = %q, want READY", pool.Status)
	}
	if pool.PendingWork != 0 {
		t.Errorf("pending_work = %d, want 0", pool.PendingWork)
	}
	if pool.ID == uuid.Nil {
		t.Error("pool should get a generated id")
	}
}

func TestCreateWorkPool_Conflict(t *testing.T) {
	s := New()

	if _, err := s.CreateWorkPool(WorkPoolSpec{Name: "p1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := s.CreateWorkPool(WorkPoolSpec{Name: "p1", Type: "kubernetes"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if !strings.Contains(err.Error(), "p1") {
		t.Errorf("error should name the pool: %v", err)
	}
}

func TestGetWorkPool_NotFound(t *testing.T) {
	s := New()

	_, err := s.GetWorkPool("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListWorkPools_InsertionOrder(t *testing.T) {
	s := New()

	for _, name := range []string{"c", "a", "b"} {
		if _, err := s.CreateWorkPool(WorkPoolSpec{Name: name}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	pools := s.ListWorkPools()
	if len(pools) != 3 {
		t.Fatalf("len = %d, want 3", len(pools))
	}
	for i, want := range []string{"c", "a", "b"} {
		if pools[i].Name != want {
			t.Errorf("pools[%d].Name = %q, want %q", i, pools[i].Name, want)
		}
	}
}

func TestFinishPoolWork_FlooredAtZero(t *testing.T) {
	s := New()
	if _, err := s.CreateWorkPool(WorkPoolSpec{Name: "p1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// PendingWork is 0, a decrement must not make it negative.
	if err := s.FinishPoolWork("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pool, _ := s.GetWorkPool("p1")
	if pool.PendingWork != 0 {
		t.Errorf("pending_work = %d, want 0", pool.PendingWork)
	}
}

// --- Deployment tests ---

func TestCreateDeployment(t *testing.T) {
	s := New()
	if _, err := s.CreateWorkPool(WorkPoolSpec{Name: "p1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dep, err := s.CreateDeployment(DeploymentSpec{
		Name:         "d1",
		FlowName:     "etl",
		WorkPoolName: "p1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dep.WorkPoolName != "p1" {
		t.Errorf("work_pool_name = %q, want p1", dep.WorkPoolName)
	}
	if dep.Status != domain.PoolStatusReady {
		t.Errorf("status = %q, want READY", dep.Status)
	}

	pool, _ := s.GetWorkPool("p1")
	if pool.PendingWork != 1 {
		t.Errorf("pending_work = %d, want 1 after deployment", pool.PendingWork)
	}
}

func TestCreateDeployment_PoolNotFound(t *testing.T) {
	s := New()

	_, err := s.CreateDeployment(DeploymentSpec{
		Name:         "d1",
		FlowName:     "etl",
		WorkPoolName: "nope",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("error should name the missing pool: %v", err)
	}
}

func TestGetDeployment_NotFound(t *testing.T) {
	s := New()

	_, err := s.GetDeployment(uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Flow run tests ---

func newDeployment(t *testing.T, s *Store) domain.Deployment {
	t.Helper()

	if _, err := s.CreateWorkPool(WorkPoolSpec{Name: "p1"}); err != nil {
		t.Fatalf("create pool: %v", err)
	}

	dep, err := s.CreateDeployment(DeploymentSpec{
		Name:         "d1",
		FlowName:     "etl",
		WorkPoolName: "p1",
		Parameters:   map[string]any{"env": "prod", "retries": 3},
		Tags:         []string{"etl", "nightly"},
		FlowDefinition: &domain.FlowDefinition{
			Name:  "etl",
			Tasks: []domain.TaskDef{{TaskKey: "a"}, {TaskKey: "b"}},
		},
	})
	if err != nil {
		t.Fatalf("create deployment: %v", err)
	}
	return dep
}

func TestCreateFlowRun(t *testing.T) {
	s := New()
	dep := newDeployment(t, s)

	run, err := s.CreateFlowRun(dep.ID, map[string]any{"env": "staging"}, []string{"manual", "etl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.State.Type != domain.StateScheduled {
		t.Errorf("state = %s, want SCHEDULED", run.State.Type)
	}
	if run.State.Message != "Run scheduled" {
		t.Errorf("message = %q", run.State.Message)
	}
	if run.FlowName != "etl" || run.WorkPoolName != "p1" {
		t.Errorf("flow/pool not copied from deployment: %q/%q", run.FlowName, run.WorkPoolName)
	}

	// Override wins per key, deployment defaults survive otherwise.
	if run.Parameters["env"] != "staging" {
		t.Errorf("parameters[env] = %v, want staging", run.Parameters["env"])
	}
	if run.Parameters["retries"] != 3 {
		t.Errorf("parameters[retries] = %v, want 3", run.Parameters["retries"])
	}

	// Tag union is deduplicated.
	wantTags := []string{"etl", "nightly", "manual"}
	if len(run.Tags) != len(wantTags) {
		t.Fatalf("tags = %v, want %v", run.Tags, wantTags)
	}
	for i, tag := range wantTags {
		if run.Tags[i] != tag {
			t.Errorf("tags[%d] = %q, want %q", i, run.Tags[i], tag)
		}
	}

	if run.StartTime != nil || run.EndTime != nil {
		t.Error("start_time and end_time must be nil at creation")
	}
	if len(run.TaskRuns) != 0 {
		t.Errorf("task_runs = %v, want empty", run.TaskRuns)
	}
}

func TestCreateFlowRun_DeploymentNotFound(t *testing.T) {
	s := New()

	missing := uuid.New()
	_, err := s.CreateFlowRun(missing, nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), missing.String()) {
		t.Errorf("error should name the missing deployment: %v", err)
	}
}

func TestSetFlowRunState_OverrideAndIdempotence(t *testing.T) {
	s := New()
	dep := newDeployment(t, s)
	run, _ := s.CreateFlowRun(dep.ID, nil, nil)

	first, err := s.SetFlowRunState(run.ID, domain.StateCompleted, "forced")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.State.Type != domain.StateCompleted {
		t.Errorf("state = %s, want COMPLETED", first.State.Type)
	}
	if first.EndTime == nil {
		t.Error("COMPLETED override must set end_time")
	}

	// Same terminal override twice is safe, timestamp moves forward.
	second, err := s.SetFlowRunState(run.ID, domain.StateCompleted, "forced again")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.State.Type != domain.StateCompleted {
		t.Errorf("state = %s, want COMPLETED", second.State.Type)
	}
	if second.Updated.Before(first.Updated) {
		t.Error("updated must not move backwards")
	}
}

func TestAdvanceFlowRun_RefusedAfterTerminalOverride(t *testing.T) {
	s := New()
	dep := newDeployment(t, s)
	run, _ := s.CreateFlowRun(dep.ID, nil, nil)

	if _, err := s.SetFlowRunState(run.ID, domain.StateCancelled, "cancelled by operator"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, ok, err := s.AdvanceFlowRun(run.ID, domain.NewState(domain.StatePending, "Waiting for worker"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("advance must be refused once the run is terminal")
	}

	got, _ := s.GetFlowRun(run.ID)
	if got.State.Type != domain.StateCancelled {
		t.Errorf("override was overwritten: state = %s", got.State.Type)
	}
}

func TestAdvanceFlowRun_SetsStartAndEnd(t *testing.T) {
	s := New()
	dep := newDeployment(t, s)
	run, _ := s.CreateFlowRun(dep.ID, nil, nil)

	if _, ok, _ := s.AdvanceFlowRun(run.ID, domain.NewState(domain.StatePending, "Waiting for worker")); !ok {
		t.Fatal("advance to PENDING refused")
	}

	running, ok, _ := s.AdvanceFlowRun(run.ID, domain.NewState(domain.StateRunning, "Executing tasks"))
	if !ok {
		t.Fatal("advance to RUNNING refused")
	}
	if running.StartTime == nil {
		t.Fatal("RUNNING must set start_time")
	}

	done, ok, _ := s.AdvanceFlowRun(run.ID, domain.NewState(domain.StateCompleted, "All tasks finished"))
	if !ok {
		t.Fatal("advance to COMPLETED refused")
	}
	if done.EndTime == nil {
		t.Fatal("COMPLETED must set end_time")
	}
	if done.StartTime.After(*done.EndTime) {
		t.Errorf("start_time %v after end_time %v", done.StartTime, done.EndTime)
	}
}

// --- Task run tests ---

func TestAppendTaskRun_OrderAndDefaults(t *testing.T) {
	s := New()
	dep := newDeployment(t, s)
	run, _ := s.CreateFlowRun(dep.ID, nil, nil)

	defs := []domain.TaskDef{
		{TaskKey: "extract", Name: "Extract", Tool: "sql-runner"},
		{}, // defaults apply
	}
	for _, def := range defs {
		if _, ok, err := s.AppendTaskRun(run.ID, def); err != nil || !ok {
			t.Fatalf("append task run: ok=%v err=%v", ok, err)
		}
	}

	tasks, err := s.ListTaskRuns(run.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}

	if tasks[0].TaskKey != "extract" || tasks[0].Name != "Extract" || tasks[0].Tool != "sql-runner" {
		t.Errorf("tasks[0] = %+v", tasks[0])
	}
	if tasks[1].TaskKey != "unknown" || tasks[1].Name != "unnamed_task" {
		t.Errorf("defaults not applied: %+v", tasks[1])
	}

	for _, task := range tasks {
		if task.State.Type != domain.StateCompleted {
			t.Errorf("task run state = %s, want COMPLETED", task.State.Type)
		}
		if task.FlowRunID != run.ID {
			t.Errorf("flow_run_id = %s, want %s", task.FlowRunID, run.ID)
		}
	}

	got, _ := s.GetFlowRun(run.ID)
	if len(got.TaskRuns) != 2 {
		t.Fatalf("run.task_runs len = %d, want 2", len(got.TaskRuns))
	}
	if got.TaskRuns[0] != tasks[0].ID || got.TaskRuns[1] != tasks[1].ID {
		t.Error("task_runs order does not match append order")
	}
}

func TestAppendTaskRun_RefusedAfterTerminal(t *testing.T) {
	s := New()
	dep := newDeployment(t, s)
	run, _ := s.CreateFlowRun(dep.ID, nil, nil)

	if _, err := s.SetFlowRunState(run.ID, domain.StateFailed, "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, ok, err := s.AppendTaskRun(run.ID, domain.TaskDef{TaskKey: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("append must be refused once the run is terminal")
	}
}

func TestGetTaskRun_NotFound(t *testing.T) {
	s := New()

	_, err := s.GetTaskRun(uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Counts ---

func TestCount(t *testing.T) {
	s := New()
	dep := newDeployment(t, s)
	if _, err := s.CreateFlowRun(dep.ID, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := s.Count()
	if counts.WorkPools != 1 || counts.Deployments != 1 || counts.FlowRuns != 1 {
		t.Errorf("counts = %+v", counts)
	}
}

// Clone isolation: a record handed out by the store must not alias
// store-internal state.
func TestRecordsAreCopies(t *testing.T) {
	s := New()
	dep := newDeployment(t, s)
	run, _ := s.CreateFlowRun(dep.ID, nil, nil)

	run.Parameters["env"] = "mutated"
	run.Tags[0] = "mutated"

	got, _ := s.GetFlowRun(run.ID)
	if got.Parameters["env"] == "mutated" {
		t.Error("parameters alias store state")
	}
	if got.Tags[0] == "mutated" {
		t.Error("tags alias store state")
	}
}
