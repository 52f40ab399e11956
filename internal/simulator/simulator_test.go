package simulator

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Simulata/internal/domain"
	"github.com/shaiso/Simulata/internal/store"
)

// newFixture creates a store with one pool and one deployment carrying
// the given task keys, plus a fast simulator.
func newFixture(t *testing.T, taskKeys ...string) (*store.Store, *Simulator, domain.Deployment) {
	t.Helper()

	s := store.New()
	if _, err := s.CreateWorkPool(store.WorkPoolSpec{Name: "p1"}); err != nil {
		t.Fatalf("create pool: %v", err)
	}

	tasks := make([]domain.TaskDef, len(taskKeys))
	for i, key := range taskKeys {
		tasks[i] = domain.TaskDef{TaskKey: key}
	}

	dep, err := s.CreateDeployment(store.DeploymentSpec{
		Name:           "d1",
		FlowName:       "etl",
		WorkPoolName:   "p1",
		FlowDefinition: &domain.FlowDefinition{Name: "etl", Tasks: tasks},
	})
	if err != nil {
		t.Fatalf("create deployment: %v", err)
	}

	sim := New(Config{Store: s, Delays: FastDelays()})
	t.Cleanup(sim.Stop)

	return s, sim, dep
}

// waitTerminal polls the store until the run reaches a terminal state.
func waitTerminal(t *testing.T, s *store.Store, runID uuid.UUID) domain.FlowRun {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		run, err := s.GetFlowRun(runID)
		if err != nil {
			t.Fatalf("get flow run: %v", err)
		}
		if run.IsFinished() {
			return run
		}
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatalf("run %s did not reach a terminal state", runID)
	return domain.FlowRun{}
}

func TestSimulate_FullLifecycle(t *testing.T) {
	s, sim, dep := newFixture(t, "a", "b")

	run, err := s.CreateFlowRun(dep.ID, nil, nil)
	if err != nil {
		t.Fatalf("create flow run: %v", err)
	}
	if run.State.Type != domain.StateScheduled {
		t.Fatalf("initial state = %s, want SCHEDULED", run.State.Type)
	}

	sim.Spawn(run.ID)
	done := waitTerminal(t, s, run.ID)

	if done.State.Type != domain.StateCompleted {
		t.Fatalf("final state = %s, want COMPLETED", done.State.Type)
	}
	if done.State.Message != "All tasks finished" {
		t.Errorf("final message = %q", done.State.Message)
	}
	if done.StartTime == nil || done.EndTime == nil {
		t.Fatal("start_time and end_time must be set")
	}
	if done.StartTime.After(*done.EndTime) {
		t.Errorf("start_time %v after end_time %v", done.StartTime, done.EndTime)
	}

	// One task run per task definition, in list order.
	tasks, err := s.ListTaskRuns(run.ID)
	if err != nil {
		t.Fatalf("list task runs: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("task runs = %d, want 2", len(tasks))
	}
	if tasks[0].TaskKey != "a" || tasks[1].TaskKey != "b" {
		t.Errorf("task order = %q,%q, want a,b", tasks[0].TaskKey, tasks[1].TaskKey)
	}

	// Terminal completion returns the pool's pending work.
	pool, _ := s.GetWorkPool("p1")
	if pool.PendingWork != 0 {
		t.Errorf("pending_work = %d, want 0", pool.PendingWork)
	}
}

func TestSimulate_EmptyTaskList(t *testing.T) {
	s, sim, dep := newFixture(t)

	run, _ := s.CreateFlowRun(dep.ID, nil, nil)
	sim.Spawn(run.ID)

	done := waitTerminal(t, s, run.ID)
	if done.State.Type != domain.StateCompleted {
		t.Fatalf("final state = %s, want COMPLETED", done.State.Type)
	}
	if len(done.TaskRuns) != 0 {
		t.Errorf("task_runs = %v, want empty", done.TaskRuns)
	}
}

func TestSimulate_NilFlowDefinition(t *testing.T) {
	s := store.New()
	if _, err := s.CreateWorkPool(store.WorkPoolSpec{Name: "p1"}); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	dep, err := s.CreateDeployment(store.DeploymentSpec{
		Name:         "d1",
		FlowName:     "etl",
		WorkPoolName: "p1",
	})
	if err != nil {
		t.Fatalf("create deployment: %v", err)
	}

	sim := New(Config{Store: s, Delays: FastDelays()})
	t.Cleanup(sim.Stop)

	run, _ := s.CreateFlowRun(dep.ID, nil, nil)
	sim.Spawn(run.ID)

	done := waitTerminal(t, s, run.ID)
	if done.State.Type != domain.StateCompleted {
		t.Fatalf("final state = %s, want COMPLETED", done.State.Type)
	}
}

func TestSimulate_ConcurrentRuns(t *testing.T) {
	s, sim, dep := newFixture(t, "a")

	const n = 8
	ids := make(map[uuid.UUID]bool, n)
	for range n {
		run, err := s.CreateFlowRun(dep.ID, nil, nil)
		if err != nil {
			t.Fatalf("create flow run: %v", err)
		}
		if ids[run.ID] {
			t.Fatalf("duplicate run id %s", run.ID)
		}
		ids[run.ID] = true
		sim.Spawn(run.ID)
	}

	for id := range ids {
		done := waitTerminal(t, s, id)
		if done.State.Type != domain.StateCompleted {
			t.Errorf("run %s final state = %s", id, done.State.Type)
		}
	}

	// The deployment contributed 1 to pending_work; N completions must
	// not drive it negative.
	pool, _ := s.GetWorkPool("p1")
	if pool.PendingWork != 0 {
		t.Errorf("pending_work = %d, want 0", pool.PendingWork)
	}
}

func TestSimulate_ExternalTerminalOverrideWins(t *testing.T) {
	s, _, dep := newFixture(t, "a", "b")

	// Slow delays so the override lands while the simulator is mid-flight.
	sim := New(Config{Store: s, Delays: Delays{
		Scheduling: 50 * time.Millisecond,
		Pickup:     50 * time.Millisecond,
		Task:       50 * time.Millisecond,
		Completion: 50 * time.Millisecond,
	}})
	t.Cleanup(sim.Stop)

	run, _ := s.CreateFlowRun(dep.ID, nil, nil)
	sim.Spawn(run.ID)

	if _, err := s.SetFlowRunState(run.ID, domain.StateCancelled, "cancelled by operator"); err != nil {
		t.Fatalf("set state: %v", err)
	}

	// Give the simulator enough wall time to have overwritten the
	// override if it were going to.
	time.Sleep(400 * time.Millisecond)

	got, _ := s.GetFlowRun(run.ID)
	if got.State.Type != domain.StateCancelled {
		t.Fatalf("state = %s, override must win over the simulator", got.State.Type)
	}
	if got.State.Message != "cancelled by operator" {
		t.Errorf("message = %q", got.State.Message)
	}
}

func TestSpawn_AfterStop(t *testing.T) {
	s, sim, dep := newFixture(t, "a")
	sim.Stop()

	run, _ := s.CreateFlowRun(dep.ID, nil, nil)
	sim.Spawn(run.ID)

	time.Sleep(20 * time.Millisecond)

	got, _ := s.GetFlowRun(run.ID)
	if got.State.Type != domain.StateScheduled {
		t.Errorf("state = %s, want SCHEDULED (no simulation after Stop)", got.State.Type)
	}
	if sim.ActiveRuns() != 0 {
		t.Errorf("active runs = %d, want 0", sim.ActiveRuns())
	}
}

func TestStop_CancelsInFlightSimulation(t *testing.T) {
	s, _, dep := newFixture(t, "a")

	sim := New(Config{Store: s, Delays: Delays{
		Scheduling: 5 * time.Second, // would block shutdown if not cancelled
		Pickup:     5 * time.Second,
		Task:       5 * time.Second,
		Completion: 5 * time.Second,
	}})

	run, _ := s.CreateFlowRun(dep.ID, nil, nil)
	sim.Spawn(run.ID)

	done := make(chan struct{})
	go func() {
		sim.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the in-flight simulation")
	}

	got, _ := s.GetFlowRun(run.ID)
	if got.State.Type.IsTerminal() {
		t.Errorf("state = %s, cancelled simulation must not finish the run", got.State.Type)
	}
}
