package scheduler

import (
	"testing"
	"time"

	"github.com/shaiso/Simulata/internal/domain"
	"github.com/shaiso/Simulata/internal/simulator"
	"github.com/shaiso/Simulata/internal/store"
)

// --- NextDue tests ---

func TestNextDue_Interval(t *testing.T) {
	spec := &domain.ScheduleSpec{IntervalSeconds: 60}
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	next, err := NextDue(spec, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := from.Add(time.Minute)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextDue_Cron(t *testing.T) {
	spec := &domain.ScheduleSpec{Cron: "0 * * * *"} // top of each hour
	from := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	next, err := NextDue(spec, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextDue_CronWinsOverInterval(t *testing.T) {
	spec := &domain.ScheduleSpec{Cron: "0 * * * *", IntervalSeconds: 5}
	from := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	next, err := NextDue(spec, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Minute() != 0 {
		t.Errorf("cron must take precedence, got %v", next)
	}
}

func TestNextDue_Empty(t *testing.T) {
	if _, err := NextDue(&domain.ScheduleSpec{}, time.Now()); err == nil {
		t.Error("expected error for empty schedule")
	}
}

func TestValidateSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    *domain.ScheduleSpec
		wantErr bool
	}{
		{"nil", nil, false},
		{"empty", &domain.ScheduleSpec{}, false},
		{"interval only", &domain.ScheduleSpec{IntervalSeconds: 30}, false},
		{"valid cron", &domain.ScheduleSpec{Cron: "*/5 * * * *"}, false},
		{"invalid cron", &domain.ScheduleSpec{Cron: "not a cron"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpec(%+v) = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

// --- Tick tests ---

func newSchedulerFixture(t *testing.T, spec *domain.ScheduleSpec) (*store.Store, *Scheduler, domain.Deployment) {
	t.Helper()

	s := store.New()
	if _, err := s.CreateWorkPool(store.WorkPoolSpec{Name: "p1"}); err != nil {
		t.Fatalf("create pool: %v", err)
	}

	dep, err := s.CreateDeployment(store.DeploymentSpec{
		Name:         "d1",
		FlowName:     "etl",
		WorkPoolName: "p1",
		Schedule:     spec,
	})
	if err != nil {
		t.Fatalf("create deployment: %v", err)
	}

	sim := simulator.New(simulator.Config{Store: s, Delays: simulator.FastDelays()})
	t.Cleanup(sim.Stop)

	sched := New(Config{Store: s, Simulator: sim})
	return s, sched, dep
}

func TestTick_SeedsThenFires(t *testing.T) {
	s, sched, _ := newSchedulerFixture(t, &domain.ScheduleSpec{IntervalSeconds: 60})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// First tick seeds the schedule, no run yet.
	sched.Tick(now)
	if runs := s.ListFlowRuns(); len(runs) != 0 {
		t.Fatalf("runs after seed tick = %d, want 0", len(runs))
	}

	// Still before due.
	sched.Tick(now.Add(30 * time.Second))
	if runs := s.ListFlowRuns(); len(runs) != 0 {
		t.Fatalf("runs before due = %d, want 0", len(runs))
	}

	// Past due: exactly one run, tagged "scheduled".
	sched.Tick(now.Add(61 * time.Second))
	runs := s.ListFlowRuns()
	if len(runs) != 1 {
		t.Fatalf("runs past due = %d, want 1", len(runs))
	}
	if len(runs[0].Tags) != 1 || runs[0].Tags[0] != "scheduled" {
		t.Errorf("tags = %v, want [scheduled]", runs[0].Tags)
	}

	// The next due was advanced; an immediate re-tick does not duplicate.
	sched.Tick(now.Add(62 * time.Second))
	if runs := s.ListFlowRuns(); len(runs) != 1 {
		t.Fatalf("runs after re-tick = %d, want 1", len(runs))
	}

	// Next interval fires again.
	sched.Tick(now.Add(125 * time.Second))
	if runs := s.ListFlowRuns(); len(runs) != 2 {
		t.Fatalf("runs after second interval = %d, want 2", len(runs))
	}
}

func TestTick_IgnoresUnscheduledDeployments(t *testing.T) {
	s, sched, _ := newSchedulerFixture(t, nil)

	now := time.Now()
	sched.Tick(now)
	sched.Tick(now.Add(time.Hour))

	if runs := s.ListFlowRuns(); len(runs) != 0 {
		t.Errorf("runs = %d, want 0 for deployment without schedule", len(runs))
	}
}

func TestTick_EmptyScheduleNeverFires(t *testing.T) {
	// A stored but empty schedule must never fire.
	s, sched, _ := newSchedulerFixture(t, &domain.ScheduleSpec{})

	now := time.Now()
	sched.Tick(now)
	sched.Tick(now.Add(24 * time.Hour))

	if runs := s.ListFlowRuns(); len(runs) != 0 {
		t.Errorf("runs = %d, want 0 for empty schedule", len(runs))
	}
}
