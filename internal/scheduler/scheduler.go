package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Simulata/internal/simulator"
	"github.com/shaiso/Simulata/internal/store"
	"github.com/shaiso/Simulata/internal/telemetry"
)

// defaultTickInterval — интервал между тиками по умолчанию.
const defaultTickInterval = time.Second

// scheduledTag — тег, который получают runs, созданные по расписанию.
const scheduledTag = "scheduled"

// Scheduler создаёт flow runs для deployments с наступившим расписанием.
type Scheduler struct {
	store     *store.Store
	simulator *simulator.Simulator
	logger    *slog.Logger
	interval  time.Duration

	// nextDue — время следующего срабатывания по deployment ID.
	// Только горутина Run читает и пишет эту map.
	nextDue map[uuid.UUID]time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	Store     *store.Store
	Simulator *simulator.Simulator
	Logger    *slog.Logger
	Interval  time.Duration // интервал тиков (default: 1s)
}

// New создаёт Scheduler.
func New(cfg Config) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultTickInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		store:     cfg.Store,
		simulator: cfg.Simulator,
		logger:    logger,
		interval:  interval,
		nextDue:   make(map[uuid.UUID]time.Time),
	}
}

// Run тикает с заданным интервалом до отмены контекста.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

// Tick выполняет один тик: обходит deployments с расписанием и создаёт
// runs для тех, у кого время подошло.
//
// Ошибка одного deployment не блокирует обработку остальных.
func (s *Scheduler) Tick(now time.Time) {
	for _, dep := range s.store.ListDeployments() {
		spec := dep.Schedule
		if !spec.IsCron() && !spec.IsInterval() {
			continue
		}

		due, seen := s.nextDue[dep.ID]
		if !seen {
			// Первое обнаружение: засеваем следующее срабатывание,
			// не запускаем задним числом.
			next, err := NextDue(spec, now)
			if err != nil {
				s.logger.Warn("unschedulable deployment",
					"deployment_id", dep.ID,
					"error", err,
				)
				continue
			}
			s.nextDue[dep.ID] = next
			continue
		}

		if now.Before(due) {
			continue
		}

		run, err := s.store.CreateFlowRun(dep.ID, nil, []string{scheduledTag})
		if err != nil {
			s.logger.Error("failed to create scheduled flow run",
				"deployment_id", dep.ID,
				"error", err,
			)
			continue
		}

		s.simulator.Spawn(run.ID)

		telemetry.WithDeploymentID(s.logger, dep.ID.String()).Info("created flow run from schedule",
			"run_id", run.ID,
			"flow_name", run.FlowName,
		)

		next, err := NextDue(spec, now)
		if err != nil {
			// Расписание стало невалидным — перестаём его трогать.
			s.logger.Warn("failed to calculate next due", "deployment_id", dep.ID, "error", err)
			delete(s.nextDue, dep.ID)
			continue
		}
		s.nextDue[dep.ID] = next
	}
}
