package simulator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Simulata/internal/domain"
	"github.com/shaiso/Simulata/internal/events"
	"github.com/shaiso/Simulata/internal/store"
	"github.com/shaiso/Simulata/internal/telemetry"
)

// Delays — задержки между шагами симуляции.
type Delays struct {
	// Scheduling — задержка перед PENDING (латентность планирования).
	Scheduling time.Duration

	// Pickup — задержка перед RUNNING (латентность подхвата воркером).
	Pickup time.Duration

	// Task — задержка после материализации каждой задачи.
	Task time.Duration

	// Completion — задержка перед COMPLETED.
	Completion time.Duration
}

// DefaultDelays возвращает задержки по умолчанию.
func DefaultDelays() Delays {
	return Delays{
		Scheduling: 200 * time.Millisecond,
		Pickup:     300 * time.Millisecond,
		Task:       100 * time.Millisecond,
		Completion: 200 * time.Millisecond,
	}
}

// FastDelays возвращает минимальные задержки (тесты, SIM_FAST=1).
func FastDelays() Delays {
	return Delays{
		Scheduling: time.Millisecond,
		Pickup:     time.Millisecond,
		Task:       time.Millisecond,
		Completion: time.Millisecond,
	}
}

// isZero возвращает true, если все задержки нулевые (Delays не заданы).
func (d Delays) isZero() bool {
	return d.Scheduling == 0 && d.Pickup == 0 && d.Task == 0 && d.Completion == 0
}

// Simulator управляет фоновыми симуляциями flow runs.
//
// Один Simulator на процесс; на каждый run — отдельная горутина,
// зарегистрированная в WaitGroup, так что при shutdown процесс может
// дождаться или отменить все незавершённые симуляции.
type Simulator struct {
	store     *store.Store
	publisher *events.Publisher
	logger    *slog.Logger
	delays    Delays

	// Lifecycle
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	active    atomic.Int64
	stopped   bool
	stoppedMu sync.RWMutex
}

// Config — конфигурация Simulator.
type Config struct {
	// Store — хранилище ресурсов (обязателен).
	Store *store.Store

	// Publisher — публикация событий переходов (опционален, может быть nil).
	Publisher *events.Publisher

	// Delays — задержки шагов (default: DefaultDelays).
	Delays Delays

	// Logger — логгер (default: slog.Default).
	Logger *slog.Logger
}

// New создаёт Simulator.
func New(cfg Config) *Simulator {
	delays := cfg.Delays
	if delays.isZero() {
		delays = DefaultDelays()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Simulator{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    logger,
		delays:    delays,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Spawn запускает фоновую симуляцию для flow run (fire-and-forget).
//
// Возвращает управление сразу после постановки горутины — вызывающая
// сторона не ждёт ни одного перехода состояния. После Stop() новые
// симуляции не запускаются.
func (s *Simulator) Spawn(runID uuid.UUID) {
	s.stoppedMu.RLock()
	stopped := s.stopped
	s.stoppedMu.RUnlock()

	if stopped {
		s.logger.Warn("simulator stopped, run will stay SCHEDULED", "run_id", runID)
		return
	}

	s.wg.Add(1)
	runsStarted.Inc()
	s.active.Add(1)
	activeRuns.Inc()

	go func() {
		defer s.wg.Done()
		defer s.active.Add(-1)
		defer activeRuns.Dec()
		defer func() {
			// Симуляция — best-effort фоновый процесс: паника не должна
			// уронить процесс и никогда не видна пользователю.
			if r := recover(); r != nil {
				s.logger.Error("flow run simulation panic",
					"run_id", runID,
					"panic", r,
				)
			}
		}()

		s.simulate(s.ctx, runID)
	}()
}

// Stop отменяет все незавершённые симуляции и дожидается их выхода.
func (s *Simulator) Stop() {
	s.stoppedMu.Lock()
	s.stopped = true
	s.stoppedMu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.logger.Info("simulator stopped")
}

// ActiveRuns возвращает количество симуляций в полёте.
func (s *Simulator) ActiveRuns() int {
	return int(s.active.Load())
}

// simulate продвигает один flow run по жизненному циклу.
func (s *Simulator) simulate(ctx context.Context, runID uuid.UUID) {
	logger := telemetry.WithRunID(s.logger, runID.String())

	// 1. Латентность планирования → PENDING
	if !s.sleep(ctx, s.delays.Scheduling) {
		runsAborted.Inc()
		return
	}
	run, ok := s.advance(ctx, logger, runID, domain.NewState(domain.StatePending, "Waiting for worker"))
	if !ok {
		return
	}

	// 2. Латентность подхвата воркером → RUNNING
	if !s.sleep(ctx, s.delays.Pickup) {
		runsAborted.Inc()
		return
	}
	run, ok = s.advance(ctx, logger, runID, domain.NewState(domain.StateRunning, "Executing tasks"))
	if !ok {
		return
	}

	// 3. Материализация task runs в порядке списка определения.
	// Граф depends_on не разворачивается — порядок списка авторитетен.
	if run.FlowDefinition != nil {
		for _, def := range run.FlowDefinition.Tasks {
			task, appended, err := s.store.AppendTaskRun(runID, def)
			if err != nil {
				logger.Error("failed to append task run", "task_key", def.Key(), "error", err)
				runsAborted.Inc()
				return
			}
			if !appended {
				logger.Debug("run reached terminal state externally, aborting simulation")
				runsAborted.Inc()
				return
			}

			taskRunsCreated.Inc()
			logger.Debug("task run created", "task_run_id", task.ID, "task_key", task.TaskKey)

			if s.publisher != nil {
				if err := s.publisher.PublishTaskRunCreated(ctx, task); err != nil {
					logger.Warn("failed to publish task_run.created", "error", err)
				}
			}

			if !s.sleep(ctx, s.delays.Task) {
				runsAborted.Inc()
				return
			}
		}
	}

	// 4. Финальная задержка → COMPLETED, декремент pending_work пула.
	if !s.sleep(ctx, s.delays.Completion) {
		runsAborted.Inc()
		return
	}
	run, ok = s.advance(ctx, logger, runID, domain.NewState(domain.StateCompleted, "All tasks finished"))
	if !ok {
		return
	}

	if err := s.store.FinishPoolWork(run.WorkPoolName); err != nil {
		// Пулы не удаляются, так что это чисто защитная ветка.
		logger.Warn("failed to decrement pool pending_work",
			"pool", run.WorkPoolName,
			"error", err,
		)
	}

	runsCompleted.Inc()
	logger.Info("flow run completed",
		"flow_name", run.FlowName,
		"pool", run.WorkPoolName,
		"task_runs", len(run.TaskRuns),
	)
}

// advance выполняет один переход состояния через Store.
//
// Возвращает ok=false, если run исчез, уже терминален (внешний override
// побеждает) или переход не удался — во всех случаях симуляция этого run
// молча прекращается.
func (s *Simulator) advance(ctx context.Context, logger *slog.Logger, runID uuid.UUID, next domain.State) (domain.FlowRun, bool) {
	run, advanced, err := s.store.AdvanceFlowRun(runID, next)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.Debug("flow run disappeared, aborting simulation")
		} else {
			logger.Error("failed to advance flow run", "state", next.Type, "error", err)
		}
		runsAborted.Inc()
		return domain.FlowRun{}, false
	}

	if !advanced {
		logger.Debug("run reached terminal state externally, aborting simulation",
			"refused_state", next.Type,
		)
		runsAborted.Inc()
		return domain.FlowRun{}, false
	}

	logger.Debug("flow run state advanced", "state", next.Type)

	if s.publisher != nil {
		if err := s.publisher.PublishFlowRunState(ctx, run); err != nil {
			logger.Warn("failed to publish flow_run.state", "error", err)
		}
	}

	return run, true
}

// sleep ждёт delay или отмены контекста.
// Возвращает false, если симуляция отменена (shutdown).
func (s *Simulator) sleep(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
