// Simulata server — in-memory симулятор orchestration API.
//
// Переменные окружения:
//
//	API_PORT   — порт HTTP сервера (default: 8080)
//	AMQP_URL   — RabbitMQ URL; если не задан, события не публикуются
//	SIM_FAST   — "1" включает быстрые задержки симуляции (для тестов)
//	LOG_LEVEL  — DEBUG, INFO, WARN, ERROR
//	LOG_FORMAT — json (default) или text
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Simulata/internal/api"
	"github.com/shaiso/Simulata/internal/events"
	"github.com/shaiso/Simulata/internal/scheduler"
	"github.com/shaiso/Simulata/internal/simulator"
	"github.com/shaiso/Simulata/internal/store"
	"github.com/shaiso/Simulata/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting simulata-server")

	st := store.New()

	// События опциональны: без AMQP_URL сервер работает автономно
	var publisher *events.Publisher
	var conn *events.Connection
	if url := os.Getenv("AMQP_URL"); url != "" {
		var err error
		conn, err = events.NewConnection(url, logger)
		if err != nil {
			logger.Warn("event bus unavailable, continuing without events", "error", err)
		} else {
			defer conn.Close()
			publisher = events.NewPublisher(conn, logger)
			logger.Info("connected to event bus")
		}
	}

	delays := simulator.DefaultDelays()
	if os.Getenv("SIM_FAST") == "1" {
		delays = simulator.FastDelays()
	}

	sim := simulator.New(simulator.Config{
		Store:     st,
		Publisher: publisher,
		Delays:    delays,
		Logger:    logger,
	})

	// Scheduler тикает в фоне до отмены контекста
	schedCtx, schedCancel := context.WithCancel(context.Background())
	sched := scheduler.New(scheduler.Config{
		Store:     st,
		Simulator: sim,
		Logger:    logger,
	})
	go sched.Run(schedCtx)

	handler := api.NewHandler(api.Config{
		Store:     st,
		Simulator: sim,
		Publisher: publisher,
		Logger:    logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Останавливаем фоновые компоненты: сначала новые runs, потом активные
	schedCancel()
	sim.Stop()

	logger.Info("stopped")
}
