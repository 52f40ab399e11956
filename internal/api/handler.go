package api

import (
	"log/slog"

	"github.com/shaiso/Simulata/internal/events"
	"github.com/shaiso/Simulata/internal/simulator"
	"github.com/shaiso/Simulata/internal/store"
)

// Version — маркер версии, который возвращает /api/health.
const Version = "mock-0.1.0"

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	store     *store.Store
	simulator *simulator.Simulator
	publisher *events.Publisher
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Store     *store.Store
	Simulator *simulator.Simulator
	Publisher *events.Publisher // опционален
	Logger    *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		store:     cfg.Store,
		simulator: cfg.Simulator,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
}
