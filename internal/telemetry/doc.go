// Package telemetry обеспечивает наблюдаемость сервиса.
//
// Включает structured logging через slog. Prometheus метрики
// живут рядом с кодом, который их инкрементирует (api, simulator),
// и экспортируются на /metrics endpoint сервера.
package telemetry
