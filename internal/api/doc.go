// Package api содержит HTTP API симулятора.
//
// Структура:
//   - handler.go            — Handler с DI (store, simulator, publisher, logger)
//   - routes.go             — регистрация маршрутов
//   - middleware.go         — middleware (logging, recovery, метрики)
//   - response.go           — JSON-ответы и маппинг ошибок Store
//   - dto.go                — request-структуры
//   - pool_handler.go       — обработчики для /api/work_pools
//   - deployment_handler.go — обработчики для /api/deployments
//   - run_handler.go        — обработчики для /api/flow_runs и /api/task_runs
//   - health_handler.go     — /api/health
//
// Каждая операция транслируется ровно в один вызов хранилища;
// успешный ответ — сама запись (без конверта, как в Prefect API),
// ошибки — {"error":{"code","message"}} с указанием отсутствующего
// идентификатора. ErrNotFound → 404, ErrAlreadyExists → 409.
package api
