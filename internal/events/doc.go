// Package events публикует события симулятора в RabbitMQ.
//
// Симулятор — in-memory mock, но внешние наблюдатели (дашборды,
// интеграционные тесты) могут подписаться на переходы состояний flow runs
// вместо поллинга API. Публикация строго best-effort: ядро никогда не
// блокируется на брокере и работает без него (nil Publisher допустим везде).
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - publisher.go  — публикация событий
//
// Типы событий:
//   - flow_run.state    — flow run перешёл в новое состояние
//   - task_run.created  — симулятор материализовал task run
//
// Exchange:
//   - simulata.events (topic), routing key "flow_run.state.<TYPE>"
//     или "task_run.created"
package events
