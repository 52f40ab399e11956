// Package scheduler реализует автоматический запуск deployments по расписанию.
//
// Scheduler периодически обходит deployments, у которых задан schedule
// (cron-выражение или интервал), и создаёт flow run, когда подошло время,
// сразу запуская его симуляцию.
//
// Структура:
//   - scheduler.go — основная логика (Run, Tick)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Время следующего запуска хранится в памяти scheduler'а: deployments
// неизменяемы, а персистентности у симулятора нет. При первом
// обнаружении deployment расписание "засевается" — run создаётся только
// начиная со следующего наступления, не задним числом.
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Store:     st,
//	    Simulator: sim,
//	    Logger:    logger,
//	})
//	go sched.Run(ctx) // тикает раз в секунду до отмены контекста
package scheduler
