// Package cli реализует инструмент командной строки Simulata.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Simulata API.
// Работает через HTTP, не импортирует внутренние пакеты симулятора.
// CLI используется для управления work pools, deployments и flow runs.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Simulata API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (записи отдаются без обёртки, ошибки — в
// ErrorResponse) и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	pools, err := client.ListWorkPools()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: simulata run list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - pool: list, create, show
//   - deployment: list, create, show
//   - run: list, start, show, set-state, tasks, watch
//   - health
//
// Каждая группа создаётся через фабричную функцию (NewPoolCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
