// Package domain содержит основные сущности симулятора.
//
// Сущности:
//   - WorkPool       — именованный пул, в который направляются deployments
//   - Deployment     — зарегистрированный запускаемый flow, привязанный к пулу
//   - FlowRun        — одна попытка выполнения deployment
//   - TaskRun        — запись о выполнении одной задачи внутри flow run
//   - FlowDefinition — описание flow: упорядоченный список задач
//
// Состояния flow run описаны в state.go:
//
//	SCHEDULED → PENDING → RUNNING → COMPLETED
//
// FAILED, CANCELLED, CRASHED и CANCELLING — терминальные состояния,
// которые симулятор сам не порождает, но распознаёт.
//
// Пакет не содержит I/O и не зависит от других пакетов проекта.
package domain
