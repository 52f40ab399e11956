package domain

import "time"

// StateType — тип состояния flow run.
//
// Жизненный цикл, который проходит симулятор:
//
//	SCHEDULED → PENDING → RUNNING → COMPLETED
//
// FAILED и CANCELLED симулятор сам не выставляет — они могут появиться
// только через административный override (set_state). CRASHED и CANCELLING
// симулятор тоже никогда не порождает, но внешние клиенты Prefect считают
// их терминальными, поэтому IsTerminal() их распознаёт.
type StateType string

const (
	// StateScheduled — run создан и ожидает начала выполнения.
	StateScheduled StateType = "SCHEDULED"

	// StatePending — run ожидает свободного воркера.
	StatePending StateType = "PENDING"

	// StateRunning — run выполняется, задачи материализуются.
	StateRunning StateType = "RUNNING"

	// StateCompleted — run успешно завершён.
	StateCompleted StateType = "COMPLETED"

	// StateFailed — run завершился с ошибкой (только через override).
	StateFailed StateType = "FAILED"

	// StateCancelled — run отменён (только через override).
	StateCancelled StateType = "CANCELLED"

	// StateCrashed — run аварийно завершён (только у внешних консьюмеров).
	StateCrashed StateType = "CRASHED"

	// StateCancelling — run в процессе отмены (только у внешних консьюмеров).
	StateCancelling StateType = "CANCELLING"
)

// IsTerminal возвращает true, если из состояния нет автоматических переходов.
func (s StateType) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateCrashed, StateCancelling:
		return true
	default:
		return false
	}
}

// State — состояние flow run с сообщением и временной меткой.
//
// Каждый переход несёт свободный текст message и момент перехода.
type State struct {
	// Type — тип состояния.
	Type StateType `json:"type"`

	// Message — человекочитаемое описание перехода.
	Message string `json:"message"`

	// Timestamp — момент перехода.
	Timestamp time.Time `json:"timestamp"`
}

// NewState создаёт State с текущим временем.
func NewState(t StateType, message string) State {
	return State{
		Type:      t,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
