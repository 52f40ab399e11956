package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskRun — запись о выполнении одной задачи внутри flow run.
//
// Task run создаётся симулятором сразу в состоянии COMPLETED:
// выполнение задачи не моделируется собственным жизненным циклом,
// это сознательное упрощение. После создания запись не мутируется.
type TaskRun struct {
	// ID — уникальный идентификатор task run.
	ID uuid.UUID `json:"id"`

	// FlowRunID — ссылка на владеющий flow run.
	FlowRunID uuid.UUID `json:"flow_run_id"`

	// TaskKey — ключ задачи из определения flow.
	TaskKey string `json:"task_key"`

	// Name — имя задачи.
	Name string `json:"name"`

	// Tool — ссылка на породивший задачу инструмент (непрозрачная строка).
	Tool string `json:"mcp_tool"`

	// State — состояние task run (всегда COMPLETED).
	State State `json:"state"`

	// Created — время создания.
	Created time.Time `json:"created"`
}

// Clone возвращает копию task run.
func (t *TaskRun) Clone() TaskRun {
	return *t
}
