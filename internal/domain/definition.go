package domain

import "maps"

// FlowDefinition — описание flow: имя, описание и упорядоченный список задач.
//
// Симулятор не строит граф зависимостей: порядок списка Tasks считается
// авторитетным, depends_on хранится как непрозрачные метаданные для
// внешнего слоя, который сформировал определение.
type FlowDefinition struct {
	// Name — имя flow.
	Name string `json:"name,omitempty"`

	// Description — описание назначения flow.
	Description string `json:"description,omitempty"`

	// Tasks — упорядоченный список задач.
	Tasks []TaskDef `json:"tasks"`
}

// TaskDef — определение одной задачи внутри flow.
type TaskDef struct {
	// TaskKey — ключ задачи в рамках flow.
	TaskKey string `json:"task_key"`

	// Name — человекочитаемое имя задачи.
	Name string `json:"name,omitempty"`

	// Tool — ссылка на инструмент, породивший задачу.
	// Непрозрачная строка, симулятор её не интерпретирует.
	Tool string `json:"mcp_tool,omitempty"`

	// DependsOn — ключи задач-зависимостей.
	// Симулятор не планирует по ним — метаданные внешнего слоя.
	DependsOn []string `json:"depends_on,omitempty"`

	// Parameters — параметры задачи.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Значения по умолчанию для незаполненных полей задачи.
const (
	defaultTaskKey  = "unknown"
	defaultTaskName = "unnamed_task"
)

// Key возвращает ключ задачи или "unknown", если ключ не задан.
func (t *TaskDef) Key() string {
	if t.TaskKey == "" {
		return defaultTaskKey
	}
	return t.TaskKey
}

// DisplayName возвращает имя задачи или "unnamed_task", если имя не задано.
func (t *TaskDef) DisplayName() string {
	if t.Name == "" {
		return defaultTaskName
	}
	return t.Name
}

// Clone возвращает глубокую копию определения.
// Возвращает nil для nil-определения.
func (f *FlowDefinition) Clone() *FlowDefinition {
	if f == nil {
		return nil
	}

	c := &FlowDefinition{
		Name:        f.Name,
		Description: f.Description,
	}

	if f.Tasks != nil {
		c.Tasks = make([]TaskDef, len(f.Tasks))
		for i, t := range f.Tasks {
			c.Tasks[i] = TaskDef{
				TaskKey:    t.TaskKey,
				Name:       t.Name,
				Tool:       t.Tool,
				DependsOn:  append([]string(nil), t.DependsOn...),
				Parameters: maps.Clone(t.Parameters),
			}
		}
	}

	return c
}
