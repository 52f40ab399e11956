package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// FlowRun — одна попытка выполнения deployment.
//
// Run создаётся в состоянии SCHEDULED и дальше мутируется только
// своим экземпляром симулятора (один симулятор на run) либо
// административным override'ом через set_state.
// Runs никогда не удаляются.
type FlowRun struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// DeploymentID — ссылка на deployment, из которого создан run.
	DeploymentID uuid.UUID `json:"deployment_id"`

	// FlowName — имя flow (копия из deployment).
	FlowName string `json:"flow_name"`

	// WorkPoolName — имя пула (копия из deployment).
	WorkPoolName string `json:"work_pool_name"`

	// Parameters — параметры deployment, слитые с параметрами запуска.
	// При конфликте ключей побеждает параметр запуска.
	Parameters map[string]any `json:"parameters"`

	// Tags — объединение тегов deployment и тегов запуска, без дубликатов.
	Tags []string `json:"tags"`

	// State — текущее состояние run.
	State State `json:"state"`

	// FlowDefinition — определение flow (копия из deployment).
	FlowDefinition *FlowDefinition `json:"flow_definition"`

	// TaskRuns — идентификаторы task runs в порядке выполнения.
	// Симулятор дописывает их по мере материализации задач.
	TaskRuns []uuid.UUID `json:"task_runs"`

	// Created — время создания run.
	Created time.Time `json:"created"`

	// Updated — время последнего изменения.
	Updated time.Time `json:"updated"`

	// StartTime — момент входа в RUNNING. Nil до начала выполнения.
	StartTime *time.Time `json:"start_time"`

	// EndTime — момент терминального завершения. Nil до завершения.
	EndTime *time.Time `json:"end_time"`
}

// IsFinished возвращает true, если run в терминальном состоянии.
func (r *FlowRun) IsFinished() bool {
	return r.State.Type.IsTerminal()
}

// Clone возвращает копию run с независимыми вложенными структурами.
func (r *FlowRun) Clone() FlowRun {
	c := *r
	c.Parameters = maps.Clone(r.Parameters)
	c.Tags = append([]string(nil), r.Tags...)
	c.TaskRuns = append([]uuid.UUID(nil), r.TaskRuns...)
	c.FlowDefinition = r.FlowDefinition.Clone()
	if r.StartTime != nil {
		start := *r.StartTime
		c.StartTime = &start
	}
	if r.EndTime != nil {
		end := *r.EndTime
		c.EndTime = &end
	}
	return c
}

// MergeParameters сливает параметры deployment с параметрами запуска.
// При конфликте ключей побеждает override. Всегда возвращает не-nil map.
func MergeParameters(defaults, override map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(override))
	maps.Copy(merged, defaults)
	maps.Copy(merged, override)
	return merged
}

// UnionTags объединяет теги deployment и теги запуска без дубликатов.
// Порядок детерминированный: сначала теги deployment, затем новые теги запуска.
func UnionTags(defaults, extra []string) []string {
	seen := make(map[string]bool, len(defaults)+len(extra))
	union := make([]string, 0, len(defaults)+len(extra))
	for _, tag := range defaults {
		if !seen[tag] {
			seen[tag] = true
			union = append(union, tag)
		}
	}
	for _, tag := range extra {
		if !seen[tag] {
			seen[tag] = true
			union = append(union, tag)
		}
	}
	return union
}
