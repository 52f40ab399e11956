package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Deployment — зарегистрированный запускаемый экземпляр flow.
//
// Deployment привязан к одному work pool и несёт параметры и теги
// по умолчанию для создаваемых из него flow runs.
// После создания deployment неизменяем (update-эндпоинта нет).
type Deployment struct {
	// ID — уникальный идентификатор deployment.
	ID uuid.UUID `json:"id"`

	// Name — имя deployment.
	Name string `json:"name"`

	// FlowName — имя flow, который запускает этот deployment.
	FlowName string `json:"flow_name"`

	// WorkPoolName — имя пула, в который направляется работа.
	// Пул обязан существовать на момент создания.
	WorkPoolName string `json:"work_pool_name"`

	// Parameters — параметры run по умолчанию.
	// Переопределяются параметрами конкретного запуска (override wins).
	Parameters map[string]any `json:"parameters"`

	// Tags — теги по умолчанию. Объединяются с тегами запуска.
	Tags []string `json:"tags"`

	// Description — описание deployment.
	Description string `json:"description"`

	// Schedule — расписание автоматических запусков.
	// Nil, если deployment запускается только вручную.
	Schedule *ScheduleSpec `json:"schedule,omitempty"`

	// FlowDefinition — определение flow, копируется в каждый run.
	FlowDefinition *FlowDefinition `json:"flow_definition"`

	// Status — статус deployment (всегда READY).
	Status string `json:"status"`

	// Created — время создания.
	Created time.Time `json:"created"`

	// Updated — время последнего изменения.
	Updated time.Time `json:"updated"`
}

// ScheduleSpec — расписание автоматического запуска deployment.
//
// Задаётся либо cron-выражением, либо интервалом в секундах.
// Если заданы оба, cron имеет приоритет. Если не задано ничего,
// расписание хранится, но никогда не срабатывает.
type ScheduleSpec struct {
	// Cron — cron-выражение: "минуты часы дни месяцы дни_недели".
	// Например "0 9 * * *" — каждый день в 9:00.
	Cron string `json:"cron,omitempty"`

	// IntervalSeconds — интервал между запусками в секундах.
	IntervalSeconds int `json:"interval_seconds,omitempty"`

	// Timezone — часовой пояс для cron-выражения. По умолчанию UTC.
	Timezone string `json:"timezone,omitempty"`
}

// IsCron возвращает true, если расписание задано cron-выражением.
func (s *ScheduleSpec) IsCron() bool {
	return s != nil && s.Cron != ""
}

// IsInterval возвращает true, если расписание задано интервалом.
func (s *ScheduleSpec) IsInterval() bool {
	return s != nil && !s.IsCron() && s.IntervalSeconds > 0
}

// Clone возвращает копию deployment с независимыми вложенными структурами.
func (d *Deployment) Clone() Deployment {
	c := *d
	c.Parameters = maps.Clone(d.Parameters)
	c.Tags = append([]string(nil), d.Tags...)
	c.FlowDefinition = d.FlowDefinition.Clone()
	if d.Schedule != nil {
		sched := *d.Schedule
		c.Schedule = &sched
	}
	return c
}
