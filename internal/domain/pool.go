package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// PoolStatusReady — единственный статус пула в этой реализации.
// Пул готов принимать deployments сразу после создания.
const PoolStatusReady = "READY"

// WorkPool — именованный логический пул для deployments.
//
// Пул отслеживает объём незавершённой работы: создание deployment
// увеличивает PendingWork, терминальное завершение flow run уменьшает.
// Инвариант: PendingWork >= 0.
//
// Пулы никогда не удаляются.
type WorkPool struct {
	// ID — уникальный идентификатор пула.
	ID uuid.UUID `json:"id"`

	// Name — уникальное имя пула (клиентский вторичный ключ).
	Name string `json:"name"`

	// Type — тип бэкенда выполнения (свободная метка, default "process").
	Type string `json:"type"`

	// Description — описание пула.
	Description string `json:"description"`

	// ConcurrencyLimit — верхняя граница одновременных runs.
	// Рекомендательная: симулятор её не enforce'ит.
	ConcurrencyLimit *int `json:"concurrency_limit"`

	// BaseJobTemplate — шаблон job для воркеров пула.
	// Непрозрачный объект, симулятор его не интерпретирует.
	BaseJobTemplate map[string]any `json:"base_job_template"`

	// Status — статус пула (всегда READY).
	Status string `json:"status"`

	// PendingWork — счётчик незавершённых deployments в пуле.
	PendingWork int `json:"pending_work"`

	// Created — время создания.
	Created time.Time `json:"created"`

	// Updated — время последнего изменения.
	Updated time.Time `json:"updated"`
}

// Clone возвращает копию пула с независимыми map-полями.
func (p *WorkPool) Clone() WorkPool {
	c := *p
	c.BaseJobTemplate = maps.Clone(p.BaseJobTemplate)
	if p.ConcurrencyLimit != nil {
		limit := *p.ConcurrencyLimit
		c.ConcurrencyLimit = &limit
	}
	return c
}
