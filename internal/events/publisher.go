package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Simulata/internal/domain"
)

// EventType — тип события.
type EventType string

// Типы событий.
const (
	EventTypeFlowRunState   EventType = "flow_run.state"
	EventTypeTaskRunCreated EventType = "task_run.created"
)

// Event — событие для публикации.
type Event struct {
	// ID — уникальный идентификатор события.
	ID string `json:"id"`

	// Type — тип события.
	Type EventType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания события.
	Timestamp time.Time `json:"timestamp"`
}

// FlowRunStatePayload — payload события о переходе состояния flow run.
type FlowRunStatePayload struct {
	RunID        uuid.UUID        `json:"run_id"`
	DeploymentID uuid.UUID        `json:"deployment_id"`
	FlowName     string           `json:"flow_name"`
	WorkPoolName string           `json:"work_pool_name"`
	State        domain.StateType `json:"state"`
	Message      string           `json:"message"`
}

// TaskRunCreatedPayload — payload события о материализованном task run.
type TaskRunCreatedPayload struct {
	TaskRunID uuid.UUID `json:"task_run_id"`
	RunID     uuid.UUID `json:"run_id"`
	TaskKey   string    `json:"task_key"`
}

// Publisher публикует события симулятора в RabbitMQ.
//
// Публикация best-effort: ошибки возвращаются вызывающей стороне,
// которая обязана их только логировать — ядро не зависит от брокера.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// PublishFlowRunState публикует переход состояния flow run.
// Routing key: "flow_run.state.<TYPE>".
func (p *Publisher) PublishFlowRunState(ctx context.Context, run domain.FlowRun) error {
	routingKey := fmt.Sprintf("flow_run.state.%s", run.State.Type)

	return p.publish(ctx, routingKey, &Event{
		ID:   uuid.New().String(),
		Type: EventTypeFlowRunState,
		Payload: FlowRunStatePayload{
			RunID:        run.ID,
			DeploymentID: run.DeploymentID,
			FlowName:     run.FlowName,
			WorkPoolName: run.WorkPoolName,
			State:        run.State.Type,
			Message:      run.State.Message,
		},
		Timestamp: time.Now().UTC(),
	})
}

// PublishTaskRunCreated публикует событие о материализованном task run.
// Routing key: "task_run.created".
func (p *Publisher) PublishTaskRunCreated(ctx context.Context, task domain.TaskRun) error {
	return p.publish(ctx, "task_run.created", &Event{
		ID:   uuid.New().String(),
		Type: EventTypeTaskRunCreated,
		Payload: TaskRunCreatedPayload{
			TaskRunID: task.ID,
			RunID:     task.FlowRunID,
			TaskKey:   task.TaskKey,
		},
		Timestamp: time.Now().UTC(),
	})
}

// publish сериализует событие и отправляет его в exchange.
func (p *Publisher) publish(ctx context.Context, routingKey string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			ExchangeEvents, // exchange
			routingKey,     // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Transient, // события эфемерны, как и сам симулятор
				MessageId:    event.ID,
				Timestamp:    event.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, routingKey, err)
		}

		p.logger.Debug("published event",
			"routing_key", routingKey,
			"event_id", event.ID,
			"type", event.Type,
		)

		return nil
	})
}
