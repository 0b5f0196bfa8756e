package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeEntrySubmitted MessageType = "entry.submitted"
	MessageTypeEntryCompleted MessageType = "entry.completed"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// EntrySubmittedPayload — payload события об отправленном этапе.
type EntrySubmittedPayload struct {
	EntryID      uuid.UUID `json:"entry_id"`
	PublicID     string    `json:"public_identifier"`
	FormID       uuid.UUID `json:"form_id"`
	Version      int       `json:"form_version"`
	StageID      int       `json:"stage_id"`
	TransitionID int       `json:"stage_transition_id"`

	// Actions — теги действий выбранного перехода; движок их
	// не интерпретирует, notifier передаёт их получателю как есть.
	Actions []string `json:"actions,omitempty"`
}

// EntryCompletedPayload — payload события о завершённой заявке.
type EntryCompletedPayload struct {
	EntryID  uuid.UUID `json:"entry_id"`
	PublicID string    `json:"public_identifier"`
	FormID   uuid.UUID `json:"form_id"`
	Version  int       `json:"form_version"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishEntrySubmitted публикует событие об отправленном этапе заявки.
// Потребитель: Notifier.
func (p *Publisher) PublishEntrySubmitted(ctx context.Context, payload EntrySubmittedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeEntrySubmitted,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeEntries, RoutingKeySubmitted, msg)
}

// PublishEntryCompleted публикует событие о завершённой заявке.
// Потребитель: Notifier.
func (p *Publisher) PublishEntryCompleted(ctx context.Context, payload EntryCompletedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeEntryCompleted,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeEntries, RoutingKeyCompleted, msg)
}

// PublishJSON публикует произвольный JSON payload.
func (p *Publisher) PublishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, msgType MessageType, payload any) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, exchange, routingKey, msg)
}
