package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shaiso/Anketa/internal/mq"
)

const defaultTimeout = 10 * time.Second

// WebhookEvent — тело webhook-запроса.
type WebhookEvent struct {
	// Event — тип события (entry.submitted / entry.completed).
	Event string `json:"event"`

	// MessageID — идентификатор исходного сообщения.
	MessageID string `json:"message_id"`

	// OccurredAt — время публикации события.
	OccurredAt time.Time `json:"occurred_at"`

	// Payload — полезная нагрузка события.
	Payload any `json:"payload"`
}

// Notifier потребляет события заявок и доставляет их на webhook.
type Notifier struct {
	conn       *mq.Connection
	webhookURL string
	client     *http.Client
	logger     *slog.Logger

	consumers []*mq.Consumer

	mu         sync.Mutex
	started    bool
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Notifier.
type Config struct {
	Connection *mq.Connection

	// WebhookURL — адрес, на который доставляются события.
	WebhookURL string

	// Timeout — таймаут HTTP-запроса (default: 10s).
	Timeout time.Duration

	Logger *slog.Logger
}

// New создаёт новый Notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Connection == nil {
		return nil, fmt.Errorf("connection is required")
	}
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		conn:       cfg.Connection,
		webhookURL: cfg.WebhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Start запускает потребление обеих очередей событий.
func (n *Notifier) Start(ctx context.Context) error {
	n.mu.Lock()
	if n.started {
		n.mu.Unlock()
		return fmt.Errorf("notifier already started")
	}
	n.started = true

	ctx, cancel := context.WithCancel(ctx)
	n.cancelFunc = cancel

	queues := []string{string(mq.QueueEntriesSubmitted), string(mq.QueueEntriesCompleted)}
	for _, queue := range queues {
		consumer := mq.NewConsumer(n.conn, n.logger, mq.ConsumerConfig{
			Queue:    queue,
			Handler:  n.handleMessage,
			Prefetch: 5,
		})
		n.consumers = append(n.consumers, consumer)

		n.wg.Add(1)
		go func(c *mq.Consumer, q string) {
			defer n.wg.Done()
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				n.logger.Error("consumer stopped", "queue", q, "error", err)
			}
		}(consumer, queue)
	}
	n.mu.Unlock()

	n.logger.Info("notifier started", "webhook_url", n.webhookURL)

	<-ctx.Done()
	return ctx.Err()
}

// Stop останавливает Notifier и дожидается завершения consumers.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.cancelFunc != nil {
		n.cancelFunc()
	}
	consumers := n.consumers
	n.mu.Unlock()

	for _, c := range consumers {
		c.Stop()
	}
	n.wg.Wait()

	n.logger.Info("notifier stopped")
}

// handleMessage обрабатывает одно событие из очереди.
func (n *Notifier) handleMessage(ctx context.Context, msg *mq.Delivery) error {
	switch msg.Message.Type {
	case mq.MessageTypeEntrySubmitted:
		payload, err := mq.ParsePayload[mq.EntrySubmittedPayload](&msg.Message)
		if err != nil {
			// Некорректное сообщение повторять бессмысленно
			n.logger.Error("malformed submitted payload",
				"message_id", msg.Message.ID,
				"error", err,
			)
			return nil
		}
		return n.deliver(ctx, msg.Message, payload)

	case mq.MessageTypeEntryCompleted:
		payload, err := mq.ParsePayload[mq.EntryCompletedPayload](&msg.Message)
		if err != nil {
			n.logger.Error("malformed completed payload",
				"message_id", msg.Message.ID,
				"error", err,
			)
			return nil
		}
		return n.deliver(ctx, msg.Message, payload)

	default:
		n.logger.Warn("unknown message type",
			"message_id", msg.Message.ID,
			"type", msg.Message.Type,
		)
		return nil
	}
}

// deliver отправляет событие на webhook.
func (n *Notifier) deliver(ctx context.Context, msg mq.Message, payload any) error {
	event := WebhookEvent{
		Event:      string(msg.Type),
		MessageID:  msg.ID,
		OccurredAt: msg.Timestamp,
		Payload:    payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Anketa-Event", string(msg.Type))

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("event delivered",
		"message_id", msg.ID,
		"type", msg.Type,
		"status", resp.StatusCode,
	)
	return nil
}
