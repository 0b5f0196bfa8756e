package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeEntries Exchange = "anketa.entries"
	ExchangeDLQ     Exchange = "anketa.dlq"
)

// Queues — имена очередей.
const (
	QueueEntriesSubmitted Queue = "entries.submitted"
	QueueEntriesCompleted Queue = "entries.completed"
	QueueDLQEntries       Queue = "dlq.entries"
)

// Routing keys.
const (
	RoutingKeySubmitted  RoutingKey = "submitted"
	RoutingKeyCompleted  RoutingKey = "completed"
	RoutingKeyDLQEntries RoutingKey = "entries"
)

func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		// 1. Создаём exchanges
		if err := declareExchanges(ch); err != nil {
			return err
		}

		// 2. Создаём queues
		if err := declareQueues(ch); err != nil {
			return err
		}

		// 3. Привязываем queues к exchanges
		if err := bindQueues(ch); err != nil {
			return err
		}

		return nil
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeEntries, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Аргументы для очередей с DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQEntries),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// entries.submitted — с DLQ (вебхук может падать, после retry — в DLQ)
		{QueueEntriesSubmitted, dlqArgs},

		// entries.completed — с DLQ по той же причине
		{QueueEntriesCompleted, dlqArgs},

		// dlq.entries — сама DLQ очередь
		{QueueDLQEntries, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueEntriesSubmitted, RoutingKeySubmitted, ExchangeEntries},
		{QueueEntriesCompleted, RoutingKeyCompleted, ExchangeEntries},
		{QueueDLQEntries, RoutingKeyDLQEntries, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Anketa RabbitMQ Topology:

    anketa.entries (direct)
    ├── entries.submitted [routing: submitted]
    │       Consumer: Notifier (webhooks)
    │       DLQ: dlq.entries
    └── entries.completed [routing: completed]
            Consumer: Notifier (webhooks)
            DLQ: dlq.entries

    anketa.dlq (direct)
    └── dlq.entries [routing: entries]
            Manual processing
  `
}
