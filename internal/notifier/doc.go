// Package notifier доставляет события заявок внешним потребителям.
//
// Notifier читает очереди entries.submitted и entries.completed и
// отправляет каждое событие HTTP POST-ом на настроенный webhook
// (WEBHOOK_URL). Неуспешная доставка приводит к nack с requeue,
// повторы исчерпываются политикой DLQ очереди.
package notifier
