// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - entry.submitted — этап заявки успешно отправлен
//   - entry.completed — заявка завершена
//
// Exchanges:
//   - anketa.entries — события заявок
//   - anketa.dlq     — dead letter queue
package mq
