// Anketa Notifier — доставка событий заявок на webhook.
//
// Notifier:
//   - Читает события entry.submitted и entry.completed из RabbitMQ
//   - Отправляет каждое событие HTTP POST-ом на WEBHOOK_URL
//   - Неуспешная доставка уходит в retry, затем в DLQ
//
// Notifiers масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Anketa/internal/mq"
	"github.com/shaiso/Anketa/internal/notifier"
	"github.com/shaiso/Anketa/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting anketa-notifier")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	webhookURL := os.Getenv("WEBHOOK_URL")
	if webhookURL == "" {
		logger.Error("WEBHOOK_URL is required")
		os.Exit(1)
	}

	// RabbitMQ
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	// Создаём топологию
	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}

	// Создаём notifier
	n, err := notifier.New(notifier.Config{
		Connection: mqConn,
		WebhookURL: webhookURL,
		Timeout:    10 * time.Second,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create notifier", "error", err)
		os.Exit(1)
	}

	// Запускаем notifier
	go func() {
		if err := n.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("notifier stopped", "error", err)
			cancel()
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("NOTIFIER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем notifier
	n.Stop()
	logger.Info("anketa-notifier stopped")
}
