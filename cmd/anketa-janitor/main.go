// Anketa Janitor — фоновая уборка брошенных заявок.
//
// Janitor по cron-расписанию (CLEANUP_CRON) удаляет незавершённые
// заявки старше ENTRY_TTL. Advisory lock в Postgres гарантирует,
// что при нескольких инстансах уборку выполняет один.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Anketa/internal/janitor"
	"github.com/shaiso/Anketa/internal/repo"
	"github.com/shaiso/Anketa/internal/telemetry"
)

const janitorLockKey int64 = 271828

var tickTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "anketa_janitor_ticks_total",
	Help: "Total cleanup ticks executed by anketa_janitor",
})

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting anketa-janitor")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	entryRepo := repo.NewEntryRepo(pool)

	ttl := time.Duration(0)
	if v := os.Getenv("ENTRY_TTL"); v != "" {
		ttl, err = time.ParseDuration(v)
		if err != nil {
			logger.Error("invalid ENTRY_TTL", "value", v, "error", err)
			os.Exit(1)
		}
	}

	j, err := janitor.New(janitor.Config{
		EntryRepo: entryRepo,
		TTL:       ttl,
		CronExpr:  os.Getenv("CLEANUP_CRON"),
		OnTick:    tickTotal.Inc,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create janitor", "error", err)
		os.Exit(1)
	}

	// Запускаем цикл уборки под advisory lock
	go func() {
		var hasLock bool
		defer func() {
			if hasLock {
				_, _ = pool.Exec(context.Background(), "select pg_advisory_unlock($1)", janitorLockKey)
			}
		}()

		// Ждём лидерства
		for !hasLock {
			if err := pool.QueryRow(ctx, "select pg_try_advisory_lock($1)", janitorLockKey).Scan(&hasLock); err != nil {
				logger.Warn("advisory lock error", "error", err)
			}
			if hasLock {
				break
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
		}

		// Лидер выполняет уборку по расписанию
		if err := j.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("janitor stopped", "error", err)
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

	port := ":8081"
	if v := os.Getenv("JANITOR_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("anketa-janitor stopped")
}
