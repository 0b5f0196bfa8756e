package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Anketa/internal/repo"
)

// Значения конфигурации по умолчанию.
const (
	defaultTTL      = 30 * 24 * time.Hour
	defaultCronExpr = "0 3 * * *" // каждый день в 03:00
)

// Janitor удаляет брошенные незавершённые заявки.
type Janitor struct {
	entryRepo *repo.EntryRepo
	ttl       time.Duration
	cronExpr  string
	onTick    func()
	logger    *slog.Logger
}

// Config — конфигурация Janitor.
type Config struct {
	EntryRepo *repo.EntryRepo

	// TTL — возраст незавершённой заявки, после которого она
	// считается брошенной (default: 30 дней).
	TTL time.Duration

	// CronExpr — расписание уборки (default: ежедневно в 03:00).
	CronExpr string

	// OnTick вызывается перед каждым проходом уборки (для метрик).
	OnTick func()

	Logger *slog.Logger
}

// New создаёт новый Janitor.
func New(cfg Config) (*Janitor, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	cronExpr := cfg.CronExpr
	if cronExpr == "" {
		cronExpr = defaultCronExpr
	}
	if err := ValidateCronExpr(cronExpr); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Janitor{
		entryRepo: cfg.EntryRepo,
		ttl:       ttl,
		cronExpr:  cronExpr,
		onTick:    cfg.OnTick,
		logger:    logger,
	}, nil
}

// Tick выполняет один проход уборки.
func (j *Janitor) Tick(ctx context.Context) error {
	if j.onTick != nil {
		j.onTick()
	}

	deleted, err := j.entryRepo.DeleteStaleIncomplete(ctx, j.ttl)
	if err != nil {
		return fmt.Errorf("delete stale entries: %w", err)
	}

	if deleted > 0 {
		j.logger.Info("deleted stale incomplete entries",
			"count", deleted,
			"ttl", j.ttl,
		)
	}
	return nil
}

// Run выполняет уборку по расписанию до отмены контекста.
// Первый проход выполняется сразу при старте.
func (j *Janitor) Run(ctx context.Context) error {
	j.logger.Info("janitor started",
		"cron", j.cronExpr,
		"ttl", j.ttl,
	)

	if err := j.Tick(ctx); err != nil {
		j.logger.Error("janitor tick failed", "error", err)
	}

	for {
		next, err := NextRun(j.cronExpr, time.Now())
		if err != nil {
			return err
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := j.Tick(ctx); err != nil {
			j.logger.Error("janitor tick failed", "error", err)
		}
	}
}
