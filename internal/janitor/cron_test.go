package janitor

import (
	"testing"
	"time"
)

func TestNextRunDaily(t *testing.T) {
	from := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)

	next, err := NextRun("0 3 * * *", from)
	if err != nil {
		t.Fatalf("NextRun() error: %v", err)
	}

	want := time.Date(2026, 8, 25, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next run = %v, want %v", next, want)
	}
}

func TestNextRunEveryMinute(t *testing.T) {
	from := time.Date(2026, 8, 24, 10, 30, 15, 0, time.UTC)

	next, err := NextRun("* * * * *", from)
	if err != nil {
		t.Fatalf("NextRun() error: %v", err)
	}

	want := time.Date(2026, 8, 24, 10, 31, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next run = %v, want %v", next, want)
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/15 * * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateCronExpr("61 * * * *"); err == nil {
		t.Error("expected error for minute 61, got nil")
	}
	if err := ValidateCronExpr("not a cron"); err == nil {
		t.Error("expected error for garbage expression, got nil")
	}
}

func TestNewRejectsBadCron(t *testing.T) {
	_, err := New(Config{CronExpr: "bad expr"})
	if err == nil {
		t.Fatal("expected error for invalid cron expression, got nil")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	j, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if j.ttl != defaultTTL {
		t.Errorf("ttl = %v, want %v", j.ttl, defaultTTL)
	}
	if j.cronExpr != defaultCronExpr {
		t.Errorf("cron = %q, want %q", j.cronExpr, defaultCronExpr)
	}
}
