// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//
// Все сервисы используют единый формат логирования;
// Prometheus метрики каждый бинарник регистрирует сам
// и экспортирует на /metrics endpoint.
package telemetry
