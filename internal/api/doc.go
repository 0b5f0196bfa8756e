// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go       — Handler с DI (репозитории, publisher, logger)
//   - routes.go        — регистрация маршрутов
//   - middleware.go    — middleware (logging, recovery)
//   - response.go      — унифицированные JSON-ответы и обработка ошибок
//   - dto.go           — Data Transfer Objects (request/response)
//   - form_handler.go  — обработчики для /forms и версий структур
//   - entry_handler.go — обработчики для /entries (создание, возобновление, submit)
//   - sink.go          — серверный приёмник отправок (БД + события)
//
// API предоставляет REST endpoints для управления формами и приёма заявок.
package api
