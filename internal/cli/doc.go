// Package cli реализует инструмент командной строки Anketa.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Anketa API.
// Команды форм и заявок работают через HTTP; structure validate —
// единственное исключение, она проверяет структуру локально через
// internal/engine, чтобы ловить ошибки до публикации версии.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Anketa API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (dataResponse, listResponse, errorResponse)
// и обработку ошибок, включая пополевые ошибки валидации.
//
//	client := cli.NewClient("http://localhost:8080")
//	forms, err := client.ListForms()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: anketa form list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - form:      list, create, show, update, delete, versions, publish
//   - entry:     create, show, submit
//   - structure: validate
//
// Каждая группа создаётся через фабричную функцию (NewFormCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
