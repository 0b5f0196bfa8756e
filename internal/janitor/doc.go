// Package janitor содержит фоновую уборку заявок.
//
// Janitor периодически удаляет незавершённые заявки, которые
// не обновлялись дольше ENTRY_TTL: брошенная на середине анкета
// не должна жить в БД вечно. Расписание задаётся cron-выражением
// CLEANUP_CRON.
package janitor
