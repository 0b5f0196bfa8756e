// Package engine содержит движок динамической формы.
//
// Включает:
//   - condition.go  — вычисление условий видимости и переходов
//   - rules.go      — компиляция декларативных правил в валидаторы
//   - deps.go       — обратный граф зависимостей и каскадный пересчёт
//   - state.go      — живое состояние полей (значения, ошибки, видимость)
//   - transition.go — выбор перехода на следующий этап
//   - validate.go   — валидация структуры формы при публикации
//
// Движок чистый и синхронный: никакого I/O, все вычисления ограничены
// и тотальны. Ошибки конфигурации (кривое условие, неразборчивые
// параметры правила) деградируют, а не роняют процесс.
package engine
