// Package runtime связывает чистый движок (internal/engine) с внешним
// миром: загрузкой структуры и заявки, валидацией при submit и
// отправкой этапа в хранилище.
//
// Центральный тип — Session: один проход одного пользователя по
// многошаговой форме. Session сериализует операции мьютексом и
// гарантирует, что неуспешный submit не меняет состояние формы.
package runtime
