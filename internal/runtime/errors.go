package runtime

import (
	"errors"
	"fmt"
	"net/http"
)

// Ошибки сессии.
var (
	// ErrEntryComplete — заявка завершена и больше не принимает submit.
	ErrEntryComplete = errors.New("entry is already complete")

	// ErrStructureNotFound — структура формы не найдена.
	ErrStructureNotFound = errors.New("form structure not found")

	// ErrEntryNotFound — заявка не найдена.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrSuperseded — запрос вытеснен более поздним запросом
	// по тому же ключу; результат молча отброшен.
	ErrSuperseded = errors.New("request superseded")
)

// ErrorKind — классификация ошибки отправки.
type ErrorKind string

const (
	// KindNetwork — сеть недоступна или запрос оборвался.
	KindNetwork ErrorKind = "network"

	// KindAuthentication — отправитель не аутентифицирован
	// или не имеет доступа к этапу.
	KindAuthentication ErrorKind = "authentication"

	// KindValidation — сервер отверг значения полей.
	KindValidation ErrorKind = "validation"

	// KindBusiness — доменный отказ: форма неактивна, заявка
	// завершена, переход неприменим.
	KindBusiness ErrorKind = "business"

	// KindServer — внутренняя ошибка сервера.
	KindServer ErrorKind = "server"
)

// SubmissionError — классифицированная ошибка submit.
//
// Kind определяет реакцию клиента: network можно ретраить,
// validation требует исправления полей, business — терминальный отказ.
type SubmissionError struct {
	Kind    ErrorKind
	Message string
	Err     error

	// FieldErrors — ошибки по полям (для Kind == KindValidation).
	FieldErrors map[int]string
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submission failed (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("submission failed (%s): %s", e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ValidationFailed строит ошибку локальной валидации.
func ValidationFailed(fieldErrors map[int]string) *SubmissionError {
	return &SubmissionError{
		Kind:        KindValidation,
		Message:     "field validation failed",
		FieldErrors: fieldErrors,
	}
}

// ClassifyHTTPStatus сопоставляет HTTP-статус ответа сервера
// с видом ошибки отправки.
func ClassifyHTTPStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthentication
	case status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusConflict || status == http.StatusLocked:
		return KindBusiness
	case status >= 500:
		return KindServer
	default:
		return KindServer
	}
}
