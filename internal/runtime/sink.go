package runtime

import (
	"context"

	"github.com/google/uuid"
)

// FieldValue — значение одного поля в payload отправки.
type FieldValue struct {
	FieldID int `json:"field_id"`
	Value   any `json:"value"`
}

// SubmissionRequest — отправка одного этапа.
//
// Для первого этапа заявки PublicID пуст: заявку создаёт приёмник
// и возвращает её публичный идентификатор в SubmissionResult.
// Для последующих этапов PublicID обязателен.
type SubmissionRequest struct {
	// FormID и Version идентифицируют структуру, по которой
	// заполнялась форма.
	FormID  uuid.UUID `json:"form_id"`
	Version int       `json:"form_version"`

	// PublicID — публичный идентификатор заявки (пуст для первой
	// отправки).
	PublicID string `json:"public_identifier,omitempty"`

	// StageID — отправляемый этап.
	StageID int `json:"stage_id"`

	// TransitionID — переход, выбранный движком.
	TransitionID int `json:"stage_transition_id"`

	// Values — значения видимых полей этапа в порядке объявления.
	Values []FieldValue `json:"field_values"`

	// ServerChecks — поля с правилом unique: локально они прошли,
	// но сервер обязан проверить уникальность.
	ServerChecks []int `json:"server_checks,omitempty"`
}

// SubmissionResult — результат успешной отправки этапа.
type SubmissionResult struct {
	EntryID        uuid.UUID `json:"entry_id"`
	PublicID       string    `json:"public_identifier"`
	IsComplete     bool      `json:"is_complete"`
	CurrentStageID int       `json:"current_stage_id,omitempty"`
}

// SubmissionSink принимает отправку этапа.
//
// Реализации: репозиторий (серверная сторона) и HTTP-клиент (CLI).
// Ошибка должна быть *SubmissionError, чтобы вызывающий мог
// классифицировать отказ.
type SubmissionSink interface {
	Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error)
}
