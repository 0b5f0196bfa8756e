package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entry — заявка: незавершённое или завершённое прохождение
// многошаговой формы.
//
// Жизненный цикл:
//
//	(первый submit начального этапа) → IN PROGRESS → ... → COMPLETE
//
// Entry создаётся при первом успешном submit начального этапа,
// мутирует при каждом последующем submit и становится неизменяемой
// после завершения (IsComplete=true).
type Entry struct {
	// ID — внутренний идентификатор заявки.
	ID uuid.UUID `json:"id"`

	// PublicID — публичный идентификатор, по которому пользователь
	// возвращается к своей заявке.
	PublicID string `json:"public_identifier"`

	// FormID — ссылка на форму.
	FormID uuid.UUID `json:"form_id"`

	// Version — версия формы, по которой заполняется заявка.
	// Фиксируется при создании: публикация новой версии не ломает
	// уже начатые заявки.
	Version int `json:"version"`

	// CurrentStageID — этап, на котором находится заявка.
	// Не имеет смысла после завершения.
	CurrentStageID int `json:"current_stage_id"`

	// IsComplete — флаг завершения. Завершённая заявка неизменяема.
	IsComplete bool `json:"is_complete"`

	// Stages — упорядоченная история пройденных этапов.
	Stages []StageRecord `json:"stages,omitempty"`

	// CreatedAt — время создания заявки.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего submit.
	UpdatedAt time.Time `json:"updated_at"`
}

// StageRecord — один пройденный этап заявки.
type StageRecord struct {
	// StageID — идентификатор пройденного этапа.
	StageID int `json:"stage_id"`

	// TransitionID — переход, выбранный при submit этапа.
	TransitionID int `json:"transition_id"`

	// Values — значения видимых полей этапа на момент submit
	// (field_id → значение).
	Values map[int]any `json:"values,omitempty"`

	// SubmittedAt — время submit этапа.
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewEntry создаёт новую заявку для формы.
func NewEntry(formID uuid.UUID, version, initialStageID int) *Entry {
	now := time.Now()
	return &Entry{
		ID:             uuid.New(),
		PublicID:       uuid.New().String(),
		FormID:         formID,
		Version:        version,
		CurrentStageID: initialStageID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecordStage записывает пройденный этап и переводит заявку
// на следующий.
func (e *Entry) RecordStage(rec StageRecord, nextStageID int) {
	e.Stages = append(e.Stages, rec)
	e.CurrentStageID = nextStageID
	e.UpdatedAt = time.Now()
}

// MarkComplete записывает последний этап и завершает заявку.
func (e *Entry) MarkComplete(rec StageRecord) {
	e.Stages = append(e.Stages, rec)
	e.IsComplete = true
	e.UpdatedAt = time.Now()
}

// HasVisited возвращает true, если этап уже был пройден.
func (e *Entry) HasVisited(stageID int) bool {
	for i := range e.Stages {
		if e.Stages[i].StageID == stageID {
			return true
		}
	}
	return false
}

// Values собирает значения всех пройденных этапов в один словарь.
// При повторном прохождении этапа более поздние значения побеждают.
func (e *Entry) Values() map[int]any {
	values := make(map[int]any)
	for i := range e.Stages {
		for id, v := range e.Stages[i].Values {
			values[id] = v
		}
	}
	return values
}
