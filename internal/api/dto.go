package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Anketa/internal/domain"
	"github.com/shaiso/Anketa/internal/runtime"
)

// Form DTOs

// CreateFormRequest — запрос на создание формы.
type CreateFormRequest struct {
	Name string `json:"name"`
}

// UpdateFormRequest — запрос на обновление формы.
type UpdateFormRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// FormResponse — ответ с формой.
type FormResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// FormFromDomain конвертирует domain.Form в FormResponse.
func FormFromDomain(f domain.Form) FormResponse {
	return FormResponse{
		ID:        f.ID,
		Name:      f.Name,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
	}
}

// FormVersion DTOs

// CreateFormVersionRequest — запрос на публикацию версии структуры.
type CreateFormVersionRequest struct {
	Structure domain.Structure `json:"structure"`
}

// FormVersionResponse — ответ с версией формы.
type FormVersionResponse struct {
	FormID    uuid.UUID        `json:"form_id"`
	Version   int              `json:"version"`
	Structure domain.Structure `json:"structure"`
	CreatedAt time.Time        `json:"created_at"`
}

// FormVersionFromDomain конвертирует domain.FormVersion в FormVersionResponse.
func FormVersionFromDomain(v domain.FormVersion) FormVersionResponse {
	return FormVersionResponse{
		FormID:    v.FormID,
		Version:   v.Version,
		Structure: v.Structure,
		CreatedAt: v.CreatedAt,
	}
}

// StructureResponse — структура формы для рендеринга.
type StructureResponse struct {
	FormID    uuid.UUID        `json:"form_id"`
	Version   int              `json:"version"`
	Language  string           `json:"language,omitempty"`
	Structure domain.Structure `json:"structure"`
}

// Entry DTOs

// CreateEntryRequest — первый submit: создаёт заявку, отправляя
// начальный этап.
type CreateEntryRequest struct {
	// Version — версия формы; 0 означает последнюю.
	Version int `json:"form_version,omitempty"`

	// FieldValues — значения полей начального этапа.
	FieldValues []runtime.FieldValue `json:"field_values"`
}

// SubmitStageRequest — submit очередного этапа существующей заявки.
type SubmitStageRequest struct {
	// FieldValues — значения полей текущего этапа.
	FieldValues []runtime.FieldValue `json:"field_values"`
}

// EntryResponse — ответ с заявкой.
type EntryResponse struct {
	ID             uuid.UUID     `json:"id"`
	PublicID       string        `json:"public_identifier"`
	FormID         uuid.UUID     `json:"form_id"`
	Version        int           `json:"form_version"`
	CurrentStageID int           `json:"current_stage_id"`
	IsComplete     bool          `json:"is_complete"`
	Stages         []StageRecord `json:"stages,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// StageRecord — пройденный этап в ответе API.
type StageRecord struct {
	StageID      int         `json:"stage_id"`
	TransitionID int         `json:"stage_transition_id"`
	Values       map[int]any `json:"values,omitempty"`
	SubmittedAt  time.Time   `json:"submitted_at"`
}

// EntryFromDomain конвертирует domain.Entry в EntryResponse.
func EntryFromDomain(e domain.Entry) EntryResponse {
	stages := make([]StageRecord, len(e.Stages))
	for i, s := range e.Stages {
		stages[i] = StageRecord{
			StageID:      s.StageID,
			TransitionID: s.TransitionID,
			Values:       s.Values,
			SubmittedAt:  s.SubmittedAt,
		}
	}
	return EntryResponse{
		ID:             e.ID,
		PublicID:       e.PublicID,
		FormID:         e.FormID,
		Version:        e.Version,
		CurrentStageID: e.CurrentStageID,
		IsComplete:     e.IsComplete,
		Stages:         stages,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// SubmitResultResponse — результат submit этапа.
type SubmitResultResponse struct {
	EntryID        uuid.UUID `json:"entry_id"`
	PublicID       string    `json:"public_identifier"`
	IsComplete     bool      `json:"is_complete"`
	CurrentStageID int       `json:"current_stage_id,omitempty"`
}

// SubmitResultFromRuntime конвертирует runtime.SubmissionResult.
func SubmitResultFromRuntime(r *runtime.SubmissionResult) SubmitResultResponse {
	return SubmitResultResponse{
		EntryID:        r.EntryID,
		PublicID:       r.PublicID,
		IsComplete:     r.IsComplete,
		CurrentStageID: r.CurrentStageID,
	}
}
