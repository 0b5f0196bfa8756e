package domain

import (
	"time"

	"github.com/google/uuid"
)

// Form — определение формы.
//
// Form — это "анкета" целиком: многошаговый опросник, который
// проектирует администратор. Одна форма может иметь множество
// версий (FormVersion). Каждая заявка (Entry) заполняется по
// конкретной версии формы.
type Form struct {
	// ID — уникальный идентификатор формы.
	ID uuid.UUID `json:"id"`

	// Name — уникальное имя формы (например, "job-application", "feedback").
	// Используется для удобной идентификации пользователем.
	Name string `json:"name"`

	// IsActive — флаг активности. Неактивные формы не принимают заявки.
	IsActive bool `json:"is_active"`

	// CreatedAt — время создания формы.
	CreatedAt time.Time `json:"created_at"`
}

// FormVersion — версия формы с конкретной структурой.
//
// Версионирование позволяет:
// - Менять структуру, не ломая уже начатые заявки
// - Отслеживать историю изменений
// - Откатываться к предыдущим версиям
type FormVersion struct {
	// FormID — ссылка на родительскую форму.
	FormID uuid.UUID `json:"form_id"`

	// Version — номер версии (1, 2, 3, ...).
	// Автоинкремент при публикации новой структуры.
	Version int `json:"version"`

	// Structure — структура формы в формате JSON.
	// Содержит этапы, секции, поля, правила и переходы.
	Structure Structure `json:"structure"`

	// CreatedAt — время создания версии.
	CreatedAt time.Time `json:"created_at"`
}

// Structure — структура формы (содержимое JSONB поля structure).
//
// Это "программа" для движка: описание того, какие поля показать,
// как их проверить и куда двигаться дальше.
type Structure struct {
	// Version — версия формата структуры (для обратной совместимости).
	Version string `json:"version,omitempty"`

	// Name — имя формы (дублирует Form.Name для удобства).
	Name string `json:"name,omitempty"`

	// Stages — упорядоченный список этапов.
	Stages []Stage `json:"stages"`

	// Transitions — переходы между этапами.
	// Порядок в списке семантически значим: при выборе перехода
	// побеждает первый подходящий.
	Transitions []Transition `json:"transitions,omitempty"`
}

// Fields возвращает все поля структуры в порядке объявления
// (по всем этапам и секциям).
func (s *Structure) Fields() []FieldDefinition {
	var fields []FieldDefinition
	for i := range s.Stages {
		stage := &s.Stages[i]
		for j := range stage.Sections {
			fields = append(fields, stage.Sections[j].Fields...)
		}
	}
	return fields
}

// FieldByID возвращает поле по его идентификатору.
// Идентификаторы полей уникальны в рамках всей структуры.
func (s *Structure) FieldByID(id int) (*FieldDefinition, bool) {
	for i := range s.Stages {
		stage := &s.Stages[i]
		for j := range stage.Sections {
			section := &stage.Sections[j]
			for k := range section.Fields {
				if section.Fields[k].ID == id {
					return &section.Fields[k], true
				}
			}
		}
	}
	return nil, false
}

// StageByID возвращает этап по идентификатору.
func (s *Structure) StageByID(id int) (*Stage, bool) {
	for i := range s.Stages {
		if s.Stages[i].ID == id {
			return &s.Stages[i], true
		}
	}
	return nil, false
}

// InitialStage возвращает начальный этап (is_initial=true).
// Если флаг не выставлен ни у одного этапа, возвращает первый.
func (s *Structure) InitialStage() (*Stage, bool) {
	for i := range s.Stages {
		if s.Stages[i].IsInitial {
			return &s.Stages[i], true
		}
	}
	if len(s.Stages) > 0 {
		return &s.Stages[0], true
	}
	return nil, false
}

// TransitionsFrom возвращает переходы, исходящие из этапа,
// в порядке объявления.
func (s *Structure) TransitionsFrom(stageID int) []Transition {
	var out []Transition
	for _, t := range s.Transitions {
		if t.FromStageID == stageID {
			out = append(out, t)
		}
	}
	return out
}
