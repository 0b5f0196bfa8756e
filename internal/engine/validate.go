package engine

import (
	"fmt"

	"github.com/shaiso/Anketa/internal/domain"
)

// knownFieldTypes — закрытый набор типов полей.
var knownFieldTypes = map[string]bool{
	domain.FieldTypeText:     true,
	domain.FieldTypeTextarea: true,
	domain.FieldTypeNumber:   true,
	domain.FieldTypeSelect:   true,
	domain.FieldTypeRadio:    true,
	domain.FieldTypeCheckbox: true,
	domain.FieldTypeDate:     true,
	domain.FieldTypeEmail:    true,
	domain.FieldTypeFile:     true,
	domain.FieldTypeHidden:   true,
}

// ValidateStructure проверяет структуру формы перед публикацией.
//
// Проверяется целостность, которую движок предполагает во время
// выполнения: хотя бы один этап, уникальные идентификаторы этапов,
// полей и переходов, известные типы полей, ровно один начальный
// этап и переходы, ссылающиеся на существующие этапы.
//
// Возвращается первая найденная ошибка (fail-fast) — публикация
// кривой структуры блокируется целиком.
func ValidateStructure(s *domain.Structure) error {
	if len(s.Stages) == 0 {
		return &StructureError{Err: ErrEmptyStructure}
	}

	stageIDs := make(map[int]bool, len(s.Stages))
	initialCount := 0
	for i := range s.Stages {
		stage := &s.Stages[i]
		if stageIDs[stage.ID] {
			return &StructureError{
				Err:     ErrDuplicateStageID,
				StageID: stage.ID,
			}
		}
		stageIDs[stage.ID] = true
		if stage.IsInitial {
			initialCount++
		}
	}
	if initialCount == 0 {
		return &StructureError{Err: ErrNoInitialStage}
	}
	if initialCount > 1 {
		return &StructureError{Err: ErrManyInitialStages}
	}

	fieldIDs := make(map[int]bool)
	for _, field := range s.Fields() {
		if fieldIDs[field.ID] {
			return &StructureError{
				Err:     ErrDuplicateFieldID,
				FieldID: field.ID,
			}
		}
		fieldIDs[field.ID] = true

		if !knownFieldTypes[field.Type] {
			return &StructureError{
				Err:     ErrUnknownFieldType,
				FieldID: field.ID,
				Detail:  fmt.Sprintf("type %q", field.Type),
			}
		}
	}

	transitionIDs := make(map[int]bool, len(s.Transitions))
	for i := range s.Transitions {
		t := &s.Transitions[i]
		if transitionIDs[t.ID] {
			return &StructureError{
				Err:          ErrDuplicateTransition,
				TransitionID: t.ID,
			}
		}
		transitionIDs[t.ID] = true

		if !stageIDs[t.FromStageID] {
			return &StructureError{
				Err:          ErrDanglingTransition,
				TransitionID: t.ID,
				Detail:       fmt.Sprintf("from_stage_id %d", t.FromStageID),
			}
		}
		if !t.ToComplete && !stageIDs[t.ToStageID] {
			return &StructureError{
				Err:          ErrDanglingTransition,
				TransitionID: t.ID,
				Detail:       fmt.Sprintf("to_stage_id %d", t.ToStageID),
			}
		}
	}

	return nil
}
