package engine

import (
	"errors"
	"fmt"
)

// Ошибки движка.
var (
	// ErrBadRuleProps — параметры правила не разобрались.
	// Такое правило деградирует до "без ограничения", а не ломает форму.
	ErrBadRuleProps = errors.New("bad rule props")

	// ErrNoEligibleTransition — ни один переход текущего этапа
	// не применим при текущих значениях полей.
	ErrNoEligibleTransition = errors.New("no eligible transition")

	// Ошибки структуры формы (проверка при публикации).
	ErrEmptyStructure      = errors.New("structure has no stages")
	ErrDuplicateStageID    = errors.New("duplicate stage id")
	ErrDuplicateFieldID    = errors.New("duplicate field id")
	ErrDuplicateTransition = errors.New("duplicate transition id")
	ErrUnknownFieldType    = errors.New("unknown field type")
	ErrNoInitialStage      = errors.New("no initial stage")
	ErrManyInitialStages   = errors.New("more than one initial stage")
	ErrDanglingTransition  = errors.New("transition references unknown stage")
)

// StructureError — ошибка валидации структуры формы с указанием
// места (этап, поле или переход).
type StructureError struct {
	// Err — базовая ошибка из списка выше.
	Err error

	// StageID, FieldID, TransitionID — место ошибки; заполняются
	// по применимости.
	StageID      int
	FieldID      int
	TransitionID int

	// Detail — человекочитаемое уточнение.
	Detail string
}

func (e *StructureError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	return msg
}

func (e *StructureError) Unwrap() error {
	return e.Err
}
