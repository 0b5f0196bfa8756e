package engine

import (
	"github.com/shaiso/Anketa/internal/domain"
)

// Metadata — презентационные свойства поля.
type Metadata struct {
	// Visible — управляется условием видимости. Скрытое поле
	// сохраняет значение, но исключается из валидации и payload.
	Visible bool `json:"visible"`

	// Disabled и ReadOnly — прокидываются в UI, движок их
	// не интерпретирует.
	Disabled bool `json:"disabled,omitempty"`
	ReadOnly bool `json:"read_only,omitempty"`

	// Extra — произвольные дополнительные свойства.
	Extra map[string]any `json:"extra,omitempty"`
}

// MetadataPatch — частичное обновление метаданных: nil-поле
// означает "не трогать".
type MetadataPatch struct {
	Visible  *bool
	Disabled *bool
	ReadOnly *bool
	Extra    map[string]any
}

// FieldState — живое состояние одного поля.
type FieldState struct {
	// Value — текущее значение.
	Value any `json:"value"`

	// Error — текст ошибки валидации; пустая строка — ошибки нет.
	Error string `json:"error,omitempty"`

	// Touched — пользователь взаимодействовал с полем.
	Touched bool `json:"touched"`

	// IsValid — итог последней валидации.
	IsValid bool `json:"is_valid"`

	// Meta — презентационные свойства.
	Meta Metadata `json:"meta"`
}

// GlobalStatus — агрегированный статус формы.
type GlobalStatus struct {
	IsValid      bool `json:"is_valid"`
	IsValidating bool `json:"is_validating"`
	IsSubmitting bool `json:"is_submitting"`

	// SubmitCount — число попыток submit за время жизни состояния.
	// Не сбрасывается при ResetForm.
	SubmitCount int `json:"submit_count"`

	// SubmissionError — ошибка последнего submit; nil после успеха.
	SubmissionError error `json:"-"`
}

// FormState — состояние всех полей формы.
//
// Хранилище пассивно: оно не запускает валидацию и не вычисляет
// видимость само — этим занимается оркестратор сессии, который
// пишет результаты сюда. Нулевое значение непригодно, создавать
// через InitForm.
type FormState struct {
	fields map[int]*FieldState
	order  []int

	// defaults — снимок значений на момент инициализации,
	// для ResetField/ResetForm и IsDirty.
	defaults map[int]any

	status GlobalStatus
}

// InitForm создаёт состояние формы по определениям полей.
//
// Начальное значение поля: переданное в supplied (значения уже
// начатой заявки), иначе default из определения, иначе nil.
// Выбранное значение фиксируется как default-снимок для Reset
// и IsDirty. Все поля создаются видимыми и валидными; первый
// проход видимости делает оркестратор.
func InitForm(fields []domain.FieldDefinition, supplied map[int]any) *FormState {
	st := &FormState{
		fields:   make(map[int]*FieldState, len(fields)),
		order:    make([]int, 0, len(fields)),
		defaults: make(map[int]any, len(fields)),
		status:   GlobalStatus{IsValid: true},
	}
	for i := range fields {
		f := &fields[i]
		value := f.Default
		if v, ok := supplied[f.ID]; ok {
			value = v
		}
		st.fields[f.ID] = &FieldState{
			Value:   value,
			IsValid: true,
			Meta:    Metadata{Visible: true},
		}
		st.order = append(st.order, f.ID)
		st.defaults[f.ID] = value
	}
	return st
}

// Field возвращает состояние поля. Для неизвестного поля — nil.
func (st *FormState) Field(fieldID int) *FieldState {
	return st.fields[fieldID]
}

// FieldIDs возвращает идентификаторы полей в порядке объявления.
func (st *FormState) FieldIDs() []int {
	return st.order
}

// Lookup возвращает функцию доступа к значениям полей для движка
// условий и правил. Неизвестное поле даёт nil.
func (st *FormState) Lookup() Lookup {
	return func(fieldID int) any {
		if f, ok := st.fields[fieldID]; ok {
			return f.Value
		}
		return nil
	}
}

// SetFieldValue устанавливает значение поля.
// Существующая ошибка НЕ сбрасывается: она живёт до следующей
// валидации, чтобы UI не мигал между "ошибка" и "ещё не проверено".
func (st *FormState) SetFieldValue(fieldID int, value any) {
	if f, ok := st.fields[fieldID]; ok {
		f.Value = value
	}
}

// SetFieldTouched помечает поле как затронутое пользователем.
func (st *FormState) SetFieldTouched(fieldID int, touched bool) {
	if f, ok := st.fields[fieldID]; ok {
		f.Touched = touched
	}
}

// SetFieldError устанавливает ошибку валидации поля.
// Пустая строка очищает ошибку и помечает поле валидным.
func (st *FormState) SetFieldError(fieldID int, msg string) {
	f, ok := st.fields[fieldID]
	if !ok {
		return
	}
	f.Error = msg
	f.IsValid = msg == ""
	st.recalcValid()
}

// SetFieldErrors применяет результат валидации нескольких полей
// разом: перечисленные поля получают свои ошибки, остальные
// не трогаются.
func (st *FormState) SetFieldErrors(errs map[int]string) {
	for fieldID, msg := range errs {
		if f, ok := st.fields[fieldID]; ok {
			f.Error = msg
			f.IsValid = msg == ""
		}
	}
	st.recalcValid()
}

// SetFieldMetadata применяет частичное обновление метаданных.
// Extra сливается поверх существующих ключей (shallow merge).
func (st *FormState) SetFieldMetadata(fieldID int, patch MetadataPatch) {
	f, ok := st.fields[fieldID]
	if !ok {
		return
	}
	if patch.Visible != nil {
		f.Meta.Visible = *patch.Visible
	}
	if patch.Disabled != nil {
		f.Meta.Disabled = *patch.Disabled
	}
	if patch.ReadOnly != nil {
		f.Meta.ReadOnly = *patch.ReadOnly
	}
	if len(patch.Extra) > 0 {
		if f.Meta.Extra == nil {
			f.Meta.Extra = make(map[string]any, len(patch.Extra))
		}
		for k, v := range patch.Extra {
			f.Meta.Extra[k] = v
		}
	}
}

// ResetField возвращает поле к default-снимку: значение
// восстанавливается, ошибка и touched сбрасываются, метаданные
// сохраняются.
func (st *FormState) ResetField(fieldID int) {
	f, ok := st.fields[fieldID]
	if !ok {
		return
	}
	f.Value = st.defaults[fieldID]
	f.Error = ""
	f.Touched = false
	f.IsValid = true
	st.recalcValid()
}

// ResetForm возвращает все поля к default-снимку.
// SubmitCount переживает сброс.
func (st *FormState) ResetForm() {
	for _, id := range st.order {
		f := st.fields[id]
		f.Value = st.defaults[id]
		f.Error = ""
		f.Touched = false
		f.IsValid = true
	}
	st.status.IsValid = true
	st.status.SubmissionError = nil
}

// StartValidation помечает начало прогона валидации.
func (st *FormState) StartValidation() { st.status.IsValidating = true }

// EndValidation завершает прогон валидации и фиксирует его итог
// как глобальную валидность формы.
func (st *FormState) EndValidation(isValid bool) {
	st.status.IsValidating = false
	st.status.IsValid = isValid
}

// SetSubmitting переключает флаг отправки.
// Переход в true считается попыткой submit и увеличивает SubmitCount.
func (st *FormState) SetSubmitting(submitting bool) {
	if submitting && !st.status.IsSubmitting {
		st.status.SubmitCount++
	}
	st.status.IsSubmitting = submitting
}

// SetSubmissionError записывает ошибку последнего submit.
func (st *FormState) SetSubmissionError(err error) {
	st.status.SubmissionError = err
}

// Status возвращает текущий агрегированный статус.
func (st *FormState) Status() GlobalStatus {
	return st.status
}

// IsDirty возвращает true, если хотя бы одно поле отличается
// от default-снимка (строгое структурное сравнение, без коэрции).
func (st *FormState) IsDirty() bool {
	for _, id := range st.order {
		if !strictEqual(st.fields[id].Value, st.defaults[id]) {
			return true
		}
	}
	return false
}

// ValidFieldsCount возвращает число полей с IsValid=true.
// Чисто информационный счётчик; скрытые поля не валидируются,
// поэтому остаются валидными и учитываются.
func (st *FormState) ValidFieldsCount() int {
	count := 0
	for _, id := range st.order {
		if st.fields[id].IsValid {
			count++
		}
	}
	return count
}

// recalcValid пересчитывает глобальный IsValid: форма валидна,
// когда ни у одного видимого поля нет ошибки.
func (st *FormState) recalcValid() {
	for _, id := range st.order {
		f := st.fields[id]
		if f.Meta.Visible && f.Error != "" {
			st.status.IsValid = false
			return
		}
	}
	st.status.IsValid = true
}
