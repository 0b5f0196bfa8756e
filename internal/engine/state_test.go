package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Anketa/internal/domain"
)

func testFields() []domain.FieldDefinition {
	return []domain.FieldDefinition{
		{ID: 1, Type: domain.FieldTypeText, Label: "Name"},
		{ID: 2, Type: domain.FieldTypeSelect, Label: "Country", Default: "RU"},
		{ID: 3, Type: domain.FieldTypeNumber, Label: "Age"},
	}
}

func TestInitForm_ValuePrecedence(t *testing.T) {
	// supplied > default > nil.
	st := InitForm(testFields(), map[int]any{1: "John"})

	if got := st.Field(1).Value; got != "John" {
		t.Errorf("supplied value: got %v", got)
	}
	if got := st.Field(2).Value; got != "RU" {
		t.Errorf("default value: got %v", got)
	}
	if got := st.Field(3).Value; got != nil {
		t.Errorf("no value: got %v", got)
	}

	// Все поля стартуют видимыми и валидными.
	for _, id := range st.FieldIDs() {
		f := st.Field(id)
		if !f.Meta.Visible || !f.IsValid || f.Touched {
			t.Errorf("field %d: unexpected initial state %+v", id, f)
		}
	}
	if !st.Status().IsValid {
		t.Error("form should start valid")
	}
}

func TestInitForm_SuppliedOverridesDefault(t *testing.T) {
	st := InitForm(testFields(), map[int]any{2: "DE"})
	if got := st.Field(2).Value; got != "DE" {
		t.Errorf("supplied should beat default, got %v", got)
	}
	// Снимок для Reset — supplied-значение, не default определения.
	st.SetFieldValue(2, "FR")
	st.ResetField(2)
	if got := st.Field(2).Value; got != "DE" {
		t.Errorf("reset should restore supplied snapshot, got %v", got)
	}
}

func TestSetFieldValue_KeepsError(t *testing.T) {
	st := InitForm(testFields(), nil)
	st.SetFieldError(1, "Name is required")

	st.SetFieldValue(1, "John")
	if st.Field(1).Error != "Name is required" {
		t.Error("setting value should not clear the error before revalidation")
	}

	st.SetFieldError(1, "")
	if st.Field(1).Error != "" || !st.Field(1).IsValid {
		t.Error("empty message should clear the error")
	}
	if !st.Status().IsValid {
		t.Error("form should be valid after errors are cleared")
	}
}

func TestSetFieldErrors_Batch(t *testing.T) {
	st := InitForm(testFields(), nil)
	st.SetFieldErrors(map[int]string{
		1: "Name is required",
		3: "",
	})

	if st.Field(1).Error == "" {
		t.Error("field 1 should have an error")
	}
	if st.Field(3).Error != "" {
		t.Error("field 3 should be clear")
	}
	if st.Status().IsValid {
		t.Error("form should be invalid with a field error")
	}
}

func TestHiddenFieldErrorDoesNotInvalidateForm(t *testing.T) {
	st := InitForm(testFields(), nil)

	hidden := false
	st.SetFieldMetadata(3, MetadataPatch{Visible: &hidden})
	st.SetFieldError(3, "Age must be a number")

	if !st.Status().IsValid {
		t.Error("hidden field error should not invalidate the form")
	}
}

func TestSetFieldMetadata_PartialPatch(t *testing.T) {
	st := InitForm(testFields(), nil)

	disabled := true
	st.SetFieldMetadata(1, MetadataPatch{Disabled: &disabled, Extra: map[string]any{"hint": "a"}})

	f := st.Field(1)
	if !f.Meta.Visible {
		t.Error("patch without Visible should not change visibility")
	}
	if !f.Meta.Disabled {
		t.Error("Disabled should be set")
	}
	if f.Meta.Extra["hint"] != "a" {
		t.Error("Extra should be merged")
	}

	// Второй патч дополняет Extra, не затирая прежние ключи.
	st.SetFieldMetadata(1, MetadataPatch{Extra: map[string]any{"unit": "kg"}})
	if f.Meta.Extra["hint"] != "a" || f.Meta.Extra["unit"] != "kg" {
		t.Errorf("Extra merge failed: %v", f.Meta.Extra)
	}
}

func TestResetForm_RoundTrip(t *testing.T) {
	st := InitForm(testFields(), nil)

	st.SetFieldValue(1, "John")
	st.SetFieldTouched(1, true)
	st.SetFieldError(1, "some error")
	st.SetFieldValue(2, "DE")
	st.SetSubmitting(true)
	st.SetSubmitting(false)

	st.ResetForm()

	if got := st.Field(1).Value; got != nil {
		t.Errorf("field 1 should be nil after reset, got %v", got)
	}
	if got := st.Field(2).Value; got != "RU" {
		t.Errorf("field 2 should be back to default, got %v", got)
	}
	f := st.Field(1)
	if f.Error != "" || f.Touched || !f.IsValid {
		t.Errorf("field flags should be reset: %+v", f)
	}
	if st.IsDirty() {
		t.Error("form should not be dirty after reset")
	}
	// SubmitCount переживает сброс.
	if st.Status().SubmitCount != 1 {
		t.Errorf("SubmitCount should survive reset, got %d", st.Status().SubmitCount)
	}
}

func TestSubmitCount(t *testing.T) {
	st := InitForm(testFields(), nil)

	st.SetSubmitting(true)
	st.SetSubmitting(false)
	st.SetSubmitting(true)
	// Повторный true без false не считается новой попыткой.
	st.SetSubmitting(true)
	st.SetSubmitting(false)

	if got := st.Status().SubmitCount; got != 2 {
		t.Errorf("expected 2 submit attempts, got %d", got)
	}
}

func TestIsDirty(t *testing.T) {
	st := InitForm(testFields(), nil)
	if st.IsDirty() {
		t.Error("pristine form should not be dirty")
	}

	st.SetFieldValue(1, "x")
	if !st.IsDirty() {
		t.Error("form should be dirty after a change")
	}

	st.SetFieldValue(1, nil)
	if st.IsDirty() {
		t.Error("restoring the original value should clear dirtiness")
	}

	// Строгое сравнение: "5" и 5 — разные значения.
	st2 := InitForm([]domain.FieldDefinition{
		{ID: 1, Type: domain.FieldTypeNumber, Default: float64(5)},
	}, nil)
	st2.SetFieldValue(1, "5")
	if !st2.IsDirty() {
		t.Error("type change should count as dirty")
	}
}

func TestValidFieldsCount(t *testing.T) {
	st := InitForm(testFields(), nil)
	if got := st.ValidFieldsCount(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}

	st.SetFieldError(1, "bad")
	if got := st.ValidFieldsCount(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}

	// Скрытие не валидирует и не инвалидирует — счётчик не меняется.
	hidden := false
	st.SetFieldMetadata(2, MetadataPatch{Visible: &hidden})
	if got := st.ValidFieldsCount(); got != 2 {
		t.Errorf("hiding a field should not change the count, got %d", got)
	}
}

func TestLookup_UnknownFieldIsNil(t *testing.T) {
	st := InitForm(testFields(), map[int]any{1: "John"})
	lookup := st.Lookup()

	if got := lookup(1); got != "John" {
		t.Errorf("got %v", got)
	}
	if got := lookup(99); got != nil {
		t.Errorf("unknown field should be nil, got %v", got)
	}
}

func TestSubmissionErrorLifecycle(t *testing.T) {
	st := InitForm(testFields(), nil)

	sentinel := errors.New("boom")
	st.SetSubmissionError(sentinel)
	if !errors.Is(st.Status().SubmissionError, sentinel) {
		t.Error("submission error should be stored")
	}

	st.SetSubmissionError(nil)
	if st.Status().SubmissionError != nil {
		t.Error("submission error should be cleared")
	}
}

func TestValidationFlags(t *testing.T) {
	st := InitForm(testFields(), nil)

	st.StartValidation()
	if !st.Status().IsValidating {
		t.Error("IsValidating should be set")
	}

	st.EndValidation(false)
	if st.Status().IsValidating {
		t.Error("IsValidating should be cleared")
	}
	if st.Status().IsValid {
		t.Error("EndValidation(false) should mark the form invalid")
	}

	st.EndValidation(true)
	if !st.Status().IsValid {
		t.Error("EndValidation(true) should mark the form valid")
	}
}
