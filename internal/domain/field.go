package domain

// FieldDefinition — определение поля формы.
//
// Создаётся при загрузке структуры и неизменно в течение сессии.
// Живое состояние поля (значение, ошибка, видимость) хранится
// отдельно — в engine.FormState.
type FieldDefinition struct {
	// ID — уникальный идентификатор поля.
	// Уникален в рамках всей структуры (все этапы и секции).
	ID int `json:"field_id"`

	// Type — тип поля: "text", "number", "select" и т.д.
	Type string `json:"type"`

	// Label — человекочитаемая подпись поля.
	// Используется в текстах ошибок валидации.
	Label string `json:"label,omitempty"`

	// Rules — упорядоченный список правил валидации.
	// Порядок значим: скомпилированный валидатор выполняет правила
	// по порядку и останавливается на первом нарушенном.
	Rules []Rule `json:"rules,omitempty"`

	// Visibility — условие видимости поля.
	// Nil означает "всегда видимо".
	Visibility *Condition `json:"visibility_condition,omitempty"`

	// Default — значение по умолчанию.
	Default any `json:"default_value,omitempty"`
}

// Типы полей.
const (
	FieldTypeText     = "text"
	FieldTypeTextarea = "textarea"
	FieldTypeNumber   = "number"
	FieldTypeSelect   = "select"
	FieldTypeRadio    = "radio"
	FieldTypeCheckbox = "checkbox"
	FieldTypeDate     = "date"
	FieldTypeEmail    = "email"
	FieldTypeFile     = "file"
	FieldTypeHidden   = "hidden"
)
