package domain

// Logic — логическая связка составного условия.
type Logic string

const (
	// LogicAnd — все дочерние условия должны быть истинны.
	// Пустой список условий под "and" истинен (vacuous truth).
	LogicAnd Logic = "and"

	// LogicOr — хотя бы одно дочернее условие истинно.
	// Пустой список условий под "or" ложен.
	LogicOr Logic = "or"
)

// Condition — условие над значениями полей.
//
// Tagged union из двух форм:
//   - Simple:  {field_id, operator, value}
//   - Complex: {logic, conditions}
//
// В текущей модели дети Complex-узла всегда Simple, но структура
// допускает произвольную вложенность — движок обходит дерево
// рекурсивно и на это ограничение не полагается.
type Condition struct {
	// FieldID — идентификатор поля, значение которого сравнивается
	// (только для Simple).
	FieldID int `json:"field_id,omitempty"`

	// Operator — оператор сравнения: "equals", "filled", "contains" и т.д.
	// (только для Simple). Легаси-алиасы ("==", "not_empty") нормализуются
	// движком перед диспетчеризацией.
	Operator string `json:"operator,omitempty"`

	// Value — значение-операнд сравнения (только для Simple).
	// Произвольный JSON-скаляр, массив или объект.
	Value any `json:"value,omitempty"`

	// Logic — связка "and"/"or" (только для Complex).
	Logic Logic `json:"logic,omitempty"`

	// Conditions — дочерние условия (только для Complex).
	Conditions []Condition `json:"conditions,omitempty"`
}

// IsComplex возвращает true для составного условия.
func (c *Condition) IsComplex() bool {
	return c.Logic != "" || len(c.Conditions) > 0
}

// FieldRefs возвращает идентификаторы всех полей, на которые
// ссылается условие (рекурсивно по всему дереву).
func (c *Condition) FieldRefs() []int {
	if c == nil {
		return nil
	}
	if !c.IsComplex() {
		return []int{c.FieldID}
	}
	var refs []int
	for i := range c.Conditions {
		refs = append(refs, c.Conditions[i].FieldRefs()...)
	}
	return refs
}
