package engine

import (
	"strings"

	"github.com/shaiso/Anketa/internal/domain"
)

// Lookup возвращает текущее значение поля по идентификатору.
// Для неизвестного поля возвращает nil — условие или правило,
// ссылающееся на несуществующее поле, вычисляется по nil, а не падает.
type Lookup func(fieldID int) any

// Канонические операторы условий.
const (
	OpFilled         = "filled"
	OpEmpty          = "empty"
	OpEquals         = "equals"
	OpNotEquals      = "not_equals"
	OpGreaterThan    = "greater_than"
	OpLessThan       = "less_than"
	OpGreaterOrEqual = "greater_or_equal"
	OpLessOrEqual    = "less_or_equal"
	OpContains       = "contains"
	OpNotContains    = "not_contains"
	OpStartsWith     = "starts_with"
	OpEndsWith       = "ends_with"
	OpIn             = "in"
	OpNotIn          = "not_in"
)

// operatorAliases — легаси-имена и символьные формы операторов.
var operatorAliases = map[string]string{
	"not_empty":             OpFilled,
	"greater_than_or_equal": OpGreaterOrEqual,
	"less_than_or_equal":    OpLessOrEqual,
	"==":                    OpEquals,
	"!=":                    OpNotEquals,
	">":                     OpGreaterThan,
	">=":                    OpGreaterOrEqual,
	"<":                     OpLessThan,
	"<=":                    OpLessOrEqual,
}

// NormalizeOperator приводит оператор к каноническому имени.
func NormalizeOperator(op string) string {
	op = strings.TrimSpace(strings.ToLower(op))
	if canonical, ok := operatorAliases[op]; ok {
		return canonical
	}
	return op
}

// Evaluate вычисляет условие над текущими значениями полей.
//
// Чистая тотальная функция: никогда не паникует и не возвращает
// ошибку. Кривое условие (неизвестный оператор, несовместимые
// операнды) вычисляется в false. Nil-условие истинно ("нет условия —
// нет ограничения").
func Evaluate(cond *domain.Condition, lookup Lookup) bool {
	if cond == nil {
		return true
	}
	if cond.IsComplex() {
		return evaluateComplex(cond, lookup)
	}
	return evaluateSimple(cond, lookup)
}

// evaluateComplex вычисляет составное условие.
// "and" замыкается на первом false, "or" — на первом true.
// Пустой список: "and" → true (vacuous truth), "or" → false.
func evaluateComplex(cond *domain.Condition, lookup Lookup) bool {
	switch cond.Logic {
	case domain.LogicOr:
		for i := range cond.Conditions {
			if Evaluate(&cond.Conditions[i], lookup) {
				return true
			}
		}
		return false
	case domain.LogicAnd, "":
		for i := range cond.Conditions {
			if !Evaluate(&cond.Conditions[i], lookup) {
				return false
			}
		}
		return true
	default:
		// Неизвестная связка — условие считается ложным.
		return false
	}
}

// evaluateSimple вычисляет простое условие {field_id, operator, value}.
func evaluateSimple(cond *domain.Condition, lookup Lookup) bool {
	value := lookup(cond.FieldID)

	switch NormalizeOperator(cond.Operator) {
	case OpFilled:
		return !isEmptyValue(value)

	case OpEmpty:
		return isEmptyValue(value)

	case OpEquals:
		return looseEqual(value, cond.Value)

	case OpNotEquals:
		return !looseEqual(value, cond.Value)

	case OpGreaterThan:
		return compareNumeric(value, cond.Value, func(a, b float64) bool { return a > b })

	case OpLessThan:
		return compareNumeric(value, cond.Value, func(a, b float64) bool { return a < b })

	case OpGreaterOrEqual:
		return compareNumeric(value, cond.Value, func(a, b float64) bool { return a >= b })

	case OpLessOrEqual:
		return compareNumeric(value, cond.Value, func(a, b float64) bool { return a <= b })

	case OpContains:
		return contains(value, cond.Value)

	case OpNotContains:
		return !contains(value, cond.Value)

	case OpStartsWith:
		return hasAffix(value, cond.Value, strings.HasPrefix)

	case OpEndsWith:
		return hasAffix(value, cond.Value, strings.HasSuffix)

	case OpIn:
		return inList(value, cond.Value)

	case OpNotIn:
		return !inList(value, cond.Value)

	default:
		// Неизвестный оператор: условие ложно, ошибки нет.
		return false
	}
}

// compareNumeric сравнивает оба операнда как числа.
// Если хотя бы один не приводится к числу — false.
func compareNumeric(a, b any, cmp func(float64, float64) bool) bool {
	aNum, aOk := toNumber(a)
	bNum, bOk := toNumber(b)
	if !aOk || !bOk {
		return false
	}
	return cmp(aNum, bNum)
}

// contains — подстрока для строк, членство для массивов.
func contains(value, needle any) bool {
	if items, ok := toList(value); ok {
		for _, item := range items {
			if looseEqual(item, needle) {
				return true
			}
		}
		return false
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	n, ok := needle.(string)
	if !ok {
		return false
	}
	return strings.Contains(s, n)
}

// hasAffix — префикс/суффикс для строк; нестроковые операнды дают false.
func hasAffix(value, affix any, test func(string, string) bool) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	a, ok := affix.(string)
	if !ok {
		return false
	}
	return test(s, a)
}

// inList проверяет членство значения поля в списке из условия.
// Скалярное значение условия трактуется как список из одного элемента.
func inList(value, listValue any) bool {
	items, ok := toList(listValue)
	if !ok {
		items = []any{listValue}
	}
	for _, item := range items {
		if looseEqual(value, item) {
			return true
		}
	}
	return false
}
