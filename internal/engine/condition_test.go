package engine

import (
	"testing"

	"github.com/shaiso/Anketa/internal/domain"
)

// lookupFrom строит Lookup из словаря значений.
func lookupFrom(values map[int]any) Lookup {
	return func(fieldID int) any {
		return values[fieldID]
	}
}

func TestEvaluate_NilCondition(t *testing.T) {
	if !Evaluate(nil, lookupFrom(nil)) {
		t.Error("nil condition should evaluate to true")
	}
}

func TestEvaluate_SimpleOperators(t *testing.T) {
	values := map[int]any{
		1: "hello world",
		2: float64(10),
		3: "",
		4: []any{"a", "b"},
		5: "10",
	}
	lookup := lookupFrom(values)

	tests := []struct {
		name string
		cond domain.Condition
		want bool
	}{
		{"filled on non-empty", domain.Condition{FieldID: 1, Operator: "filled"}, true},
		{"filled on empty string", domain.Condition{FieldID: 3, Operator: "filled"}, false},
		{"filled on missing field", domain.Condition{FieldID: 99, Operator: "filled"}, false},
		{"empty on empty string", domain.Condition{FieldID: 3, Operator: "empty"}, true},
		{"empty on missing field", domain.Condition{FieldID: 99, Operator: "empty"}, true},

		{"equals strings", domain.Condition{FieldID: 1, Operator: "equals", Value: "hello world"}, true},
		{"equals coerces number and string", domain.Condition{FieldID: 2, Operator: "equals", Value: "10"}, true},
		{"equals coerces string and number", domain.Condition{FieldID: 5, Operator: "equals", Value: float64(10)}, true},
		{"not_equals", domain.Condition{FieldID: 1, Operator: "not_equals", Value: "other"}, true},

		{"greater_than true", domain.Condition{FieldID: 2, Operator: "greater_than", Value: float64(5)}, true},
		{"greater_than false", domain.Condition{FieldID: 2, Operator: "greater_than", Value: float64(10)}, false},
		{"greater_than non-numeric operand", domain.Condition{FieldID: 1, Operator: "greater_than", Value: float64(5)}, false},
		{"less_than numeric string", domain.Condition{FieldID: 5, Operator: "less_than", Value: float64(20)}, true},
		{"greater_or_equal boundary", domain.Condition{FieldID: 2, Operator: "greater_or_equal", Value: float64(10)}, true},
		{"less_or_equal boundary", domain.Condition{FieldID: 2, Operator: "less_or_equal", Value: float64(10)}, true},

		{"contains substring", domain.Condition{FieldID: 1, Operator: "contains", Value: "world"}, true},
		{"contains array member", domain.Condition{FieldID: 4, Operator: "contains", Value: "a"}, true},
		{"contains array non-member", domain.Condition{FieldID: 4, Operator: "contains", Value: "c"}, false},
		{"not_contains", domain.Condition{FieldID: 1, Operator: "not_contains", Value: "mars"}, true},
		{"contains on number", domain.Condition{FieldID: 2, Operator: "contains", Value: "1"}, false},

		{"starts_with", domain.Condition{FieldID: 1, Operator: "starts_with", Value: "hello"}, true},
		{"ends_with", domain.Condition{FieldID: 1, Operator: "ends_with", Value: "world"}, true},
		{"starts_with non-string", domain.Condition{FieldID: 2, Operator: "starts_with", Value: "1"}, false},

		{"in list", domain.Condition{FieldID: 1, Operator: "in", Value: []any{"hello world", "other"}}, true},
		{"in list with coercion", domain.Condition{FieldID: 2, Operator: "in", Value: []any{"10", "20"}}, true},
		{"in scalar treated as list", domain.Condition{FieldID: 1, Operator: "in", Value: "hello world"}, true},
		{"not_in", domain.Condition{FieldID: 1, Operator: "not_in", Value: []any{"a", "b"}}, true},

		{"unknown operator is false", domain.Condition{FieldID: 1, Operator: "resembles", Value: "hello"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(&tc.cond, lookup); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluate_OperatorAliases(t *testing.T) {
	lookup := lookupFrom(map[int]any{1: float64(10)})

	aliases := []struct {
		op   string
		want bool
	}{
		{"not_empty", true},
		{"==", false}, // value operand ниже — "5"
		{">=", true},
		{"<=", false},
		{"GREATER_THAN ", true}, // регистр и пробелы нормализуются
	}

	for _, tc := range aliases {
		cond := &domain.Condition{FieldID: 1, Operator: tc.op, Value: "5"}
		if got := Evaluate(cond, lookup); got != tc.want {
			t.Errorf("operator %q: got %v, want %v", tc.op, got, tc.want)
		}
	}
}

func TestEvaluate_ComplexAnd(t *testing.T) {
	lookup := lookupFrom(map[int]any{1: "yes", 2: float64(30)})

	cond := &domain.Condition{
		Logic: domain.LogicAnd,
		Conditions: []domain.Condition{
			{FieldID: 1, Operator: "equals", Value: "yes"},
			{FieldID: 2, Operator: "greater_than", Value: float64(18)},
		},
	}
	if !Evaluate(cond, lookup) {
		t.Error("and condition should be true when all children are true")
	}

	// Первое ложное условие замыкает вычисление.
	cond.Conditions[0].Value = "no"
	if Evaluate(cond, lookup) {
		t.Error("and condition should be false when a child is false")
	}
}

func TestEvaluate_ComplexOr(t *testing.T) {
	lookup := lookupFrom(map[int]any{1: "no", 2: float64(30)})

	cond := &domain.Condition{
		Logic: domain.LogicOr,
		Conditions: []domain.Condition{
			{FieldID: 1, Operator: "equals", Value: "yes"},
			{FieldID: 2, Operator: "greater_than", Value: float64(18)},
		},
	}
	if !Evaluate(cond, lookup) {
		t.Error("or condition should be true when at least one child is true")
	}

	cond.Conditions[1].Value = float64(100)
	if Evaluate(cond, lookup) {
		t.Error("or condition should be false when all children are false")
	}
}

func TestEvaluate_EmptyConditionLists(t *testing.T) {
	lookup := lookupFrom(nil)

	// Пустой and истинен (vacuous truth), пустой or ложен.
	and := &domain.Condition{Logic: domain.LogicAnd, Conditions: []domain.Condition{}}
	if !Evaluate(and, lookup) {
		t.Error("empty and should be true")
	}

	or := &domain.Condition{Logic: domain.LogicOr, Conditions: []domain.Condition{}}
	if Evaluate(or, lookup) {
		t.Error("empty or should be false")
	}
}

func TestEvaluate_NestedComplex(t *testing.T) {
	lookup := lookupFrom(map[int]any{1: "a", 2: "b", 3: "c"})

	// (f1 == "a") and ((f2 == "x") or (f3 == "c"))
	cond := &domain.Condition{
		Logic: domain.LogicAnd,
		Conditions: []domain.Condition{
			{FieldID: 1, Operator: "equals", Value: "a"},
			{
				Logic: domain.LogicOr,
				Conditions: []domain.Condition{
					{FieldID: 2, Operator: "equals", Value: "x"},
					{FieldID: 3, Operator: "equals", Value: "c"},
				},
			},
		},
	}
	if !Evaluate(cond, lookup) {
		t.Error("nested condition should be true")
	}
}

func TestEvaluate_UnknownLogic(t *testing.T) {
	cond := &domain.Condition{
		Logic:      "xor",
		Conditions: []domain.Condition{{FieldID: 1, Operator: "filled"}},
	}
	if Evaluate(cond, lookupFrom(map[int]any{1: "x"})) {
		t.Error("unknown logic should evaluate to false")
	}
}

// Сценарий: поле "Размер компании" видно только когда
// "Статус занятости" равен "employed".
func TestEvaluate_VisibilityScenario(t *testing.T) {
	visibility := &domain.Condition{
		FieldID:  7,
		Operator: "equals",
		Value:    "employed",
	}

	values := map[int]any{7: "unemployed"}
	if Evaluate(visibility, lookupFrom(values)) {
		t.Error("dependent field should be hidden for unemployed")
	}

	values[7] = "employed"
	if !Evaluate(visibility, lookupFrom(values)) {
		t.Error("dependent field should be visible for employed")
	}
}
