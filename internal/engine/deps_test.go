package engine

import (
	"testing"

	"github.com/shaiso/Anketa/internal/domain"
)

// structureWithFields собирает одностраничную структуру из полей.
func structureWithFields(fields ...domain.FieldDefinition) *domain.Structure {
	return &domain.Structure{
		Stages: []domain.Stage{
			{
				ID:        1,
				IsInitial: true,
				Sections:  []domain.Section{{ID: 1, Fields: fields}},
			},
		},
	}
}

func TestBuildDepGraph_VisibilityRefs(t *testing.T) {
	s := structureWithFields(
		domain.FieldDefinition{ID: 1, Type: domain.FieldTypeSelect},
		domain.FieldDefinition{
			ID:   2,
			Type: domain.FieldTypeText,
			Visibility: &domain.Condition{
				FieldID: 1, Operator: "equals", Value: "yes",
			},
		},
		domain.FieldDefinition{
			ID:   3,
			Type: domain.FieldTypeText,
			Visibility: &domain.Condition{
				Logic: domain.LogicAnd,
				Conditions: []domain.Condition{
					{FieldID: 1, Operator: "filled"},
					{FieldID: 2, Operator: "filled"},
				},
			},
		},
	)

	g := BuildDepGraph(s)

	deps := g.Dependents(1)
	if len(deps) != 2 || deps[0] != 2 || deps[1] != 3 {
		t.Errorf("dependents of 1: expected [2 3], got %v", deps)
	}
	deps = g.Dependents(2)
	if len(deps) != 1 || deps[0] != 3 {
		t.Errorf("dependents of 2: expected [3], got %v", deps)
	}
	if deps := g.Dependents(3); len(deps) != 0 {
		t.Errorf("dependents of 3: expected none, got %v", deps)
	}
}

func TestBuildDepGraph_CrossFieldRuleRefs(t *testing.T) {
	s := structureWithFields(
		domain.FieldDefinition{ID: 1, Type: domain.FieldTypeEmail},
		domain.FieldDefinition{
			ID:   2,
			Type: domain.FieldTypeEmail,
			Rules: []domain.Rule{
				{Name: domain.RuleConfirmed, Props: map[string]any{"confirmationvalue": "field_1"}},
			},
		},
	)

	g := BuildDepGraph(s)
	deps := g.Dependents(1)
	if len(deps) != 1 || deps[0] != 2 {
		t.Errorf("expected [2], got %v", deps)
	}
}

func TestDepGraph_NoDuplicates(t *testing.T) {
	// Поле 2 ссылается на поле 1 и в условии видимости, и в правиле:
	// в индексе оно должно оказаться один раз.
	s := structureWithFields(
		domain.FieldDefinition{ID: 1, Type: domain.FieldTypeText},
		domain.FieldDefinition{
			ID:   2,
			Type: domain.FieldTypeText,
			Visibility: &domain.Condition{
				FieldID: 1, Operator: "filled",
			},
			Rules: []domain.Rule{
				{Name: domain.RuleSame, Props: map[string]any{"comparevalue": float64(1)}},
			},
		},
	)

	g := BuildDepGraph(s)
	if deps := g.Dependents(1); len(deps) != 1 {
		t.Errorf("expected single dependent, got %v", deps)
	}
}

func TestWalk_TransitiveCascade(t *testing.T) {
	// 1 → 2 → 3: изменение 1 должно затронуть и 2, и 3.
	s := structureWithFields(
		domain.FieldDefinition{ID: 1, Type: domain.FieldTypeText},
		domain.FieldDefinition{
			ID: 2, Type: domain.FieldTypeText,
			Visibility: &domain.Condition{FieldID: 1, Operator: "filled"},
		},
		domain.FieldDefinition{
			ID: 3, Type: domain.FieldTypeText,
			Visibility: &domain.Condition{FieldID: 2, Operator: "filled"},
		},
	)

	g := BuildDepGraph(s)

	var visited []int
	g.Walk(1, func(id int) bool {
		visited = append(visited, id)
		return true
	})

	if len(visited) != 2 || visited[0] != 2 || visited[1] != 3 {
		t.Errorf("expected cascade [2 3], got %v", visited)
	}
}

func TestWalk_StopsPropagation(t *testing.T) {
	s := structureWithFields(
		domain.FieldDefinition{ID: 1, Type: domain.FieldTypeText},
		domain.FieldDefinition{
			ID: 2, Type: domain.FieldTypeText,
			Visibility: &domain.Condition{FieldID: 1, Operator: "filled"},
		},
		domain.FieldDefinition{
			ID: 3, Type: domain.FieldTypeText,
			Visibility: &domain.Condition{FieldID: 2, Operator: "filled"},
		},
	)

	g := BuildDepGraph(s)

	// visit возвращает false на поле 2: поле 3 не должно быть затронуто.
	var visited []int
	g.Walk(1, func(id int) bool {
		visited = append(visited, id)
		return false
	})

	if len(visited) != 1 || visited[0] != 2 {
		t.Errorf("expected [2], got %v", visited)
	}
}

func TestWalk_CyclicGraphTerminates(t *testing.T) {
	// 1 ↔ 2: видимость каждого ссылается на другого.
	// Обход должен завершиться, посетив каждое поле не более раза.
	s := structureWithFields(
		domain.FieldDefinition{
			ID: 1, Type: domain.FieldTypeText,
			Visibility: &domain.Condition{FieldID: 2, Operator: "filled"},
		},
		domain.FieldDefinition{
			ID: 2, Type: domain.FieldTypeText,
			Visibility: &domain.Condition{FieldID: 1, Operator: "filled"},
		},
	)

	g := BuildDepGraph(s)

	counts := map[int]int{}
	g.Walk(1, func(id int) bool {
		counts[id]++
		return true
	})

	if counts[2] != 1 {
		t.Errorf("field 2 should be visited exactly once, got %d", counts[2])
	}
	if counts[1] != 0 {
		t.Errorf("changed field itself should not be revisited, got %d", counts[1])
	}
}

func TestBuildDepGraph_SelfReferenceIgnored(t *testing.T) {
	s := structureWithFields(
		domain.FieldDefinition{
			ID: 1, Type: domain.FieldTypeText,
			Visibility: &domain.Condition{FieldID: 1, Operator: "filled"},
		},
	)

	g := BuildDepGraph(s)
	if deps := g.Dependents(1); len(deps) != 0 {
		t.Errorf("self reference should not cascade, got %v", deps)
	}
}
