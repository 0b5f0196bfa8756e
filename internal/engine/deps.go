package engine

import (
	"github.com/shaiso/Anketa/internal/domain"
)

// DepGraph — обратный граф зависимостей полей.
//
// Прямая зависимость объявлена в структуре: условие видимости поля B
// ссылается на поле A, или межполевое правило поля B сравнивает его
// с полем A. Для пересчёта нужен обратный индекс: "какие поля зависят
// от A", чтобы при изменении A пересчитать ровно затронутые поля,
// а не всю форму.
type DepGraph struct {
	// dependents: field_id → поля, зависящие от него (в порядке
	// объявления в структуре, без дубликатов).
	dependents map[int][]int
}

// BuildDepGraph строит обратный граф по структуре формы.
// Учитываются условия видимости полей и ссылки межполевых правил
// (same/different/confirmed).
func BuildDepGraph(s *domain.Structure) *DepGraph {
	g := &DepGraph{dependents: make(map[int][]int)}
	for _, field := range s.Fields() {
		for _, ref := range field.Visibility.FieldRefs() {
			g.add(ref, field.ID)
		}
		for _, ref := range CrossFieldRefs(&field) {
			g.add(ref, field.ID)
		}
	}
	return g
}

func (g *DepGraph) add(source, dependent int) {
	// Самозависимость не каскадируется: поле и так пересчитывается
	// при собственном изменении.
	if source == dependent {
		return
	}
	for _, existing := range g.dependents[source] {
		if existing == dependent {
			return
		}
	}
	g.dependents[source] = append(g.dependents[source], dependent)
}

// Dependents возвращает поля, непосредственно зависящие от данного.
func (g *DepGraph) Dependents(fieldID int) []int {
	return g.dependents[fieldID]
}

// Walk обходит транзитивное замыкание зависимых полей в ширину,
// начиная с непосредственно зависимых от changed.
//
// visit вызывается по одному разу для каждого затронутого поля;
// возврат false останавливает распространение через это поле
// (его собственные зависимые не ставятся в очередь), но обход
// остальных ветвей продолжается. Посещённые поля запоминаются,
// поэтому обход завершается и на циклических графах.
func (g *DepGraph) Walk(changed int, visit func(fieldID int) bool) {
	visited := map[int]bool{changed: true}
	queue := append([]int(nil), g.dependents[changed]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		if !visit(id) {
			continue
		}
		queue = append(queue, g.dependents[id]...)
	}
}
