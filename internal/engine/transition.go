package engine

import (
	"github.com/shaiso/Anketa/internal/domain"
)

// SelectTransition выбирает переход из этапа по текущим значениям
// полей.
//
// Переходы перебираются в порядке объявления; побеждает первый,
// чьё условие истинно (nil-условие истинно всегда). Порядок в
// структуре — это приоритет: безусловный переход, объявленный
// раньше условного, перехватит всё.
//
// Если не применим ни один переход, возвращается
// ErrNoEligibleTransition — это блокирует submit этапа, но не
// является ошибкой валидации полей.
func SelectTransition(s *domain.Structure, stageID int, lookup Lookup) (*domain.Transition, error) {
	transitions := s.TransitionsFrom(stageID)
	for i := range transitions {
		if Evaluate(transitions[i].Condition, lookup) {
			return &transitions[i], nil
		}
	}
	return nil, ErrNoEligibleTransition
}
