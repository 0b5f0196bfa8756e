package runtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/Anketa/internal/domain"
)

// StructureProvider отдаёт структуру формы.
// Реализуется репозиторием (internal/repo) или HTTP-клиентом (CLI).
type StructureProvider interface {
	GetStructure(ctx context.Context, formID uuid.UUID, version int) (*domain.Structure, error)
}

// EntryProvider отдаёт заявку по публичному идентификатору.
type EntryProvider interface {
	GetEntryByPublicID(ctx context.Context, publicID string) (*domain.Entry, error)
}

// Loader выполняет загрузки с вытеснением: новый запрос по тому же
// ключу отменяет предыдущий. Результат вытесненного запроса молча
// отбрасывается — вызывающий получает ErrSuperseded и не должен
// применять частичные данные.
//
// Ключ — произвольная строка, обычно "structure:<form_id>:<version>"
// или "entry:<public_id>".
type Loader struct {
	mu       sync.Mutex
	inflight map[string]*inflightCall
}

type inflightCall struct {
	cancel context.CancelFunc
}

// NewLoader создаёт Loader.
func NewLoader() *Loader {
	return &Loader{inflight: make(map[string]*inflightCall)}
}

// Do выполняет fn, предварительно отменив незавершённый запрос
// по тому же ключу. Если за время работы fn запрос сам был вытеснен,
// возвращается ErrSuperseded независимо от результата fn.
func (l *Loader) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	call := &inflightCall{cancel: cancel}

	l.mu.Lock()
	if prev, ok := l.inflight[key]; ok {
		prev.cancel()
	}
	l.inflight[key] = call
	l.mu.Unlock()

	err := fn(ctx)

	l.mu.Lock()
	superseded := l.inflight[key] != call
	if !superseded {
		delete(l.inflight, key)
	}
	l.mu.Unlock()
	cancel()

	if superseded {
		return ErrSuperseded
	}
	return err
}

// CancelAll отменяет все незавершённые запросы.
func (l *Loader) CancelAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, call := range l.inflight {
		call.cancel()
		delete(l.inflight, key)
	}
}
