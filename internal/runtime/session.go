package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/Anketa/internal/domain"
	"github.com/shaiso/Anketa/internal/engine"
)

// Session — один проход одного пользователя по многошаговой форме.
//
// Session держит:
//   - неизменяемую структуру формы и скомпилированные валидаторы
//   - живое состояние полей (engine.FormState)
//   - обратный граф зависимостей для каскадного пересчёта видимости
//   - текущий этап и (после первого submit) заявку
//
// Все операции сериализуются мьютексом: параллельные вызовы
// безопасны, но выполняются по очереди.
type Session struct {
	mu sync.Mutex

	structure  *domain.Structure
	formID     uuid.UUID
	version    int
	entry      *domain.Entry
	stage      *domain.Stage
	state      *engine.FormState
	deps       *engine.DepGraph
	validators map[int]engine.CompiledValidator

	sink   SubmissionSink
	logger *slog.Logger
}

// SessionConfig — конфигурация Session.
type SessionConfig struct {
	// Structure — структура формы (обязательна).
	Structure *domain.Structure

	// FormID и Version идентифицируют форму и её версию.
	// Для возобновляемой заявки берутся из Entry.
	FormID  uuid.UUID
	Version int

	// Entry — существующая заявка для возобновления; nil для новой.
	Entry *domain.Entry

	// Sink — приёмник отправок (обязателен для Submit).
	Sink SubmissionSink

	// Logger — логгер; nil означает slog.Default().
	Logger *slog.Logger
}

// NewSession создаёт сессию заполнения формы.
//
// Для возобновляемой заявки значения пройденных этапов подставляются
// как начальные, а текущим становится этап заявки. Сразу после
// инициализации выполняется первый проход видимости: условия
// вычисляются по начальным значениям.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Structure == nil {
		return nil, fmt.Errorf("session: %w", ErrStructureNotFound)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stage *domain.Stage
	var supplied map[int]any
	if cfg.Entry != nil {
		s, ok := cfg.Structure.StageByID(cfg.Entry.CurrentStageID)
		if !ok && !cfg.Entry.IsComplete {
			return nil, fmt.Errorf("session: entry stage %d: %w",
				cfg.Entry.CurrentStageID, ErrStructureNotFound)
		}
		stage = s
		supplied = cfg.Entry.Values()
	} else {
		s, ok := cfg.Structure.InitialStage()
		if !ok {
			return nil, fmt.Errorf("session: %w", ErrStructureNotFound)
		}
		stage = s
	}

	fields := cfg.Structure.Fields()
	validators := make(map[int]engine.CompiledValidator, len(fields))
	for i := range fields {
		validators[fields[i].ID] = engine.Compile(&fields[i], logger)
	}

	formID, version := cfg.FormID, cfg.Version
	if cfg.Entry != nil {
		formID, version = cfg.Entry.FormID, cfg.Entry.Version
	}

	s := &Session{
		structure:  cfg.Structure,
		formID:     formID,
		version:    version,
		entry:      cfg.Entry,
		stage:      stage,
		state:      engine.InitForm(fields, supplied),
		deps:       engine.BuildDepGraph(cfg.Structure),
		validators: validators,
		sink:       cfg.Sink,
		logger:     logger,
	}

	// Первый проход видимости по начальным значениям.
	for _, f := range fields {
		s.refreshVisibility(f.ID)
	}
	return s, nil
}

// SetFieldValue устанавливает значение поля и каскадно пересчитывает
// видимость зависимых полей. Пересчитываются только затронутые поля,
// обход ограничен и завершается даже на циклических зависимостях.
func (s *Session) SetFieldValue(fieldID int, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SetFieldValue(fieldID, value)
	s.deps.Walk(fieldID, func(id int) bool {
		s.refreshVisibility(id)
		return true
	})
}

// SetFieldTouched помечает поле как затронутое.
func (s *Session) SetFieldTouched(fieldID int, touched bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetFieldTouched(fieldID, touched)
}

// ResetField возвращает поле к начальному значению и пересчитывает
// зависимые.
func (s *Session) ResetField(fieldID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ResetField(fieldID)
	s.deps.Walk(fieldID, func(id int) bool {
		s.refreshVisibility(id)
		return true
	})
}

// Validate валидирует видимые поля текущего этапа.
// Возвращает ошибки по полям; пустой словарь — этап валиден.
// Результат записывается в состояние (ошибки полей и глобальный
// IsValid).
func (s *Session) Validate() map[int]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateStage()
}

// Field возвращает снимок состояния поля (nil для неизвестного).
func (s *Session) Field(fieldID int) *engine.FieldState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.state.Field(fieldID); f != nil {
		snapshot := *f
		return &snapshot
	}
	return nil
}

// Status возвращает агрегированный статус формы.
func (s *Session) Status() engine.GlobalStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Status()
}

// CurrentStageID возвращает идентификатор текущего этапа.
func (s *Session) CurrentStageID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage.ID
}

// Entry возвращает заявку сессии (nil до первого успешного submit).
func (s *Session) Entry() *domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry
}

// Submit валидирует текущий этап, выбирает переход и отправляет
// этап в приёмник.
//
// Порядок строгий: сначала локальная валидация (ошибка — KindValidation
// с ошибками по полям), затем выбор перехода (ErrNoEligibleTransition —
// KindBusiness), затем отправка. Неуспех на любом шаге оставляет
// значения, этап и заявку нетронутыми; успех записывает этап в заявку
// и переводит сессию на следующий.
func (s *Session) Submit(ctx context.Context) (*SubmissionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != nil && s.entry.IsComplete {
		return nil, &SubmissionError{
			Kind:    KindBusiness,
			Message: "entry is complete",
			Err:     ErrEntryComplete,
		}
	}

	s.state.StartValidation()
	fieldErrors := s.validateStage()
	s.state.EndValidation(len(fieldErrors) == 0)
	if len(fieldErrors) > 0 {
		err := ValidationFailed(fieldErrors)
		s.state.SetSubmissionError(err)
		return nil, err
	}

	transition, err := engine.SelectTransition(s.structure, s.stage.ID, s.state.Lookup())
	if err != nil {
		serr := &SubmissionError{
			Kind:    KindBusiness,
			Message: "no transition is eligible for the current values",
			Err:     err,
		}
		s.state.SetSubmissionError(serr)
		return nil, serr
	}

	req := s.buildRequest(transition)

	s.state.SetSubmitting(true)
	defer s.state.SetSubmitting(false)

	result, err := s.sink.Submit(ctx, req)
	if err != nil {
		// Состояние не трогаем: пользователь может исправить
		// и отправить снова.
		s.state.SetSubmissionError(err)
		s.logger.Warn("stage submission failed",
			"stage_id", s.stage.ID,
			"transition_id", transition.ID,
			"error", err,
		)
		return nil, err
	}

	s.applyResult(transition, req, result)
	s.state.SetSubmissionError(nil)

	s.logger.Info("stage submitted",
		"public_id", result.PublicID,
		"stage_id", req.StageID,
		"transition_id", transition.ID,
		"is_complete", result.IsComplete,
	)
	return result, nil
}

// --- внутреннее ---

// refreshVisibility пересчитывает видимость одного поля по его
// условию. Скрытое поле сохраняет значение, но исключается из
// валидации и payload.
func (s *Session) refreshVisibility(fieldID int) {
	def, ok := s.structure.FieldByID(fieldID)
	if !ok {
		return
	}
	visible := engine.Evaluate(def.Visibility, s.state.Lookup())
	s.state.SetFieldMetadata(fieldID, engine.MetadataPatch{Visible: &visible})
}

// validateStage прогоняет валидаторы видимых полей текущего этапа
// и записывает результат в состояние.
func (s *Session) validateStage() map[int]string {
	lookup := s.state.Lookup()
	results := make(map[int]string)
	failed := make(map[int]string)

	for _, def := range s.stage.Fields() {
		f := s.state.Field(def.ID)
		if f == nil || !f.Meta.Visible {
			continue
		}
		cv := s.validators[def.ID]
		msg := cv.Validate(f.Value, lookup)
		results[def.ID] = msg
		if msg != "" {
			failed[def.ID] = msg
		}
	}

	s.state.SetFieldErrors(results)
	return failed
}

// buildRequest собирает payload отправки: значения видимых полей
// текущего этапа в порядке объявления.
func (s *Session) buildRequest(transition *domain.Transition) SubmissionRequest {
	req := SubmissionRequest{
		FormID:       s.formID,
		Version:      s.version,
		StageID:      s.stage.ID,
		TransitionID: transition.ID,
	}
	if s.entry != nil {
		req.PublicID = s.entry.PublicID
	}

	for _, def := range s.stage.Fields() {
		f := s.state.Field(def.ID)
		if f == nil || !f.Meta.Visible {
			continue
		}
		req.Values = append(req.Values, FieldValue{FieldID: def.ID, Value: f.Value})
		if s.validators[def.ID].NeedsServerCheck {
			req.ServerChecks = append(req.ServerChecks, def.ID)
		}
	}
	return req
}

// applyResult записывает успешный submit в заявку и переводит
// сессию на следующий этап.
func (s *Session) applyResult(transition *domain.Transition, req SubmissionRequest, result *SubmissionResult) {
	values := make(map[int]any, len(req.Values))
	for _, fv := range req.Values {
		values[fv.FieldID] = fv.Value
	}
	rec := domain.StageRecord{
		StageID:      req.StageID,
		TransitionID: transition.ID,
		Values:       values,
	}

	if s.entry == nil {
		s.entry = &domain.Entry{
			ID:             result.EntryID,
			PublicID:       result.PublicID,
			FormID:         s.formID,
			Version:        s.version,
			CurrentStageID: s.stage.ID,
		}
	}

	if transition.ToComplete {
		s.entry.MarkComplete(rec)
		return
	}

	s.entry.RecordStage(rec, transition.ToStageID)
	if next, ok := s.structure.StageByID(transition.ToStageID); ok {
		s.stage = next
	}
}
