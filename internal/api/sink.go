package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Anketa/internal/domain"
	"github.com/shaiso/Anketa/internal/mq"
	"github.com/shaiso/Anketa/internal/repo"
	"github.com/shaiso/Anketa/internal/runtime"
)

// storeSink — серверный приёмник отправок: выполняет серверные
// проверки (unique), пишет заявку в БД и публикует события.
//
// Создаётся на каждый запрос с уже загруженной структурой.
type storeSink struct {
	entryRepo *repo.EntryRepo
	publisher *mq.Publisher
	structure *domain.Structure
	entry     *domain.Entry // nil для первого этапа
	logger    *slog.Logger
}

// Submit реализует runtime.SubmissionSink.
func (s *storeSink) Submit(ctx context.Context, req runtime.SubmissionRequest) (*runtime.SubmissionResult, error) {
	transition := s.findTransition(req.TransitionID)
	if transition == nil {
		return nil, &runtime.SubmissionError{
			Kind:    runtime.KindServer,
			Message: fmt.Sprintf("unknown transition %d", req.TransitionID),
		}
	}

	if err := s.runServerChecks(ctx, req); err != nil {
		return nil, err
	}

	values := make(map[int]any, len(req.Values))
	for _, fv := range req.Values {
		values[fv.FieldID] = fv.Value
	}
	rec := domain.StageRecord{
		StageID:      req.StageID,
		TransitionID: req.TransitionID,
		Values:       values,
	}

	entry := s.entry
	isNew := entry == nil
	if isNew {
		entry = domain.NewEntry(req.FormID, req.Version, req.StageID)
	}

	if transition.ToComplete {
		entry.MarkComplete(rec)
	} else {
		entry.RecordStage(rec, transition.ToStageID)
	}

	var err error
	if isNew {
		err = s.entryRepo.Create(ctx, entry)
	} else {
		err = s.entryRepo.Update(ctx, entry)
	}
	if err != nil {
		return nil, &runtime.SubmissionError{
			Kind:    runtime.KindServer,
			Message: "failed to persist entry",
			Err:     err,
		}
	}

	s.publishEvents(ctx, entry, req, transition)

	return &runtime.SubmissionResult{
		EntryID:        entry.ID,
		PublicID:       entry.PublicID,
		IsComplete:     entry.IsComplete,
		CurrentStageID: entry.CurrentStageID,
	}, nil
}

// runServerChecks проверяет поля с правилом unique по всем заявкам
// формы. Нарушение возвращается как ошибка валидации конкретного поля.
func (s *storeSink) runServerChecks(ctx context.Context, req runtime.SubmissionRequest) error {
	if len(req.ServerChecks) == 0 {
		return nil
	}

	values := make(map[int]any, len(req.Values))
	for _, fv := range req.Values {
		values[fv.FieldID] = fv.Value
	}

	var excludeID uuid.UUID
	if s.entry != nil {
		excludeID = s.entry.ID
	}

	fieldErrors := make(map[int]string)
	for _, fieldID := range req.ServerChecks {
		taken, err := s.entryRepo.IsValueTaken(ctx, req.FormID, fieldID, values[fieldID], excludeID)
		if err != nil {
			return &runtime.SubmissionError{
				Kind:    runtime.KindServer,
				Message: "uniqueness check failed",
				Err:     err,
			}
		}
		if taken {
			label := fmt.Sprintf("Field %d", fieldID)
			if def, ok := s.structure.FieldByID(fieldID); ok && def.Label != "" {
				label = def.Label
			}
			fieldErrors[fieldID] = label + " has already been taken"
		}
	}

	if len(fieldErrors) > 0 {
		return runtime.ValidationFailed(fieldErrors)
	}
	return nil
}

// publishEvents публикует события об отправке. Ошибка публикации
// не откатывает submit: заявка уже сохранена, событие потеряно —
// это видно в логе.
func (s *storeSink) publishEvents(ctx context.Context, entry *domain.Entry, req runtime.SubmissionRequest, transition *domain.Transition) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.PublishEntrySubmitted(ctx, mq.EntrySubmittedPayload{
		EntryID:      entry.ID,
		PublicID:     entry.PublicID,
		FormID:       entry.FormID,
		Version:      entry.Version,
		StageID:      req.StageID,
		TransitionID: req.TransitionID,
		Actions:      transition.Actions,
	})
	if err != nil {
		s.logger.Error("failed to publish entry.submitted",
			"public_id", entry.PublicID,
			"error", err,
		)
	}

	if entry.IsComplete {
		err := s.publisher.PublishEntryCompleted(ctx, mq.EntryCompletedPayload{
			EntryID:  entry.ID,
			PublicID: entry.PublicID,
			FormID:   entry.FormID,
			Version:  entry.Version,
		})
		if err != nil {
			s.logger.Error("failed to publish entry.completed",
				"public_id", entry.PublicID,
				"error", err,
			)
		}
	}
}

func (s *storeSink) findTransition(id int) *domain.Transition {
	for i := range s.structure.Transitions {
		if s.structure.Transitions[i].ID == id {
			return &s.structure.Transitions[i]
		}
	}
	return nil
}
