package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Anketa/internal/domain"
	"github.com/shaiso/Anketa/internal/runtime"
	"github.com/shaiso/Anketa/internal/telemetry"
)

// CreateEntry принимает первый submit формы: валидирует начальный
// этап, выбирает переход и создаёт заявку.
// POST /api/v1/forms/{id}/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	formID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid form id")
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	form, err := h.formRepo.GetByID(r.Context(), formID)
	if HandleRepoError(w, h.logger, err, "form not found") {
		return
	}
	if !form.IsActive {
		Conflict(w, "form is not accepting entries")
		return
	}

	var version *domain.FormVersion
	if req.Version > 0 {
		version, err = h.formRepo.GetVersion(r.Context(), formID, req.Version)
	} else {
		version, err = h.formRepo.GetLatestVersion(r.Context(), formID)
	}
	if HandleRepoError(w, h.logger, err, "form version not found") {
		return
	}

	logger := telemetry.WithFormID(h.logger, formID.String())
	session, err := runtime.NewSession(runtime.SessionConfig{
		Structure: &version.Structure,
		FormID:    formID,
		Version:   version.Version,
		Sink: &storeSink{
			entryRepo: h.entryRepo,
			publisher: h.publisher,
			structure: &version.Structure,
			logger:    logger,
		},
		Logger: logger,
	})
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.submitStage(w, r, session, req.FieldValues, true)
}

// GetEntry возвращает заявку по публичному идентификатору.
// GET /api/v1/entries/{publicID}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicID")
	if publicID == "" {
		BadRequest(w, "invalid public identifier")
		return
	}

	entry, err := h.entryRepo.GetEntryByPublicID(r.Context(), publicID)
	if HandleRepoError(w, h.logger, err, "entry not found") {
		return
	}

	Success(w, EntryFromDomain(*entry))
}

// SubmitStage принимает submit очередного этапа заявки.
// POST /api/v1/entries/{publicID}/submit
func (h *Handler) SubmitStage(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicID")
	if publicID == "" {
		BadRequest(w, "invalid public identifier")
		return
	}

	var req SubmitStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	entry, err := h.entryRepo.GetEntryByPublicID(r.Context(), publicID)
	if HandleRepoError(w, h.logger, err, "entry not found") {
		return
	}
	if entry.IsComplete {
		Conflict(w, "entry is already complete")
		return
	}

	version, err := h.formRepo.GetVersion(r.Context(), entry.FormID, entry.Version)
	if HandleRepoError(w, h.logger, err, "form version not found") {
		return
	}

	logger := telemetry.WithEntryID(h.logger, publicID)
	session, err := runtime.NewSession(runtime.SessionConfig{
		Structure: &version.Structure,
		Entry:     entry,
		Sink: &storeSink{
			entryRepo: h.entryRepo,
			publisher: h.publisher,
			structure: &version.Structure,
			entry:     entry,
			logger:    logger,
		},
		Logger: logger,
	})
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	h.submitStage(w, r, session, req.FieldValues, false)
}

// submitStage применяет значения к сессии и выполняет submit.
func (h *Handler) submitStage(w http.ResponseWriter, r *http.Request, session *runtime.Session, values []runtime.FieldValue, created bool) {
	for _, fv := range values {
		session.SetFieldValue(fv.FieldID, fv.Value)
	}

	result, err := session.Submit(r.Context())
	if err != nil {
		HandleSubmissionError(w, h.logger, err)
		return
	}

	if created {
		Created(w, SubmitResultFromRuntime(result))
		return
	}
	Success(w, SubmitResultFromRuntime(result))
}
