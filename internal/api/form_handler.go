package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Anketa/internal/domain"
	"github.com/shaiso/Anketa/internal/engine"
)

// ListForms возвращает список всех форм.
// GET /api/v1/forms
func (h *Handler) ListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := h.formRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]FormResponse, len(forms))
	for i, f := range forms {
		result[i] = FormFromDomain(f)
	}

	List(w, result, len(result))
}

// CreateForm создаёт новую форму.
// POST /api/v1/forms
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	form := &domain.Form{
		ID:       uuid.New(),
		Name:     req.Name,
		IsActive: false,
	}

	if err := h.formRepo.Create(r.Context(), form); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, FormFromDomain(*form))
}

// GetForm возвращает форму по ID.
// GET /api/v1/forms/{id}
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid form id")
		return
	}

	form, err := h.formRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "form not found") {
		return
	}

	Success(w, FormFromDomain(*form))
}

// UpdateForm обновляет форму.
// PUT /api/v1/forms/{id}
func (h *Handler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid form id")
		return
	}

	var req UpdateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	form, err := h.formRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "form not found") {
		return
	}

	if req.Name != nil {
		form.Name = *req.Name
	}
	if req.IsActive != nil {
		form.IsActive = *req.IsActive
	}

	if err := h.formRepo.Update(r.Context(), form); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, FormFromDomain(*form))
}

// DeleteForm удаляет форму.
// DELETE /api/v1/forms/{id}
func (h *Handler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid form id")
		return
	}

	if err := h.formRepo.Delete(r.Context(), id); err != nil {
		if HandleRepoError(w, h.logger, err, "form not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// ListFormVersions возвращает список версий формы.
// GET /api/v1/forms/{id}/versions
func (h *Handler) ListFormVersions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid form id")
		return
	}

	// Проверяем, что форма существует
	_, err = h.formRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "form not found") {
		return
	}

	versions, err := h.formRepo.ListVersions(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]FormVersionResponse, len(versions))
	for i, v := range versions {
		result[i] = FormVersionFromDomain(v)
	}

	List(w, result, len(result))
}

// CreateFormVersion публикует новую версию структуры формы.
// Структура проверяется движком: кривая структура не публикуется.
// POST /api/v1/forms/{id}/versions
func (h *Handler) CreateFormVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid form id")
		return
	}

	var req CreateFormVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Проверяем, что форма существует
	_, err = h.formRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "form not found") {
		return
	}

	if err := engine.ValidateStructure(&req.Structure); err != nil {
		Error(w, http.StatusUnprocessableEntity, ErrCodeInvalidStructure, err.Error())
		return
	}

	version, err := h.formRepo.CreateVersion(r.Context(), id, req.Structure)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, FormVersionFromDomain(*version))
}

// GetFormStructure возвращает структуру формы для рендеринга:
// последнюю версию или ?version=N. Параметр ?language= прокидывается
// в ответ как есть, переводы живут в системе авторинга.
// GET /api/v1/forms/{id}/structure
func (h *Handler) GetFormStructure(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid form id")
		return
	}

	var version *domain.FormVersion
	if v := r.URL.Query().Get("version"); v != "" {
		versionNum, err := strconv.Atoi(v)
		if err != nil {
			BadRequest(w, "invalid version number")
			return
		}
		version, err = h.formRepo.GetVersion(r.Context(), id, versionNum)
		if HandleRepoError(w, h.logger, err, "form version not found") {
			return
		}
	} else {
		version, err = h.formRepo.GetLatestVersion(r.Context(), id)
		if HandleRepoError(w, h.logger, err, "form version not found") {
			return
		}
	}

	Success(w, StructureResponse{
		FormID:    version.FormID,
		Version:   version.Version,
		Language:  r.URL.Query().Get("language"),
		Structure: version.Structure,
	})
}

// GetFormVersion возвращает конкретную версию формы.
// GET /api/v1/forms/{id}/versions/{version}
func (h *Handler) GetFormVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid form id")
		return
	}

	versionNum, err := strconv.Atoi(r.PathValue("version"))
	if err != nil {
		BadRequest(w, "invalid version number")
		return
	}

	version, err := h.formRepo.GetVersion(r.Context(), id, versionNum)
	if HandleRepoError(w, h.logger, err, "form version not found") {
		return
	}

	Success(w, FormVersionFromDomain(*version))
}
