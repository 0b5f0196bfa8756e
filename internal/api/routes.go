package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Forms
	mux.Handle("GET /api/v1/forms", chain(http.HandlerFunc(h.ListForms)))
	mux.Handle("POST /api/v1/forms", chain(http.HandlerFunc(h.CreateForm)))
	mux.Handle("GET /api/v1/forms/{id}", chain(http.HandlerFunc(h.GetForm)))
	mux.Handle("PUT /api/v1/forms/{id}", chain(http.HandlerFunc(h.UpdateForm)))
	mux.Handle("DELETE /api/v1/forms/{id}", chain(http.HandlerFunc(h.DeleteForm)))

	// Form Versions
	mux.Handle("GET /api/v1/forms/{id}/versions", chain(http.HandlerFunc(h.ListFormVersions)))
	mux.Handle("POST /api/v1/forms/{id}/versions", chain(http.HandlerFunc(h.CreateFormVersion)))
	mux.Handle("GET /api/v1/forms/{id}/versions/{version}", chain(http.HandlerFunc(h.GetFormVersion)))
	mux.Handle("GET /api/v1/forms/{id}/structure", chain(http.HandlerFunc(h.GetFormStructure)))

	// Entries
	mux.Handle("POST /api/v1/forms/{id}/entries", chain(http.HandlerFunc(h.CreateEntry)))
	mux.Handle("GET /api/v1/entries/{publicID}", chain(http.HandlerFunc(h.GetEntry)))
	mux.Handle("POST /api/v1/entries/{publicID}/submit", chain(http.HandlerFunc(h.SubmitStage)))
}
