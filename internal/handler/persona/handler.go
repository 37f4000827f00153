package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/pkg/utils"
)

// Handler exposes the persona catalogue.
type Handler struct {
	personas persona.Store
}

// New creates the persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes mounts the persona routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, r, http.StatusOK, h.personas.List())
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindByID(chi.URLParam(r, "personaID"))
	if !ok {
		utils.RespondError(w, r, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, r, http.StatusOK, p)
}
