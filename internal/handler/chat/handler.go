package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	"github.com/zhouzirui/kelly-poet/backend/internal/service/ai"
	chatService "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
	"github.com/zhouzirui/kelly-poet/backend/pkg/utils"
)

// Handler serves the JSON chat API.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the chat API handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/history", h.handleHistory)
	r.Post("/ask", h.handleAsk)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	// an empty body selects the default persona
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.PersonaID == "" {
		payload.PersonaID = persona.DefaultID
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.PersonaID)
	if err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, r, http.StatusCreated, session)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	transcript, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, r, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, r, http.StatusOK, transcript)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Question  string `json:"question"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.chatSvc.Ask(r.Context(), payload.SessionID, payload.Question)
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, r, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, ai.ErrGeneration):
		utils.RespondError(w, r, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		utils.RespondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, r, http.StatusOK, outcome)
}
