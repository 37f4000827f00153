package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/chat"
	chatService "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
	"github.com/zhouzirui/kelly-poet/backend/pkg/utils"
)

// Outbound frame types.
const (
	TypeTurn    = "turn"
	TypeIgnored = "ignored"
	TypeError   = "error"
)

const writeWait = 10 * time.Second

// InboundMessage carries one question.
type InboundMessage struct {
	Question string `json:"question"`
}

// OutboundMessage answers one InboundMessage.
type OutboundMessage struct {
	Type  string     `json:"type"`
	Turn  *chat.Turn `json:"turn,omitempty"`
	Error string     `json:"error,omitempty"`
}

// Handler answers questions over a websocket bound to an existing session.
// Each frame is handled to completion before the next one is read.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.Session(sessionID)
	if err != nil {
		utils.RespondError(w, r, http.StatusNotFound, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.FromCtx(r.Context()).With().Str("session", sessionID).Logger()
	logger.Info().Msg("websocket connected")

	for {
		var in InboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, websocket.ErrCloseSent) {
				logger.Info().Msg("websocket closed")
			} else {
				logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		out := OutboundMessage{}
		outcome, err := session.Ask(r.Context(), in.Question)
		switch {
		case err != nil:
			out.Type = TypeError
			out.Error = err.Error()
		case outcome.Ignored:
			out.Type = TypeIgnored
		default:
			out.Type = TypeTurn
			out.Turn = &outcome.Turn
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(out); err != nil {
			logger.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}
