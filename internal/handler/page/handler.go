package page

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/kelly-poet/backend/internal/model/chat"
	"github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	chatService "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
	"github.com/zhouzirui/kelly-poet/backend/pkg/log"
	"github.com/zhouzirui/kelly-poet/backend/pkg/utils"
)

// CookieName holds the id of the browser's session.
const CookieName = "kelly_session"

const footer = "✨ Developed with Google Gemini + Go | Inspired by Kelly, the Skeptical Poet"

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// Handler serves the single-page interface.
type Handler struct {
	chatSvc   *chatService.Service
	personaID string
}

// New creates the page handler; sessions it starts are bound to personaID.
func New(chatSvc *chatService.Service, personaID string) *Handler {
	if personaID == "" {
		personaID = persona.DefaultID
	}
	return &Handler{chatSvc: chatSvc, personaID: personaID}
}

// RegisterRoutes mounts the page routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/ask", h.handleAsk)
}

type view struct {
	Title   string
	Caption string
	Name    string
	Error   string
	Turns   []template.HTML
	Footer  string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	session, ok := h.existingSession(w, r)
	if !ok {
		p, err := h.chatSvc.Persona(h.personaID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.render(w, r, p, nil, "")
		return
	}
	h.render(w, r, session.Persona(), session.Turns(), "")
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	session, ok := h.existingSession(w, r)
	if !ok {
		var err error
		if session, err = h.startSession(w, r); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	var inline string
	if _, err := session.Ask(r.Context(), r.PostForm.Get("question")); err != nil {
		inline = err.Error()
	}
	h.render(w, r, session.Persona(), session.Turns(), inline)
}

// existingSession returns the session named by the browser's cookie. A cookie for a
// session this process no longer knows is cleared.
func (h *Handler) existingSession(w http.ResponseWriter, r *http.Request) (*chatService.Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}

	session, err := h.chatSvc.Session(c.Value)
	if err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
		}
		return nil, false
	}
	return session, true
}

// startSession registers a session for the browser. Only a submitted question does
// this, so plain page views never grow the registry.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) (*chatService.Session, error) {
	info, err := h.chatSvc.CreateSession(r.Context(), h.personaID)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	log.FromCtx(r.Context()).Info().Str("session", info.ID).Msg("session started")

	maxAge := h.chatSvc.IdleTTL()
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    info.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
	return h.chatSvc.Session(info.ID)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, p persona.Persona, turns []chat.Turn, inline string) {
	v := view{
		Title:   p.DisplayTitle(),
		Caption: p.Caption,
		Name:    p.Name,
		Error:   inline,
		Turns:   make([]template.HTML, 0, len(turns)),
		Footer:  footer,
	}
	for _, turn := range turns {
		// sanitized by bluemonday
		v.Turns = append(v.Turns, template.HTML(utils.MarkdownToHTML(TurnMarkdown(p, turn))))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, v); err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to render page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// TurnMarkdown formats one turn the way the page displays it.
func TurnMarkdown(p persona.Persona, turn chat.Turn) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "🧍 **You:** %s\n\n", turn.Question)
	fmt.Fprintf(&b, "🤖 **%s:**\n\n%s\n\n", p.Name, turn.Answer)
	b.WriteString("---\n")
	return b.Bytes()
}
