package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/kelly-poet/backend/internal/handler/chat"
	"github.com/zhouzirui/kelly-poet/backend/internal/handler/page"
	"github.com/zhouzirui/kelly-poet/backend/internal/handler/persona"
	"github.com/zhouzirui/kelly-poet/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/kelly-poet/backend/internal/middleware"
	personaModel "github.com/zhouzirui/kelly-poet/backend/internal/model/persona"
	chatService "github.com/zhouzirui/kelly-poet/backend/internal/service/chat"
	"github.com/zhouzirui/kelly-poet/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(logger zerolog.Logger, personas personaModel.Store, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(logger))
	r.Use(middleware.Recoverer)

	page.New(chatSvc, personaModel.DefaultID).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.CORS)

		persona.New(personas).RegisterRoutes(api)
		chat.New(chatSvc).RegisterRoutes(api)
		ws.New(chatSvc).RegisterRoutes(api)
	})

	return r
}
