package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/darlyn-ai/darlyn/backend/internal/events"
	chathandler "github.com/darlyn-ai/darlyn/backend/internal/handler/chat"
	eventshandler "github.com/darlyn-ai/darlyn/backend/internal/handler/events"
	profilehandler "github.com/darlyn-ai/darlyn/backend/internal/handler/profile"
	uploadhandler "github.com/darlyn-ai/darlyn/backend/internal/handler/upload"
	chatservice "github.com/darlyn-ai/darlyn/backend/internal/service/chat"
	"github.com/darlyn-ai/darlyn/backend/internal/service/conversation"
	profileservice "github.com/darlyn-ai/darlyn/backend/internal/service/profile"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(sessions *chatservice.Service, profiles *profileservice.Service, conv *conversation.Service, hub *events.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	chatHandler := chathandler.New(sessions, conv)
	profileHandler := profilehandler.New(profiles)
	uploadHandler := uploadhandler.New()
	eventsHandler := eventshandler.New(hub)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		profileHandler.RegisterRoutes(api)
		uploadHandler.RegisterRoutes(api)
		eventsHandler.RegisterRoutes(api)
	})

	return r
}
