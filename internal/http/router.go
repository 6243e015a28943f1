package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/salesbuddy/server/internal/http/handlers"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	chatHandler *handlers.ChatHandler,
	signupHandler *handlers.SignupHandler,
	feedbackHandler *handlers.FeedbackHandler,
	documentsHandler *handlers.DocumentsHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/otp", func(r chi.Router) {
		r.Post("/send", authHandler.HandleSendOTP)
		r.Post("/verify", authHandler.HandleVerifyOTP)
	})

	r.Get("/session/status", sessionHandler.HandleStatus)

	r.Route("/chat", func(r chi.Router) {
		r.Post("/send", chatHandler.HandleSend)
		r.Get("/history", chatHandler.HandleHistory)
		r.Post("/history", chatHandler.HandleSaveMessage)
	})

	r.Post("/signup/demo", signupHandler.HandleDemoSignup)
	r.Post("/feedback", feedbackHandler.HandleSubmit)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", documentsHandler.HandleList)
		r.Get("/preview", documentsHandler.HandlePreview)
	})

	return r
}
