package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/salesbuddy/server/internal/agent"
	"github.com/salesbuddy/server/internal/auth"
	"github.com/salesbuddy/server/internal/config"
	"github.com/salesbuddy/server/internal/db"
	"github.com/salesbuddy/server/internal/graph"
	httphandler "github.com/salesbuddy/server/internal/http"
	"github.com/salesbuddy/server/internal/http/handlers"
	"github.com/salesbuddy/server/internal/mail"
	"github.com/salesbuddy/server/internal/repo"
	"github.com/salesbuddy/server/internal/session"
	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real env vars always win.
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.AgentURL == config.DefaultAgentURL && cfg.Production {
		log.Fatalf("AGENT_API_URL must be set in production; the default is a development tunnel")
	}

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := runMigrations(database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	otpRepo := repo.NewOtpRepo(database)
	userRepo := repo.NewUserRepo(database)
	chatRepo := repo.NewChatRepo(database)
	feedbackRepo := repo.NewFeedbackRepo(database)

	// Services
	sender, err := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	if err != nil {
		log.Fatalf("Failed to create SMTP sender: %v", err)
	}
	sessionService := session.NewService(userRepo)
	otpService := auth.NewOtpService(otpRepo, sender)
	authService := auth.NewAuthService(otpService, sessionService)
	agentClient := agent.NewClient(cfg.AgentURL)

	var graphClient *graph.Client
	if cfg.HasGraph() {
		graphClient = graph.NewClient(
			cfg.GraphTenantID, cfg.GraphClientID, cfg.GraphClientSecret,
			cfg.SharePointSiteID, cfg.SharePointDriveID,
		)
	} else {
		log.Println("Graph credentials not configured; document endpoints disabled")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(otpService, authService, cfg.Production)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	chatHandler := handlers.NewChatHandler(agentClient, chatRepo, cfg.AgentStrictEOF)
	signupHandler := handlers.NewSignupHandler(sessionService, cfg.Production)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackRepo)
	documentsHandler := handlers.NewDocumentsHandler(graphClient)

	router := httphandler.NewRouter(
		authHandler, sessionHandler, chatHandler,
		signupHandler, feedbackHandler, documentsHandler,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// WriteTimeout stays generous: /chat/send holds the response open
		// for the full upstream stream.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// runMigrations runs database migrations using goose
func runMigrations(database *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	migrationDir := "internal/db/migrations"
	if info, err := os.Stat(migrationDir); err != nil || !info.IsDir() {
		return fmt.Errorf("migrations directory not found (run from the repo root)")
	}

	if err := goose.Up(database, migrationDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
