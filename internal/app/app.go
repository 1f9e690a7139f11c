package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"authcore/internal/config"
	"authcore/internal/handlers"
	"authcore/internal/repositories"
	"authcore/internal/routes"
	"authcore/internal/services"
	"authcore/internal/sessions"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to reach database: ", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)

	// === Sessions ===
	codec := sessions.NewCookieCodec(cfg.Session.SigningKey, cfg.Session.Secure)
	sessionManager := sessions.NewManager(sessionRepo, codec)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	authService := services.NewAuthService(db, userRepo, sessionRepo)
	verificationService := services.NewVerificationService(verificationRepo, cfg.Server.BaseURL)

	codeTTL := time.Duration(cfg.Verification.CodeTTLSeconds) * time.Second

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService, sessionManager)
	registerHandler := handlers.NewRegisterHandler(authService, verificationService, emailService, sessionManager, codec, codeTTL)
	verifyHandler := handlers.NewVerifyHandler(verificationService, codec)
	passwordHandler := handlers.NewPasswordHandler(authService, verificationService, emailService, codec, codeTTL)

	// === Gin ===
	router := gin.Default()

	routes.SetupRoutes(
		router,
		sessionManager,
		authHandler,
		registerHandler,
		verifyHandler,
		passwordHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
