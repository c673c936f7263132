package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/youthunite/youthunite/internal/database"
	"github.com/youthunite/youthunite/internal/logging"
	"github.com/youthunite/youthunite/internal/server"
)

func main() {
	port := os.Getenv("YOUTHUNITE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("YOUTHUNITE_DB_PATH")
	if dbPath == "" {
		dbPath = "youthunite.db"
	}

	jwtSecret := os.Getenv("YOUTHUNITE_JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("YOUTHUNITE_JWT_SECRET must be set")
	}

	baseURL := os.Getenv("YOUTHUNITE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	logger := logging.Setup(os.Getenv("YOUTHUNITE_LOG_LEVEL"), os.Getenv("YOUTHUNITE_LOG_FORMAT"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		JWTSecret: []byte(jwtSecret),
		BaseURL:   baseURL,
		ResendKey: os.Getenv("RESEND_API_KEY"),
		FromEmail: os.Getenv("RESEND_FROM"),
	}, logger)

	// Hourly sweep of expired sessions, used-up reset tokens, and stale
	// rate-limit windows.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup failed", "error", err)
			} else if n > 0 {
				logger.Info("deleted expired sessions", "count", n)
			}
			if n, err := srv.ResetTokenStore().DeleteExpired(); err != nil {
				logger.Error("reset token cleanup failed", "error", err)
			} else if n > 0 {
				logger.Info("deleted expired reset tokens", "count", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("YouthUnite running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
