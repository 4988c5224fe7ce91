package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rafaeltorres/user-registry/internal/api"
	"github.com/rafaeltorres/user-registry/internal/config"
	"github.com/rafaeltorres/user-registry/internal/repository/sqlite"
	"github.com/rafaeltorres/user-registry/internal/service"
	"github.com/rafaeltorres/user-registry/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := sqlite.NewConnection(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	// Initialize repositories
	repos := sqlite.NewRepositories(db)

	// Initialize event feed hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, cfg, hub)

	// Initialize router
	router := api.NewRouter(services, hub, cfg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	hub.Stop()
	log.Println("Server stopped")
}
