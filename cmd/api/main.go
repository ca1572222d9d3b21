package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unirecords/internal/auth"
	"unirecords/internal/gateway"
	"unirecords/internal/gpa"
	"unirecords/internal/grading"
	"unirecords/internal/registrar"
	"unirecords/internal/shared"
	"unirecords/internal/store"
)

func main() {
	log.Println("INFO: Starting University Records API...")

	// 1. Load Configuration
	shared.LoadEnv(".env")
	config, err := shared.LoadAppConfig("records-api")
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if err := shared.ValidateAppConfig(config); err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}
	if shared.IsDevelopment(config) {
		shared.PrintConfig(config)
	}

	// 2. Connect to MongoDB
	client, db, err := shared.ConnectMongoDB(&config.MongoDB)
	if err != nil {
		log.Fatalf("FATAL: Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	recordStore := store.NewMongo(client, db)
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := recordStore.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		log.Fatalf("FATAL: Failed to create indexes: %v", err)
	}
	indexCancel()

	// 3. Wire Services
	services := &gateway.Services{
		Auth:      auth.NewService(db, config),
		Registrar: registrar.NewService(recordStore),
		Grading:   grading.NewService(recordStore),
		GPA:       gpa.NewService(recordStore),
	}

	// 4. Setup Routes and Middleware
	router := gateway.SetupRoutes(services, config)

	// 5. Configure Server
	server := &http.Server{
		Addr:         ":" + config.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 6. Start Server in a Goroutine
	go func() {
		log.Printf("INFO: API listening on port %s", config.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server error: %v", err)
		}
	}()

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("INFO: Shutting down API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: Server shutdown error: %v", err)
	}

	log.Println("INFO: API stopped.")
}
