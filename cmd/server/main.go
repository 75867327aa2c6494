package main

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-direct/infrastructure/http/server"
	"chat-direct/internal"
	"chat-direct/moderation"
	"chat-direct/repositories"
	"chat-direct/runtime"
	"chat-direct/runtime/workers"
	"chat-direct/services"
	"chat-direct/uploads"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

//go:embed censored/*
var censoredFolder embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for HTTP and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = blugeWriter.Close()
	}()

	// 3. Moderation
	censoredChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	censored, err := moderation.NewLoader(censoredFolder).LoadAll("censored")
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(censored.Words), strings.Join(censored.Languages, ",")))
	moderator, err := moderation.NewModerator(censored.Words, censoredChar)
	if err != nil {
		return err
	}

	// 4. Presence, delivery and supervision
	presence := runtime.NewPresence()
	router := runtime.NewRouter(log, presence, config.BufferSize, config.SinkTimeout)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(router)
	sup.Add(workers.NewTelemetryWorker(log, presence, config.TelemetryInterval))
	sup.Add(workers.NewBadgerGCWorker(db, log, config.GCInterval))

	// 5. Repositories & services
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	userRepository := repositories.NewUserRepository(db)
	messageIndex := repositories.NewMessageIndex(blugeWriter, log)

	uploader, err := uploads.NewDiskUploader(config.UploadDir, config.PublicBaseURL, log)
	if err != nil {
		return err
	}

	chatService := services.NewChatService(log, messageRepository, userRepository,
		messageIndex, uploader, &moderator, router)
	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)

	// 6. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 7. HTTP server
	engine := server.NewRouter(
		server.NewAuthServer(log, authService),
		server.NewMessageServer(log, chatService),
		server.NewWSServer(log, presence, config.ConnectionBufferSize),
		config.UploadDir,
	)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: engine}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
