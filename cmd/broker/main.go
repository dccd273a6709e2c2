package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"

	"github.com/rubentanahara/chat-net-8/infrastructure/ws"
	"github.com/rubentanahara/chat-net-8/internal"
	"github.com/rubentanahara/chat-net-8/moderation"
	"github.com/rubentanahara/chat-net-8/repositories"
	"github.com/rubentanahara/chat-net-8/runtime"
	"github.com/rubentanahara/chat-net-8/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Broker terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close included)
// executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		debugPort := 8081
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", debugPort, endpoint))
		database.StartDebugServer(db, debugPort, endpoint, RoomMapper)
	}

	defer func() {
		// Defer ensures the database lock is released and buffers are flushed.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation
	moderator, err := moderation.NewEmbeddedModerator(charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderation init failed: %w", err)
	}

	// 4. Core wiring
	roomRepository := repositories.NewRoomRepository(db, logger)
	messageRepository := repositories.NewMessageRepository(db, logger)

	orchestrator := runtime.NewOrchestrator(logger, roomRepository, messageRepository, moderator, runtime.Options{
		BufferSize:       config.BufferSize,
		LockTimeout:      config.LockTimeout,
		TypingTTL:        config.TypingTTL,
		SweepInterval:    config.SweepInterval,
		MetricInterval:   config.MetricInterval,
		RestartInterval:  config.RestartInterval,
		MaxContentLength: config.MaxContentLength,
		RoomMessageCap:   config.RoomMessageCap,
		MaxActiveRooms:   config.MaxActiveRooms,
		ListLimit:        config.ListLimit,
	})

	chatService := services.NewChatService(orchestrator)
	gateway := ws.NewGateway(logger, chatService, config.ConnectionBufferSize, config.DeliveryTimeout)

	// Error (HTTP server & orchestrator)
	errChan := make(chan error, 2)

	// 5. Start the push pipeline (fanout, typing sweep, telemetry)
	go func() {
		logger.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 6. HTTP server hosting the WebSocket gateway
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: gateway.Handler()}

	go func() {
		logger.Info("Starting gateway", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final cleanup (graceful shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	orchestrator.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}

// RoomMapper renders room and message records in the Badger inspector.
func RoomMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	var record map[string]any
	if err := json.Unmarshal(val, &record); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}

	if status, ok := record["status"].(string); ok {
		row.Type = "ROOM"
		row.Detail = fmt.Sprintf("%s requestor=%v listener=%v", status, record["requestor_id"], record["listener_id"])
		return row
	}
	if content, ok := record["content"].(string); ok {
		row.Type = "MESSAGE"
		row.Detail = fmt.Sprintf("%v: %s", record["sender_id"], content)
	}
	return row
}
