package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"github.com/Lynxchester/lynxchat/auth"
	"github.com/Lynxchester/lynxchat/internal"
	"github.com/Lynxchester/lynxchat/moderation"
	"github.com/Lynxchester/lynxchat/observability"
	"github.com/Lynxchester/lynxchat/repositories"
	"github.com/Lynxchester/lynxchat/runtime"
	"github.com/Lynxchester/lynxchat/runtime/workers"
	"github.com/Lynxchester/lynxchat/services"
	"github.com/Lynxchester/lynxchat/transport/httpapi"
	"github.com/Lynxchester/lynxchat/transport/ws"
)

const shutdownTimeout = 10 * time.Second

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
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := observability.NewLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation
	censoredChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	censored, err := runtime.NewCensoredLoader().LoadAll("censored")
	if err != nil {
		return fmt.Errorf("loading censored words failed: %w", err)
	}
	log.Info("Censored dictionaries loaded", "languages", censored.Languages, "words", len(censored.Words))
	moderator, err := moderation.NewModerator(censored.Words, censoredChar)
	if err != nil {
		return fmt.Errorf("building moderator failed: %w", err)
	}

	// 4. Realtime core
	presence := runtime.NewPresence()
	rooms := runtime.NewRooms()
	engine := runtime.NewMatchEngine(log, presence, config.MatchCleanupDelay)
	coordinator := runtime.NewCoordinator(
		log, presence, rooms, engine,
		repositories.NewMessageLog(db, log),
		&moderator,
		config.HistoryLimit, config.MaxContentLength,
	)

	// 5. Monitoring
	monitor := observability.NewMonitor(log)
	monitor.SetGauges(presence.Count, rooms.Count, engine.ActiveCount)
	coordinator.OnMessage(monitor.IncrMessages)
	engine.OnResolved(monitor.IncrMatchesResolved)

	// 6. Auth
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(log, repositories.NewUserRepository(db), tokens)

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 8. Background workers under supervision
	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewStatsWorker(log, monitor, config.MetricInterval))
	go sup.Run(ctx)

	// 9. HTTP surface
	authHandler := httpapi.NewAuthHandler(log, authService)
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(log, tokens, coordinator, config.SendBufferSize))
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.Handle("GET /stats", httpapi.NewStatsHandler(monitor))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture ListenAndServe() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 10. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 11. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown not clean", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
