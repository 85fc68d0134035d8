/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance and leave calendar server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment)
  2. Parse command-line flags (override configuration)
  3. Initialize SQLite store
  4. Create API handler and start the idle session reaper
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: APP_PORT or 8080)
  -db      SQLite database path (default: DB_PATH or calendar.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  See config/config.go for the full list.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the session reaper
  4. Close database connection

EXAMPLES:
  # Run with in-memory database and debug logs
  LOG_LEVEL=debug ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/leave-calendar/api"
	"github.com/warp/leave-calendar/calendar"
	"github.com/warp/leave-calendar/config"
	"github.com/warp/leave-calendar/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DB.Path, "SQLite database path")
	flag.Parse()

	level, _ := cfg.SlogLevel()
	logger := api.NewLogger(os.Stdout, level, cfg.App.Env)
	slog.SetDefault(logger)

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", slog.String("path", *dbPath), slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	handler := api.NewHandler(store, logger, calendar.SystemClock)

	reaper := api.NewSessionReaper(handler.Sessions, cfg.Session.TTL, cfg.Session.SweepInterval, logger)
	reaper.Start()
	defer reaper.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler, cfg.App.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.Int("port", *port),
			slog.String("db", *dbPath),
			slog.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
		return
	}

	logger.Info("server stopped")
}
