package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/MJE43/gbwild/internal/api"
	"github.com/MJE43/gbwild/internal/config"
	"github.com/MJE43/gbwild/internal/store"
)

func runServe(args []string, stdout, stderr io.Writer) (err error) {
	fs := newFlagSet("serve", stderr)
	configPath := fs.String("config", "", "JSON config file (default $"+config.EnvConfig+")")
	addr := fs.String("addr", "", "listen address (overrides config)")
	dbPath := fs.String("db", "", "history database path (overrides config)")
	noHistory := fs.Bool("no-history", false, "run without a history database")
	maxBytes := fs.Int("max-rom-bytes", 0, "upload limit in bytes (overrides config)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *maxBytes > 0 {
		cfg.MaxROMBytes = *maxBytes
	}

	logger := log.New(stdout, "[GBWILD] ", log.LstdFlags)

	var db store.DB
	if !*noHistory {
		sqlite, openErr := openHistory(cfg.DBPath)
		if openErr != nil {
			return fmt.Errorf("history: %w", openErr)
		}
		defer func() { err = multierr.Append(err, sqlite.Close()) }()
		db = sqlite
		logger.Printf("history_enabled path=%s", cfg.DBPath)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newAPIServer(db, cfg, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening addr=%s engine_version=%s", cfg.Addr, api.EngineVersion)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Printf("shutdown_started")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Printf("shutdown_completed")
	return nil
}

// newAPIServer builds the HTTP API over db with the command's logger, so
// request and error logs share the serve output.
func newAPIServer(db store.DB, cfg config.Config, logger *log.Logger) *api.Server {
	return api.NewServer(db, api.WithLogger(logger), api.WithMaxROMBytes(cfg.MaxROMBytes))
}
