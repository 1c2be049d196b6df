package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/payroll-import/internal/config"
	"github.com/JonMunkholm/payroll-import/internal/importer"
	"github.com/JonMunkholm/payroll-import/internal/logging"
	_ "github.com/JonMunkholm/payroll-import/internal/store/docstore" // Register stores
	_ "github.com/JonMunkholm/payroll-import/internal/store/localstore"
	_ "github.com/JonMunkholm/payroll-import/internal/store/sheetstore"
	"github.com/JonMunkholm/payroll-import/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_primary", cfg.Storage.Primary,
		"store_secondary", cfg.Storage.Secondary,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
	)

	service, closeStores, err := importer.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to create import service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let running imports finish before the stores close under them
		if st := service.Limiter().Status(); st.Active > 0 {
			slog.Info("waiting for imports to complete", "active", st.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		_ = closeStores()
		os.Exit(1)
	}

	<-done
	if err := closeStores(); err != nil {
		slog.Error("failed to close stores", "error", err)
	}
	slog.Info("server stopped")
}
