package importer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/payroll-import/internal/config"
	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/store"
)

// Open builds a Service from cfg. Store adapters must already be
// registered with the store package. The returned function closes the
// stores and should run after WaitForImports.
func Open(ctx context.Context, cfg *config.Config) (*Service, func() error, error) {
	aliases, err := core.LoadAliasFile(cfg.Import.AliasFile)
	if err != nil {
		return nil, nil, err
	}

	router, closeStores, err := store.OpenConfigured(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open stores: %w", err)
	}

	slog.Info("stores opened",
		"primary", cfg.Storage.Primary,
		"secondary", cfg.Storage.Secondary,
	)

	svc := New(router,
		WithAliases(aliases),
		WithLimiter(NewLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)),
		WithTimeout(cfg.Import.Timeout),
		WithMaxFileSize(cfg.Import.MaxFileSize),
	)
	return svc, closeStores, nil
}
