package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/payroll-import/internal/config"
)

// Factory opens a store from application configuration.
type Factory func(ctx context.Context, cfg *config.Config) (Store, error)

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

// Register adds a store factory under name.
// Panics if a factory with the same name is already registered.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("store already registered: %s", name))
	}
	registry[name] = f
}

// Open creates the store registered under name.
func Open(ctx context.Context, name string, cfg *config.Config) (Store, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown store %q (registered: %s)", name, strings.Join(Names(), ", "))
	}

	s, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", name, err)
	}
	return s, nil
}

// Names returns the registered store names.
// Sorted alphabetically.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unregister removes a factory. Used by tests.
func unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// OpenConfigured opens the stores named by cfg.Storage and returns a Router
// over them with a function that closes both. A primary of "none" leaves
// the router without a primary.
func OpenConfigured(ctx context.Context, cfg *config.Config) (*Router, func() error, error) {
	var opened []Store
	closeAll := func() error {
		var errs []error
		for _, s := range opened {
			errs = append(errs, s.Close())
		}
		return errors.Join(errs...)
	}

	var primary Adapter
	if name := cfg.Storage.Primary; name != "" && name != config.StoreNone {
		s, err := Open(ctx, name, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("primary: %w", err)
		}
		opened = append(opened, s)
		primary = s
	}

	secondary, err := Open(ctx, cfg.Storage.Secondary, cfg)
	if err != nil {
		_ = closeAll()
		return nil, nil, fmt.Errorf("secondary: %w", err)
	}
	opened = append(opened, secondary)

	r := NewRouter(primary, secondary,
		WithWriteConcurrency(cfg.Storage.WriteConcurrency),
		WithInitTimeout(cfg.Storage.InitTimeout),
		WithWriteTimeout(cfg.Storage.WriteTimeout),
	)
	return r, closeAll, nil
}
