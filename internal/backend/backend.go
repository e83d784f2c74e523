// Package backend selects and opens the durable medium named by the configuration.
package backend

import (
	"context"
	"fmt"

	"todo/internal/backend/flatfile"
	"todo/internal/backend/sqlite"
	"todo/internal/config"
	"todo/internal/service"
)

// Open returns the backend for cfg.Backend. The choice is made once here;
// the store never branches on the backend kind again.
func Open(ctx context.Context, cfg *config.Config) (service.Backend, error) {
	switch cfg.Backend {
	case config.BackendFile:
		b, err := flatfile.Open(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BackendSQLite:
		b, err := sqlite.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend: %q", service.ErrInvalidInput, cfg.Backend)
	}
}
