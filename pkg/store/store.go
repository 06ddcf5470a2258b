// Package store persists templates for the persistence service.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tableflip.dev/tmpl/pkg/config"
	"tableflip.dev/tmpl/pkg/template"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendDiskv  = "diskv"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// ErrNotFound is returned when no template has the requested id.
var ErrNotFound = errors.New("store: template not found")

// Persistence defines the persistence contract for templates. List returns
// templates in ascending id order, which is creation order.
type Persistence interface {
	List(ctx context.Context) ([]template.Template, error)
	Get(ctx context.Context, id template.ID) (template.Template, error)
	// Create stores t under a newly assigned id; t.ID is ignored.
	Create(ctx context.Context, t template.Template) (template.Template, error)
	// Update replaces the template with t.ID.
	Update(ctx context.Context, t template.Template) (template.Template, error)
	Delete(ctx context.Context, id template.ID) error
	Close() error
}

// Open creates the Persistence selected by cfg.Backend.
func Open(cfg config.ServeConfig, logger *slog.Logger) (Persistence, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendDiskv, "":
		return LoadDiskv(cfg.Path)
	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", filepath.Dir(cfg.Path), err)
		}
		return OpenSQLite(cfg.Path)
	case BackendMySQL:
		if cfg.DSN == "" {
			return nil, errors.New("store: mysql backend needs serve.dsn")
		}
		return OpenMySQL(cfg.DSN, logger)
	}
	return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
}
