package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/pressly/goose/v3"

	"vet-registry/internal/platform/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Migrate aplica las migraciones pendientes del motor d.
func Migrate(ctx context.Context, db *sql.DB, d Dialect, log logger.Logger) error {
	fsys, err := fs.Sub(migrations, d.migrationsDir())
	if err != nil {
		return errors.Wrap(err, "migrations fs")
	}

	provider, err := goose.NewProvider(d.goose(), db, fsys)
	if err != nil {
		return errors.Wrap(err, "creating goose provider")
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Wrap(err, "applying migrations")
	}

	for _, r := range results {
		if r.Error != nil {
			return errors.Wrapf(r.Error, "migration %d (%s) failed", r.Source.Version, r.Source.Path)
		}
		log.Info("migration applied", map[string]any{
			"dialect":  string(d),
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration.String(),
		})
	}

	if len(results) == 0 {
		log.Debug("all migrations already applied", map[string]any{"dialect": string(d)})
	}
	return nil
}
