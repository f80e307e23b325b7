// Package bundb opens the Postgres connection pool and applies migrations.
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	statsdb "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/repositories"
	statsmigrations "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// Open connects to Postgres and returns a ready bun.DB.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return BunDB(sqldb), nil
}

// BunDB wraps an existing pool and registers the models.
func BunDB(sqldb *sql.DB) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel(
		(*statsdb.Result)(nil),
		(*statsdb.NicknameLink)(nil),
		(*statsdb.CrawlCursor)(nil),
	)
	return db
}

// Migrators returns one migrator per module, keyed by module name.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	return map[string]*migrate.Migrator{
		"stats": migrate.NewMigrator(db, statsmigrations.Migrations),
	}
}

// Migrate creates the migration tables and applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	for name, migrator := range Migrators(db) {
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", attr.String("module", name))
			continue
		}
		logger.InfoContext(ctx, "Migrated module",
			attr.String("module", name),
			attr.String("group", group.String()),
		)
	}
	return nil
}
