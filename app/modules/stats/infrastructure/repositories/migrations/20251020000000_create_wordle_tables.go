package statsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating wordle_results, wordle_nickname_links and wordle_crawl_cursors tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS wordle_results (
					guild_id VARCHAR(20) NOT NULL,
					channel_id VARCHAR(20) NOT NULL,
					message_id VARCHAR(20) NOT NULL,
					posted_at TIMESTAMPTZ NOT NULL,
					content TEXT NOT NULL,
					winners JSONB NOT NULL DEFAULT '[]'::jsonb,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (guild_id, channel_id, message_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create wordle_results table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS wordle_nickname_links (
					guild_id VARCHAR(20) NOT NULL,
					nickname TEXT NOT NULL,
					user_id VARCHAR(20) NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (guild_id, nickname)
				);
				CREATE INDEX IF NOT EXISTS idx_wordle_nickname_links_user ON wordle_nickname_links(guild_id, user_id);
			`); err != nil {
				return fmt.Errorf("failed to create wordle_nickname_links table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS wordle_crawl_cursors (
					guild_id VARCHAR(20) NOT NULL,
					channel_id VARCHAR(20) NOT NULL,
					last_message_id VARCHAR(20) NOT NULL,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (guild_id, channel_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create wordle_crawl_cursors table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping wordle tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{"wordle_crawl_cursors", "wordle_nickname_links", "wordle_results"} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+";"); err != nil {
					return fmt.Errorf("failed to drop %s: %w", table, err)
				}
			}
			return nil
		})
	})
}
