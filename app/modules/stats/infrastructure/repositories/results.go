package statsdb

import (
	"context"
	"fmt"
	"time"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/uptrace/bun"
)

// UpsertResults writes a page of results in one statement.
func (r *Impl) UpsertResults(ctx context.Context, db bun.IDB, results []statsdomain.ResultRecord) error {
	if len(results) == 0 {
		return nil
	}
	db = r.resolveDB(db)

	rows := make([]Result, len(results))
	for i, res := range results {
		rows[i] = NewResultModel(res)
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (guild_id, channel_id, message_id) DO UPDATE").
		Set("posted_at = EXCLUDED.posted_at").
		Set("content = EXCLUDED.content").
		Set("winners = EXCLUDED.winners").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert %d results: %w", len(rows), err)
	}
	return nil
}

// GetResults returns a channel's results ordered by message id.
func (r *Impl) GetResults(ctx context.Context, db bun.IDB, guildID, channelID string) ([]statsdomain.ResultRecord, error) {
	db = r.resolveDB(db)

	var rows []Result
	err := db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		Where("channel_id = ?", channelID).
		OrderExpr("length(message_id) ASC, message_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}

	out := make([]statsdomain.ResultRecord, len(rows))
	for i, row := range rows {
		out[i] = row.ToDomain()
	}
	return out, nil
}

// GetLastProcessedMessageID returns the stored cursor of a channel.
func (r *Impl) GetLastProcessedMessageID(ctx context.Context, db bun.IDB, guildID, channelID string) (string, error) {
	db = r.resolveDB(db)

	cursor := new(CrawlCursor)
	err := db.NewSelect().
		Model(cursor).
		Where("guild_id = ?", guildID).
		Where("channel_id = ?", channelID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get crawl cursor: %w", err)
	}
	return cursor.LastMessageID, nil
}

// SetLastProcessedMessageID upserts the cursor of a channel.
func (r *Impl) SetLastProcessedMessageID(ctx context.Context, db bun.IDB, guildID, channelID, messageID string) error {
	db = r.resolveDB(db)

	cursor := &CrawlCursor{
		GuildID:       guildID,
		ChannelID:     channelID,
		LastMessageID: messageID,
		UpdatedAt:     time.Now().UTC(),
	}
	_, err := db.NewInsert().
		Model(cursor).
		On("CONFLICT (guild_id, channel_id) DO UPDATE").
		Set("last_message_id = EXCLUDED.last_message_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set crawl cursor: %w", err)
	}
	return nil
}
