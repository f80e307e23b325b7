package statsdb

import (
	"context"
	"fmt"
	"time"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/uptrace/bun"
)

// GetNicknameLinks looks up many nicknames in one query.
func (r *Impl) GetNicknameLinks(ctx context.Context, db bun.IDB, guildID string, nicknames []string) (map[string]string, error) {
	links := make(map[string]string, len(nicknames))
	if len(nicknames) == 0 {
		return links, nil
	}
	db = r.resolveDB(db)

	var rows []NicknameLink
	err := db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		Where("nickname IN (?)", bun.In(nicknames)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get nickname links: %w", err)
	}

	for _, row := range rows {
		links[row.Nickname] = row.UserID
	}
	return links, nil
}

// ListNicknameLinks returns every link of a guild.
func (r *Impl) ListNicknameLinks(ctx context.Context, db bun.IDB, guildID string) ([]statsdomain.NicknameLink, error) {
	db = r.resolveDB(db)

	var rows []NicknameLink
	err := db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		Order("user_id ASC", "nickname ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list nickname links: %w", err)
	}

	out := make([]statsdomain.NicknameLink, len(rows))
	for i, row := range rows {
		out[i] = statsdomain.NicknameLink{Nickname: row.Nickname, UserID: row.UserID}
	}
	return out, nil
}

// UpsertNicknameLinks writes links in one statement.
func (r *Impl) UpsertNicknameLinks(ctx context.Context, db bun.IDB, guildID string, links []statsdomain.NicknameLink) error {
	if len(links) == 0 {
		return nil
	}
	db = r.resolveDB(db)

	// A nickname may appear only once per statement for ON CONFLICT to accept it.
	now := time.Now().UTC()
	index := make(map[string]int, len(links))
	rows := make([]NicknameLink, 0, len(links))
	for _, l := range links {
		row := NicknameLink{GuildID: guildID, Nickname: l.Nickname, UserID: l.UserID, UpdatedAt: now}
		if i, ok := index[l.Nickname]; ok {
			rows[i] = row
			continue
		}
		index[l.Nickname] = len(rows)
		rows = append(rows, row)
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (guild_id, nickname) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert nickname links: %w", err)
	}
	return nil
}

// RemoveNicknameLink deletes a single link.
func (r *Impl) RemoveNicknameLink(ctx context.Context, db bun.IDB, guildID, nickname string) (bool, error) {
	db = r.resolveDB(db)

	res, err := db.NewDelete().
		Model((*NicknameLink)(nil)).
		Where("guild_id = ?", guildID).
		Where("nickname = ?", nickname).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to remove nickname link: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
