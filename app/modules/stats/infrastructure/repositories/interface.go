package statsdb

import (
	"context"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for results, nickname links and crawl cursors.
type Repository interface {
	// UpsertResults writes results keyed by (guild, channel, message). Re-writing a
	// record replaces it with the same data, so repeated ingestion is a no-op.
	UpsertResults(ctx context.Context, db bun.IDB, results []statsdomain.ResultRecord) error

	// GetResults returns every stored result of a channel, oldest message first.
	GetResults(ctx context.Context, db bun.IDB, guildID, channelID string) ([]statsdomain.ResultRecord, error)

	// GetLastProcessedMessageID returns the channel's crawl cursor or ErrNotFound.
	GetLastProcessedMessageID(ctx context.Context, db bun.IDB, guildID, channelID string) (string, error)

	// SetLastProcessedMessageID stores the channel's crawl cursor.
	SetLastProcessedMessageID(ctx context.Context, db bun.IDB, guildID, channelID, messageID string) error

	// GetNicknameLinks returns the links for the given nicknames that exist, keyed by nickname.
	GetNicknameLinks(ctx context.Context, db bun.IDB, guildID string, nicknames []string) (map[string]string, error)

	// ListNicknameLinks returns all links of a guild.
	ListNicknameLinks(ctx context.Context, db bun.IDB, guildID string) ([]statsdomain.NicknameLink, error)

	// UpsertNicknameLinks creates or overwrites links. Last write wins.
	UpsertNicknameLinks(ctx context.Context, db bun.IDB, guildID string, links []statsdomain.NicknameLink) error

	// RemoveNicknameLink deletes a link and reports whether one existed.
	RemoveNicknameLink(ctx context.Context, db bun.IDB, guildID, nickname string) (bool, error)
}
