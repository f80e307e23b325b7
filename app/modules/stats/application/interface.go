package statsservice

import (
	"context"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
)

// Service is the stats module's application API.
type Service interface {
	// IngestChannel crawls a channel's history and stores new results announcements.
	IngestChannel(ctx context.Context, req IngestRequest) (IngestResult, error)

	// ReconcileNicknames links nicknames found in records to guild members where
	// possible and returns the ones that could not be matched.
	ReconcileNicknames(ctx context.Context, guildID string, records []statsdomain.ResultRecord) ([]string, error)

	// GenerateStats runs ingestion, reconciliation and aggregation for a channel.
	GenerateStats(ctx context.Context, req StatsRequest) (*StatsReport, error)

	// AddNickname links a nickname to a user, replacing an existing link.
	AddNickname(ctx context.Context, guildID, nickname, userID string) error

	// RemoveNickname deletes a link and reports whether it existed.
	RemoveNickname(ctx context.Context, guildID, nickname string) (bool, error)

	// ListNicknames returns every link of a guild.
	ListNicknames(ctx context.Context, guildID string) ([]statsdomain.NicknameLink, error)
}

// MessageSource reads a channel's message history one page at a time.
type MessageSource interface {
	// FetchPage returns up to limit messages next to the anchor. Pages anchored
	// Before are newest first; pages anchored After are oldest first. A page
	// shorter than limit means the history is exhausted in that direction.
	FetchPage(ctx context.Context, channelID string, anchor Anchor, limit int) ([]Message, error)
}

// Roster looks up guild members by name.
type Roster interface {
	// CachedMembers returns the members already known locally, without a remote call.
	CachedMembers(ctx context.Context, guildID string) ([]Member, error)
	// QueryByName asks the platform for members whose name starts with name.
	QueryByName(ctx context.Context, guildID, name string, limit int) ([]Member, error)
}
