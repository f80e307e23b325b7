package statsdb

import (
	"time"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/uptrace/bun"
)

// Result is a stored results announcement.
type Result struct {
	bun.BaseModel `bun:"table:wordle_results,alias:wr"`

	GuildID   string         `bun:"guild_id,pk"`
	ChannelID string         `bun:"channel_id,pk"`
	MessageID string         `bun:"message_id,pk"`
	PostedAt  time.Time      `bun:"posted_at,notnull"`
	Content   string         `bun:"content,notnull"`
	Winners   []StoredWinner `bun:"winners,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// StoredWinner is the jsonb shape of a winner entry. Exactly one of UserID and
// Nickname is set.
type StoredWinner struct {
	UserID   string            `json:"user_id,omitempty"`
	Nickname string            `json:"nickname,omitempty"`
	Score    statsdomain.Score `json:"score"`
}

// NicknameLink maps a guild nickname to a user id.
type NicknameLink struct {
	bun.BaseModel `bun:"table:wordle_nickname_links,alias:nl"`

	GuildID   string    `bun:"guild_id,pk"`
	Nickname  string    `bun:"nickname,pk"`
	UserID    string    `bun:"user_id,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// CrawlCursor is the highest processed message id of a channel.
type CrawlCursor struct {
	bun.BaseModel `bun:"table:wordle_crawl_cursors,alias:cc"`

	GuildID       string    `bun:"guild_id,pk"`
	ChannelID     string    `bun:"channel_id,pk"`
	LastMessageID string    `bun:"last_message_id,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func toStoredWinners(entries []statsdomain.WinnerEntry) []StoredWinner {
	out := make([]StoredWinner, 0, len(entries))
	for _, e := range entries {
		switch w := e.(type) {
		case statsdomain.ResolvedWinner:
			out = append(out, StoredWinner{UserID: w.UserID, Score: w.Score})
		case statsdomain.UnresolvedWinner:
			out = append(out, StoredWinner{Nickname: w.Nickname, Score: w.Score})
		}
	}
	return out
}

func fromStoredWinners(stored []StoredWinner) []statsdomain.WinnerEntry {
	out := make([]statsdomain.WinnerEntry, 0, len(stored))
	for _, s := range stored {
		if s.UserID != "" {
			out = append(out, statsdomain.ResolvedWinner{UserID: s.UserID, Score: s.Score})
			continue
		}
		out = append(out, statsdomain.UnresolvedWinner{Nickname: s.Nickname, Score: s.Score})
	}
	return out
}

// NewResultModel converts a domain record into its table row.
func NewResultModel(r statsdomain.ResultRecord) Result {
	return Result{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		PostedAt:  r.Timestamp.UTC(),
		Content:   r.Content,
		Winners:   toStoredWinners(r.Winners),
	}
}

// ToDomain converts a row back into a domain record.
func (r Result) ToDomain() statsdomain.ResultRecord {
	return statsdomain.ResultRecord{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Timestamp: r.PostedAt,
		Content:   r.Content,
		Winners:   fromStoredWinners(r.Winners),
	}
}
