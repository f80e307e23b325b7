// Package wordleevents defines the topics and payloads exchanged between the
// Discord gateway and the stats module.
package wordleevents

import "time"

const (
	// StatsRequestedV1 asks the stats module to crawl a channel and reply with its leaderboard.
	StatsRequestedV1 = "wordle.stats.requested.v1"
	// NicknameAddRequestedV1 links a nickname to a user.
	NicknameAddRequestedV1 = "wordle.nickname.add.requested.v1"
	// NicknameRemoveRequestedV1 removes a nickname link.
	NicknameRemoveRequestedV1 = "wordle.nickname.remove.requested.v1"
	// NicknameListRequestedV1 lists all links of a guild.
	NicknameListRequestedV1 = "wordle.nickname.list.requested.v1"
	// ReplyV1 carries the text that answers one of the requests above.
	ReplyV1 = "wordle.reply.v1"
)

// ReplyTarget identifies the deferred interaction response to edit.
type ReplyTarget struct {
	ApplicationID string `json:"application_id"`
	Token         string `json:"token"`
}

// StatsRequestedPayloadV1 is published for every /stats invocation.
type StatsRequestedPayloadV1 struct {
	RequestID   string      `json:"request_id"`
	GuildID     string      `json:"guild_id"`
	ChannelID   string      `json:"channel_id"`
	IgnoreCache bool        `json:"ignore_cache"`
	HistoryDays *int        `json:"history_days,omitempty"`
	Since       string      `json:"since,omitempty"`
	Chart       bool        `json:"chart"`
	RequestedAt time.Time   `json:"requested_at"`
	Reply       ReplyTarget `json:"reply"`
}

// NicknameAddRequestedPayloadV1 is published by /nickname add.
type NicknameAddRequestedPayloadV1 struct {
	RequestID string      `json:"request_id"`
	GuildID   string      `json:"guild_id"`
	Nickname  string      `json:"nickname"`
	UserID    string      `json:"user_id"`
	Reply     ReplyTarget `json:"reply"`
}

// NicknameRemoveRequestedPayloadV1 is published by /nickname remove.
type NicknameRemoveRequestedPayloadV1 struct {
	RequestID string      `json:"request_id"`
	GuildID   string      `json:"guild_id"`
	Nickname  string      `json:"nickname"`
	Reply     ReplyTarget `json:"reply"`
}

// NicknameListRequestedPayloadV1 is published by /nickname list.
type NicknameListRequestedPayloadV1 struct {
	RequestID string      `json:"request_id"`
	GuildID   string      `json:"guild_id"`
	Reply     ReplyTarget `json:"reply"`
}

// AttachmentV1 is a file sent along with a reply.
type AttachmentV1 struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// ReplyPayloadV1 answers exactly one request.
type ReplyPayloadV1 struct {
	RequestID  string        `json:"request_id"`
	Reply      ReplyTarget   `json:"reply"`
	Content    string        `json:"content"`
	Attachment *AttachmentV1 `json:"attachment,omitempty"`
}
