package statsservice

import (
	"time"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
)

// Anchor bounds a history page. At most one field is set; neither means "latest".
type Anchor struct {
	Before string
	After  string
}

// Message is the subset of a chat message the crawler needs.
type Message struct {
	ID        string
	AuthorID  string
	CreatedAt time.Time
	Content   string
}

// Member is a guild member as seen by the roster.
type Member struct {
	ID          string
	Nickname    string
	DisplayName string
}

// Crawl directions.
const (
	DirectionForward  = "forward"
	DirectionBackward = "backward"
)

// IngestRequest selects the channel and the history window to crawl.
type IngestRequest struct {
	GuildID      string
	ChannelID    string
	MinTimestamp time.Time
	IgnoreCache  bool
}

// IngestResult describes one crawl.
type IngestResult struct {
	Processed     int
	Pages         int
	Direction     string
	LastMessageID string
}

// StatsRequest is a /stats invocation after option parsing.
type StatsRequest struct {
	GuildID     string
	ChannelID   string
	IgnoreCache bool
	HistoryDays *int
	Since       string
	Chart       bool
	// Now anchors relative history windows. Zero means time.Now().
	Now time.Time
}

// StatsReport is the outcome of GenerateStats.
type StatsReport struct {
	Content    string
	Summary    statsdomain.Summary
	Unresolved []string
	Ingest     IngestResult
	Chart      []byte
}

// Config holds the tunables of the stats service.
type Config struct {
	ResultsBotID        string
	FailScore           int
	DefaultHistoryFloor time.Time
	PageSize            int
}

// DefaultPageSize is the largest page the message source returns.
const DefaultPageSize = 100

// DefaultHistoryFloor is where a backward crawl stops when no window is given.
var DefaultHistoryFloor = time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

func (c Config) withDefaults() Config {
	if c.ResultsBotID == "" {
		c.ResultsBotID = statsdomain.DefaultResultsBotID
	}
	if c.FailScore == 0 {
		c.FailScore = statsdomain.DefaultFailScore
	}
	if c.DefaultHistoryFloor.IsZero() {
		c.DefaultHistoryFloor = DefaultHistoryFloor
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	return c
}
