// Package statsdiscord adapts a Discord session to the stats service ports.
package statsdiscord

import (
	"context"
	"fmt"
	"sort"

	statsservice "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/application"
	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// MessageAPI is the part of *discordgo.Session the message source uses.
type MessageAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// MessageSource pages through channel history, one paced request per page.
type MessageSource struct {
	api     MessageAPI
	limiter *rate.Limiter
}

// NewMessageSource paces requests with limiter. A nil limiter means no pacing.
func NewMessageSource(api MessageAPI, limiter *rate.Limiter) *MessageSource {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &MessageSource{api: api, limiter: limiter}
}

// FetchPage implements statsservice.MessageSource.
func (s *MessageSource) FetchPage(ctx context.Context, channelID string, anchor statsservice.Anchor, limit int) ([]statsservice.Message, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	raw, err := s.api.ChannelMessages(channelID, limit, anchor.Before, anchor.After, "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages of channel %s: %w", channelID, err)
	}

	page := make([]statsservice.Message, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		page = append(page, toMessage(m))
	}

	// Discord returns newest first in both directions.
	ascending := anchor.After != ""
	sort.SliceStable(page, func(i, j int) bool {
		c := statsdomain.CompareMessageIDs(page[i].ID, page[j].ID)
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return page, nil
}

func toMessage(m *discordgo.Message) statsservice.Message {
	out := statsservice.Message{
		ID:        m.ID,
		CreatedAt: m.Timestamp,
		Content:   m.Content,
	}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
	}
	return out
}

var _ statsservice.MessageSource = (*MessageSource)(nil)
