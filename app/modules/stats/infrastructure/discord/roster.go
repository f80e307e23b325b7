package statsdiscord

import (
	"context"
	"errors"
	"fmt"

	statsservice "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/application"
	"github.com/bwmarrin/discordgo"
)

// MemberSearchAPI is the part of *discordgo.Session the roster uses.
type MemberSearchAPI interface {
	GuildMembersSearch(guildID, query string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
}

// Roster reads guild members from the session state cache and the member search endpoint.
type Roster struct {
	state *discordgo.State
	api   MemberSearchAPI
}

// NewRoster creates a Roster. state may be nil when no cache is kept.
func NewRoster(state *discordgo.State, api MemberSearchAPI) *Roster {
	return &Roster{state: state, api: api}
}

// CachedMembers implements statsservice.Roster. An uncached guild has no members.
func (r *Roster) CachedMembers(_ context.Context, guildID string) ([]statsservice.Member, error) {
	if r.state == nil {
		return nil, nil
	}

	guild, err := r.state.Guild(guildID)
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read guild %s from state: %w", guildID, err)
	}

	r.state.RLock()
	members := append([]*discordgo.Member(nil), guild.Members...)
	r.state.RUnlock()
	return toMembers(members), nil
}

// QueryByName implements statsservice.Roster.
func (r *Roster) QueryByName(ctx context.Context, guildID, name string, limit int) ([]statsservice.Member, error) {
	found, err := r.api.GuildMembersSearch(guildID, name, limit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to search members of guild %s: %w", guildID, err)
	}
	return toMembers(found), nil
}

func toMembers(members []*discordgo.Member) []statsservice.Member {
	out := make([]statsservice.Member, 0, len(members))
	for _, m := range members {
		if m == nil || m.User == nil {
			continue
		}
		display := m.User.GlobalName
		if display == "" {
			display = m.User.Username
		}
		out = append(out, statsservice.Member{
			ID:          m.User.ID,
			Nickname:    m.Nick,
			DisplayName: display,
		})
	}
	return out
}

var _ statsservice.Roster = (*Roster)(nil)
