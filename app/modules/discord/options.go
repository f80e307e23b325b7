package discord

import (
	"strings"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	"github.com/bwmarrin/discordgo"
)

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

// parseStatsOptions fills a stats request from the command options. The
// channel defaults to the one the command was used in.
func parseStatsOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, invokedIn string) wordleevents.StatsRequestedPayloadV1 {
	m := optionMap(opts)
	req := wordleevents.StatsRequestedPayloadV1{ChannelID: invokedIn}

	if o, ok := m[OptionChannel]; ok {
		if ch := o.ChannelValue(nil); ch != nil && ch.ID != "" {
			req.ChannelID = ch.ID
		}
	}
	if o, ok := m[OptionIgnoreCache]; ok {
		req.IgnoreCache = o.BoolValue()
	}
	if o, ok := m[OptionHistoryDays]; ok {
		days := int(o.IntValue())
		req.HistoryDays = &days
	}
	if o, ok := m[OptionSince]; ok {
		req.Since = strings.TrimSpace(o.StringValue())
	}
	if o, ok := m[OptionChart]; ok {
		req.Chart = o.BoolValue()
	}
	return req
}

type nicknameCommand struct {
	subcommand string
	nickname   string
	userID     string
}

func parseNicknameOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) (nicknameCommand, bool) {
	if len(opts) == 0 || opts[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return nicknameCommand{}, false
	}
	sub := opts[0]
	m := optionMap(sub.Options)

	cmd := nicknameCommand{subcommand: sub.Name}
	if o, ok := m[OptionNickname]; ok {
		cmd.nickname = o.StringValue()
	}
	if o, ok := m[OptionUser]; ok {
		if u := o.UserValue(nil); u != nil {
			cmd.userID = u.ID
		}
	}

	switch cmd.subcommand {
	case SubcommandAdd:
		return cmd, cmd.userID != ""
	case SubcommandRemove, SubcommandList:
		return cmd, true
	}
	return nicknameCommand{}, false
}
