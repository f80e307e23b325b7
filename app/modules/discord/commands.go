// Package discord is the gateway between Discord interactions and the event bus.
package discord

import "github.com/bwmarrin/discordgo"

// Command and option names.
const (
	CommandStats    = "stats"
	CommandNickname = "nickname"

	OptionChannel     = "wordle-channel"
	OptionIgnoreCache = "ignore-cache"
	OptionHistoryDays = "history-days"
	OptionSince       = "since"
	OptionChart       = "chart"

	SubcommandAdd    = "add"
	SubcommandRemove = "remove"
	SubcommandList   = "list"

	OptionUser     = "user"
	OptionNickname = "nickname"
)

// CommandDefinitions returns the slash commands the bot registers.
func CommandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandStats,
			Description: "Get Wordle stats",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         OptionChannel,
					Description:  "Your Wordle text channel. The default is this channel.",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        OptionIgnoreCache,
					Description: "If true, forces reprocessing of all messages in the channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptionHistoryDays,
					Description: "Number of days back the message history should be read. Defaults to read until 2025-05-01.",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptionSince,
					Description: "Read history since a time like \"2 weeks ago\" or \"last monday\"",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        OptionChart,
					Description: "Attach a chart of the averages",
				},
			},
		},
		{
			Name:        CommandNickname,
			Description: "Manage nickname mappings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandAdd,
					Description: "Link a past nickname to a user",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        OptionUser,
							Description: "The user to link the nickname to",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        OptionNickname,
							Description: "The nickname to link to the user",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandRemove,
					Description: "Remove a linked nickname",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        OptionNickname,
							Description: "The nickname to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubcommandList,
					Description: "List all nicknames",
				},
			},
		},
	}
}
