package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func channelOpt(id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: OptionChannel, Type: discordgo.ApplicationCommandOptionChannel, Value: id}
}

func boolOpt(name string, v bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionBoolean, Value: v}
}

func intOpt(name string, v int) *discordgo.ApplicationCommandInteractionDataOption {
	// JSON numbers arrive as float64.
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(v)}
}

func stringOpt(name, v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func userOpt(id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: OptionUser, Type: discordgo.ApplicationCommandOptionUser, Value: id}
}

func subcommand(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionSubCommand, Options: opts}
}

func TestParseStatsOptions(t *testing.T) {
	t.Run("defaults to invoking channel", func(t *testing.T) {
		req := parseStatsOptions(nil, "chan-1")
		assert.Equal(t, "chan-1", req.ChannelID)
		assert.False(t, req.IgnoreCache)
		assert.Nil(t, req.HistoryDays)
		assert.Empty(t, req.Since)
		assert.False(t, req.Chart)
	})

	t.Run("all options", func(t *testing.T) {
		req := parseStatsOptions([]*discordgo.ApplicationCommandInteractionDataOption{
			channelOpt("chan-2"),
			boolOpt(OptionIgnoreCache, true),
			intOpt(OptionHistoryDays, 14),
			stringOpt(OptionSince, "  last monday "),
			boolOpt(OptionChart, true),
		}, "chan-1")

		assert.Equal(t, "chan-2", req.ChannelID)
		assert.True(t, req.IgnoreCache)
		if assert.NotNil(t, req.HistoryDays) {
			assert.Equal(t, 14, *req.HistoryDays)
		}
		assert.Equal(t, "last monday", req.Since)
		assert.True(t, req.Chart)
	})

	t.Run("zero history days is kept", func(t *testing.T) {
		req := parseStatsOptions([]*discordgo.ApplicationCommandInteractionDataOption{intOpt(OptionHistoryDays, 0)}, "c")
		if assert.NotNil(t, req.HistoryDays) {
			assert.Equal(t, 0, *req.HistoryDays)
		}
	})
}

func TestParseNicknameOptions(t *testing.T) {
	tests := []struct {
		name   string
		opts   []*discordgo.ApplicationCommandInteractionDataOption
		want   nicknameCommand
		wantOK bool
	}{
		{
			name:   "add",
			opts:   []*discordgo.ApplicationCommandInteractionDataOption{subcommand(SubcommandAdd, userOpt("42"), stringOpt(OptionNickname, "Ally"))},
			want:   nicknameCommand{subcommand: SubcommandAdd, nickname: "Ally", userID: "42"},
			wantOK: true,
		},
		{
			name:   "add without user",
			opts:   []*discordgo.ApplicationCommandInteractionDataOption{subcommand(SubcommandAdd, stringOpt(OptionNickname, "Ally"))},
			wantOK: false,
		},
		{
			name:   "remove",
			opts:   []*discordgo.ApplicationCommandInteractionDataOption{subcommand(SubcommandRemove, stringOpt(OptionNickname, "Bo"))},
			want:   nicknameCommand{subcommand: SubcommandRemove, nickname: "Bo"},
			wantOK: true,
		},
		{
			name:   "list",
			opts:   []*discordgo.ApplicationCommandInteractionDataOption{subcommand(SubcommandList)},
			want:   nicknameCommand{subcommand: SubcommandList},
			wantOK: true,
		},
		{
			name:   "unknown subcommand",
			opts:   []*discordgo.ApplicationCommandInteractionDataOption{subcommand("rename")},
			wantOK: false,
		},
		{
			name:   "no subcommand",
			opts:   []*discordgo.ApplicationCommandInteractionDataOption{stringOpt(OptionNickname, "Bo")},
			wantOK: false,
		},
		{
			name:   "empty",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseNicknameOptions(tt.opts)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIsModerator(t *testing.T) {
	tests := []struct {
		name   string
		member *discordgo.Member
		want   bool
	}{
		{"nil member", nil, false},
		{"no permissions", &discordgo.Member{User: &discordgo.User{ID: "1"}}, false},
		{"administrator", &discordgo.Member{User: &discordgo.User{ID: "1"}, Permissions: discordgo.PermissionAdministrator}, true},
		{"manage channels", &discordgo.Member{User: &discordgo.User{ID: "1"}, Permissions: discordgo.PermissionManageChannels}, true},
		{"kick members", &discordgo.Member{User: &discordgo.User{ID: "1"}, Permissions: discordgo.PermissionKickMembers}, true},
		{"move members", &discordgo.Member{User: &discordgo.User{ID: "1"}, Permissions: discordgo.PermissionVoiceMoveMembers}, true},
		{"unrelated permission", &discordgo.Member{User: &discordgo.User{ID: "1"}, Permissions: discordgo.PermissionSendMessages}, false},
		{"owner", &discordgo.Member{User: &discordgo.User{ID: "owner"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsModerator(tt.member, "owner"))
		})
	}
}
