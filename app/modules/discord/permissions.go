package discord

import "github.com/bwmarrin/discordgo"

// ModeratorPermissions grants access to nickname management.
const ModeratorPermissions int64 = discordgo.PermissionAdministrator |
	discordgo.PermissionManageChannels |
	discordgo.PermissionKickMembers |
	discordgo.PermissionVoiceMoveMembers

// IsModerator reports whether member holds any moderator permission or is the owner.
func IsModerator(member *discordgo.Member, ownerID string) bool {
	if member == nil {
		return false
	}
	if ownerID != "" && member.User != nil && member.User.ID == ownerID {
		return true
	}
	return member.Permissions&ModeratorPermissions != 0
}
