package statsdomain

import (
	"sort"
	"strings"
)

// EmptyNicknameList is shown when a guild has no links.
const EmptyNicknameList = "No nicknames stored for this guild."

// RenderNicknameList groups links by user, one line per user:
//
//	<@123>: `alice`, `al`
//
// Users are ordered by id and each user's nicknames alphabetically.
func RenderNicknameList(links []NicknameLink) string {
	if len(links) == 0 {
		return EmptyNicknameList
	}

	byUser := make(map[string][]string)
	for _, l := range links {
		byUser[l.UserID] = append(byUser[l.UserID], l.Nickname)
	}

	users := make([]string, 0, len(byUser))
	for id := range byUser {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool {
		return CompareMessageIDs(users[i], users[j]) < 0
	})

	lines := make([]string, 0, len(users))
	for _, id := range users {
		names := byUser[id]
		sort.Strings(names)
		var b strings.Builder
		b.WriteString("<@")
		b.WriteString(id)
		b.WriteString(">: ")
		b.WriteString(QuoteList(names))
		lines = append(lines, b.String())
	}
	return TruncateLines(lines, MaxMessageLength)
}
