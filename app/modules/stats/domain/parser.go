package statsdomain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	lineBreak        = regexp.MustCompile(`\r?\n`)
	scoreLinePattern = regexp.MustCompile(`^(?:\s*👑\s*)?(\d+|X)/6:\s*(.+)$`)
	mentionPattern   = regexp.MustCompile(`<@!?(\d+)>`)
	nicknamePattern  = regexp.MustCompile(`@([^@]+)`)
)

// ParseWinners extracts the winners from a results announcement.
//
// Lines look like "👑 3/6: <@123> @Some Name" or "X/6: @Alice @Bob". Lines that
// do not match are skipped, so the function never fails.
func ParseWinners(content string) []WinnerEntry {
	var winners []WinnerEntry
	for _, line := range lineBreak.Split(content, -1) {
		winners = append(winners, parseScoreLine(line)...)
	}
	return winners
}

func parseScoreLine(line string) []WinnerEntry {
	m := scoreLinePattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	score := FailedScore
	if m[1] != "X" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		score = Score(n)
	}

	players := m[2]
	var entries []WinnerEntry

	seen := make(map[string]struct{})
	for _, mention := range mentionPattern.FindAllStringSubmatch(players, -1) {
		id := mention[1]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		entries = append(entries, ResolvedWinner{UserID: id, Score: score})
	}

	remaining := strings.TrimSpace(mentionPattern.ReplaceAllString(players, ""))
	for _, nick := range nicknamePattern.FindAllStringSubmatch(remaining, -1) {
		name := strings.TrimSpace(nick[1])
		if name == "" {
			continue
		}
		entries = append(entries, UnresolvedWinner{Nickname: name, Score: score})
	}

	return entries
}

// IsResultsAnnouncement reports whether a message is a results post from the results bot.
func IsResultsAnnouncement(authorID, content, resultsBotID string) bool {
	return authorID == resultsBotID && strings.Contains(content, ResultsMarker)
}

// ResultsMarker is the phrase every daily results announcement contains.
const ResultsMarker = "Here are yesterday's results"

// DefaultResultsBotID is the user id of the Wordle app that posts the daily results.
const DefaultResultsBotID = "1211781489931452447"
