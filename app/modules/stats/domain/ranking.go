package statsdomain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultFailScore is credited for an X/6 result.
	DefaultFailScore = 7
	// MaxMessageLength is the character budget of a rendered reply.
	MaxMessageLength = 2000
)

// PlayerStats holds the aggregate of one player across a channel's results.
type PlayerStats struct {
	// Key is a user id, or the raw nickname when IsNickname is set.
	Key        string
	IsNickname bool
	Sum        int
	Count      int
	FailCount  int
}

// Average is the mean score. Count is never zero for an aggregated player.
func (p PlayerStats) Average() float64 {
	if p.Count == 0 {
		return 0
	}
	return float64(p.Sum) / float64(p.Count)
}

// Display renders the player as a mention, or as the bare nickname if unlinked.
func (p PlayerStats) Display() string {
	if p.IsNickname {
		return p.Key
	}
	return "<@" + p.Key + ">"
}

// Summary is the ranked aggregate over a set of results.
type Summary struct {
	Games     int
	FailScore int
	Players   []PlayerStats
}

type playerKey struct {
	key        string
	isNickname bool
}

// Aggregate accumulates per-player statistics and ranks them by ascending average.
// Unresolved winners go through links; a nickname without a link stands in for
// the player itself. Equal averages are ordered by key, user ids before nicknames.
func Aggregate(results []ResultRecord, links map[string]string, failScore int) Summary {
	byPlayer := make(map[playerKey]*PlayerStats)
	for _, r := range results {
		for _, w := range r.Winners {
			k := resolveKey(w, links)
			ps, ok := byPlayer[k]
			if !ok {
				ps = &PlayerStats{Key: k.key, IsNickname: k.isNickname}
				byPlayer[k] = ps
			}
			score := w.EntryScore()
			ps.Sum += score.Value(failScore)
			ps.Count++
			if score.Failed() {
				ps.FailCount++
			}
		}
	}

	players := make([]PlayerStats, 0, len(byPlayer))
	for _, ps := range byPlayer {
		players = append(players, *ps)
	}
	sort.Slice(players, func(i, j int) bool {
		ai, aj := players[i].Average(), players[j].Average()
		if ai != aj {
			return ai < aj
		}
		if players[i].Key != players[j].Key {
			return players[i].Key < players[j].Key
		}
		return !players[i].IsNickname && players[j].IsNickname
	})

	return Summary{Games: len(results), FailScore: failScore, Players: players}
}

func resolveKey(w WinnerEntry, links map[string]string) playerKey {
	switch e := w.(type) {
	case ResolvedWinner:
		return playerKey{key: e.UserID}
	case UnresolvedWinner:
		if id, ok := links[e.Nickname]; ok && id != "" {
			return playerKey{key: id}
		}
		return playerKey{key: e.Nickname, isNickname: true}
	}
	panic(fmt.Sprintf("unknown winner entry %T", w))
}

// Render produces the reply text: header, one line per ranked player, and a
// trailer naming nicknames that still need a manual link.
func (s Summary) Render(unresolved []string) string {
	lines := make([]string, 0, len(s.Players)+2)
	lines = append(lines, fmt.Sprintf("Stats for %d games (fails score as %d):", s.Games, s.FailScore))
	for i, p := range s.Players {
		lines = append(lines, fmt.Sprintf("#%d: %s - Average Score: %.3f (%d games, %d fails)",
			i+1, p.Display(), p.Average(), p.Count, p.FailCount))
	}
	if len(unresolved) > 0 {
		lines = append(lines, fmt.Sprintf("These nicknames need to be manually matched: %s.", QuoteList(unresolved)))
	}
	return TruncateLines(lines, MaxMessageLength)
}

// QuoteList formats names as a comma separated list of inline code spans.
func QuoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}

// TruncateLines joins lines with newlines, dropping whole lines from the end
// until the result is at most limit characters.
func TruncateLines(lines []string, limit int) string {
	total := 0
	for i, l := range lines {
		if i > 0 {
			total++
		}
		total += utf8.RuneCountInString(l)
	}

	n := len(lines)
	for n > 0 && total > limit {
		n--
		total -= utf8.RuneCountInString(lines[n])
		if n > 0 {
			total--
		}
	}
	return strings.Join(lines[:n], "\n")
}
