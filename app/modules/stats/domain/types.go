package statsdomain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Score is the number of attempts a player used. FailedScore marks an X/6 result.
type Score int

// FailedScore is the sentinel for a failed game.
const FailedScore Score = -1

// Failed reports whether the score is the failure sentinel.
func (s Score) Failed() bool {
	return s == FailedScore
}

func (s Score) String() string {
	if s.Failed() {
		return "X"
	}
	return strconv.Itoa(int(s))
}

// Value returns the numeric contribution of the score, substituting failScore for a failure.
func (s Score) Value(failScore int) int {
	if s.Failed() {
		return failScore
	}
	return int(s)
}

// MarshalJSON encodes failures as "X" and attempts as a number.
func (s Score) MarshalJSON() ([]byte, error) {
	if s.Failed() {
		return []byte(`"X"`), nil
	}
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalJSON accepts either a number or the string "X".
func (s *Score) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString != "X" {
			return fmt.Errorf("invalid score %q", asString)
		}
		*s = FailedScore
		return nil
	}
	var asInt int
	if err := json.Unmarshal(data, &asInt); err != nil {
		return fmt.Errorf("invalid score %s: %w", string(data), err)
	}
	*s = Score(asInt)
	return nil
}

// WinnerEntry is one player's result extracted from an announcement.
// It is either a ResolvedWinner or an UnresolvedWinner.
type WinnerEntry interface {
	EntryScore() Score
	isWinnerEntry()
}

// ResolvedWinner references a platform user by id.
type ResolvedWinner struct {
	UserID string
	Score  Score
}

// UnresolvedWinner references a player only by the free-text name the results bot printed.
type UnresolvedWinner struct {
	Nickname string
	Score    Score
}

func (w ResolvedWinner) EntryScore() Score   { return w.Score }
func (w UnresolvedWinner) EntryScore() Score { return w.Score }

func (ResolvedWinner) isWinnerEntry()   {}
func (UnresolvedWinner) isWinnerEntry() {}

// ResultRecord is one parsed results announcement.
type ResultRecord struct {
	GuildID   string
	ChannelID string
	MessageID string
	Timestamp time.Time
	Content   string
	Winners   []WinnerEntry
}

// NicknameLink maps a free-text nickname to a user within a guild.
type NicknameLink struct {
	Nickname string
	UserID   string
}

// Nicknames returns the distinct nicknames of unresolved entries across results, in first-seen order.
func Nicknames(results []ResultRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range results {
		for _, w := range r.Winners {
			u, ok := w.(UnresolvedWinner)
			if !ok {
				continue
			}
			if _, dup := seen[u.Nickname]; dup {
				continue
			}
			seen[u.Nickname] = struct{}{}
			out = append(out, u.Nickname)
		}
	}
	return out
}

// CompareMessageIDs orders decimal snowflake ids numerically without parsing them.
func CompareMessageIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// MaxMessageID returns the larger of two ids. An empty id is smaller than any other.
func MaxMessageID(a, b string) string {
	if CompareMessageIDs(a, b) >= 0 {
		return a
	}
	return b
}
