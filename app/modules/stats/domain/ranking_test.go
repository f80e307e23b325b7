package statsdomain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_SumsFailsAsSubstitute(t *testing.T) {
	results := []ResultRecord{
		{MessageID: "1", Winners: []WinnerEntry{ResolvedWinner{UserID: "10", Score: 2}}},
		{MessageID: "2", Winners: []WinnerEntry{ResolvedWinner{UserID: "10", Score: 4}}},
		{MessageID: "3", Winners: []WinnerEntry{ResolvedWinner{UserID: "10", Score: FailedScore}}},
	}

	summary := Aggregate(results, nil, DefaultFailScore)

	require.Len(t, summary.Players, 1)
	p := summary.Players[0]
	assert.Equal(t, 13, p.Sum)
	assert.Equal(t, 3, p.Count)
	assert.Equal(t, 1, p.FailCount)
	assert.InDelta(t, 13.0/3.0, p.Average(), 1e-9)
	assert.Equal(t, 3, summary.Games)
}

func TestAggregate_ResolvesNicknamesThroughLinks(t *testing.T) {
	results := []ResultRecord{
		{Winners: []WinnerEntry{
			ResolvedWinner{UserID: "10", Score: 3},
			UnresolvedWinner{Nickname: "Ally", Score: 5},
			UnresolvedWinner{Nickname: "Ghost", Score: 1},
		}},
	}

	summary := Aggregate(results, map[string]string{"Ally": "10"}, DefaultFailScore)

	require.Len(t, summary.Players, 2)
	assert.Equal(t, PlayerStats{Key: "Ghost", IsNickname: true, Sum: 1, Count: 1}, summary.Players[0])
	assert.Equal(t, PlayerStats{Key: "10", Sum: 8, Count: 2}, summary.Players[1])
}

func TestAggregate_RankingIsNonDecreasingWithKeyTieBreak(t *testing.T) {
	f := gofakeit.New(42)
	var results []ResultRecord
	for i := 0; i < 60; i++ {
		var winners []WinnerEntry
		for j := 0; j < 4; j++ {
			score := Score(f.IntRange(1, 6))
			if f.Bool() && f.Bool() {
				score = FailedScore
			}
			if f.Bool() {
				winners = append(winners, ResolvedWinner{UserID: f.DigitN(6), Score: score})
			} else {
				winners = append(winners, UnresolvedWinner{Nickname: f.FirstName(), Score: score})
			}
		}
		results = append(results, ResultRecord{Winners: winners})
	}

	summary := Aggregate(results, nil, DefaultFailScore)

	for i := 1; i < len(summary.Players); i++ {
		prev, cur := summary.Players[i-1], summary.Players[i]
		require.LessOrEqual(t, prev.Average(), cur.Average())
		if prev.Average() == cur.Average() {
			require.LessOrEqual(t, prev.Key, cur.Key)
		}
	}
}

func TestSummaryRender(t *testing.T) {
	summary := Summary{
		Games:     4,
		FailScore: 7,
		Players: []PlayerStats{
			{Key: "10", Sum: 7, Count: 2},
			{Key: "Ghost", IsNickname: true, Sum: 13, Count: 3, FailCount: 1},
		},
	}

	got := summary.Render([]string{"Ghost", "Nobody"})

	want := strings.Join([]string{
		"Stats for 4 games (fails score as 7):",
		"#1: <@10> - Average Score: 3.500 (2 games, 0 fails)",
		"#2: Ghost - Average Score: 4.333 (3 games, 1 fails)",
		"These nicknames need to be manually matched: `Ghost`, `Nobody`.",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestSummaryRender_NoTrailerWhenAllResolved(t *testing.T) {
	got := Summary{Games: 0, FailScore: 9}.Render(nil)
	assert.Equal(t, "Stats for 0 games (fails score as 9):", got)
}

func TestTruncateLines(t *testing.T) {
	line := strings.Repeat("a", 99)
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = line
	}

	got := TruncateLines(lines, MaxMessageLength)

	assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxMessageLength)
	for _, l := range strings.Split(got, "\n") {
		assert.Equal(t, line, l, "lines are never cut")
	}
	// 20 lines of 99 chars plus 19 separators is 1999; one more line overflows.
	assert.Len(t, strings.Split(got, "\n"), 20)
}

func TestTruncateLines_CountsCharactersNotBytes(t *testing.T) {
	lines := []string{strings.Repeat("é", 6), strings.Repeat("é", 3)}
	assert.Equal(t, strings.Join(lines, "\n"), TruncateLines(lines, 10))
	assert.Equal(t, lines[0], TruncateLines(lines, 9))
}

func TestRenderNicknameList(t *testing.T) {
	links := []NicknameLink{
		{Nickname: "zed", UserID: "200"},
		{Nickname: "al", UserID: "1000"},
		{Nickname: "alpha", UserID: "200"},
	}

	got := RenderNicknameList(links)

	assert.Equal(t, "<@200>: `alpha`, `zed`\n<@1000>: `al`", got)
	assert.Equal(t, EmptyNicknameList, RenderNicknameList(nil))
}

func TestRenderAverageChart(t *testing.T) {
	png, err := RenderAverageChart(nil, func(p PlayerStats) string { return p.Key })
	require.NoError(t, err)
	assert.Nil(t, png)

	players := []PlayerStats{{Key: "a", IsNickname: true, Sum: 3, Count: 1}, {Key: "b", IsNickname: true, Sum: 8, Count: 2}}
	png, err = RenderAverageChart(players, func(p PlayerStats) string { return p.Key })
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
