package statsservice

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	statsmetrics "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/metrics"
	statsdb "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/repositories"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

const testBotID = statsdomain.DefaultResultsBotID

var day0 = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func announcement(lines ...string) string {
	out := "Your group is on a 3 day streak! Here are yesterday's results:"
	for _, l := range lines {
		out += "\n" + l
	}
	return out
}

// channelHistory serves a fixed message history the way the chat platform pages it.
func channelHistory(msgs ...Message) func(ctx context.Context, channelID string, anchor Anchor, limit int) ([]Message, error) {
	sorted := append([]Message(nil), msgs...)
	sort.Slice(sorted, func(i, j int) bool {
		return statsdomain.CompareMessageIDs(sorted[i].ID, sorted[j].ID) < 0
	})
	return func(_ context.Context, _ string, anchor Anchor, limit int) ([]Message, error) {
		var page []Message
		if anchor.After != "" {
			for _, m := range sorted {
				if statsdomain.CompareMessageIDs(m.ID, anchor.After) > 0 && len(page) < limit {
					page = append(page, m)
				}
			}
			return page, nil
		}
		for i := len(sorted) - 1; i >= 0 && len(page) < limit; i-- {
			if anchor.Before == "" || statsdomain.CompareMessageIDs(sorted[i].ID, anchor.Before) < 0 {
				page = append(page, sorted[i])
			}
		}
		return page, nil
	}
}

// dailyResults builds n bot announcements with ids 1..n, one per day from day0.
func dailyResults(n int) []Message {
	msgs := make([]Message, n)
	for i := range msgs {
		msgs[i] = Message{
			ID:        strconv.Itoa(i + 1),
			AuthorID:  testBotID,
			CreatedAt: day0.AddDate(0, 0, i),
			Content:   announcement("3/6: <@100>"),
		}
	}
	return msgs
}

// memoryStore backs a FakeStatsRepo with maps.
type memoryStore struct {
	mu      sync.Mutex
	results map[string]statsdomain.ResultRecord
	cursor  string
	links   map[string]string
}

func newMemoryStore(repo *FakeStatsRepo) *memoryStore {
	st := &memoryStore{results: map[string]statsdomain.ResultRecord{}, links: map[string]string{}}
	repo.UpsertResultsFunc = func(_ context.Context, _ bun.IDB, results []statsdomain.ResultRecord) error {
		st.mu.Lock()
		defer st.mu.Unlock()
		for _, r := range results {
			st.results[r.MessageID] = r
		}
		return nil
	}
	repo.GetResultsFunc = func(_ context.Context, _ bun.IDB, _, _ string) ([]statsdomain.ResultRecord, error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		out := make([]statsdomain.ResultRecord, 0, len(st.results))
		for _, r := range st.results {
			out = append(out, r)
		}
		sort.Slice(out, func(i, j int) bool {
			return statsdomain.CompareMessageIDs(out[i].MessageID, out[j].MessageID) < 0
		})
		return out, nil
	}
	repo.GetLastProcessedMessageIDFunc = func(_ context.Context, _ bun.IDB, _, _ string) (string, error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		if st.cursor == "" {
			return "", statsdb.ErrNotFound
		}
		return st.cursor, nil
	}
	repo.SetLastProcessedMessageIDFunc = func(_ context.Context, _ bun.IDB, _, _, id string) error {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.cursor = id
		return nil
	}
	repo.GetNicknameLinksFunc = func(_ context.Context, _ bun.IDB, _ string, nicknames []string) (map[string]string, error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		out := map[string]string{}
		for _, n := range nicknames {
			if id, ok := st.links[n]; ok {
				out[n] = id
			}
		}
		return out, nil
	}
	repo.UpsertNicknameLinksFunc = func(_ context.Context, _ bun.IDB, _ string, links []statsdomain.NicknameLink) error {
		st.mu.Lock()
		defer st.mu.Unlock()
		for _, l := range links {
			st.links[l.Nickname] = l.UserID
		}
		return nil
	}
	return st
}

func newTestService(repo *FakeStatsRepo, source MessageSource, roster Roster, cfg Config) *StatsService {
	if roster == nil {
		roster = &FakeRoster{}
	}
	return NewStatsService(
		repo,
		source,
		roster,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		statsmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		cfg,
	)
}

func intPtr(v int) *int { return &v }
