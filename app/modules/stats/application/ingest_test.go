package statsservice

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countSteps(trace []string, step string) int {
	n := 0
	for _, s := range trace {
		if s == step {
			n++
		}
	}
	return n
}

func storedIDs(st *memoryStore) []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	ids := make([]string, 0, len(st.results))
	for id := range st.results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func TestIngestChannel_BackwardStopsAtFloor(t *testing.T) {
	repo := NewFakeStatsRepo()
	st := newMemoryStore(repo)
	source := &FakeMessageSource{FetchPageFunc: channelHistory(dailyResults(5)...)}
	svc := newTestService(repo, source, nil, Config{PageSize: 2})

	got, err := svc.IngestChannel(context.Background(), IngestRequest{
		GuildID:      "g",
		ChannelID:    "c",
		MinTimestamp: day0.AddDate(0, 0, 2),
	})

	require.NoError(t, err)
	assert.Equal(t, IngestResult{Processed: 3, Pages: 2, Direction: DirectionBackward, LastMessageID: "5"}, got)
	assert.Equal(t, []Anchor{{}, {Before: "4"}}, source.Anchors())
	assert.Equal(t, []string{"3", "4", "5"}, storedIDs(st))
	assert.Equal(t, "5", st.cursor)
	assert.Equal(t, 2, countSteps(repo.Trace(), "UpsertResults"), "one batch per page")
	assert.Equal(t, 1, countSteps(repo.Trace(), "SetLastProcessedMessageID"), "cursor is written once per crawl")
}

func TestIngestChannel_ForwardFromCursor(t *testing.T) {
	repo := NewFakeStatsRepo()
	st := newMemoryStore(repo)
	st.cursor = "3"
	source := &FakeMessageSource{FetchPageFunc: channelHistory(dailyResults(6)...)}
	svc := newTestService(repo, source, nil, Config{PageSize: 2})

	// The floor does not apply going forward.
	got, err := svc.IngestChannel(context.Background(), IngestRequest{
		GuildID:      "g",
		ChannelID:    "c",
		MinTimestamp: day0.AddDate(1, 0, 0),
	})

	require.NoError(t, err)
	assert.Equal(t, IngestResult{Processed: 3, Pages: 2, Direction: DirectionForward, LastMessageID: "6"}, got)
	assert.Equal(t, []Anchor{{After: "3"}, {After: "5"}}, source.Anchors())
	assert.Equal(t, []string{"4", "5", "6"}, storedIDs(st))
	assert.Equal(t, "6", st.cursor)
}

func TestIngestChannel_NothingNewKeepsCursor(t *testing.T) {
	repo := NewFakeStatsRepo()
	st := newMemoryStore(repo)
	st.cursor = "6"
	source := &FakeMessageSource{FetchPageFunc: channelHistory(dailyResults(6)...)}
	svc := newTestService(repo, source, nil, Config{PageSize: 2})

	got, err := svc.IngestChannel(context.Background(), IngestRequest{GuildID: "g", ChannelID: "c"})

	require.NoError(t, err)
	assert.Equal(t, 0, got.Processed)
	assert.Equal(t, "6", got.LastMessageID)
	assert.NotContains(t, repo.Trace(), "SetLastProcessedMessageID")
	assert.NotContains(t, repo.Trace(), "UpsertResults")
}

func TestIngestChannel_IgnoreCacheNeverMovesCursorBack(t *testing.T) {
	repo := NewFakeStatsRepo()
	st := newMemoryStore(repo)
	st.cursor = "9"
	source := &FakeMessageSource{FetchPageFunc: channelHistory(dailyResults(5)...)}
	svc := newTestService(repo, source, nil, Config{PageSize: 2})

	got, err := svc.IngestChannel(context.Background(), IngestRequest{GuildID: "g", ChannelID: "c", IgnoreCache: true})

	require.NoError(t, err)
	assert.Equal(t, DirectionBackward, got.Direction)
	assert.Equal(t, 5, got.Processed)
	assert.Equal(t, 3, got.Pages)
	assert.Equal(t, "9", st.cursor)
	assert.Equal(t, "9", got.LastMessageID)
}

func TestIngestChannel_OnlyBotAnnouncementsAreStored(t *testing.T) {
	repo := NewFakeStatsRepo()
	st := newMemoryStore(repo)
	source := &FakeMessageSource{FetchPageFunc: channelHistory(
		Message{ID: "1", AuthorID: testBotID, CreatedAt: day0, Content: announcement("2/6: @Ann")},
		Message{ID: "2", AuthorID: "42", CreatedAt: day0, Content: announcement("1/6: <@42>")},
		Message{ID: "3", AuthorID: testBotID, CreatedAt: day0, Content: "Wordle reminder"},
	)}
	svc := newTestService(repo, source, nil, Config{})

	got, err := svc.IngestChannel(context.Background(), IngestRequest{GuildID: "g", ChannelID: "c"})

	require.NoError(t, err)
	assert.Equal(t, 1, got.Processed)
	assert.Equal(t, []string{"1"}, storedIDs(st))
	assert.Equal(t, "3", st.cursor, "skipped messages still advance the cursor")
	assert.Equal(t, "g", st.results["1"].GuildID)
	assert.Len(t, st.results["1"].Winners, 1)
}

func TestIngestChannel_RepeatedCrawlIsIdempotent(t *testing.T) {
	repo := NewFakeStatsRepo()
	st := newMemoryStore(repo)
	source := &FakeMessageSource{FetchPageFunc: channelHistory(dailyResults(4)...)}
	svc := newTestService(repo, source, nil, Config{PageSize: 3})

	req := IngestRequest{GuildID: "g", ChannelID: "c", IgnoreCache: true}
	first, err := svc.IngestChannel(context.Background(), req)
	require.NoError(t, err)
	before, _ := repo.GetResults(context.Background(), nil, "g", "c")

	second, err := svc.IngestChannel(context.Background(), req)
	require.NoError(t, err)
	after, _ := repo.GetResults(context.Background(), nil, "g", "c")

	assert.Equal(t, first.LastMessageID, second.LastMessageID)
	assert.Equal(t, before, after)
	assert.Len(t, storedIDs(st), 4)
}

func TestIngestChannel_PropagatesFetchError(t *testing.T) {
	boom := errors.New("discord unavailable")
	repo := NewFakeStatsRepo()
	newMemoryStore(repo)
	source := &FakeMessageSource{FetchPageFunc: func(context.Context, string, Anchor, int) ([]Message, error) {
		return nil, boom
	}}
	svc := newTestService(repo, source, nil, Config{})

	_, err := svc.IngestChannel(context.Background(), IngestRequest{GuildID: "g", ChannelID: "c"})

	require.ErrorIs(t, err, boom)
	assert.NotContains(t, repo.Trace(), "SetLastProcessedMessageID")
}

func TestIngestChannel_StopsOnCancelledContext(t *testing.T) {
	repo := NewFakeStatsRepo()
	newMemoryStore(repo)
	source := &FakeMessageSource{FetchPageFunc: channelHistory(dailyResults(3)...)}
	svc := newTestService(repo, source, nil, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.IngestChannel(ctx, IngestRequest{GuildID: "g", ChannelID: "c"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, source.Anchors())
}

func TestIngestChannel_ConcurrentCallsShareOneCrawl(t *testing.T) {
	repo := NewFakeStatsRepo()
	newMemoryStore(repo)

	started := make(chan struct{})
	release := make(chan struct{})
	var fetches atomic.Int32
	serve := channelHistory(dailyResults(2)...)
	source := &FakeMessageSource{FetchPageFunc: func(ctx context.Context, channelID string, anchor Anchor, limit int) ([]Message, error) {
		if fetches.Add(1) == 1 {
			close(started)
			<-release
		}
		return serve(ctx, channelID, anchor, limit)
	}}
	svc := newTestService(repo, source, nil, Config{})

	req := IngestRequest{GuildID: "g", ChannelID: "c"}
	results := make([]IngestResult, 3)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i > 0 {
				<-started
			}
			got, err := svc.IngestChannel(context.Background(), req)
			assert.NoError(t, err)
			results[i] = got
		}()
	}

	<-started
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load())
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])
}

func TestIngestChannel_JoinerSurvivesStarterCancellation(t *testing.T) {
	repo := NewFakeStatsRepo()
	st := newMemoryStore(repo)

	started := make(chan struct{})
	release := make(chan struct{})
	var fetches atomic.Int32
	serve := channelHistory(dailyResults(2)...)
	source := &FakeMessageSource{FetchPageFunc: func(ctx context.Context, channelID string, anchor Anchor, limit int) ([]Message, error) {
		if fetches.Add(1) == 1 {
			close(started)
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return serve(ctx, channelID, anchor, limit)
	}}
	svc := newTestService(repo, source, nil, Config{})
	req := IngestRequest{GuildID: "g", ChannelID: "c"}

	starterCtx, cancelStarter := context.WithCancel(context.Background())
	starterErr := make(chan error, 1)
	go func() {
		_, err := svc.IngestChannel(starterCtx, req)
		starterErr <- err
	}()
	<-started

	joinerCtx, cancelJoiner := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelJoiner()
	type outcome struct {
		res IngestResult
		err error
	}
	joined := make(chan outcome, 1)
	go func() {
		res, err := svc.IngestChannel(joinerCtx, req)
		joined <- outcome{res, err}
	}()

	time.Sleep(100 * time.Millisecond)
	cancelStarter()

	select {
	case err := <-starterErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("starter did not return after its context was cancelled")
	}

	close(release)
	got := <-joined
	require.NoError(t, got.err)
	assert.Equal(t, 2, got.res.Processed)
	assert.Equal(t, []string{"1", "2"}, storedIDs(st))
	assert.Equal(t, int32(1), fetches.Load())
}

func TestIngestChannel_PanicBecomesError(t *testing.T) {
	repo := NewFakeStatsRepo()
	newMemoryStore(repo)
	source := &FakeMessageSource{FetchPageFunc: func(context.Context, string, Anchor, int) ([]Message, error) {
		panic("gateway exploded")
	}}
	svc := newTestService(repo, source, nil, Config{})

	_, err := svc.IngestChannel(context.Background(), IngestRequest{GuildID: "g", ChannelID: "c"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway exploded")
}
