package statsservice

import (
	"context"
	"sync"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	statsdb "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Stats Repo
// ------------------------

type FakeStatsRepo struct {
	mu    sync.Mutex
	trace []string

	UpsertResultsFunc             func(ctx context.Context, db bun.IDB, results []statsdomain.ResultRecord) error
	GetResultsFunc                func(ctx context.Context, db bun.IDB, guildID, channelID string) ([]statsdomain.ResultRecord, error)
	GetLastProcessedMessageIDFunc func(ctx context.Context, db bun.IDB, guildID, channelID string) (string, error)
	SetLastProcessedMessageIDFunc func(ctx context.Context, db bun.IDB, guildID, channelID, messageID string) error
	GetNicknameLinksFunc          func(ctx context.Context, db bun.IDB, guildID string, nicknames []string) (map[string]string, error)
	ListNicknameLinksFunc         func(ctx context.Context, db bun.IDB, guildID string) ([]statsdomain.NicknameLink, error)
	UpsertNicknameLinksFunc       func(ctx context.Context, db bun.IDB, guildID string, links []statsdomain.NicknameLink) error
	RemoveNicknameLinkFunc        func(ctx context.Context, db bun.IDB, guildID, nickname string) (bool, error)
}

func NewFakeStatsRepo() *FakeStatsRepo {
	return &FakeStatsRepo{trace: []string{}}
}

func (f *FakeStatsRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeStatsRepo) UpsertResults(ctx context.Context, db bun.IDB, results []statsdomain.ResultRecord) error {
	f.record("UpsertResults")
	if f.UpsertResultsFunc != nil {
		return f.UpsertResultsFunc(ctx, db, results)
	}
	return nil
}

func (f *FakeStatsRepo) GetResults(ctx context.Context, db bun.IDB, guildID, channelID string) ([]statsdomain.ResultRecord, error) {
	f.record("GetResults")
	if f.GetResultsFunc != nil {
		return f.GetResultsFunc(ctx, db, guildID, channelID)
	}
	return nil, nil
}

func (f *FakeStatsRepo) GetLastProcessedMessageID(ctx context.Context, db bun.IDB, guildID, channelID string) (string, error) {
	f.record("GetLastProcessedMessageID")
	if f.GetLastProcessedMessageIDFunc != nil {
		return f.GetLastProcessedMessageIDFunc(ctx, db, guildID, channelID)
	}
	return "", statsdb.ErrNotFound
}

func (f *FakeStatsRepo) SetLastProcessedMessageID(ctx context.Context, db bun.IDB, guildID, channelID, messageID string) error {
	f.record("SetLastProcessedMessageID")
	if f.SetLastProcessedMessageIDFunc != nil {
		return f.SetLastProcessedMessageIDFunc(ctx, db, guildID, channelID, messageID)
	}
	return nil
}

func (f *FakeStatsRepo) GetNicknameLinks(ctx context.Context, db bun.IDB, guildID string, nicknames []string) (map[string]string, error) {
	f.record("GetNicknameLinks")
	if f.GetNicknameLinksFunc != nil {
		return f.GetNicknameLinksFunc(ctx, db, guildID, nicknames)
	}
	return map[string]string{}, nil
}

func (f *FakeStatsRepo) ListNicknameLinks(ctx context.Context, db bun.IDB, guildID string) ([]statsdomain.NicknameLink, error) {
	f.record("ListNicknameLinks")
	if f.ListNicknameLinksFunc != nil {
		return f.ListNicknameLinksFunc(ctx, db, guildID)
	}
	return nil, nil
}

func (f *FakeStatsRepo) UpsertNicknameLinks(ctx context.Context, db bun.IDB, guildID string, links []statsdomain.NicknameLink) error {
	f.record("UpsertNicknameLinks")
	if f.UpsertNicknameLinksFunc != nil {
		return f.UpsertNicknameLinksFunc(ctx, db, guildID, links)
	}
	return nil
}

func (f *FakeStatsRepo) RemoveNicknameLink(ctx context.Context, db bun.IDB, guildID, nickname string) (bool, error) {
	f.record("RemoveNicknameLink")
	if f.RemoveNicknameLinkFunc != nil {
		return f.RemoveNicknameLinkFunc(ctx, db, guildID, nickname)
	}
	return false, nil
}

func (f *FakeStatsRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ statsdb.Repository = (*FakeStatsRepo)(nil)

// ------------------------
// Fake Message Source
// ------------------------

type FakeMessageSource struct {
	mu      sync.Mutex
	anchors []Anchor

	FetchPageFunc func(ctx context.Context, channelID string, anchor Anchor, limit int) ([]Message, error)
}

func (f *FakeMessageSource) FetchPage(ctx context.Context, channelID string, anchor Anchor, limit int) ([]Message, error) {
	f.mu.Lock()
	f.anchors = append(f.anchors, anchor)
	f.mu.Unlock()
	if f.FetchPageFunc != nil {
		return f.FetchPageFunc(ctx, channelID, anchor, limit)
	}
	return nil, nil
}

// Anchors returns the anchor of every FetchPage call, in order.
func (f *FakeMessageSource) Anchors() []Anchor {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Anchor, len(f.anchors))
	copy(out, f.anchors)
	return out
}

var _ MessageSource = (*FakeMessageSource)(nil)

// ------------------------
// Fake Roster
// ------------------------

type FakeRoster struct {
	mu      sync.Mutex
	queries []string

	CachedMembersFunc func(ctx context.Context, guildID string) ([]Member, error)
	QueryByNameFunc   func(ctx context.Context, guildID, name string, limit int) ([]Member, error)
}

func (f *FakeRoster) CachedMembers(ctx context.Context, guildID string) ([]Member, error) {
	if f.CachedMembersFunc != nil {
		return f.CachedMembersFunc(ctx, guildID)
	}
	return nil, nil
}

func (f *FakeRoster) QueryByName(ctx context.Context, guildID, name string, limit int) ([]Member, error) {
	f.mu.Lock()
	f.queries = append(f.queries, name)
	f.mu.Unlock()
	if f.QueryByNameFunc != nil {
		return f.QueryByNameFunc(ctx, guildID, name, limit)
	}
	return nil, nil
}

// Queries returns the names passed to QueryByName, in call order.
func (f *FakeRoster) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

var _ Roster = (*FakeRoster)(nil)
