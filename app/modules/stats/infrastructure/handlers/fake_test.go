package statshandlers

import (
	"context"

	statsservice "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/application"
	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
)

// ------------------------
// Fake Stats Service
// ------------------------

type FakeStatsService struct {
	trace []string

	IngestChannelFunc      func(ctx context.Context, req statsservice.IngestRequest) (statsservice.IngestResult, error)
	ReconcileNicknamesFunc func(ctx context.Context, guildID string, records []statsdomain.ResultRecord) ([]string, error)
	GenerateStatsFunc      func(ctx context.Context, req statsservice.StatsRequest) (*statsservice.StatsReport, error)
	AddNicknameFunc        func(ctx context.Context, guildID, nickname, userID string) error
	RemoveNicknameFunc     func(ctx context.Context, guildID, nickname string) (bool, error)
	ListNicknamesFunc      func(ctx context.Context, guildID string) ([]statsdomain.NicknameLink, error)
}

func NewFakeStatsService() *FakeStatsService {
	return &FakeStatsService{trace: []string{}}
}

func (f *FakeStatsService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStatsService) IngestChannel(ctx context.Context, req statsservice.IngestRequest) (statsservice.IngestResult, error) {
	f.record("IngestChannel")
	if f.IngestChannelFunc != nil {
		return f.IngestChannelFunc(ctx, req)
	}
	return statsservice.IngestResult{}, nil
}

func (f *FakeStatsService) ReconcileNicknames(ctx context.Context, guildID string, records []statsdomain.ResultRecord) ([]string, error) {
	f.record("ReconcileNicknames")
	if f.ReconcileNicknamesFunc != nil {
		return f.ReconcileNicknamesFunc(ctx, guildID, records)
	}
	return nil, nil
}

func (f *FakeStatsService) GenerateStats(ctx context.Context, req statsservice.StatsRequest) (*statsservice.StatsReport, error) {
	f.record("GenerateStats")
	if f.GenerateStatsFunc != nil {
		return f.GenerateStatsFunc(ctx, req)
	}
	return &statsservice.StatsReport{}, nil
}

func (f *FakeStatsService) AddNickname(ctx context.Context, guildID, nickname, userID string) error {
	f.record("AddNickname")
	if f.AddNicknameFunc != nil {
		return f.AddNicknameFunc(ctx, guildID, nickname, userID)
	}
	return nil
}

func (f *FakeStatsService) RemoveNickname(ctx context.Context, guildID, nickname string) (bool, error) {
	f.record("RemoveNickname")
	if f.RemoveNicknameFunc != nil {
		return f.RemoveNicknameFunc(ctx, guildID, nickname)
	}
	return false, nil
}

func (f *FakeStatsService) ListNicknames(ctx context.Context, guildID string) ([]statsdomain.NicknameLink, error) {
	f.record("ListNicknames")
	if f.ListNicknamesFunc != nil {
		return f.ListNicknamesFunc(ctx, guildID)
	}
	return nil, nil
}

func (f *FakeStatsService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ statsservice.Service = (*FakeStatsService)(nil)
