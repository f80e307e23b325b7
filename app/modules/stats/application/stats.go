package statsservice

import (
	"context"
	"fmt"
	"time"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/results"
)

// GenerateStats crawls the channel, reconciles nicknames and renders the ranked
// averages. Invalid options fail with a *ValidationError before any I/O.
func (s *StatsService) GenerateStats(ctx context.Context, req StatsRequest) (*StatsReport, error) {
	identifier := req.GuildID + ":" + req.ChannelID
	return unwrap(withTelemetry(s, ctx, "GenerateStats", identifier, func(ctx context.Context) (results.OperationResult[*StatsReport, error], error) {
		return s.generateStatsLogic(ctx, req)
	}))
}

func (s *StatsService) generateStatsLogic(ctx context.Context, req StatsRequest) (results.OperationResult[*StatsReport, error], error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	floor, err := s.historyFloor(req, now)
	if err != nil {
		return results.FailureResult[*StatsReport, error](err), nil
	}

	ingest, err := s.IngestChannel(ctx, IngestRequest{
		GuildID:      req.GuildID,
		ChannelID:    req.ChannelID,
		MinTimestamp: floor,
		IgnoreCache:  req.IgnoreCache,
	})
	if err != nil {
		return results.OperationResult[*StatsReport, error]{}, err
	}

	records, err := s.repo.GetResults(ctx, nil, req.GuildID, req.ChannelID)
	if err != nil {
		return results.OperationResult[*StatsReport, error]{}, fmt.Errorf("failed to load results: %w", err)
	}

	unresolved, err := s.ReconcileNicknames(ctx, req.GuildID, records)
	if err != nil {
		return results.OperationResult[*StatsReport, error]{}, err
	}

	links, err := s.repo.GetNicknameLinks(ctx, nil, req.GuildID, statsdomain.Nicknames(records))
	if err != nil {
		return results.OperationResult[*StatsReport, error]{}, fmt.Errorf("failed to load nickname links: %w", err)
	}

	summary := statsdomain.Aggregate(records, links, s.cfg.FailScore)
	report := &StatsReport{
		Content:    summary.Render(unresolved),
		Summary:    summary,
		Unresolved: unresolved,
		Ingest:     ingest,
	}

	if req.Chart {
		report.Chart = s.renderChart(ctx, req.GuildID, summary)
	}

	return results.SuccessResult[*StatsReport, error](report), nil
}

// renderChart draws the averages chart, labelling players with their display
// names where the roster knows them. A failure only drops the chart.
func (s *StatsService) renderChart(ctx context.Context, guildID string, summary statsdomain.Summary) []byte {
	names := make(map[string]string)
	members, err := s.roster.CachedMembers(ctx, guildID)
	if err != nil {
		s.logger.WarnContext(ctx, "Roster unavailable for chart labels",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}
	for _, m := range members {
		switch {
		case m.Nickname != "":
			names[m.ID] = m.Nickname
		case m.DisplayName != "":
			names[m.ID] = m.DisplayName
		}
	}

	png, err := statsdomain.RenderAverageChart(summary.Players, func(p statsdomain.PlayerStats) string {
		if name, ok := names[p.Key]; ok && !p.IsNickname {
			return name
		}
		return p.Key
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to render stats chart",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return nil
	}
	return png
}
