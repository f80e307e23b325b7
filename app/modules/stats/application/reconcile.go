package statsservice

import (
	"context"
	"fmt"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/results"
	"golang.org/x/sync/errgroup"
)

// rosterQueryConcurrency bounds parallel roster queries for one reconciliation.
const rosterQueryConcurrency = 8

// Nickname resolution sources, used as metric labels.
const (
	resolvedFromCache = "cache"
	resolvedFromQuery = "query"
	notResolved       = "unresolved"
)

// ReconcileNicknames links unlinked nicknames from records to guild members.
// Each nickname is matched exactly against a member's nickname or display name,
// first in the cached roster, then through a single-result roster query.
func (s *StatsService) ReconcileNicknames(ctx context.Context, guildID string, records []statsdomain.ResultRecord) ([]string, error) {
	return unwrap(withTelemetry(s, ctx, "ReconcileNicknames", guildID, func(ctx context.Context) (results.OperationResult[[]string, error], error) {
		unresolved, err := s.reconcile(ctx, guildID, records)
		if err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		return results.SuccessResult[[]string, error](unresolved), nil
	}))
}

func (s *StatsService) reconcile(ctx context.Context, guildID string, records []statsdomain.ResultRecord) ([]string, error) {
	candidates := statsdomain.Nicknames(records)
	if len(candidates) == 0 {
		return nil, nil
	}

	known, err := s.repo.GetNicknameLinks(ctx, nil, guildID, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to load nickname links: %w", err)
	}

	pending := make([]string, 0, len(candidates))
	for _, nick := range candidates {
		if _, ok := known[nick]; !ok {
			pending = append(pending, nick)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	cached, err := s.roster.CachedMembers(ctx, guildID)
	if err != nil {
		return nil, err
	}

	matched := make([]string, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rosterQueryConcurrency)
	for i, nick := range pending {
		g.Go(func() error {
			if m, ok := matchMember(cached, nick); ok {
				matched[i] = m.ID
				s.metrics.RecordNicknameResolution(gctx, resolvedFromCache)
				return nil
			}

			found, err := s.roster.QueryByName(gctx, guildID, nick, 1)
			if err != nil {
				return err
			}
			if m, ok := matchMember(found, nick); ok {
				matched[i] = m.ID
				s.metrics.RecordNicknameResolution(gctx, resolvedFromQuery)
				return nil
			}

			s.metrics.RecordNicknameResolution(gctx, notResolved)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		links      []statsdomain.NicknameLink
		unresolved []string
	)
	for i, nick := range pending {
		if matched[i] == "" {
			unresolved = append(unresolved, nick)
			continue
		}
		links = append(links, statsdomain.NicknameLink{Nickname: nick, UserID: matched[i]})
	}

	if len(links) > 0 {
		if err := s.repo.UpsertNicknameLinks(ctx, nil, guildID, links); err != nil {
			return nil, fmt.Errorf("failed to store nickname links: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Nickname reconciliation finished",
		attr.ExtractCorrelationID(ctx),
		attr.String("guild_id", guildID),
		attr.Int("linked", len(links)),
		attr.Int("unresolved", len(unresolved)),
	)
	return unresolved, nil
}

// matchMember finds the first member whose nickname or display name equals name.
func matchMember(members []Member, name string) (Member, bool) {
	for _, m := range members {
		if m.Nickname == name || m.DisplayName == name {
			return m, true
		}
	}
	return Member{}, false
}
