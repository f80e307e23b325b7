package statsservice

import (
	"context"
	"fmt"
	"strings"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/results"
	"github.com/uptrace/bun"
)

// AddNickname links nickname to userID in a guild.
func (s *StatsService) AddNickname(ctx context.Context, guildID, nickname, userID string) error {
	nickname = strings.TrimSpace(nickname)
	addTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if nickname == "" {
			return results.FailureResult[bool, error](ErrEmptyNickname), nil
		}
		link := statsdomain.NicknameLink{Nickname: nickname, UserID: userID}
		if err := s.repo.UpsertNicknameLinks(ctx, db, guildID, []statsdomain.NicknameLink{link}); err != nil {
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to add nickname: %w", err)
		}
		return results.SuccessResult[bool, error](true), nil
	}

	_, err := unwrap(withTelemetry(s, ctx, "AddNickname", guildID, func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, addTx)
	}))
	return err
}

// RemoveNickname deletes a nickname link.
func (s *StatsService) RemoveNickname(ctx context.Context, guildID, nickname string) (bool, error) {
	nickname = strings.TrimSpace(nickname)
	removeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		removed, err := s.repo.RemoveNicknameLink(ctx, db, guildID, nickname)
		if err != nil {
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to remove nickname: %w", err)
		}
		return results.SuccessResult[bool, error](removed), nil
	}

	return unwrap(withTelemetry(s, ctx, "RemoveNickname", guildID, func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, removeTx)
	}))
}

// ListNicknames returns all nickname links of a guild.
func (s *StatsService) ListNicknames(ctx context.Context, guildID string) ([]statsdomain.NicknameLink, error) {
	listTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]statsdomain.NicknameLink, error], error) {
		links, err := s.repo.ListNicknameLinks(ctx, db, guildID)
		if err != nil {
			return results.OperationResult[[]statsdomain.NicknameLink, error]{}, fmt.Errorf("failed to list nicknames: %w", err)
		}
		return results.SuccessResult[[]statsdomain.NicknameLink, error](links), nil
	}

	return unwrap(withTelemetry(s, ctx, "ListNicknames", guildID, func(ctx context.Context) (results.OperationResult[[]statsdomain.NicknameLink, error], error) {
		return runInTx(s, ctx, listTx)
	}))
}
