package statsservice

import (
	"context"
	"errors"
	"fmt"

	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	statsdb "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/repositories"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/results"
	"golang.org/x/sync/singleflight"
)

// IngestChannel crawls a channel and stores its results announcements.
//
// With a stored cursor the crawl walks forward from it until the history is
// exhausted. Without one, or when IgnoreCache is set, it walks backward from
// the newest message and stops at MinTimestamp. Concurrent calls for the same
// channel share a single crawl, which keeps running if the caller that
// started it goes away.
func (s *StatsService) IngestChannel(ctx context.Context, req IngestRequest) (IngestResult, error) {
	key := req.GuildID + ":" + req.ChannelID
	return unwrap(withTelemetry(s, ctx, "IngestChannel", key, func(ctx context.Context) (results.OperationResult[IngestResult, error], error) {
		// The crawl outlives whichever caller started it; each caller only
		// stops waiting when its own context ends.
		crawlCtx := context.WithoutCancel(ctx)
		ch := s.crawls.DoChan(key, func() (v interface{}, err error) {
			// DoChan runs this on its own goroutine, out of reach of the
			// recover in withTelemetry.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic during crawl of %s: %v", key, r)
				}
			}()
			return s.ingest(crawlCtx, req)
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return results.OperationResult[IngestResult, error]{}, ctx.Err()
		}
		if res.Err != nil {
			return results.OperationResult[IngestResult, error]{}, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "Joined in-flight crawl",
				attr.ExtractCorrelationID(ctx),
				attr.String("channel_id", req.ChannelID),
			)
		}
		return results.SuccessResult[IngestResult, error](res.Val.(IngestResult)), nil
	}))
}

func (s *StatsService) ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	prior, err := s.repo.GetLastProcessedMessageID(ctx, nil, req.GuildID, req.ChannelID)
	hasPrior := err == nil
	if err != nil && !errors.Is(err, statsdb.ErrNotFound) {
		return IngestResult{}, fmt.Errorf("failed to read crawl cursor: %w", err)
	}

	forward := hasPrior && !req.IgnoreCache
	out := IngestResult{Direction: DirectionBackward}
	var anchor Anchor
	if forward {
		out.Direction = DirectionForward
		anchor.After = prior
	}

	s.logger.InfoContext(ctx, "Starting channel crawl",
		attr.ExtractCorrelationID(ctx),
		attr.String("guild_id", req.GuildID),
		attr.String("channel_id", req.ChannelID),
		attr.String("direction", out.Direction),
		attr.String("cursor", prior),
		attr.Bool("ignore_cache", req.IgnoreCache),
	)

	var maxID string
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		page, err := s.source.FetchPage(ctx, req.ChannelID, anchor, s.cfg.PageSize)
		if err != nil {
			return out, err
		}
		out.Pages++
		s.metrics.RecordPageFetched(ctx, out.Direction, len(page))

		var (
			batch        []statsdomain.ResultRecord
			reachedFloor bool
			pageMin      string
			pageMax      string
		)
		for _, msg := range page {
			if !forward && msg.CreatedAt.Before(req.MinTimestamp) {
				reachedFloor = true
				break
			}

			pageMax = statsdomain.MaxMessageID(pageMax, msg.ID)
			if pageMin == "" || statsdomain.CompareMessageIDs(msg.ID, pageMin) < 0 {
				pageMin = msg.ID
			}

			if !statsdomain.IsResultsAnnouncement(msg.AuthorID, msg.Content, s.cfg.ResultsBotID) {
				continue
			}
			batch = append(batch, statsdomain.ResultRecord{
				GuildID:   req.GuildID,
				ChannelID: req.ChannelID,
				MessageID: msg.ID,
				Timestamp: msg.CreatedAt,
				Content:   msg.Content,
				Winners:   statsdomain.ParseWinners(msg.Content),
			})
		}

		if len(batch) > 0 {
			if err := s.repo.UpsertResults(ctx, nil, batch); err != nil {
				return out, fmt.Errorf("failed to store results: %w", err)
			}
			out.Processed += len(batch)
			s.metrics.RecordResultsIngested(ctx, len(batch))
		}

		maxID = statsdomain.MaxMessageID(maxID, pageMax)
		next := anchor
		if forward && pageMax != "" {
			next.After = pageMax
		} else if !forward && pageMin != "" {
			next.Before = pageMin
		}

		if reachedFloor || len(page) < s.cfg.PageSize || next == anchor {
			break
		}
		anchor = next
	}

	out.LastMessageID = prior
	if maxID != "" {
		cursor := statsdomain.MaxMessageID(prior, maxID)
		if err := s.repo.SetLastProcessedMessageID(ctx, nil, req.GuildID, req.ChannelID, cursor); err != nil {
			return out, fmt.Errorf("failed to store crawl cursor: %w", err)
		}
		out.LastMessageID = cursor
	}

	s.logger.InfoContext(ctx, "Channel crawl finished",
		attr.ExtractCorrelationID(ctx),
		attr.String("channel_id", req.ChannelID),
		attr.Int("processed", out.Processed),
		attr.Int("pages", out.Pages),
		attr.String("cursor", out.LastMessageID),
	)
	return out, nil
}
