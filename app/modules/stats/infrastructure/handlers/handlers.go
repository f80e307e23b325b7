package statshandlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	statsservice "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/application"
	statsdomain "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/domain"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// GenericErrorReply is shown for failures that are not the user's fault.
const GenericErrorReply = "There was an error while executing this command!"

// StatsHandlers implements the Handlers interface.
type StatsHandlers struct {
	service statsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewStatsHandlers creates a new StatsHandlers instance.
func NewStatsHandlers(
	service statsservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &StatsHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		now:     time.Now,
	}
}

// HandleStatsRequested runs a stats request and replies with the ranking, or
// with the reason the request failed.
func (h *StatsHandlers) HandleStatsRequested(ctx context.Context, payload *wordleevents.StatsRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleStatsRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Stats request received",
		attr.ExtractCorrelationID(ctx),
		attr.String("request_id", payload.RequestID),
		attr.String("guild_id", payload.GuildID),
		attr.String("channel_id", payload.ChannelID),
		attr.Bool("ignore_cache", payload.IgnoreCache),
	)

	now := payload.RequestedAt
	if now.IsZero() {
		now = h.now()
	}

	report, err := h.service.GenerateStats(ctx, statsservice.StatsRequest{
		GuildID:     payload.GuildID,
		ChannelID:   payload.ChannelID,
		IgnoreCache: payload.IgnoreCache,
		HistoryDays: payload.HistoryDays,
		Since:       payload.Since,
		Chart:       payload.Chart,
		Now:         now,
	})
	if err != nil {
		span.RecordError(err)
		return h.failureReply(ctx, payload.RequestID, payload.Reply, err), nil
	}

	reply := &wordleevents.ReplyPayloadV1{
		RequestID: payload.RequestID,
		Reply:     payload.Reply,
		Content:   report.Content,
	}
	if len(report.Chart) > 0 {
		reply.Attachment = &wordleevents.AttachmentV1{
			Name:        statsdomain.ChartFileName,
			ContentType: "image/png",
			Data:        report.Chart,
		}
	}
	return replyResult(reply), nil
}

// HandleNicknameAddRequested links a nickname to a user.
func (h *StatsHandlers) HandleNicknameAddRequested(ctx context.Context, payload *wordleevents.NicknameAddRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleNicknameAddRequested")
	defer span.End()

	if err := h.service.AddNickname(ctx, payload.GuildID, payload.Nickname, payload.UserID); err != nil {
		span.RecordError(err)
		return h.failureReply(ctx, payload.RequestID, payload.Reply, err), nil
	}

	return replyResult(&wordleevents.ReplyPayloadV1{
		RequestID: payload.RequestID,
		Reply:     payload.Reply,
		Content:   fmt.Sprintf("Linked nickname %q to <@%s>.", payload.Nickname, payload.UserID),
	}), nil
}

// HandleNicknameRemoveRequested deletes a nickname link.
func (h *StatsHandlers) HandleNicknameRemoveRequested(ctx context.Context, payload *wordleevents.NicknameRemoveRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleNicknameRemoveRequested")
	defer span.End()

	removed, err := h.service.RemoveNickname(ctx, payload.GuildID, payload.Nickname)
	if err != nil {
		span.RecordError(err)
		return h.failureReply(ctx, payload.RequestID, payload.Reply, err), nil
	}

	content := fmt.Sprintf("Nickname %q not found.", payload.Nickname)
	if removed {
		content = fmt.Sprintf("Removed nickname %q.", payload.Nickname)
	}
	return replyResult(&wordleevents.ReplyPayloadV1{
		RequestID: payload.RequestID,
		Reply:     payload.Reply,
		Content:   content,
	}), nil
}

// HandleNicknameListRequested renders the guild's links.
func (h *StatsHandlers) HandleNicknameListRequested(ctx context.Context, payload *wordleevents.NicknameListRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StatsHandlers.HandleNicknameListRequested")
	defer span.End()

	links, err := h.service.ListNicknames(ctx, payload.GuildID)
	if err != nil {
		span.RecordError(err)
		return h.failureReply(ctx, payload.RequestID, payload.Reply, err), nil
	}

	return replyResult(&wordleevents.ReplyPayloadV1{
		RequestID: payload.RequestID,
		Reply:     payload.Reply,
		Content:   statsdomain.RenderNicknameList(links),
	}), nil
}

// failureReply turns err into a reply. Validation messages are shown as is;
// anything else is logged and replaced by GenericErrorReply.
func (h *StatsHandlers) failureReply(ctx context.Context, requestID string, target wordleevents.ReplyTarget, err error) []handlerwrapper.Result {
	content := GenericErrorReply
	if invalid, ok := statsservice.AsValidationError(err); ok {
		h.logger.InfoContext(ctx, "Request rejected",
			attr.ExtractCorrelationID(ctx),
			attr.String("request_id", requestID),
			attr.Error(err),
		)
		content = invalid.Message
	} else {
		h.logger.ErrorContext(ctx, "Request failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("request_id", requestID),
			attr.Error(err),
		)
	}
	return replyResult(&wordleevents.ReplyPayloadV1{
		RequestID: requestID,
		Reply:     target,
		Content:   content,
	})
}

func replyResult(reply *wordleevents.ReplyPayloadV1) []handlerwrapper.Result {
	return []handlerwrapper.Result{{
		Topic:   wordleevents.ReplyV1,
		Payload: reply,
	}}
}
