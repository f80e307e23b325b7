package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Session is the part of *discordgo.Session the gateway uses.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Config holds the gateway settings.
type Config struct {
	// DevGuildID scopes command registration to one guild. Empty registers globally.
	DevGuildID string
	// OwnerID may always manage nicknames.
	OwnerID string
}

// Gateway turns slash commands into request events and reply events into
// interaction responses.
type Gateway struct {
	session   Session
	publisher message.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	cfg       Config
	now       func() time.Time
	newID     func() string
}

// NewGateway creates a Gateway.
func NewGateway(session Session, publisher message.Publisher, logger *slog.Logger, tracer trace.Tracer, cfg Config) *Gateway {
	return &Gateway{
		session:   session,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// RegisterCommands overwrites the application's commands.
func (g *Gateway) RegisterCommands(appID string) error {
	registered, err := g.session.ApplicationCommandBulkOverwrite(appID, g.cfg.DevGuildID, CommandDefinitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	scope := "global"
	if g.cfg.DevGuildID != "" {
		scope = "guild:" + g.cfg.DevGuildID
	}
	g.logger.Info("Slash commands registered",
		attr.Int("count", len(registered)),
		attr.String("scope", scope),
	)
	return nil
}

// HandleInteraction is the discordgo event handler for interactions.
func (g *Gateway) HandleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	g.Dispatch(ctx, i.Interaction)
}

// Dispatch validates an application command, defers its response and
// publishes the matching request event.
func (g *Gateway) Dispatch(ctx context.Context, i *discordgo.Interaction) {
	if i == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	ctx, span := g.tracer.Start(ctx, "Gateway.Dispatch", trace.WithAttributes(
		attribute.String("command", data.Name),
		attribute.String("guild_id", i.GuildID),
	))
	defer span.End()

	requestID := g.newID()
	ctx = attr.WithCorrelationID(ctx, requestID)
	g.logger.DebugContext(ctx, "Received command",
		attr.ExtractCorrelationID(ctx),
		attr.String("command", data.Name),
		attr.String("guild_id", i.GuildID),
	)

	if i.GuildID == "" {
		g.respondNow(ctx, i, ReplyNotInGuild)
		return
	}

	reply := wordleevents.ReplyTarget{ApplicationID: i.AppID, Token: i.Token}

	var (
		topic   string
		payload any
	)
	switch data.Name {
	case CommandStats:
		req := parseStatsOptions(data.Options, i.ChannelID)
		if msg := statsWindowReply(req.HistoryDays, req.Since); msg != "" {
			g.respondNow(ctx, i, msg)
			return
		}
		req.RequestID = requestID
		req.GuildID = i.GuildID
		req.RequestedAt = g.now()
		req.Reply = reply
		topic, payload = wordleevents.StatsRequestedV1, req

	case CommandNickname:
		cmd, ok := parseNicknameOptions(data.Options)
		if !ok {
			g.respondNow(ctx, i, ReplyUnknownCommand)
			return
		}
		if cmd.subcommand != SubcommandList && !IsModerator(i.Member, g.cfg.OwnerID) {
			g.respondNow(ctx, i, ReplyNotModerator)
			return
		}
		switch cmd.subcommand {
		case SubcommandAdd:
			topic, payload = wordleevents.NicknameAddRequestedV1, wordleevents.NicknameAddRequestedPayloadV1{
				RequestID: requestID, GuildID: i.GuildID, Nickname: cmd.nickname, UserID: cmd.userID, Reply: reply,
			}
		case SubcommandRemove:
			topic, payload = wordleevents.NicknameRemoveRequestedV1, wordleevents.NicknameRemoveRequestedPayloadV1{
				RequestID: requestID, GuildID: i.GuildID, Nickname: cmd.nickname, Reply: reply,
			}
		default:
			topic, payload = wordleevents.NicknameListRequestedV1, wordleevents.NicknameListRequestedPayloadV1{
				RequestID: requestID, GuildID: i.GuildID, Reply: reply,
			}
		}

	default:
		g.logger.WarnContext(ctx, "Unknown command", attr.String("command", data.Name))
		return
	}

	if err := g.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		span.RecordError(err)
		g.logger.ErrorContext(ctx, "Failed to defer interaction response",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		return
	}

	if err := g.publish(ctx, topic, payload); err != nil {
		span.RecordError(err)
		g.logger.ErrorContext(ctx, "Failed to publish request",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
		content := GenericErrorReply
		if _, err := g.session.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content}); err != nil {
			g.logger.ErrorContext(ctx, "Failed to edit interaction response", attr.Error(err))
		}
	}
}

func (g *Gateway) publish(ctx context.Context, topic string, payload any) error {
	msg, err := handlerwrapper.NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	return g.publisher.Publish(topic, msg)
}

// respondNow answers immediately with an ephemeral message.
func (g *Gateway) respondNow(ctx context.Context, i *discordgo.Interaction, content string) {
	err := g.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to respond to interaction",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}
}

// HandleReply edits the deferred response a request was answered with.
func (g *Gateway) HandleReply(ctx context.Context, payload *wordleevents.ReplyPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := g.tracer.Start(ctx, "Gateway.HandleReply")
	defer span.End()

	content := payload.Content
	edit := &discordgo.WebhookEdit{Content: &content}
	if a := payload.Attachment; a != nil && len(a.Data) > 0 {
		edit.Files = []*discordgo.File{{
			Name:        a.Name,
			ContentType: a.ContentType,
			Reader:      bytes.NewReader(a.Data),
		}}
	}

	interaction := &discordgo.Interaction{AppID: payload.Reply.ApplicationID, Token: payload.Reply.Token}
	if _, err := g.session.InteractionResponseEdit(interaction, edit, discordgo.WithContext(ctx)); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to edit interaction response: %w", err)
	}

	g.logger.DebugContext(ctx, "Interaction response edited",
		attr.ExtractCorrelationID(ctx),
		attr.String("request_id", payload.RequestID),
	)
	return nil, nil
}
