package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies are the shared handles the discord module is built from.
type Dependencies struct {
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Session    *discordgo.Session
	Router     *message.Router
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Config     Config
}

// Module owns the gateway session and the reply handler.
type Module struct {
	Gateway    *Gateway
	session    *discordgo.Session
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	removeFunc func()
}

// NewDiscordModule wires the gateway to the session and registers the reply
// handler on the router.
func NewDiscordModule(ctx context.Context, deps Dependencies) (*Module, error) {
	logger := deps.Logger
	logger.InfoContext(ctx, "discord.NewDiscordModule initializing")

	if deps.Session == nil {
		return nil, errors.New("discord session is required")
	}

	gateway := NewGateway(deps.Session, deps.Publisher, logger, deps.Tracer, deps.Config)
	RegisterReplyHandler(deps.Router, deps.Subscriber, deps.Publisher, logger, deps.Tracer, gateway)

	return &Module{
		Gateway: gateway,
		session: deps.Session,
		logger:  logger,
	}, nil
}

// RegisterReplyHandler routes reply events to the gateway.
func RegisterReplyHandler(router *message.Router, subscriber message.Subscriber, publisher message.Publisher, logger *slog.Logger, tracer trace.Tracer, gateway *Gateway) {
	handlerName := "discord." + wordleevents.ReplyV1
	router.AddNoPublisherHandler(
		handlerName,
		wordleevents.ReplyV1,
		subscriber,
		handlerwrapper.WrapTyped(handlerName, logger, tracer, publisher, gateway.HandleReply),
	)
}

// Start opens the gateway connection and registers the slash commands.
func (m *Module) Start(ctx context.Context) error {
	m.removeFunc = m.session.AddHandler(m.Gateway.HandleInteraction)

	if err := m.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	if m.session.State == nil || m.session.State.User == nil {
		return errors.New("discord session has no application user")
	}
	if err := m.Gateway.RegisterCommands(m.session.State.User.ID); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Discord session open", "user", m.session.State.User.Username)
	return nil
}

// Run blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting discord module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Discord module goroutine stopped")
}

// Close detaches the interaction handler and closes the session.
func (m *Module) Close() error {
	m.logger.Info("Stopping discord module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.removeFunc != nil {
		m.removeFunc()
	}
	if err := m.session.Close(); err != nil {
		return fmt.Errorf("error closing discord session: %w", err)
	}

	m.logger.Info("Discord module stopped")
	return nil
}
