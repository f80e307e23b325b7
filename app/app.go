// Package app wires configuration, infrastructure and modules into a running bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/wordle-bot/app/eventbus"
	"github.com/Black-And-White-Club/wordle-bot/app/modules/discord"
	"github.com/Black-And-White-Club/wordle-bot/app/modules/stats"
	statsservice "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/application"
	statsdiscord "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/discord"
	"github.com/Black-And-White-Club/wordle-bot/app/observability"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/config"
	"github.com/Black-And-White-Club/wordle-bot/db/bundb"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Intents the bot needs: guild metadata, channel history with message content,
// and the member list for nickname resolution.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentMessageContent

// App holds every long-lived component.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	Logger        *slog.Logger
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Router        *message.Router
	Session       *discordgo.Session

	StatsModule   *stats.Module
	DiscordModule *discord.Module

	metricsServer *observability.Server
}

// Initialize builds the application from cfg. Nothing is started yet.
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.New(ctx, observability.Config{
		Environment:     cfg.Observability.Environment,
		LogLevel:        cfg.Observability.LogLevel,
		MetricsAddress:  cfg.Observability.MetricsAddress,
		OTLPEndpoint:    cfg.Observability.OTLPEndpoint,
		OTLPInsecure:    cfg.Observability.OTLPInsecure,
		TraceSampleRate: cfg.Observability.TraceSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs, Logger: logger}

	app.DB, err = bundb.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if err := bundb.Migrate(ctx, app.DB, logger); err != nil {
		app.DB.Close()
		return nil, err
	}

	app.EventBus, err = eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        cfg.NATS.URL,
		QueueGroup: cfg.NATS.QueueGroup,
		JetStream:  cfg.NATS.JetStream,
	}, logger)
	if err != nil {
		app.DB.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	app.Router, err = message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	app.Session, err = discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		app.closeInfra()
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	app.Session.Identify.Intents = Intents
	app.Session.StateEnabled = true
	app.Session.State.TrackMembers = true

	if err := app.initializeModules(ctx); err != nil {
		app.closeInfra()
		return nil, err
	}

	if addr := cfg.Observability.MetricsAddress; addr != "" {
		handler := observability.NewHandler(obs.Registry, map[string]observability.HealthCheck{
			"postgres": app.DB.PingContext,
			"eventbus": func(context.Context) error {
				if !app.EventBus.Healthy() {
					return errors.New("nats disconnected")
				}
				return nil
			},
		})
		app.metricsServer = observability.NewServer(addr, handler, logger)
	}

	return app, nil
}

func (app *App) initializeModules(ctx context.Context) error {
	cfg := app.Config
	obs := app.Observability

	floor, err := cfg.HistoryFloor()
	if err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Discord.PageRate), cfg.Discord.PageBurst)

	app.StatsModule, err = stats.NewStatsModule(ctx, ctx, stats.Dependencies{
		Logger:     app.Logger,
		Tracer:     obs.Tracer,
		Registry:   obs.Registry,
		Router:     app.Router,
		Publisher:  app.EventBus.Publisher(),
		Subscriber: app.EventBus.Subscriber(),
		DB:         app.DB,
		Source:     statsdiscord.NewMessageSource(app.Session, limiter),
		Roster:     statsdiscord.NewRoster(app.Session.State, app.Session),
		Config: statsservice.Config{
			ResultsBotID:        cfg.Stats.ResultsBotID,
			FailScore:           cfg.Stats.FailScore,
			DefaultHistoryFloor: floor,
			PageSize:            cfg.Stats.PageSize,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize stats module: %w", err)
	}

	app.DiscordModule, err = discord.NewDiscordModule(ctx, discord.Dependencies{
		Logger:     app.Logger,
		Tracer:     obs.Tracer,
		Session:    app.Session,
		Router:     app.Router,
		Publisher:  app.EventBus.Publisher(),
		Subscriber: app.EventBus.Subscriber(),
		Config: discord.Config{
			DevGuildID: cfg.Discord.DevGuildID,
			OwnerID:    cfg.Discord.OwnerID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize discord module: %w", err)
	}
	return nil
}

// Run starts the router, the gateway session and the metrics server, then
// blocks until ctx is cancelled or the router stops.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()

	select {
	case <-app.Router.Running():
	case err := <-routerErr:
		return fmt.Errorf("message router stopped before start: %w", err)
	}

	if err := app.DiscordModule.Start(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go app.StatsModule.Run(ctx, &wg)
	go app.DiscordModule.Run(ctx, &wg)

	if app.metricsServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.metricsServer.Run(ctx); err != nil {
				app.Logger.Error("Metrics server failed", attr.Error(err))
			}
		}()
	}

	app.Logger.InfoContext(ctx, "Wordle bot running")

	var err error
	select {
	case <-ctx.Done():
	case err = <-routerErr:
		if err != nil {
			err = fmt.Errorf("message router stopped: %w", err)
		}
		cancel()
	}
	wg.Wait()
	return err
}

// Close shuts down modules first, then the shared infrastructure.
func (app *App) Close(ctx context.Context) {
	if app.DiscordModule != nil {
		if err := app.DiscordModule.Close(); err != nil {
			app.Logger.Error("Error closing discord module", attr.Error(err))
		}
	}
	if app.StatsModule != nil {
		if err := app.StatsModule.Close(); err != nil {
			app.Logger.Error("Error closing stats module", attr.Error(err))
		}
	}
	app.closeInfra()
	if err := app.Observability.Shutdown(ctx); err != nil {
		app.Logger.Error("Error shutting down telemetry", attr.Error(err))
	}
	app.Logger.Info("Shutdown complete")
}

func (app *App) closeInfra() {
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			app.Logger.Error("Error closing event bus", attr.Error(err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Error closing database", attr.Error(err))
		}
	}
}
