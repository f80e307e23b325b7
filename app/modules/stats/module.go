package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	statsservice "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/application"
	statshandlers "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/handlers"
	statsmetrics "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/metrics"
	statsdb "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/repositories"
	statsrouter "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/router"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies are the shared handles the stats module is built from.
type Dependencies struct {
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Registry   *prometheus.Registry
	Router     *message.Router
	Publisher  message.Publisher
	Subscriber message.Subscriber
	DB         *bun.DB
	Source     statsservice.MessageSource
	Roster     statsservice.Roster
	Config     statsservice.Config
}

// Module represents the stats module.
type Module struct {
	StatsService statsservice.Service
	StatsRouter  *statsrouter.StatsRouter
	logger       *slog.Logger
	cancelFunc   context.CancelFunc
}

// NewStatsModule creates and initializes a new stats module.
func NewStatsModule(ctx context.Context, routerCtx context.Context, deps Dependencies) (*Module, error) {
	logger := deps.Logger
	logger.InfoContext(ctx, "stats.NewStatsModule initializing")

	// 1. Initialize Repository
	repo := statsdb.NewRepository(deps.DB)

	// 2. Initialize Metrics
	var metrics statsmetrics.Metrics = statsmetrics.NewNoop()
	if deps.Registry != nil {
		metrics = statsmetrics.NewPrometheus(deps.Registry)
	}

	// 3. Initialize Service
	service := statsservice.NewStatsService(repo, deps.Source, deps.Roster, logger, metrics, deps.Tracer, deps.DB, deps.Config)

	// 4. Initialize Handlers
	handlers := statshandlers.NewStatsHandlers(service, logger, deps.Tracer)

	// 5. Initialize Router
	router := statsrouter.NewStatsRouter(logger, deps.Router, deps.Subscriber, deps.Publisher, deps.Tracer, deps.Registry)
	if err := router.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure stats router: %w", err)
	}

	return &Module{
		StatsService: service,
		StatsRouter:  router,
		logger:       logger,
	}, nil
}

// Run blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting stats module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Stats module goroutine stopped")
}

// Close shuts down the stats module.
func (m *Module) Close() error {
	m.logger.Info("Stopping stats module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.StatsRouter != nil {
		if err := m.StatsRouter.Close(); err != nil {
			m.logger.Error("Error closing StatsRouter from module", "error", err)
			return fmt.Errorf("error closing StatsRouter: %w", err)
		}
	}

	m.logger.Info("Stats module stopped")
	return nil
}
