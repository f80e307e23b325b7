package statsrouter

import (
	"context"
	"log/slog"
	"os"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	statshandlers "github.com/Black-And-White-Club/wordle-bot/app/modules/stats/infrastructure/handlers"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TestEnvironmentFlag names the env var that disables router metrics in tests.
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// StatsRouter handles Watermill handler registration for stats events.
type StatsRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewStatsRouter creates a new StatsRouter. Router metrics are registered on
// registry unless it is nil or APP_ENV is "test".
func NewStatsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	registry *prometheus.Registry,
) *StatsRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && os.Getenv(TestEnvironmentFlag) != TestEnvironmentValue {
		b := metrics.NewPrometheusMetricsBuilder(registry, "wordle", "router")
		metricsBuilder = &b
	}

	return &StatsRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure adds middleware and registers the stats handlers.
func (r *StatsRouter) Configure(_ context.Context, handlers statshandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
		middleware.Recoverer,
	)

	r.registerHandlers(handlers)
	return nil
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandlers wires topics to handler methods.
func (r *StatsRouter) registerHandlers(handlers statshandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, wordleevents.StatsRequestedV1, handlers.HandleStatsRequested)
	registerHandler(deps, wordleevents.NicknameAddRequestedV1, handlers.HandleNicknameAddRequested)
	registerHandler(deps, wordleevents.NicknameRemoveRequestedV1, handlers.HandleNicknameRemoveRequested)
	registerHandler(deps, wordleevents.NicknameListRequestedV1, handlers.HandleNicknameListRequested)

	r.logger.Info("Stats module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "stats." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *StatsRouter) Close() error {
	return r.Router.Close()
}
