// Package eventbus builds the watermill publisher and subscriber the modules talk through.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultQueueGroup load-balances each topic across bot replicas.
const DefaultQueueGroup = "wordle-bot"

// Config selects the transport.
type Config struct {
	// URL of the NATS server. Empty means an in-process bus.
	URL string
	// QueueGroup is the queue group prefix of NATS subscriptions.
	QueueGroup string
	// JetStream persists requests in the wordle stream instead of core NATS.
	JetStream bool
}

// EventBus owns the publisher and subscriber shared by all modules.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	natsConn   *nc.Conn
	logger     *slog.Logger
}

// Healthy reports whether the NATS connection is up. The in-process bus is always healthy.
func (eb *EventBus) Healthy() bool {
	return eb.natsConn == nil || eb.natsConn.IsConnected()
}

// NewEventBus connects to NATS, or builds a gochannel bus when cfg.URL is empty.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (*EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	if cfg.URL == "" {
		logger.Warn("No NATS URL configured, using in-process event bus")
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermillLogger)
		return &EventBus{publisher: pubSub, subscriber: pubSub, logger: logger}, nil
	}

	queueGroup := cfg.QueueGroup
	if queueGroup == "" {
		queueGroup = DefaultQueueGroup
	}

	natsOptions := []nc.Option{
		nc.Name(queueGroup),
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
	}

	natsConn, err := nc.Connect(cfg.URL, natsOptions...)
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	jsConfig := nats.JetStreamConfig{Disabled: true}
	if cfg.JetStream {
		js, err := jetstream.New(natsConn)
		if err != nil {
			natsConn.Close()
			return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
		}
		if err := InitializeStreams(ctx, js, logger); err != nil {
			natsConn.Close()
			return nil, err
		}
		jsConfig = nats.JetStreamConfig{
			Disabled:          false,
			AutoProvision:     false,
			DurablePrefix:     queueGroup,
			DurableCalculator: ConsumerName,
			SubscribeOptions: []nc.SubOpt{
				nc.DeliverNew(),
				nc.AckExplicit(),
			},
		}
	}

	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:               cfg.URL,
			QueueGroupPrefix:  queueGroup,
			SubjectCalculator: subjectDetail,
			SubscribersCount:  1,
			AckWaitTimeout:    30 * time.Second,
			CloseTimeout:      10 * time.Second,
			Unmarshaler:       marshaler,
			NatsOptions:       natsOptions,
			JetStream:         jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		publisher.Close()
		natsConn.Close()
		logger.Error("Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.Info("Connected to NATS",
		slog.String("url", natsConn.ConnectedUrlRedacted()),
		slog.String("queue_group", queueGroup),
		slog.Bool("jetstream", cfg.JetStream),
	)

	return &EventBus{
		publisher:  publisher,
		subscriber: subscriber,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

// ConsumerName derives the queue group and JetStream durable name of topic.
// Every replica subscribing to a topic joins the same group, so each message
// is handled once. NATS consumer names may not contain dots or wildcards.
func ConsumerName(prefix, topic string) string {
	return consumerNameReplacer.Replace(prefix + "_" + topic)
}

var consumerNameReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

func subjectDetail(queueGroupPrefix, topic string) *nats.SubjectDetail {
	return &nats.SubjectDetail{
		Primary:    topic,
		QueueGroup: ConsumerName(queueGroupPrefix, topic),
	}
}

// Publisher returns the bus publisher.
func (eb *EventBus) Publisher() message.Publisher { return eb.publisher }

// Subscriber returns the bus subscriber.
func (eb *EventBus) Subscriber() message.Subscriber { return eb.subscriber }

// Publish sends msg to topic.
func (eb *EventBus) Publish(topic string, msg *message.Message) error {
	if msg.UUID == "" {
		msg.UUID = watermill.NewUUID()
	}
	if err := eb.publisher.Publish(topic, msg); err != nil {
		eb.logger.Error("Failed to publish message",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns the message channel of topic.
func (eb *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return messages, nil
}

// Close releases the publisher, the subscriber and the NATS connection.
func (eb *EventBus) Close() error {
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing publisher", slog.Any("error", err))
		}
	}
	// gochannel shares one instance for both sides.
	if eb.subscriber != nil && any(eb.subscriber) != any(eb.publisher) {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing subscriber", slog.Any("error", err))
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return nil
}
