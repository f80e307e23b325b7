// Package handlerwrapper adapts typed event handlers to watermill.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Result is one outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTyped decodes the incoming payload into T, runs handler inside a span and
// publishes every returned Result. Payloads that cannot be decoded are logged
// and acknowledged so they are not redelivered forever.
func WrapTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler func(context.Context, *T) ([]Result, error),
) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := attr.WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("handler", handlerName),
				attribute.String("message_uuid", msg.UUID),
			))
		} else {
			span = trace.SpanFromContext(ctx)
		}
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to decode event payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			span.RecordError(err)
			return nil
		}

		out, err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			return err
		}

		for _, r := range out {
			outMsg, err := NewMessage(ctx, r.Payload)
			if err != nil {
				return err
			}
			for k, v := range r.Metadata {
				outMsg.Metadata.Set(k, v)
			}
			if err := publisher.Publish(r.Topic, outMsg); err != nil {
				span.RecordError(err)
				return fmt.Errorf("failed to publish %s: %w", r.Topic, err)
			}
			logger.DebugContext(ctx, "Published handler result",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("topic", r.Topic),
			)
		}
		return nil
	}
}

// NewMessage JSON-encodes payload into a message carrying the correlation id of ctx.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if id := attr.CorrelationID(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	return msg, nil
}
