package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the JetStream stream that stores wordle events.
const StreamName = "WORDLE"

// StreamSubjects are the subjects captured by StreamName.
var StreamSubjects = []string{"wordle.>"}

// InitializeStreams creates the wordle stream, or adds missing subjects to it.
func InitializeStreams(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	stream, err := js.Stream(ctx, StreamName)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		_, err := js.CreateStream(ctx, jetstream.StreamConfig{
			Name:      StreamName,
			Subjects:  StreamSubjects,
			Retention: jetstream.InterestPolicy,
		})
		if err != nil {
			logger.Error("Failed to create JetStream stream", slog.String("stream", StreamName), slog.Any("error", err))
			return fmt.Errorf("failed to create stream: %w", err)
		}
		logger.Info("Created JetStream stream", slog.String("stream", StreamName))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream: %w", err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	missing := false
	for _, want := range StreamSubjects {
		found := false
		for _, s := range info.Config.Subjects {
			if s == want {
				found = true
				break
			}
		}
		if !found {
			info.Config.Subjects = append(info.Config.Subjects, want)
			missing = true
		}
	}
	if missing {
		if _, err := js.UpdateStream(ctx, info.Config); err != nil {
			return fmt.Errorf("failed to update stream subjects: %w", err)
		}
		logger.Info("Stream updated with wordle subjects", slog.String("stream", StreamName))
	}
	return nil
}
