package statshandlers

import (
	"context"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
)

// Handlers defines the interface for stats event handlers. Every handler
// answers its request with exactly one wordleevents.ReplyV1 result.
type Handlers interface {
	HandleStatsRequested(ctx context.Context, payload *wordleevents.StatsRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleNicknameAddRequested(ctx context.Context, payload *wordleevents.NicknameAddRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleNicknameRemoveRequested(ctx context.Context, payload *wordleevents.NicknameRemoveRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleNicknameListRequested(ctx context.Context, payload *wordleevents.NicknameListRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
