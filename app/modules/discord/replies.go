package discord

// Replies sent straight from the gateway, without touching the event bus.
const (
	ReplyNotInGuild     = "This command must be used in a guild."
	ReplyNotModerator   = "You do not have permission to use this command."
	ReplyUnknownCommand = "Unknown command."

	// Window options rejected before the interaction is deferred. The text
	// matches what the stats service would answer.
	ReplyNegativeHistoryDays = "history-days must be positive"
	ReplyConflictingWindow   = "use either history-days or since, not both"
)

// GenericErrorReply is shown when a request could not be dispatched.
const GenericErrorReply = "There was an error while executing this command!"

// statsWindowReply returns the reply for window options that can be rejected
// without any I/O, or "" when the request may be dispatched.
func statsWindowReply(historyDays *int, since string) string {
	if historyDays == nil {
		return ""
	}
	if *historyDays < 0 {
		return ReplyNegativeHistoryDays
	}
	if *historyDays > 0 && since != "" {
		return ReplyConflictingWindow
	}
	return ""
}
