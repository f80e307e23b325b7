package statsservice

import "errors"

// ValidationError is a rejected user input. Its message is safe to show to users.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	// ErrInvalidHistoryWindow rejects a negative history-days option.
	ErrInvalidHistoryWindow = &ValidationError{Message: "history-days must be positive"}
	// ErrConflictingWindow rejects requests that set both history-days and since.
	ErrConflictingWindow = &ValidationError{Message: "use either history-days or since, not both"}
	// ErrInvalidSince rejects since text that does not describe a past time.
	ErrInvalidSince = &ValidationError{Message: "since must describe a time in the past, like \"2 weeks ago\" or \"last monday\""}
	// ErrEmptyNickname rejects blank nicknames.
	ErrEmptyNickname = &ValidationError{Message: "nickname must not be empty"}
)

// AsValidationError finds the user input error wrapped in err, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
