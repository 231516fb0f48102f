package domain

import "errors"

// ErrUnsupportedAction is returned when no handler and no fallback resolve a call.
var ErrUnsupportedAction = errors.New("unsupported action")

// ErrArgumentMismatch is returned when a handler cannot accept the supplied parameters.
var ErrArgumentMismatch = errors.New("argument mismatch")

// ErrEventHalted is returned by a listener to veto an event, and by the dispatcher
// when a vetoed "before" event cancelled an action.
var ErrEventHalted = errors.New("event halted")

// ErrNotifierClosed is returned when notifying through a closed notifier.
var ErrNotifierClosed = errors.New("notifier closed")
