package camera

import "errors"

var (
	// ErrUnknownCommand is returned for a command name outside models.AllCommands.
	ErrUnknownCommand = errors.New("unknown camera command")
	// ErrStatusUnknown is returned by a strict dispatcher before the first successful poll.
	ErrStatusUnknown = errors.New("camera status not known yet")
	// ErrBusy means another command is still waiting for its response.
	ErrBusy = errors.New("a camera command is already in flight")
	// ErrThrottled means the press exceeded the configured command rate.
	ErrThrottled = errors.New("camera command rate exceeded")
	// ErrAlreadyRunning is returned by Run when the poll loop is already active.
	ErrAlreadyRunning = errors.New("poller already running")
)
