package receiver

import "fmt"

// ConnectionError reports a failed connection attempt
type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ReceiverError reports a receiver link that could not be attached or
// that failed while receiving
type ReceiverError struct {
	Address string
	Err     error
}

func (e *ReceiverError) Error() string {
	return fmt.Sprintf("receiving from %s: %v", e.Address, e.Err)
}

func (e *ReceiverError) Unwrap() error {
	return e.Err
}

// MessageHandlingError reports a single message the handler could not
// process. It never stops the receive loop.
type MessageHandlingError struct {
	MessageID string
	Err       error
}

func (e *MessageHandlingError) Error() string {
	return fmt.Sprintf("handling message %q: %v", e.MessageID, e.Err)
}

func (e *MessageHandlingError) Unwrap() error {
	return e.Err
}
