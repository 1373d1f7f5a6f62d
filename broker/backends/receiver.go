package backends

import "context"

// ReceiverOptions contains options for attaching a receiver link
type ReceiverOptions struct {
	Address      string
	Capabilities []string // e.g. ["queue"] or ["topic"], nil = broker default
}

// Connection is an open connection to a broker
type Connection interface {
	// NewReceiver attaches a receive-only link to an address
	NewReceiver(ctx context.Context, opts ReceiverOptions) (Receiver, error)

	// Close closes the connection to the broker
	Close(ctx context.Context) error
}

// Receiver is a receive-only link bound to one address
type Receiver interface {
	// Receive blocks until the next message arrives or ctx is done
	Receive(ctx context.Context) (*Message, error)

	// Accept settles a received message
	Accept(ctx context.Context, msg *Message) error

	// Close detaches the link
	Close(ctx context.Context) error
}
