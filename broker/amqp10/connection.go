// Package amqp10 adapts go-amqp connections and receiver links to the
// backends interfaces.
package amqp10

import (
	"context"
	"errors"

	"github.com/Azure/go-amqp"
	"github.com/makibytes/amqp-receiver/broker/amqpcommon"
	"github.com/makibytes/amqp-receiver/broker/backends"
	"github.com/makibytes/amqp-receiver/config"
)

// ConnArguments wraps the common AMQP connection arguments
type ConnArguments = amqpcommon.ConnArguments

// NewConnArguments maps the client configuration to connection arguments
func NewConnArguments(cfg config.ClientConfig) ConnArguments {
	return ConnArguments{
		Server:   cfg.ServerURL(),
		User:     cfg.Username,
		Password: cfg.Password,
		TLS:      amqpcommon.TLSConfig(cfg.TLS),
	}
}

// Connection adapts an AMQP 1.0 connection and its session to backends.Connection
type Connection struct {
	connArgs   ConnArguments
	connection *amqp.Conn
	session    *amqp.Session
}

// NewConnection connects to the broker and opens a session
func NewConnection(ctx context.Context, connArgs ConnArguments) (*Connection, error) {
	connection, session, err := amqpcommon.Connect(ctx, connArgs)
	if err != nil {
		return nil, err
	}

	return &Connection{
		connArgs:   connArgs,
		connection: connection,
		session:    session,
	}, nil
}

// Dial connects to the broker described by cfg
func Dial(ctx context.Context, cfg config.ClientConfig) (backends.Connection, error) {
	conn, err := NewConnection(ctx, NewConnArguments(cfg))
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// NewReceiver implements backends.Connection
func (c *Connection) NewReceiver(ctx context.Context, opts backends.ReceiverOptions) (backends.Receiver, error) {
	link, err := c.session.NewReceiver(ctx, opts.Address, amqpcommon.NewReceiverOptions(opts.Capabilities))
	if err != nil {
		return nil, err
	}
	return &Receiver{link: link}, nil
}

// Close implements backends.Connection
func (c *Connection) Close(ctx context.Context) error {
	var sessionErr, connErr error
	if c.session != nil {
		sessionErr = c.session.Close(ctx)
	}
	if c.connection != nil {
		connErr = c.connection.Close()
	}
	return errors.Join(sessionErr, connErr)
}

// Receiver adapts an AMQP 1.0 receiver link to backends.Receiver
type Receiver struct {
	link *amqp.Receiver
}

// Receive implements backends.Receiver
func (r *Receiver) Receive(ctx context.Context) (*backends.Message, error) {
	message, err := r.link.Receive(ctx, nil)
	if err != nil {
		return nil, err
	}
	return amqpcommon.ConvertAMQPToBackendMessage(message), nil
}

// Accept implements backends.Receiver
func (r *Receiver) Accept(ctx context.Context, msg *backends.Message) error {
	delivery, ok := msg.Delivery.(*amqp.Message)
	if !ok {
		return errors.New("message was not received on an AMQP link")
	}
	return r.link.AcceptMessage(ctx, delivery)
}

// Close implements backends.Receiver
func (r *Receiver) Close(ctx context.Context) error {
	return r.link.Close(ctx)
}
