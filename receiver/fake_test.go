package receiver

import (
	"context"
	"errors"
	"sync"

	"github.com/makibytes/amqp-receiver/broker/backends"
	"github.com/makibytes/amqp-receiver/config"
)

type fakeBroker struct {
	mu sync.Mutex

	dialErr     error
	receiverErr error
	receiveErr  error
	messages    []*backends.Message
	// drained is called once all messages have been delivered
	drained func()

	dialCount     int
	dialedCfg     config.ClientConfig
	receiverCount int
	receiverOpts  backends.ReceiverOptions
	accepted      []string
	connClosed    bool
	linkClosed    bool
}

func (b *fakeBroker) Dial(_ context.Context, cfg config.ClientConfig) (backends.Connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dialCount++
	b.dialedCfg = cfg
	if b.dialErr != nil {
		return nil, b.dialErr
	}
	return &fakeConnection{broker: b}, nil
}

type fakeConnection struct {
	broker *fakeBroker
}

func (c *fakeConnection) NewReceiver(_ context.Context, opts backends.ReceiverOptions) (backends.Receiver, error) {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receiverCount++
	b.receiverOpts = opts
	if b.receiverErr != nil {
		return nil, b.receiverErr
	}
	return &fakeReceiver{broker: b}, nil
}

func (c *fakeConnection) Close(context.Context) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.broker.connClosed = true
	return nil
}

type fakeReceiver struct {
	broker *fakeBroker
	next   int
}

func (r *fakeReceiver) Receive(ctx context.Context) (*backends.Message, error) {
	b := r.broker
	b.mu.Lock()
	if r.next < len(b.messages) {
		msg := b.messages[r.next]
		r.next++
		b.mu.Unlock()
		return msg, nil
	}
	receiveErr, drained := b.receiveErr, b.drained
	b.mu.Unlock()

	if receiveErr != nil {
		return nil, receiveErr
	}
	if drained != nil {
		drained()
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (r *fakeReceiver) Accept(_ context.Context, msg *backends.Message) error {
	r.broker.mu.Lock()
	defer r.broker.mu.Unlock()
	r.broker.accepted = append(r.broker.accepted, msg.MessageID)
	return nil
}

func (r *fakeReceiver) Close(context.Context) error {
	r.broker.mu.Lock()
	defer r.broker.mu.Unlock()
	r.broker.linkClosed = true
	return nil
}

var errBrokerDown = errors.New("dial tcp 127.0.0.1:5672: connect: connection refused")

func lookupFrom(env map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}
