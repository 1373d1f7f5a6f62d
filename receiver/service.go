// Package receiver runs the startup pipeline of the AMQP receiver: load
// configuration, connect, attach one receiver link, then hand every
// delivered message to a Handler until the context is cancelled.
package receiver

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/makibytes/amqp-receiver/broker/backends"
	"github.com/makibytes/amqp-receiver/config"
	"github.com/makibytes/amqp-receiver/log"
)

// CloseTimeout bounds the cleanup of link and connection on shutdown
const CloseTimeout = 5 * time.Second

// Dialer opens a connection to the broker described by cfg
type Dialer func(ctx context.Context, cfg config.ClientConfig) (backends.Connection, error)

// Service wires configuration, connection, receiver link and handler
type Service struct {
	dial    Dialer
	handler Handler
	state   atomic.Int32
}

// NewService creates a service that connects with dial and passes every
// message to handler
func NewService(dial Dialer, handler Handler) *Service {
	return &Service{
		dial:    dial,
		handler: handler,
	}
}

// State returns the current lifecycle state
func (s *Service) State() State {
	return State(s.state.Load())
}

func (s *Service) transition(ctx context.Context, state State) {
	previous := State(s.state.Swap(int32(state)))
	log.G(ctx).WithFields(log.Fields{
		"from": previous.String(),
		"to":   state.String(),
	}).Debug("state change")
}

// Run loads the configuration through lookup, connects, attaches the
// receiver link and handles messages until ctx is cancelled.
//
// A failure before messages are received returns a *config.ConfigurationError,
// *ConnectionError or *ReceiverError and nothing after the failing step is
// attempted. Cancelling ctx while receiving returns nil.
func (s *Service) Run(ctx context.Context, lookup config.LookupFunc) error {
	clientCfg, receiverCfg, err := config.Load(lookup)
	if err != nil {
		s.transition(ctx, StateStopped)
		return err
	}
	s.transition(ctx, StateConfigLoaded)

	conn, err := s.dial(ctx, clientCfg)
	if err != nil {
		s.transition(ctx, StateStopped)
		return &ConnectionError{Server: clientCfg.ServerURL(), Err: err}
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CloseTimeout)
		defer cancel()
		if err := conn.Close(closeCtx); err != nil {
			log.G(ctx).WithError(err).Warn("failed to close connection")
		}
		s.transition(ctx, StateStopped)
	}()

	log.G(ctx).WithFields(log.Fields{
		"host":     clientCfg.Host,
		"port":     clientCfg.Port,
		"username": clientCfg.Username,
	}).Infof("Created AMQP connection to %s:%d as %s", clientCfg.Host, clientCfg.Port, clientCfg.Username)
	s.transition(ctx, StateConnected)

	receiver, err := conn.NewReceiver(ctx, backends.ReceiverOptions{
		Address:      receiverCfg.Address,
		Capabilities: receiverCfg.Capabilities(),
	})
	if err != nil {
		return &ReceiverError{Address: receiverCfg.Address, Err: err}
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CloseTimeout)
		defer cancel()
		if err := receiver.Close(closeCtx); err != nil {
			log.G(ctx).WithError(err).Debug("failed to close receiver")
		}
	}()

	log.G(ctx).WithField("address", receiverCfg.Address).
		Infof("Receiving messages from address %s", receiverCfg.Address)
	s.transition(ctx, StateReceiving)

	err = s.receive(ctx, receiver, receiverCfg.Address)
	s.transition(ctx, StateShuttingDown)
	return err
}

func (s *Service) receive(ctx context.Context, receiver backends.Receiver, address string) error {
	for {
		msg, err := receiver.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &ReceiverError{Address: address, Err: err}
		}

		if err := s.handler.Handle(ctx, msg); err != nil {
			log.G(ctx).WithError(err).WithField("id", msg.MessageID).Error("failed to handle message")
		}

		if err := receiver.Accept(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return &ReceiverError{Address: address, Err: err}
		}
	}
}
