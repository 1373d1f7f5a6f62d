//go:build integration

package amqp10

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Azure/go-amqp"
	"github.com/makibytes/amqp-receiver/broker/backends"
	"github.com/makibytes/amqp-receiver/config"
	"github.com/makibytes/amqp-receiver/log"
	"github.com/makibytes/amqp-receiver/receiver"
	"github.com/makibytes/amqp-receiver/test/integration"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

var artemis *integration.BrokerContainer

func TestMain(m *testing.M) {
	ctx := context.Background()
	broker, err := integration.StartArtemis(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start Artemis: %v\n", err)
		os.Exit(1)
	}
	artemis = broker

	// Wait until Artemis is fully ready (TCP open doesn't mean AMQP is ready)
	err = integration.WaitForBroker(ctx, func(ctx context.Context) error {
		conn, err := Dial(ctx, clientConfig(artemis))
		if err != nil {
			return err
		}
		return conn.Close(ctx)
	}, 30*time.Second)
	if err != nil {
		broker.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "Artemis not ready: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	broker.Terminate(ctx)
	os.Exit(code)
}

func clientConfig(b *integration.BrokerContainer) config.ClientConfig {
	return config.ClientConfig{
		Host:     b.Host,
		Port:     b.Port,
		Username: b.User,
		Password: b.Password,
	}
}

func env(b *integration.BrokerContainer, address, addressType string) config.LookupFunc {
	values := map[string]string{
		config.EnvHost:        b.Host,
		config.EnvPort:        strconv.Itoa(b.Port),
		config.EnvUsername:    b.User,
		config.EnvPassword:    b.Password,
		config.EnvAddress:     address,
		config.EnvAddressType: addressType,
	}
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func randomSuffix() string { return fmt.Sprintf("%d", rand.Int63()) }

func send(t *testing.T, ctx context.Context, address, capability string, msg *amqp.Message) {
	t.Helper()

	conn, err := NewConnection(ctx, NewConnArguments(clientConfig(artemis)))
	if err != nil {
		t.Fatalf("NewConnection (sender): %v", err)
	}
	defer conn.Close(ctx)

	sender, err := conn.session.NewSender(ctx, address, &amqp.SenderOptions{
		TargetCapabilities: []string{capability},
	})
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer sender.Close(ctx)

	if err := sender.Send(ctx, msg, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestArtemis_QueueReceive(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue := "amqp-receiver-queue-" + randomSuffix()

	conn, err := Dial(ctx, clientConfig(artemis))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(ctx)

	rcv, err := conn.NewReceiver(ctx, backends.ReceiverOptions{
		Address:      queue,
		Capabilities: []string{"queue"},
	})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	defer rcv.Close(ctx)

	msg := amqp.NewMessage([]byte("hello-queue"))
	msg.Properties = &amqp.MessageProperties{MessageID: "m1"}
	msg.ApplicationProperties = map[string]any{"x": "y"}
	send(t, ctx, queue, "queue", msg)

	received, err := rcv.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := rcv.Accept(ctx, received); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if received.MessageID != "m1" {
		t.Errorf("MessageID = %q, want %q", received.MessageID, "m1")
	}
	if received.Properties["x"] != "y" {
		t.Errorf("property x = %v, want %q", received.Properties["x"], "y")
	}
	if text, _ := received.Text(); text != "hello-queue" {
		t.Errorf("body = %q, want %q", text, "hello-queue")
	}
}

func TestArtemis_Close(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := NewConnection(ctx, NewConnArguments(clientConfig(artemis)))
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	if err := conn.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestArtemis_WrongPassword(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	cfg := clientConfig(artemis)
	cfg.Password = "wrong"

	conn, err := Dial(context.Background(), cfg)
	if err == nil {
		conn.Close(context.Background())
		t.Fatal("expected authentication error, got nil")
	}
}

func TestArtemis_ServiceLogsTopicMessage(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	topic := "amqp-receiver-topic-" + randomSuffix()

	logger, hook := logtest.NewNullLogger()
	ctx, cancel := context.WithTimeout(log.WithLogger(context.Background(), logrus.NewEntry(logger)), 30*time.Second)
	defer cancel()

	svc := receiver.NewService(Dial, receiver.LogHandler{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Run(ctx, env(artemis, topic, "topic"))
	}()

	// A topic only delivers to subscribers attached before the send
	for svc.State() != receiver.StateReceiving {
		select {
		case err := <-errCh:
			t.Fatalf("Run: %v", err)
		case <-ctx.Done():
			t.Fatal("timeout waiting for receiver")
		case <-time.After(50 * time.Millisecond):
		}
	}

	msg := amqp.NewMessage([]byte("hello-topic"))
	msg.Properties = &amqp.MessageProperties{MessageID: "t1"}
	send(t, ctx, topic, "topic", msg)

	for !hasMessage(hook, "With body: hello-topic") {
		select {
		case err := <-errCh:
			t.Fatalf("Run: %v", err)
		case <-ctx.Done():
			t.Fatal("timeout waiting for message log")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	if err := <-errCh; err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v after cancel", err)
	}
	if !hasMessage(hook, "Received msg t1") {
		t.Error("missing identifier log line")
	}
}

func TestRabbitMQ_Dial(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	ctx := context.Background()
	rabbit, err := integration.StartRabbitMQ(ctx)
	if err != nil {
		t.Fatalf("StartRabbitMQ: %v", err)
	}
	defer rabbit.Terminate(ctx)

	err = integration.WaitForBroker(ctx, func(ctx context.Context) error {
		conn, err := Dial(ctx, clientConfig(rabbit))
		if err != nil {
			return err
		}
		return conn.Close(ctx)
	}, 60*time.Second)
	if err != nil {
		t.Fatalf("RabbitMQ AMQP 1.0 listener at %s: %v", rabbit.URL(), err)
	}
}

func hasMessage(hook *logtest.Hook, message string) bool {
	for _, e := range hook.AllEntries() {
		if e.Message == message {
			return true
		}
	}
	return false
}
