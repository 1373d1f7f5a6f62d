//go:build integration

// Package integration provides testcontainer helpers for integration tests.
// Build with: -tags integration
package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
)

// BrokerContainer holds a running test broker container.
type BrokerContainer struct {
	Container testcontainers.Container
	Host      string
	Port      int
	User      string
	Password  string
}

// Terminate stops and removes the container
func (b *BrokerContainer) Terminate(ctx context.Context) {
	if b.Container != nil {
		b.Container.Terminate(ctx) //nolint:errcheck
	}
}

// URL returns the amqp:// URL of the broker
func (b *BrokerContainer) URL() string {
	return fmt.Sprintf("amqp://%s:%d", b.Host, b.Port)
}

func newBrokerContainer(ctx context.Context, c testcontainers.Container, user, password string) (*BrokerContainer, error) {
	host, err := c.Host(ctx)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, err
	}
	port, err := c.MappedPort(ctx, "5672/tcp")
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, err
	}

	return &BrokerContainer{
		Container: c,
		Host:      host,
		Port:      port.Int(),
		User:      user,
		Password:  password,
	}, nil
}

// StartArtemis starts an Apache Artemis container. Artemis routes AMQP 1.0
// links by the queue and topic source capabilities.
func StartArtemis(ctx context.Context) (*BrokerContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "apache/activemq-artemis:latest-alpine",
		ExposedPorts: []string{"5672/tcp"},
		Env: map[string]string{
			"ARTEMIS_USER":     "artemis",
			"ARTEMIS_PASSWORD": "artemis",
		},
		WaitingFor: wait.ForListeningPort("5672/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting Artemis: %w", err)
	}

	return newBrokerContainer(ctx, container, "artemis", "artemis")
}

// StartRabbitMQ starts a RabbitMQ 4 container, which speaks AMQP 1.0 on
// its default listener, using the testcontainers module.
func StartRabbitMQ(ctx context.Context) (*BrokerContainer, error) {
	c, err := rabbitmq.Run(ctx, "rabbitmq:4-management-alpine")
	if err != nil {
		return nil, fmt.Errorf("starting RabbitMQ: %w", err)
	}

	return newBrokerContainer(ctx, c, c.AdminUsername, c.AdminPassword)
}
