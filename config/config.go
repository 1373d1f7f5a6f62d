// Package config resolves the receiver configuration from AMQP_RECEIVER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Environment variables read by Load
const (
	EnvHost        = "AMQP_RECEIVER_HOST"
	EnvPort        = "AMQP_RECEIVER_PORT"
	EnvUsername    = "AMQP_RECEIVER_USERNAME"
	EnvPassword    = "AMQP_RECEIVER_PASSWORD"
	EnvAddress     = "AMQP_RECEIVER_ADDRESS"
	EnvAddressType = "AMQP_RECEIVER_ADDRESS_TYPE"

	EnvTLS         = "AMQP_RECEIVER_TLS"
	EnvCACert      = "AMQP_RECEIVER_CA_CERT"
	EnvClientCert  = "AMQP_RECEIVER_CLIENT_CERT"
	EnvClientKey   = "AMQP_RECEIVER_CLIENT_KEY"
	EnvTLSInsecure = "AMQP_RECEIVER_TLS_INSECURE"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 5672
)

// Address types that translate into a source capability
const (
	AddressTypeQueue = "queue"
	AddressTypeTopic = "topic"
)

var (
	ErrMissing     = errors.New("required variable is not set")
	ErrInvalidPort = errors.New("not a valid port number")
)

// LookupFunc returns the value of a variable and whether it is set.
// os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// ClientConfig holds the broker connection settings
type ClientConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      TLSConfig
}

// TLSConfig holds TLS connection parameters
type TLSConfig struct {
	Enabled    bool
	CACert     string // Path to CA certificate file
	ClientCert string // Path to client certificate file
	ClientKey  string // Path to client key file
	Insecure   bool   // Skip certificate verification
}

// ServerURL returns the amqp:// (or amqps:// with TLS) URL of the broker
func (c ClientConfig) ServerURL() string {
	scheme := "amqp"
	if c.TLS.Enabled {
		scheme = "amqps"
	}
	return scheme + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReceiverConfig holds the settings of the receiver link
type ReceiverConfig struct {
	Address     string
	AddressType string
}

// Capabilities returns the source capabilities for the address type.
// Only "queue" and "topic" are passed on, anything else leaves the
// addressing semantics to the broker.
func (r ReceiverConfig) Capabilities() []string {
	switch r.AddressType {
	case AddressTypeQueue, AddressTypeTopic:
		return []string{r.AddressType}
	default:
		return nil
	}
}

// ConfigurationError reports a missing or invalid setting
type ConfigurationError struct {
	Variable string
	Value    string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("configuration: %s: %v", e.Variable, e.Err)
	}
	return fmt.Sprintf("configuration: %s=%q: %v", e.Variable, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Load resolves client and receiver configuration through lookup
func Load(lookup LookupFunc) (ClientConfig, ReceiverConfig, error) {
	get := func(key string) string {
		value, _ := lookup(key)
		return value
	}

	client := ClientConfig{
		Host:     get(EnvHost),
		Port:     DefaultPort,
		Username: get(EnvUsername),
		Password: get(EnvPassword),
		TLS: TLSConfig{
			CACert:     get(EnvCACert),
			ClientCert: get(EnvClientCert),
			ClientKey:  get(EnvClientKey),
		},
	}
	if client.Host == "" {
		client.Host = DefaultHost
	}

	if value := get(EnvPort); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 || port > 65535 {
			return ClientConfig{}, ReceiverConfig{}, &ConfigurationError{Variable: EnvPort, Value: value, Err: ErrInvalidPort}
		}
		client.Port = port
	}

	var err error
	if client.TLS.Enabled, err = parseBool(EnvTLS, get(EnvTLS)); err != nil {
		return ClientConfig{}, ReceiverConfig{}, err
	}
	if client.TLS.Insecure, err = parseBool(EnvTLSInsecure, get(EnvTLSInsecure)); err != nil {
		return ClientConfig{}, ReceiverConfig{}, err
	}
	if client.TLS.CACert != "" || client.TLS.ClientCert != "" {
		client.TLS.Enabled = true
	}

	receiver := ReceiverConfig{
		Address:     get(EnvAddress),
		AddressType: get(EnvAddressType),
	}
	if receiver.Address == "" {
		return ClientConfig{}, ReceiverConfig{}, &ConfigurationError{Variable: EnvAddress, Err: ErrMissing}
	}

	return client, receiver, nil
}

func parseBool(key, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &ConfigurationError{Variable: key, Value: value, Err: err}
	}
	return b, nil
}
