package receiver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/makibytes/amqp-receiver/broker/backends"
	"github.com/makibytes/amqp-receiver/log"
)

// Handler consumes the messages of the receiver link, one at a time and in
// delivery order. It must return quickly: the next message is not received
// before it returns.
type Handler interface {
	Handle(ctx context.Context, msg *backends.Message) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, msg *backends.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *backends.Message) error {
	return f(ctx, msg)
}

// LogHandler logs identifier, application properties and body of every
// message. The AMQP header and properties sections are only logged in
// verbose mode, at debug level.
type LogHandler struct{}

// Handle implements Handler
func (LogHandler) Handle(ctx context.Context, msg *backends.Message) error {
	logger := log.G(ctx).WithField("id", msg.MessageID)

	logger.Infof("Received msg %s", msg.MessageID)

	if len(msg.Properties) > 0 {
		logger.WithField("properties", msg.Properties).
			Infof("With properties: %s", FormatProperties(msg.Properties))
	}

	if log.IsVerbose {
		for _, k := range sortedKeys(msg.InternalMetadata) {
			logger.Debugf("%s: %v", k, msg.InternalMetadata[k])
		}
	}

	body, err := msg.Text()
	if err != nil {
		return &MessageHandlingError{MessageID: msg.MessageID, Err: err}
	}
	logger.Infof("With body: %s", body)

	return nil
}

// FormatProperties renders properties as {k1=v1, k2=v2} with sorted keys
func FormatProperties(properties map[string]any) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range sortedKeys(properties) {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", k, properties[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
