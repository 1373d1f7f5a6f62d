package backends

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrNotText is returned when a message body cannot be rendered as text
var ErrNotText = errors.New("message body is not text")

// Message represents a message delivered on a receiver link
type Message struct {
	// Data holds the concatenated data sections of the body
	Data []byte
	// Value holds an amqp-value body when the message has no data sections
	Value any
	// Sequence holds the amqp-sequence sections of the body
	Sequence   [][]any
	Properties map[string]any

	// Message metadata
	MessageID     string
	CorrelationID string
	Subject       string
	ReplyTo       string
	ContentType   string
	Priority      int
	Persistent    bool

	// Internal metadata (for display purposes)
	InternalMetadata map[string]any

	// Delivery is the broker specific handle used to settle the message
	Delivery any
}

// Text returns the body decoded as UTF-8 text
func (m *Message) Text() (string, error) {
	if m.Data != nil {
		if !utf8.Valid(m.Data) {
			return "", fmt.Errorf("%w: invalid UTF-8 in data section", ErrNotText)
		}
		return string(m.Data), nil
	}
	if len(m.Sequence) > 0 {
		return "", fmt.Errorf("%w: amqp-sequence body", ErrNotText)
	}

	switch v := m.Value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		if !utf8.Valid(v) {
			return "", fmt.Errorf("%w: invalid UTF-8 in binary value", ErrNotText)
		}
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: amqp-value of type %T", ErrNotText, v)
	}
}
