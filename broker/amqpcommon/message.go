package amqpcommon

import (
	"bytes"
	"fmt"

	"github.com/Azure/go-amqp"
	"github.com/makibytes/amqp-receiver/broker/backends"
	"github.com/makibytes/amqp-receiver/log"
)

// ConvertAMQPToBackendMessage converts an AMQP 1.0 message to the common backend Message type
func ConvertAMQPToBackendMessage(msg *amqp.Message) *backends.Message {
	result := &backends.Message{
		Value:            msg.Value,
		Sequence:         msg.Sequence,
		Properties:       msg.ApplicationProperties,
		InternalMetadata: make(map[string]any),
		Delivery:         msg,
	}

	// A body made of several data sections is logged as one text
	if len(msg.Data) > 0 {
		result.Data = bytes.Join(msg.Data, nil)
	}

	if msg.Properties != nil {
		if msg.Properties.MessageID != nil {
			result.MessageID = fmt.Sprintf("%v", msg.Properties.MessageID)
		}
		if msg.Properties.CorrelationID != nil {
			result.CorrelationID = fmt.Sprintf("%v", msg.Properties.CorrelationID)
		}
		if msg.Properties.Subject != nil {
			result.Subject = *msg.Properties.Subject
		}
		if msg.Properties.ReplyTo != nil {
			result.ReplyTo = *msg.Properties.ReplyTo
		}
		if msg.Properties.ContentType != nil {
			result.ContentType = *msg.Properties.ContentType
		}

		if log.IsVerbose {
			result.InternalMetadata["MessageProperties"] = fmt.Sprintf("%+v", *msg.Properties)
		}
	}

	if msg.Header != nil {
		result.Priority = int(msg.Header.Priority)
		result.Persistent = msg.Header.Durable

		if log.IsVerbose {
			result.InternalMetadata["Header"] = fmt.Sprintf("%+v", *msg.Header)
		}
	}

	return result
}
