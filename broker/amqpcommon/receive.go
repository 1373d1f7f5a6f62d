package amqpcommon

import (
	"github.com/Azure/go-amqp"
)

// LinkName is the name of the receiver link
const LinkName = "amqp-receiver"

// NewReceiverOptions returns the link options for a receive-only link.
// The capabilities end up as source capabilities, which is how Artemis and
// other brokers tell ANYCAST (queue) from MULTICAST (topic) addresses.
func NewReceiverOptions(capabilities []string) *amqp.ReceiverOptions {
	return &amqp.ReceiverOptions{
		Name:               LinkName,
		SourceCapabilities: capabilities,
		SourceExpiryPolicy: amqp.ExpiryPolicyLinkDetach,
		Durability:         amqp.DurabilityNone,
		SettlementMode:     amqp.ReceiverSettleModeFirst.Ptr(),
	}
}
