package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/makibytes/amqp-receiver/config"
	"github.com/makibytes/amqp-receiver/log"
	"github.com/makibytes/amqp-receiver/receiver"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the receiver command. The receiver is configured
// through lookup (AMQP_RECEIVER_* variables) and connects with dial; the
// flags only control logging.
func NewRootCommand(lookup config.LookupFunc, dial receiver.Dialer) *cobra.Command {
	var (
		verbose   bool
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "amqp-receiver",
		Short: "Log every message received from an AMQP 1.0 address",
		Long: `Connects to an AMQP 1.0 broker, attaches one receiver link and logs
identifier, properties and body of every message it receives.

Environment:
  AMQP_RECEIVER_HOST          broker host (default localhost)
  AMQP_RECEIVER_PORT          broker port (default 5672)
  AMQP_RECEIVER_USERNAME      SASL PLAIN username, ANONYMOUS when unset
  AMQP_RECEIVER_PASSWORD      SASL PLAIN password
  AMQP_RECEIVER_ADDRESS       address to receive from (required)
  AMQP_RECEIVER_ADDRESS_TYPE  queue or topic, sets the source capability
  AMQP_RECEIVER_TLS           enable TLS (amqps)
  AMQP_RECEIVER_CA_CERT       path to CA certificate file
  AMQP_RECEIVER_CLIENT_CERT   path to client certificate file
  AMQP_RECEIVER_CLIENT_KEY    path to client private key file
  AMQP_RECEIVER_TLS_INSECURE  skip TLS certificate verification`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return log.Setup(cmd.ErrOrStderr(), verbose, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return receiver.NewService(dial, receiver.LogHandler{}).Run(ctx, lookup)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
