package main

import (
	"context"
	"os"

	"github.com/makibytes/amqp-receiver/broker/amqp10"
	"github.com/makibytes/amqp-receiver/cmd"
	"github.com/makibytes/amqp-receiver/log"
)

func main() {
	rootCmd := cmd.NewRootCommand(os.LookupEnv, amqp10.Dial)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.L.WithError(err).Error("receiver stopped")
		os.Exit(1)
	}
}
