package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrServerUnreachable reports a failed health probe.
var ErrServerUnreachable = errors.New("server is not reachable")

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			if !client.IsConnected(cmd.Context()) {
				return ErrServerUnreachable
			}

			fmt.Println("OK")

			return nil
		},
	}
}
