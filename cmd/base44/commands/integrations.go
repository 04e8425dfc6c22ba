package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/base44-client/pkg/base44"
)

// NewIntegrationsCommand creates the integrations command group.
func NewIntegrationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "integrations",
		Aliases: []string{"integration"},
		Short:   "Invoke integration endpoints",
	}

	cmd.AddCommand(newIntegrationsInvokeCommand())

	return cmd
}

func newIntegrationsInvokeCommand() *cobra.Command {
	var dataArg string

	cmd := &cobra.Command{
		Use:   "invoke <package> <endpoint>",
		Short: "Invoke an integration endpoint with named parameters",
		Long: `Invoke an endpoint of an integration package.

The built-in package is named Core; any other package name is treated as an
installed integration. Parameters are passed as a JSON object:

  base44 integrations invoke Core SendEmail -d '{"to":"a@b.c","subject":"Hi"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			payload := base44.Payload{}
			if err := parseJSONFlag(dataArg, &payload); err != nil {
				return err
			}

			result, err := client.Integrations().Package(args[0]).Invoke(cmd.Context(), args[1], payload)
			if err != nil {
				return fmt.Errorf("failed to invoke %s.%s: %w", args[0], args[1], err)
			}

			// The endpoint result is arbitrary JSON; re-indent it for the
			// terminal rather than forcing it through a table.
			var decoded interface{}
			if err := json.Unmarshal(result, &decoded); err != nil {
				_, _ = os.Stdout.Write(result)
				fmt.Println()

				return nil
			}

			return renderValue(decoded)
		},
	}

	cmd.Flags().StringVarP(&dataArg, "data", "d", "", "named parameters as a JSON object")

	return cmd
}
