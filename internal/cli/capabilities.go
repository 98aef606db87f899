package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/labelsmith/labelsmith/pkg/bridge"
)

// capabilitiesCommand creates the capabilities command.
func (c *CLI) capabilitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Print the supported actions and item fields as JSON",
		Long: `Print the supported actions and item fields as JSON.

The output lists every action verb, item type, shape type, and the
canonical field names per item type. Feed it to whatever produces your
action batches so generated batches only use supported operations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(bridge.ActionCapabilities())
		},
	}
}
