package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/memberload/internal/output"
	"github.com/wesleyorama2/memberload/internal/scenario"
)

func newActionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions [name]",
		Short: "Print the action catalog",
		Long: `Print every action a session picks from, with its weight, its share of
the total weight and the number of pages it loads. With a name, print the
pages of that action in request order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			actions := cfg.Actions()

			if len(args) == 0 {
				return output.ActionTable(cmd.OutOrStdout(), actions)
			}

			a, ok := scenario.Lookup(actions, args[0])
			if !ok {
				return fmt.Errorf("unknown action: %s", args[0])
			}
			return output.StepList(cmd.OutOrStdout(), a)
		},
	}
	return cmd
}
