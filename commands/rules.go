package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewRulesCmd creates the rules subcommand: list the effective rule
// catalog (builtins plus any custom rule file).
func NewRulesCmd(global *GlobalFlags) *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the inference rule catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := NewRuntime(RuntimeOptions{
				ConfigPath: global.ConfigPath,
				RulesPath:  global.RulesPath,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tPRIORITY\tENABLED\tNAME")
			for _, rule := range rt.Registry.All() {
				if enabledOnly && !rule.Enabled {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n",
					rule.ID, rule.Type, rule.Priority, rule.Enabled, rule.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Only show enabled rules")
	return cmd
}
