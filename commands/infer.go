package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInferCmd creates the infer subcommand: load triples, run the
// engine to fixed point and print the derived facts.
func NewInferCmd(global *GlobalFlags) *cobra.Command {
	var showJustifications bool

	cmd := &cobra.Command{
		Use:   "infer <triples.yaml>",
		Short: "Derive new facts from a triples file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := NewRuntime(RuntimeOptions{
				ConfigPath:  global.ConfigPath,
				TriplesPath: args[0],
				RulesPath:   global.RulesPath,
			})
			if err != nil {
				return err
			}

			facts, err := rt.Engine.ComputeInferences(cmd.Context())
			if err != nil {
				return fmt.Errorf("compute inferences: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, fact := range facts {
				fmt.Fprintf(out, "%s  [%s]\n", fact.Triple.String(), fact.Rule.ID)
				if showJustifications && fact.Justification != nil {
					fmt.Fprintf(out, "    %s\n", fact.Justification.Explanation)
				}
			}

			stats := rt.Engine.Stats()
			fmt.Fprintf(out, "\n%d facts derived in %d iterations (%s)\n",
				stats.TotalInferred, stats.Iterations, stats.LastDuration)
			if stats.Truncated {
				fmt.Fprintln(out, "warning: inference limit reached, results are partial")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showJustifications, "explain", false, "Print a justification for each derived fact")
	return cmd
}
