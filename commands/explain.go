package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semreason/triple"
)

// NewExplainCmd creates the explain subcommand: show how a triple is
// supported, whether asserted or derived.
func NewExplainCmd(global *GlobalFlags) *cobra.Command {
	var triplesPath string

	cmd := &cobra.Command{
		Use:   "explain <subject> <predicate> <object>",
		Short: "Explain how a triple is supported",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := NewRuntime(RuntimeOptions{
				ConfigPath:  global.ConfigPath,
				TriplesPath: triplesPath,
				RulesPath:   global.RulesPath,
			})
			if err != nil {
				return err
			}

			if _, err := rt.Engine.ComputeInferences(cmd.Context()); err != nil {
				return fmt.Errorf("compute inferences: %w", err)
			}

			t := triple.New(args[0], args[1], args[2])
			j, err := rt.Engine.Justify(cmd.Context(), t)
			if err != nil {
				return fmt.Errorf("justify: %w", err)
			}

			out := cmd.OutOrStdout()
			if j == nil {
				fmt.Fprintf(out, "%s is neither asserted nor derivable\n", t.String())
				return nil
			}

			fmt.Fprintln(out, j.Explanation)
			if len(j.SupportingFacts) > 0 {
				fmt.Fprintln(out, "supported by:")
				for _, support := range j.SupportingFacts {
					fmt.Fprintf(out, "  %s\n", support.String())
				}
			}
			for _, step := range j.InferenceChain {
				fmt.Fprintf(out, "step %d: %s => %s\n",
					step.StepNumber, step.Rule.Name, step.Conclusion.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&triplesPath, "triples", "t", "", "YAML triples file to reason over")
	_ = cmd.MarkFlagRequired("triples")
	return cmd
}
