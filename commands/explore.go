package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semreason/neighborhood"
)

// NewExploreCmd creates the explore subcommand: walk the neighborhood
// of a node and print the discovered subgraph.
func NewExploreCmd(global *GlobalFlags) *cobra.Command {
	var (
		triplesPath     string
		maxHops         int
		direction       string
		includeInferred bool
		expandInferred  bool
		maxNodes        int
		maxEdges        int
		predicates      []string
		exclude         []string
		classes         []string
	)

	cmd := &cobra.Command{
		Use:   "explore <node>",
		Short: "Explore the neighborhood of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := NewRuntime(RuntimeOptions{
				ConfigPath:  global.ConfigPath,
				TriplesPath: triplesPath,
				RulesPath:   global.RulesPath,
			})
			if err != nil {
				return err
			}

			opts := rt.ExploreOptions()
			if cmd.Flags().Changed("hops") {
				opts.MaxHops = maxHops
			}
			if cmd.Flags().Changed("direction") {
				opts.Direction = neighborhood.Direction(direction)
			}
			if cmd.Flags().Changed("include-inferred") {
				opts.IncludeInferred = includeInferred
			}
			if cmd.Flags().Changed("expand-inferred") {
				opts.ExpandInferred = expandInferred
			}
			if cmd.Flags().Changed("max-nodes") {
				opts.MaxNodes = maxNodes
			}
			if cmd.Flags().Changed("max-edges") {
				opts.MaxEdges = maxEdges
			}
			opts.PredicateFilter = predicates
			opts.ExcludePredicates = exclude
			opts.ClassFilter = classes

			explorer := neighborhood.NewExplorer(rt.Store, rt.Engine, nil, nil)
			result := explorer.Explore(cmd.Context(), args[0], opts)

			out := cmd.OutOrStdout()
			for _, node := range result.Nodes {
				marker := ""
				if node.IsCenter {
					marker = " (center)"
				} else if node.ReachedViaInference {
					marker = " (via inference)"
				}
				label := node.ID
				if node.Label != "" {
					label = fmt.Sprintf("%s (%s)", node.ID, node.Label)
				}
				fmt.Fprintf(out, "hop %d: %s%s\n", node.HopDistance, label, marker)
			}
			for _, edge := range result.Edges {
				origin := "asserted"
				if edge.IsInferred {
					origin = "inferred"
				}
				fmt.Fprintf(out, "  %s -[%s]-> %s (%s)\n",
					edge.Source, edge.Predicate, edge.Target, origin)
			}

			fmt.Fprintf(out, "\n%d nodes, %d edges (%d asserted, %d inferred) in %s\n",
				len(result.Nodes), len(result.Edges),
				result.Stats.AssertedEdgeCount, result.Stats.InferredEdgeCount,
				result.Stats.Elapsed)
			if result.Truncated {
				fmt.Fprintln(out, "warning: traversal truncated by size or time limits")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&triplesPath, "triples", "t", "", "YAML triples file to explore")
	_ = cmd.MarkFlagRequired("triples")
	cmd.Flags().IntVar(&maxHops, "hops", 2, "Maximum traversal distance")
	cmd.Flags().StringVar(&direction, "direction", "both", "Edge direction (outgoing, incoming, both)")
	cmd.Flags().BoolVar(&includeInferred, "include-inferred", true, "Show derived edges")
	cmd.Flags().BoolVar(&expandInferred, "expand-inferred", false, "Traverse through derived edges")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 100, "Node cap")
	cmd.Flags().IntVar(&maxEdges, "max-edges", 500, "Edge cap")
	cmd.Flags().StringSliceVar(&predicates, "predicate", nil, "Predicate allow globs")
	cmd.Flags().StringSliceVar(&exclude, "exclude-predicate", nil, "Predicate deny list")
	cmd.Flags().StringSliceVar(&classes, "class", nil, "Only include nodes of these classes")
	return cmd
}
