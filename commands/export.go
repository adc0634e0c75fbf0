package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/semreason/export"
)

// NewExportCmd creates the export subcommand: serialize asserted and
// derived facts as Turtle, N-Triples or JSON-LD.
func NewExportCmd(global *GlobalFlags) *cobra.Command {
	var (
		formatName      string
		outputPath      string
		includeInferred bool
		provenance      bool
		baseIRI         string
	)

	cmd := &cobra.Command{
		Use:   "export <triples.yaml>",
		Short: "Export asserted and derived facts as RDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			rt, err := NewRuntime(RuntimeOptions{
				ConfigPath:  global.ConfigPath,
				TriplesPath: args[0],
				RulesPath:   global.RulesPath,
			})
			if err != nil {
				return err
			}

			opts := export.DefaultOptions()
			opts.IncludeInferred = includeInferred
			opts.Provenance = provenance
			if baseIRI != "" {
				opts.BaseIRI = baseIRI
			}

			exporter := export.NewExporter(opts)
			asserted, err := rt.Store.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			exporter.AddTriples(asserted)

			if includeInferred {
				facts, err := rt.Engine.ComputeInferences(cmd.Context())
				if err != nil {
					return fmt.Errorf("computing inferences: %w", err)
				}
				exporter.AddInferred(facts)
			}

			doc, err := exporter.Export(format)
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(doc), 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", outputPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outputPath, len(doc))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "turtle", "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&includeInferred, "include-inferred", true, "Include derived facts")
	cmd.Flags().BoolVar(&provenance, "provenance", true, "Annotate derived facts with their rule")
	cmd.Flags().StringVar(&baseIRI, "base-iri", "", "Base IRI for unprefixed terms")
	return cmd
}
