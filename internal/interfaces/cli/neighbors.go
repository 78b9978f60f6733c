package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemPrep/internal/application/dataset"
	"github.com/turtacn/ChemPrep/internal/application/matching"
)

func newNeighborsCommand() *cobra.Command {
	var (
		query       string
		reference   string
		queryColumn string
		refColumn   string
		metric      string
		prefix      string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "neighbors",
		Short: "Annotate a dataset with its nearest neighbors in a reference set",
		Long: `Neighbors finds, for every molecule of the query dataset, the most similar
molecule in the reference dataset and appends two columns to the query table:
{prefix}nearest_neighbor and {prefix}nearest_neighbor_similarity.

Reference molecules are deduplicated and sorted before matching, so the
result does not depend on reference row order and similarity ties resolve to
the lexicographically smallest reference SMILES.`,
		Example: `  chemprep neighbors --query screen.csv --reference actives.csv --output matched.csv
  chemprep neighbors -q screen.csv -r chembl.csv --prefix chembl_ -o matched.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			if metric == "" {
				metric = app.Config.Similarity.DefaultMetric
			}

			queryTable, err := dataset.Load(query)
			if err != nil {
				return err
			}
			refTable, err := dataset.Load(reference)
			if err != nil {
				return err
			}

			out, err := app.Matching.Match(queryTable, refTable, matching.MatchOptions{
				Metric:          metric,
				QueryColumn:     queryColumn,
				ReferenceColumn: refColumn,
				Prefix:          prefix,
			})
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return out.Write(cmd.OutOrStdout())
			}
			if err := out.Save(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "matched %d rows -> %s\n", out.NumRows(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "query CSV file (required)")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "reference CSV file (required)")
	cmd.Flags().StringVar(&queryColumn, "query-column", "smiles", "SMILES column of the query dataset")
	cmd.Flags().StringVar(&refColumn, "reference-column", "",
		"SMILES column of the reference dataset (defaults to --query-column)")
	cmd.Flags().StringVarP(&metric, "metric", "m", "",
		"similarity function: tanimoto, tversky or mcs (defaults to the configured metric)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "prefix for the appended column names")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file ('-' or empty for stdout)")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("reference")
	return cmd
}
