package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemPrep/internal/application/dataset"
	"github.com/turtacn/ChemPrep/internal/application/matching"
)

func newSimilarityCommand() *cobra.Command {
	var (
		input        string
		reference    string
		smilesColumn string
		refColumn    string
		metric       string
		output       string
		annotateMax  bool
	)

	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Compute a pairwise similarity matrix between datasets",
		Long: `Similarity computes the full pairwise similarity matrix of a query dataset
against a reference dataset. Without --reference the dataset is compared
against itself. With --annotate-max the matrix is reduced instead: the input
table is written back with a max_{metric}_similarity column holding each
row's highest similarity to a reference molecule, or its highest
off-diagonal similarity in the self-comparison case.`,
		Example: `  chemprep similarity --input mols.csv --metric tanimoto --output matrix.csv
  chemprep similarity --input a.csv --reference b.csv --metric mcs
  chemprep similarity --input mols.csv --annotate-max --output annotated.csv
  chemprep similarity --input a.csv --reference b.csv --annotate-max`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			if metric == "" {
				metric = app.Config.Similarity.DefaultMetric
			}

			query, err := dataset.Load(input)
			if err != nil {
				return err
			}

			var out *dataset.Table
			switch {
			case annotateMax:
				var refTable *dataset.Table
				if reference != "" {
					refTable, err = dataset.Load(reference)
					if err != nil {
						return err
					}
				}
				out, err = app.Matching.AnnotateMaxSimilarity(query, refTable, matching.AnnotateOptions{
					Metric:          metric,
					QueryColumn:     smilesColumn,
					ReferenceColumn: refColumn,
				})
			default:
				refTable := query
				if reference != "" {
					refTable, err = dataset.Load(reference)
					if err != nil {
						return err
					}
				}
				var res *matching.MatrixResult
				res, err = app.Matching.Matrix(query, refTable, matching.MatrixOptions{
					Metric:          metric,
					QueryColumn:     smilesColumn,
					ReferenceColumn: refColumn,
				})
				if err == nil {
					out = res.Table()
				}
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return out.Write(cmd.OutOrStdout())
			}
			if err := out.Save(output); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "query CSV file (required)")
	cmd.Flags().StringVarP(&reference, "reference", "r", "",
		"reference CSV file (defaults to the query dataset itself)")
	cmd.Flags().StringVar(&smilesColumn, "smiles-column", "smiles", "SMILES column of the query dataset")
	cmd.Flags().StringVar(&refColumn, "reference-column", "",
		"SMILES column of the reference dataset (defaults to --smiles-column)")
	cmd.Flags().StringVarP(&metric, "metric", "m", "",
		"similarity function: tanimoto, tversky or mcs (defaults to the configured metric)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file ('-' or empty for stdout)")
	cmd.Flags().BoolVar(&annotateMax, "annotate-max", false,
		"append a max_{metric}_similarity column instead of writing the matrix")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
