package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemPrep/internal/application/curation"
)

func newCanonicalizeCommand() *cobra.Command {
	var (
		input              string
		output             string
		smilesColumn       string
		removeSalts        bool
		removeDisconnected bool
	)

	cmd := &cobra.Command{
		Use:   "canonicalize",
		Short: "Canonicalize the SMILES column of a CSV dataset",
		Long: `Canonicalize parses every SMILES in the given column, drops rows that fail
to parse, optionally strips salt fragments, rewrites the column in canonical
form and optionally drops molecules that are still disconnected.`,
		Example: `  chemprep canonicalize --input raw.csv --output curated.csv
  chemprep canonicalize -i raw.csv -o curated.csv --remove-salts --remove-disconnected
  chemprep canonicalize -i raw.csv -o curated.csv --smiles-column structure`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			res, err := app.Curation.CurateFile(input, output, curation.Options{
				SMILESColumn:       smilesColumn,
				RemoveSalts:        removeSalts,
				RemoveDisconnected: removeDisconnected,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"curated %d of %d rows (%d invalid, %d disconnected) -> %s\n",
				res.Table.NumRows(), res.Total, res.Invalid, res.Disconnected, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input CSV file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file (required)")
	cmd.Flags().StringVar(&smilesColumn, "smiles-column", "smiles", "name of the SMILES column")
	cmd.Flags().BoolVar(&removeSalts, "remove-salts", false, "strip salt and solvent fragments")
	cmd.Flags().BoolVar(&removeDisconnected, "remove-disconnected", false,
		"drop molecules that are still disconnected after curation")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
