package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemPrep/internal/application/dataset"
)

// execute runs the chemprep command tree with the given arguments and
// returns the combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestCanonicalizeCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	writeCSV(t, in, "smiles\nCCO\nCC(=O)O\ninvalid_smiles_xyz\n")

	output, err := execute(t, "canonicalize", "--input", in, "--output", out)
	require.NoError(t, err)
	assert.Contains(t, output, "curated 2 of 3 rows")
	assert.Contains(t, output, "1 invalid")

	saved, err := dataset.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.NumRows())
	col, _ := saved.Column("smiles")
	assert.Equal(t, []string{"CCO", "CC(=O)O"}, col)
}

func TestCanonicalizeCommand_SaltsAndDisconnected(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	writeCSV(t, in, "smiles\n[Na+].CCO\nCCO.CCN\n")

	_, err := execute(t, "canonicalize",
		"--input", in, "--output", out,
		"--remove-salts", "--remove-disconnected")
	require.NoError(t, err)

	saved, err := dataset.Load(out)
	require.NoError(t, err)
	// The sodium salt is stripped; the two-parent mixture is dropped.
	require.Equal(t, 1, saved.NumRows())
	col, _ := saved.Column("smiles")
	assert.Equal(t, []string{"CCO"}, col)
}

func TestCanonicalizeCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "canonicalize",
		"--input", filepath.Join(dir, "absent.csv"),
		"--output", filepath.Join(dir, "out.csv"))
	require.Error(t, err)
}

func TestSimilarityCommand_SelfMatrix(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "mols.csv")
	writeCSV(t, in, "smiles\nCCO\nCCN\n")

	output, err := execute(t, "similarity", "--input", in)
	require.NoError(t, err)

	tbl, err := dataset.Read(strings.NewReader(output))
	require.NoError(t, err)
	assert.Equal(t, []string{"smiles", "CCO", "CCN"}, tbl.Columns)
	require.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "1", tbl.Rows[0][1]) // diagonal of a self-comparison
}

func TestSimilarityCommand_AnnotateMax(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "mols.csv")
	out := filepath.Join(dir, "annotated.csv")
	writeCSV(t, in, "smiles\nCCO\nCCO\nc1ccccc1\n")

	_, err := execute(t, "similarity", "--input", in, "--annotate-max", "--output", out)
	require.NoError(t, err)

	saved, err := dataset.Load(out)
	require.NoError(t, err)
	col, err := saved.Column("max_tanimoto_similarity")
	require.NoError(t, err)
	assert.Equal(t, "1", col[0])
	assert.Equal(t, "1", col[1])
}

func TestSimilarityCommand_AnnotateMaxAgainstReference(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "mols.csv")
	ref := filepath.Join(dir, "ref.csv")
	out := filepath.Join(dir, "annotated.csv")
	// A single query row only works if the reference set is actually used:
	// self-comparison would reject it.
	writeCSV(t, in, "smiles\nCCO\n")
	writeCSV(t, ref, "smiles\nCCN\nCCO\n")

	_, err := execute(t, "similarity",
		"--input", in, "--reference", ref, "--annotate-max", "--output", out)
	require.NoError(t, err)

	saved, err := dataset.Load(out)
	require.NoError(t, err)
	col, err := saved.Column("max_tanimoto_similarity")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, col)
}

func TestSimilarityCommand_UnknownMetric(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "mols.csv")
	writeCSV(t, in, "smiles\nCCO\nCCN\n")

	_, err := execute(t, "similarity", "--input", in, "--metric", "tversk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `similarity function "tversk" could not be found`)
}

func TestNeighborsCommand(t *testing.T) {
	dir := t.TempDir()
	query := filepath.Join(dir, "query.csv")
	ref := filepath.Join(dir, "ref.csv")
	out := filepath.Join(dir, "matched.csv")
	writeCSV(t, query, "smiles\nCCO\n")
	writeCSV(t, ref, "smiles\nCCO\nCCO\nCCN\n")

	_, err := execute(t, "neighbors", "--query", query, "--reference", ref, "--output", out)
	require.NoError(t, err)

	saved, err := dataset.Load(out)
	require.NoError(t, err)
	nn, err := saved.Column("nearest_neighbor")
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO"}, nn)
	sim, err := saved.Column("nearest_neighbor_similarity")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, sim)
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "chemprep dev")
}

func TestWatchCommand_RequiresDirs(t *testing.T) {
	_, err := execute(t, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input and an output directory")
}
