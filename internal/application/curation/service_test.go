package curation

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemPrep/internal/application/dataset"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

func table(t *testing.T, csvData string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.Read(strings.NewReader(csvData))
	require.NoError(t, err)
	return tbl
}

func TestCurateTable_DropsInvalidRows(t *testing.T) {
	tbl := table(t, "smiles\nCCO\nCC(=O)O\ninvalid_smiles_xyz\n")
	svc := NewService(nil)

	res, err := svc.CurateTable(tbl, Options{SMILESColumn: "smiles"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Invalid)
	assert.Equal(t, 0, res.Disconnected)
	assert.Equal(t, 2, res.Kept())
	assert.Equal(t, 2, res.Table.NumRows())

	col, _ := res.Table.Column("smiles")
	assert.Equal(t, []string{"CCO", "CC(=O)O"}, col)

	// The input table is untouched.
	assert.Equal(t, 3, tbl.NumRows())
	orig, _ := tbl.Column("smiles")
	assert.Equal(t, "invalid_smiles_xyz", orig[2])
}

func TestCurateTable_Canonicalizes(t *testing.T) {
	tbl := table(t, "smiles\nOCC\nOC(C)=O\n")
	res, err := NewService(nil).CurateTable(tbl, Options{SMILESColumn: "smiles"})
	require.NoError(t, err)

	col, _ := res.Table.Column("smiles")
	assert.Equal(t, []string{"CCO", "CC(=O)O"}, col)
}

func TestCurateTable_RemoveSalts(t *testing.T) {
	tbl := table(t, "smiles\n[Na+].CCO\nCCN.Cl\n")
	res, err := NewService(nil).CurateTable(tbl, Options{
		SMILESColumn: "smiles",
		RemoveSalts:  true,
	})
	require.NoError(t, err)

	col, _ := res.Table.Column("smiles")
	assert.Equal(t, []string{"CCO", "CCN"}, col)
}

func TestCurateTable_RemoveDisconnected(t *testing.T) {
	tbl := table(t, "smiles,name\nCCO,ethanol\nCCO.CCN,mixture\n")
	res, err := NewService(nil).CurateTable(tbl, Options{
		SMILESColumn:       "smiles",
		RemoveDisconnected: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Disconnected)
	assert.Equal(t, 1, res.Table.NumRows())
	assert.Equal(t, "ethanol", res.Table.Rows[0][1])
}

func TestCurateTable_SaltStrippingPreventsDisconnectedDrop(t *testing.T) {
	// With salts stripped the row becomes connected and survives; without,
	// the disconnected filter removes it.
	input := "smiles\n[Na+].CCO\n"

	withSalts, err := NewService(nil).CurateTable(table(t, input), Options{
		SMILESColumn:       "smiles",
		RemoveSalts:        true,
		RemoveDisconnected: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, withSalts.Table.NumRows())

	without, err := NewService(nil).CurateTable(table(t, input), Options{
		SMILESColumn:       "smiles",
		RemoveDisconnected: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, without.Table.NumRows())
	assert.Equal(t, 1, without.Disconnected)
}

func TestCurateTable_MissingColumn(t *testing.T) {
	tbl := table(t, "structure\nCCO\n")
	_, err := NewService(nil).CurateTable(tbl, Options{SMILESColumn: "smiles"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeColumnNotFound))
}

func TestCanonicalizeOne(t *testing.T) {
	svc := NewService(nil)

	out, err := svc.CanonicalizeOne("OCC", false)
	require.NoError(t, err)
	assert.Equal(t, "CCO", out)

	out, err = svc.CanonicalizeOne("[Na+].OCC", true)
	require.NoError(t, err)
	assert.Equal(t, "CCO", out)

	_, err = svc.CanonicalizeOne("garbage(", false)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSMILES))
}

func TestCurateFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "sub", "out.csv")
	require.NoError(t,
		table(t, "smiles\nOCC\nbroken_smiles\n").Save(in))

	res, err := NewService(nil).CurateFile(in, out, Options{SMILESColumn: "smiles"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Invalid)

	saved, err := dataset.Load(out)
	require.NoError(t, err)
	col, _ := saved.Column("smiles")
	assert.Equal(t, []string{"CCO"}, col)
}
