package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

func TestMCSAtomCount(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "CCO", "CCO", 3},
		{"spelling_variants", "CCO", "OCC", 3},
		{"chain_in_longer_chain", "CC", "CCCC", 2},
		{"ethanol_vs_ethane", "CCO", "CC", 2},
		{"no_common_atoms", "CCO", "c1ccccc1", 0},
		{"benzene_self", "c1ccccc1", "c1ccccc1", 6},
		{"benzene_vs_toluene", "c1ccccc1", "Cc1ccccc1", 6},
		{"acid_in_ester", "CC(=O)O", "CC(=O)OC", 4},
		{"single_atoms", "O", "O", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MCSAtomCount(mustParse(t, tt.a), mustParse(t, tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMCSAtomCount_Symmetric(t *testing.T) {
	a := mustParse(t, "CC(=O)O")
	b := mustParse(t, "CCC(=O)O")
	ab, err := MCSAtomCount(a, b)
	require.NoError(t, err)
	ba, err := MCSAtomCount(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	assert.Equal(t, 4, ab)
}

func TestMCSAtomCount_EmptyMolecules(t *testing.T) {
	_, err := MCSAtomCount(nil, mustParse(t, "CCO"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeMCSFailed))

	_, err = MCSAtomCount(mustParse(t, "CCO"), &Mol{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMCSFailed))
}
