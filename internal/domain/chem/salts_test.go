package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stripCanon(t *testing.T, smiles string) string {
	t.Helper()
	m, err := ParseSMILES(smiles)
	require.NoError(t, err)
	return StripSalts(m).CanonicalSMILES()
}

func TestStripSalts(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		want   string
	}{
		{"connected_unchanged", "CCO", "CCO"},
		{"sodium_counterion", "[Na+].CCO", "CCO"},
		{"chloride_counterion", "CCN.[Cl-]", "CCN"},
		{"hydrochloride", "CCN.Cl", "CCN"},
		{"water_of_crystallisation", "O.CC(=O)O", "CC(=O)O"},
		{"multiple_salts", "[Na+].CCO.O.[Cl-]", "CCO"},
		{"two_parents_kept", "CCO.CCCCCCCC", "CCCCCCCC.CCO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCanon(t, tt.smiles))
		})
	}
}

func TestStripSalts_NeverRemovesEverything(t *testing.T) {
	// Pure salt pair: the largest fragment survives; the tie on atom count
	// goes to the lexicographically smaller canonical form.
	assert.Equal(t, "[Cl-]", stripCanon(t, "[Na+].[Cl-]"))

	// The bigger salt fragment wins outright.
	assert.Equal(t, "CC(=O)O", stripCanon(t, "CC(=O)O.[Na+]"))

	// A single salt molecule on its own is returned as-is.
	assert.Equal(t, "[Na+]", stripCanon(t, "[Na+]"))
}

func TestIsSaltFragment(t *testing.T) {
	m, err := ParseSMILES("CCO.[Na+]")
	require.NoError(t, err)
	frags := m.Fragments()
	require.Len(t, frags, 2)
	assert.False(t, m.IsSaltFragment(frags[0]))
	assert.True(t, m.IsSaltFragment(frags[1]))
}
