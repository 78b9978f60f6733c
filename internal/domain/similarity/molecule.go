// Package similarity implements pairwise molecular similarity: a registry of
// named similarity functions (Tanimoto, Tversky, MCS), a worker-pool engine
// that fills dense similarity matrices, and reducers that extract per-row
// maxima for nearest-neighbor queries.
package similarity

import (
	"github.com/turtacn/ChemPrep/internal/domain/chem"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

// Molecule bundles everything a similarity function may need: the raw SMILES
// it was built from, the parsed graph, and a Morgan fingerprint.
type Molecule struct {
	// Raw is the SMILES string the molecule was prepared from.
	Raw string

	// Mol is the parsed molecular graph.
	Mol *chem.Mol

	// FP is the Morgan fingerprint used by the bit-vector metrics.
	FP *chem.Fingerprint
}

// PrepareOptions configures molecule preparation.
type PrepareOptions struct {
	// Radius is the Morgan fingerprint radius.
	Radius int

	// NBits is the fingerprint length in bits.
	NBits int
}

// DefaultPrepareOptions returns the standard fingerprint parameters.
func DefaultPrepareOptions() PrepareOptions {
	return PrepareOptions{Radius: chem.DefaultMorganRadius, NBits: chem.DefaultMorganBits}
}

// PrepareMolecule parses one SMILES string and computes its fingerprint. A
// SMILES that fails to parse is an error: similarity inputs are expected to
// be pre-curated, so an invalid molecule aborts the whole computation.
func PrepareMolecule(smiles string, opts PrepareOptions) (*Molecule, error) {
	mol, err := chem.ParseSMILES(smiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidSMILES,
			"failed to prepare molecule "+smiles)
	}
	fp, err := chem.MorganFingerprint(mol, opts.Radius, opts.NBits)
	if err != nil {
		return nil, err
	}
	return &Molecule{Raw: smiles, Mol: mol, FP: fp}, nil
}

// PrepareMolecules prepares a batch of SMILES strings, preserving order.
// The first invalid SMILES aborts the batch.
func PrepareMolecules(smiles []string, opts PrepareOptions) ([]*Molecule, error) {
	mols := make([]*Molecule, len(smiles))
	for i, s := range smiles {
		m, err := PrepareMolecule(s, opts)
		if err != nil {
			return nil, err
		}
		mols[i] = m
	}
	return mols, nil
}
