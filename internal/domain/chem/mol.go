// Package chem implements the molecule representation used by every ChemPrep
// pipeline: a SMILES parser producing an immutable molecular graph, a
// canonical SMILES writer, salt stripping, Morgan fingerprints, and
// maximum-common-substructure search. It is the in-process equivalent of the
// external cheminformatics toolkit the pipelines delegate to.
//
// Scope notes: aromatic rings must be written in aromatic (lowercase) form,
// as there is no Kekulé aromaticity perception pass, and stereochemistry
// markers are parsed but discarded. Both match the constitution-based
// similarity metrics built on top of this package.
package chem

// Atom is a heavy atom in a molecular graph. Hydrogens are implicit; see
// Mol.Hydrogens.
type Atom struct {
	// Symbol is the element symbol with standard capitalisation ("C", "Cl",
	// "Na"), regardless of aromatic lowercase notation in the source SMILES.
	Symbol string

	// Aromatic marks atoms written in aromatic (lowercase) form.
	Aromatic bool

	// Charge is the formal charge.
	Charge int

	// Isotope is the isotope number, 0 when unspecified.
	Isotope int

	// HCount is the explicit hydrogen count from a bracket atom, or -1 when
	// hydrogens are implicit (bare organic-subset atoms).
	HCount int
}

// Bond is a half-edge in the adjacency list of a Mol.
type Bond struct {
	// To is the index of the neighboring atom.
	To int

	// Order is the bond order (1, 2, or 3). Aromatic bonds carry order 1
	// with Aromatic set.
	Order int

	// Aromatic marks delocalised bonds between aromatic atoms.
	Aromatic bool
}

// Mol is an immutable molecular graph produced by ParseSMILES. Atom indices
// are stable for the lifetime of the molecule.
type Mol struct {
	Atoms []Atom

	// Bonds[i] lists the bonds incident to atom i. The adjacency is
	// symmetric: every bond appears in both endpoints' lists.
	Bonds [][]Bond
}

// defaultValence maps organic-subset elements to the valence used for
// implicit hydrogen counting.
var defaultValence = map[string]int{
	"B": 3, "C": 4, "N": 3, "O": 2, "P": 3, "S": 2,
	"F": 1, "Cl": 1, "Br": 1, "I": 1,
}

// NumAtoms returns the heavy-atom count.
func (m *Mol) NumAtoms() int {
	return len(m.Atoms)
}

func (m *Mol) addAtom(a Atom) int {
	m.Atoms = append(m.Atoms, a)
	m.Bonds = append(m.Bonds, nil)
	return len(m.Atoms) - 1
}

func (m *Mol) addBond(i, j, order int, aromatic bool) {
	m.Bonds[i] = append(m.Bonds[i], Bond{To: j, Order: order, Aromatic: aromatic})
	m.Bonds[j] = append(m.Bonds[j], Bond{To: i, Order: order, Aromatic: aromatic})
}

// BondBetween returns the bond connecting atoms i and j, if any.
func (m *Mol) BondBetween(i, j int) (Bond, bool) {
	for _, b := range m.Bonds[i] {
		if b.To == j {
			return b, true
		}
	}
	return Bond{}, false
}

// Degree returns the number of heavy-atom neighbors of atom i.
func (m *Mol) Degree(i int) int {
	return len(m.Bonds[i])
}

// Hydrogens returns the hydrogen count of atom i: the explicit count for
// bracket atoms, otherwise the implicit count derived from the element's
// default valence minus the sum of bond orders. Aromatic atoms consume one
// additional valence unit for the delocalised system.
func (m *Mol) Hydrogens(i int) int {
	a := m.Atoms[i]
	if a.HCount >= 0 {
		return a.HCount
	}
	valence, ok := defaultValence[a.Symbol]
	if !ok {
		return 0
	}
	sum := 0
	for _, b := range m.Bonds[i] {
		sum += b.Order
	}
	if a.Aromatic {
		sum++
	}
	h := valence - sum
	if h < 0 {
		h = 0
	}
	return h
}

// Fragments returns the connected components of the molecular graph as
// lists of atom indices, each ascending, ordered by their smallest atom
// index. A connected molecule yields a single fragment.
func (m *Mol) Fragments() [][]int {
	visited := make([]bool, len(m.Atoms))
	var frags [][]int
	for start := range m.Atoms {
		if visited[start] {
			continue
		}
		var frag []int
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			frag = append(frag, i)
			for _, b := range m.Bonds[i] {
				if !visited[b.To] {
					visited[b.To] = true
					queue = append(queue, b.To)
				}
			}
		}
		sortInts(frag)
		frags = append(frags, frag)
	}
	return frags
}

// IsConnected reports whether the molecule consists of a single fragment.
func (m *Mol) IsConnected() bool {
	return len(m.Fragments()) <= 1
}

// Subset returns the induced subgraph over the given atom indices as a new
// molecule. Bonds whose endpoints are both included are retained.
func (m *Mol) Subset(atoms []int) *Mol {
	remap := make(map[int]int, len(atoms))
	sub := &Mol{}
	for _, i := range atoms {
		remap[i] = sub.addAtom(m.Atoms[i])
	}
	for _, i := range atoms {
		for _, b := range m.Bonds[i] {
			// Add each bond once, from the lower original index.
			if b.To <= i {
				continue
			}
			if j, ok := remap[b.To]; ok {
				sub.addBond(remap[i], j, b.Order, b.Aromatic)
			}
		}
	}
	return sub
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}
