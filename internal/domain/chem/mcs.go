package chem

import (
	"math/bits"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

// mcsMaxProductVertices bounds the size of the compatibility graph. Pairs of
// molecules whose product graph exceeds it are rejected rather than risking
// an unbounded clique search.
const mcsMaxProductVertices = 20000

// bitset is a fixed-capacity set of small integers used by the clique
// search. All operations assume operands share the same word length.
type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (s bitset) set(i int)      { s[i/64] |= 1 << (uint(i) % 64) }
func (s bitset) has(i int) bool { return s[i/64]&(1<<(uint(i)%64)) != 0 }
func (s bitset) clear(i int)    { s[i/64] &^= 1 << (uint(i) % 64) }

func (s bitset) clone() bitset {
	c := make(bitset, len(s))
	copy(c, s)
	return c
}

func (s bitset) empty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

func (s bitset) count() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// intersect stores a ∧ b into s.
func (s bitset) intersect(a, b bitset) {
	for i := range s {
		s[i] = a[i] & b[i]
	}
}

// forEach calls fn for every set bit, stopping early if fn returns false.
func (s bitset) forEach(fn func(i int) bool) {
	for w, word := range s {
		for word != 0 {
			i := w*64 + bits.TrailingZeros64(word)
			if !fn(i) {
				return
			}
			word &= word - 1
		}
	}
}

// productVertex pairs an atom of molecule a with a compatible atom of
// molecule b.
type productVertex struct {
	ai, bi int
}

// atomsCompatible reports whether two atoms may be matched in a common
// substructure: same element and same aromaticity.
func atomsCompatible(a, b Atom) bool {
	return a.Symbol == b.Symbol && a.Aromatic == b.Aromatic
}

// bondsCompatible reports whether two bonds may be matched.
func bondsCompatible(x, y Bond) bool {
	return x.Order == y.Order && x.Aromatic == y.Aromatic
}

// MCSAtomCount returns the atom count of the maximum common substructure of
// a and b, found as a maximum clique in the modular product of the two
// molecular graphs. Two product vertices are adjacent when their atom pairs
// are consistently bonded (same bond type) or consistently unbonded, so a
// clique corresponds to a common induced substructure.
func MCSAtomCount(a, b *Mol) (int, error) {
	if a == nil || b == nil || a.NumAtoms() == 0 || b.NumAtoms() == 0 {
		return 0, errors.New(errors.ErrCodeMCSFailed, "cannot compare empty molecules")
	}

	var verts []productVertex
	for i := range a.Atoms {
		for j := range b.Atoms {
			if atomsCompatible(a.Atoms[i], b.Atoms[j]) {
				verts = append(verts, productVertex{ai: i, bi: j})
			}
		}
	}
	if len(verts) == 0 {
		return 0, nil
	}
	if len(verts) > mcsMaxProductVertices {
		return 0, errors.Newf(errors.ErrCodeMCSFailed,
			"compatibility graph too large: %d vertices", len(verts))
	}

	n := len(verts)
	adj := make([]bitset, n)
	for i := range adj {
		adj[i] = newBitset(n)
	}
	for p := 0; p < n; p++ {
		for q := p + 1; q < n; q++ {
			vp, vq := verts[p], verts[q]
			if vp.ai == vq.ai || vp.bi == vq.bi {
				continue
			}
			ba, okA := a.BondBetween(vp.ai, vq.ai)
			bb, okB := b.BondBetween(vp.bi, vq.bi)
			compatible := (okA && okB && bondsCompatible(ba, bb)) || (!okA && !okB)
			if compatible {
				adj[p].set(q)
				adj[q].set(p)
			}
		}
	}

	search := &cliqueSearch{adj: adj, words: len(newBitset(n))}
	r := newBitset(n)
	p := newBitset(n)
	for i := 0; i < n; i++ {
		p.set(i)
	}
	search.run(r, p, newBitset(n), 0)
	return search.best, nil
}

// cliqueSearch implements Bron–Kerbosch with pivoting over bitsets.
type cliqueSearch struct {
	adj   []bitset
	words int
	best  int
}

func (c *cliqueSearch) run(r, p, x bitset, depth int) {
	if p.empty() && x.empty() {
		if depth > c.best {
			c.best = depth
		}
		return
	}
	// Bound: even taking every remaining candidate cannot beat the best.
	if depth+p.count() <= c.best {
		return
	}

	// Pivot on the vertex of P ∪ X with the most neighbors in P.
	pivot, pivotCount := -1, -1
	consider := func(u int) bool {
		tmp := make(bitset, c.words)
		tmp.intersect(p, c.adj[u])
		if n := tmp.count(); n > pivotCount {
			pivot, pivotCount = u, n
		}
		return true
	}
	p.forEach(consider)
	x.forEach(consider)

	// Candidates: P minus the pivot's neighborhood.
	cand := make(bitset, c.words)
	copy(cand, p)
	if pivot >= 0 {
		for i := range cand {
			cand[i] &^= c.adj[pivot][i]
		}
	}

	cand.forEach(func(v int) bool {
		r2 := r.clone()
		r2.set(v)
		p2 := make(bitset, c.words)
		p2.intersect(p, c.adj[v])
		x2 := make(bitset, c.words)
		x2.intersect(x, c.adj[v])
		c.run(r2, p2, x2, depth+1)
		p.clear(v)
		x.set(v)
		return true
	})
}
