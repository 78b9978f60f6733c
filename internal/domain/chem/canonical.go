package chem

import (
	"fmt"
	"sort"
	"strings"
)

// CanonicalizeSMILES parses s and returns its canonical SMILES form.
func CanonicalizeSMILES(s string) (string, error) {
	m, err := ParseSMILES(s)
	if err != nil {
		return "", err
	}
	return m.CanonicalSMILES(), nil
}

// CanonicalSMILES writes the molecule in a canonical form: atom output order
// is fixed by iterative rank refinement over structural invariants, so any
// two SMILES spellings of the same constitution produce identical output.
// Disconnected fragments are canonicalized independently, sorted
// lexicographically and joined with '.'.
func (m *Mol) CanonicalSMILES() string {
	frags := m.Fragments()
	parts := make([]string, 0, len(frags))
	for _, frag := range frags {
		ranks := canonicalRanks(m, frag)
		parts = append(parts, writeFragment(m, frag, ranks))
	}
	sort.Strings(parts)
	return strings.Join(parts, ".")
}

// initialKey builds the order-independent invariant string used to seed rank
// refinement.
func initialKey(m *Mol, i int) string {
	a := m.Atoms[i]
	return fmt.Sprintf("%s|%t|%d|%d|%d|%d",
		a.Symbol, a.Aromatic, a.Charge, a.Isotope, m.Degree(i), m.Hydrogens(i))
}

// bondKey distinguishes bond types during refinement and neighbor ordering.
func bondKey(b Bond) int {
	if b.Aromatic {
		return 4
	}
	return b.Order
}

// rankFromKeys assigns dense ranks (0-based) from sorted unique key strings.
func rankFromKeys(atoms []int, keys map[int]string) map[int]int {
	uniq := make([]string, 0, len(atoms))
	seen := map[string]bool{}
	for _, i := range atoms {
		if !seen[keys[i]] {
			seen[keys[i]] = true
			uniq = append(uniq, keys[i])
		}
	}
	sort.Strings(uniq)
	pos := make(map[string]int, len(uniq))
	for r, k := range uniq {
		pos[k] = r
	}
	ranks := make(map[int]int, len(atoms))
	for _, i := range atoms {
		ranks[i] = pos[keys[i]]
	}
	return ranks
}

// refine iterates neighborhood-extended ranking until the number of distinct
// ranks stops growing (Morgan-style relaxation).
func refine(m *Mol, atoms []int, ranks map[int]int) map[int]int {
	inFrag := make(map[int]bool, len(atoms))
	for _, i := range atoms {
		inFrag[i] = true
	}
	count := distinct(atoms, ranks)
	for iter := 0; iter <= len(atoms); iter++ {
		keys := make(map[int]string, len(atoms))
		for _, i := range atoms {
			env := make([]string, 0, len(m.Bonds[i]))
			for _, b := range m.Bonds[i] {
				if inFrag[b.To] {
					env = append(env, fmt.Sprintf("%d:%d", bondKey(b), ranks[b.To]))
				}
			}
			sort.Strings(env)
			keys[i] = fmt.Sprintf("%d|%s", ranks[i], strings.Join(env, ","))
		}
		next := rankFromKeys(atoms, keys)
		nextCount := distinct(atoms, next)
		if nextCount == count {
			return next
		}
		ranks, count = next, nextCount
	}
	return ranks
}

func distinct(atoms []int, ranks map[int]int) int {
	seen := map[int]bool{}
	for _, i := range atoms {
		seen[ranks[i]] = true
	}
	return len(seen)
}

// canonicalRanks computes a total order over the fragment's atoms. Ties that
// survive refinement are between symmetry-equivalent atoms; they are broken
// by artificially promoting the lowest-index member of the smallest tied
// rank class and re-refining, as in the classic canonical-ordering scheme.
func canonicalRanks(m *Mol, atoms []int) map[int]int {
	keys := make(map[int]string, len(atoms))
	for _, i := range atoms {
		keys[i] = initialKey(m, i)
	}
	ranks := refine(m, atoms, rankFromKeys(atoms, keys))

	for distinct(atoms, ranks) < len(atoms) {
		// Locate the smallest rank shared by more than one atom and its
		// lowest-index member.
		byRank := map[int][]int{}
		for _, i := range atoms {
			byRank[ranks[i]] = append(byRank[ranks[i]], i)
		}
		tied := -1
		for r, members := range byRank {
			if len(members) > 1 && (tied < 0 || r < tied) {
				tied = r
			}
		}
		chosen := byRank[tied][0]
		for _, i := range byRank[tied] {
			if i < chosen {
				chosen = i
			}
		}

		// Double all ranks and pull the chosen atom one step ahead of its
		// class, then re-refine to propagate the distinction.
		next := make(map[int]int, len(atoms))
		for _, i := range atoms {
			next[i] = ranks[i] * 2
		}
		next[chosen]--
		ranks = refine(m, atoms, next)
	}

	// Densify to 0..n-1.
	final := make([]int, 0, len(atoms))
	for _, i := range atoms {
		final = append(final, i)
	}
	sort.Slice(final, func(a, b int) bool { return ranks[final[a]] < ranks[final[b]] })
	out := make(map[int]int, len(atoms))
	for pos, i := range final {
		out[i] = pos
	}
	return out
}

// writer holds the state of a single fragment emission.
type writer struct {
	m        *Mol
	ranks    map[int]int
	visited  map[int]bool
	closures map[[2]int]bool // tree/ring classification from the survey pass
	ringNums map[[2]int]int  // ring-closure digits, assigned in output order
	nextRing int
	sb       strings.Builder
}

func edgeKey(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}

// writeFragment emits one connected fragment in canonical order. A first DFS
// pass classifies each edge as tree or ring closure using the same neighbor
// order as the output pass, then the output pass writes atoms, branches and
// ring-closure digits.
func writeFragment(m *Mol, atoms []int, ranks map[int]int) string {
	start := atoms[0]
	for _, i := range atoms {
		if ranks[i] < ranks[start] {
			start = i
		}
	}

	w := &writer{
		m:        m,
		ranks:    ranks,
		visited:  map[int]bool{},
		closures: map[[2]int]bool{},
		ringNums: map[[2]int]int{},
		nextRing: 1,
	}
	w.survey(start, -1)
	w.visited = map[int]bool{}
	w.emit(start, -1)
	return w.sb.String()
}

// orderedNeighbors returns the neighbors of i sorted by canonical rank.
func (w *writer) orderedNeighbors(i int) []Bond {
	nbrs := append([]Bond(nil), w.m.Bonds[i]...)
	sort.Slice(nbrs, func(a, b int) bool {
		return w.ranks[nbrs[a].To] < w.ranks[nbrs[b].To]
	})
	return nbrs
}

func (w *writer) survey(i, parent int) {
	w.visited[i] = true
	for _, b := range w.orderedNeighbors(i) {
		if b.To == parent {
			continue
		}
		if w.visited[b.To] {
			w.closures[edgeKey(i, b.To)] = true
			continue
		}
		w.survey(b.To, i)
	}
}

// bondSymbol returns the bond prefix written before an atom or ring digit.
// Aromatic and plain single bonds are implicit; a single bond between two
// aromatic atoms (biphenyl-style) must be written explicitly.
func (w *writer) bondSymbol(i int, b Bond) string {
	if b.Aromatic {
		return ""
	}
	switch b.Order {
	case 2:
		return "="
	case 3:
		return "#"
	}
	if w.m.Atoms[i].Aromatic && w.m.Atoms[b.To].Aromatic {
		return "-"
	}
	return ""
}

func (w *writer) emit(i, parent int) {
	w.visited[i] = true
	w.sb.WriteString(w.atomString(i))

	nbrs := w.orderedNeighbors(i)

	// Ring-closure digits immediately after the atom.
	for _, b := range nbrs {
		key := edgeKey(i, b.To)
		if !w.closures[key] {
			continue
		}
		num, open := w.ringNums[key]
		if !open {
			num = w.nextRing
			w.nextRing++
			w.ringNums[key] = num
			// The bond symbol is written at the opening digit only.
			w.sb.WriteString(w.bondSymbol(i, b))
		}
		if num > 9 {
			fmt.Fprintf(&w.sb, "%%%d", num)
		} else {
			fmt.Fprintf(&w.sb, "%d", num)
		}
	}

	// Tree children, all but the last parenthesised.
	var children []Bond
	for _, b := range nbrs {
		if b.To == parent || w.closures[edgeKey(i, b.To)] || w.visited[b.To] {
			continue
		}
		children = append(children, b)
	}
	for n, b := range children {
		if n < len(children)-1 {
			w.sb.WriteByte('(')
			w.sb.WriteString(w.bondSymbol(i, b))
			w.emit(b.To, i)
			w.sb.WriteByte(')')
		} else {
			w.sb.WriteString(w.bondSymbol(i, b))
			w.emit(b.To, i)
		}
	}
}

// atomString renders one atom. Organic-subset atoms with default properties
// are written bare; everything else gets bracket notation.
func (w *writer) atomString(i int) string {
	a := w.m.Atoms[i]
	bare := a.Charge == 0 && a.Isotope == 0 && a.HCount < 0 && organicSubset[a.Symbol]
	sym := a.Symbol
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	if bare {
		return sym
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		fmt.Fprintf(&sb, "%d", a.Isotope)
	}
	sb.WriteString(sym)
	h := w.m.Hydrogens(i)
	if h == 1 {
		sb.WriteByte('H')
	} else if h > 1 {
		fmt.Fprintf(&sb, "H%d", h)
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		fmt.Fprintf(&sb, "+%d", a.Charge)
	case a.Charge < -1:
		fmt.Fprintf(&sb, "-%d", -a.Charge)
	}
	sb.WriteByte(']')
	return sb.String()
}
