package chem

import "sync"

// defaultSaltSMILES lists the counterions and solvents removed by
// StripSalts, mirroring the common salt-stripping defaults: halide ions,
// alkali and alkaline-earth cations, ammonia/ammonium, water, and a few
// frequent acid counterions. Each entry is canonicalized once at first use
// so membership tests compare canonical forms.
var defaultSaltSMILES = []string{
	"[F-]", "[Cl-]", "[Br-]", "[I-]",
	"F", "Cl", "Br", "I",
	"[Li+]", "[Na+]", "[K+]", "[Ca+2]", "[Mg+2]", "[Zn+2]",
	"[NH4+]", "N",
	"O",
	"O=S(=O)(O)O",
	"O=[N+]([O-])O",
	"CC(=O)O",
	"OC(=O)C(F)(F)F",
	"CS(=O)(=O)O",
	"OC(=O)C(O)C(O)C(=O)O",
}

var (
	saltSetOnce sync.Once
	saltSet     map[string]bool
)

func canonicalSaltSet() map[string]bool {
	saltSetOnce.Do(func() {
		saltSet = make(map[string]bool, len(defaultSaltSMILES))
		for _, s := range defaultSaltSMILES {
			if canon, err := CanonicalizeSMILES(s); err == nil {
				saltSet[canon] = true
			}
		}
	})
	return saltSet
}

// IsSaltFragment reports whether the given fragment of m matches a known
// salt or solvent.
func (m *Mol) IsSaltFragment(frag []int) bool {
	sub := m.Subset(frag)
	return canonicalSaltSet()[sub.CanonicalSMILES()]
}

// StripSalts removes salt and solvent fragments from a multi-fragment
// molecule. A connected molecule is returned unchanged. If every fragment is
// a salt, the largest one is retained so the result is never empty; ties on
// atom count fall to the lexicographically smallest canonical form.
func StripSalts(m *Mol) *Mol {
	frags := m.Fragments()
	if len(frags) <= 1 {
		return m
	}

	var kept []int
	for _, frag := range frags {
		if !m.IsSaltFragment(frag) {
			kept = append(kept, frag...)
		}
	}
	if len(kept) > 0 {
		sortInts(kept)
		return m.Subset(kept)
	}

	// Everything matched the salt list: keep the largest fragment.
	best := frags[0]
	bestCanon := m.Subset(best).CanonicalSMILES()
	for _, frag := range frags[1:] {
		canon := m.Subset(frag).CanonicalSMILES()
		if len(frag) > len(best) || (len(frag) == len(best) && canon < bestCanon) {
			best, bestCanon = frag, canon
		}
	}
	return m.Subset(best)
}
