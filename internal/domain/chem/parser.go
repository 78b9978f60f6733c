package chem

import (
	"strings"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

// organicSubset lists the elements that may appear as bare (unbracketed)
// atoms with implicit hydrogens.
var organicSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// aromaticSubset lists the elements allowed in aromatic lowercase notation.
var aromaticSubset = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"Se": true, "As": true,
}

// knownElements covers the symbols accepted inside bracket atoms. Bare atoms
// are restricted to the organic subset.
var knownElements = map[string]bool{
	"H": true, "He": true, "Li": true, "Be": true, "B": true, "C": true,
	"N": true, "O": true, "F": true, "Ne": true, "Na": true, "Mg": true,
	"Al": true, "Si": true, "P": true, "S": true, "Cl": true, "Ar": true,
	"K": true, "Ca": true, "Ti": true, "Cr": true, "Mn": true, "Fe": true,
	"Co": true, "Ni": true, "Cu": true, "Zn": true, "Ga": true, "Ge": true,
	"As": true, "Se": true, "Br": true, "Kr": true, "Rb": true, "Sr": true,
	"Mo": true, "Ru": true, "Rh": true, "Pd": true, "Ag": true, "Cd": true,
	"In": true, "Sn": true, "Sb": true, "Te": true, "I": true, "Xe": true,
	"Cs": true, "Ba": true, "W": true, "Re": true, "Os": true, "Ir": true,
	"Pt": true, "Au": true, "Hg": true, "Tl": true, "Pb": true, "Bi": true,
}

// pendingBond records an explicit bond symbol waiting for its second atom.
type pendingBond struct {
	set      bool
	order    int
	aromatic bool
}

// ringBond records an open ring-closure digit: the atom that opened it and
// any explicit bond symbol preceding the digit.
type ringBond struct {
	atom int
	bond pendingBond
}

// parser holds the mutable state of a single ParseSMILES run.
type parser struct {
	src     string
	pos     int
	mol     *Mol
	prev    int // previous atom index, -1 at fragment start
	pending pendingBond
	stack   []int
	rings   map[int]ringBond
}

// ParseSMILES parses a SMILES string into a molecular graph. Stereochemistry
// markers (/, \, @) and atom maps are accepted and discarded. Any syntax
// error yields an ErrCodeInvalidSMILES error naming the offending input.
func ParseSMILES(s string) (*Mol, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.ErrCodeInvalidSMILES, "empty SMILES string")
	}
	p := &parser{
		src:   s,
		mol:   &Mol{},
		prev:  -1,
		rings: map[int]ringBond{},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.mol, nil
}

func (p *parser) fail(msg string) error {
	return errors.New(errors.ErrCodeInvalidSMILES, msg).
		WithDetail("smiles=" + p.src)
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch opened before any atom")
			}
			p.stack = append(p.stack, p.prev)
			p.pos++
		case c == ')':
			if len(p.stack) == 0 {
				return p.fail("unmatched closing parenthesis")
			}
			if p.pending.set {
				return p.fail("dangling bond before closing parenthesis")
			}
			p.prev = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.pos++
		case c == '-' || c == '/' || c == '\\':
			// Directional bonds collapse to plain single bonds.
			if err := p.setPending(1, false); err != nil {
				return err
			}
			p.pos++
		case c == '=':
			if err := p.setPending(2, false); err != nil {
				return err
			}
			p.pos++
		case c == '#':
			if err := p.setPending(3, false); err != nil {
				return err
			}
			p.pos++
		case c == ':':
			if err := p.setPending(1, true); err != nil {
				return err
			}
			p.pos++
		case c == '.':
			if p.pending.set {
				return p.fail("bond symbol before fragment separator")
			}
			if p.prev < 0 {
				return p.fail("fragment separator before any atom")
			}
			if len(p.stack) != 0 {
				return p.fail("fragment separator inside a branch")
			}
			p.prev = -1
			p.pos++
		case c >= '0' && c <= '9':
			if err := p.ringClosure(int(c - '0')); err != nil {
				return err
			}
			p.pos++
		case c == '%':
			if p.pos+2 >= len(p.src) || !isDigit(p.src[p.pos+1]) || !isDigit(p.src[p.pos+2]) {
				return p.fail("malformed two-digit ring closure")
			}
			n := int(p.src[p.pos+1]-'0')*10 + int(p.src[p.pos+2]-'0')
			if err := p.ringClosure(n); err != nil {
				return err
			}
			p.pos += 3
		case c == '[':
			atom, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.attach(atom); err != nil {
				return err
			}
		default:
			atom, ok := p.bareAtom()
			if !ok {
				return p.fail("unexpected character " + string(c))
			}
			if err := p.attach(atom); err != nil {
				return err
			}
		}
	}

	if len(p.stack) != 0 {
		return p.fail("unclosed branch")
	}
	if len(p.rings) != 0 {
		return p.fail("unclosed ring bond")
	}
	if p.pending.set {
		return p.fail("dangling bond at end of input")
	}
	if len(p.mol.Atoms) == 0 {
		return p.fail("no atoms")
	}
	return nil
}

func (p *parser) setPending(order int, aromatic bool) error {
	if p.pending.set {
		return p.fail("consecutive bond symbols")
	}
	if p.prev < 0 {
		return p.fail("bond symbol before any atom")
	}
	p.pending = pendingBond{set: true, order: order, aromatic: aromatic}
	return nil
}

// attach adds the atom to the graph and bonds it to the previous atom,
// resolving any pending explicit bond symbol.
func (p *parser) attach(a Atom) error {
	idx := p.mol.addAtom(a)
	if p.prev >= 0 {
		order, aromatic := p.resolveBond(p.pending, p.prev, idx)
		p.mol.addBond(p.prev, idx, order, aromatic)
	} else if p.pending.set {
		return p.fail("bond symbol at fragment start")
	}
	p.pending = pendingBond{}
	p.prev = idx
	return nil
}

// resolveBond determines the order and aromaticity of a new bond between
// atoms i and j, honoring an explicit bond symbol when present. An
// unannotated bond between two aromatic atoms is aromatic.
func (p *parser) resolveBond(pb pendingBond, i, j int) (int, bool) {
	if pb.set {
		return pb.order, pb.aromatic
	}
	if p.mol.Atoms[i].Aromatic && p.mol.Atoms[j].Aromatic {
		return 1, true
	}
	return 1, false
}

func (p *parser) ringClosure(num int) error {
	if p.prev < 0 {
		return p.fail("ring closure before any atom")
	}
	open, ok := p.rings[num]
	if !ok {
		p.rings[num] = ringBond{atom: p.prev, bond: p.pending}
		p.pending = pendingBond{}
		return nil
	}
	delete(p.rings, num)
	if open.atom == p.prev {
		return p.fail("ring bond to self")
	}
	if _, dup := p.mol.BondBetween(open.atom, p.prev); dup {
		return p.fail("duplicate ring bond")
	}

	// Either endpoint may annotate the bond, but not inconsistently.
	pb := p.pending
	p.pending = pendingBond{}
	if open.bond.set && pb.set && open.bond != pb {
		return p.fail("conflicting ring bond symbols")
	}
	if !pb.set {
		pb = open.bond
	}
	order, aromatic := p.resolveBond(pb, open.atom, p.prev)
	p.mol.addBond(open.atom, p.prev, order, aromatic)
	return nil
}

// bareAtom attempts to consume an organic-subset atom at the current
// position. Two-letter symbols Cl and Br take precedence over C and B.
func (p *parser) bareAtom() (Atom, bool) {
	rest := p.src[p.pos:]
	for _, sym := range [...]string{"Cl", "Br"} {
		if strings.HasPrefix(rest, sym) {
			p.pos += 2
			return Atom{Symbol: sym, HCount: -1}, true
		}
	}
	c := rest[0]
	if strings.IndexByte("BCNOPSFI", c) >= 0 {
		p.pos++
		return Atom{Symbol: string(c), HCount: -1}, true
	}
	if strings.IndexByte("bcnops", c) >= 0 {
		p.pos++
		return Atom{Symbol: strings.ToUpper(string(c)), Aromatic: true, HCount: -1}, true
	}
	return Atom{}, false
}

// bracketAtom consumes a full bracket atom expression starting at '['.
// Grammar: '[' isotope? symbol chiral? hcount? charge? map? ']'.
func (p *parser) bracketAtom() (Atom, error) {
	p.pos++ // consume '['
	atom := Atom{HCount: 0}

	// Isotope.
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		atom.Isotope = atom.Isotope*10 + int(p.src[p.pos]-'0')
		p.pos++
	}

	// Element symbol, possibly aromatic lowercase.
	if p.pos >= len(p.src) {
		return atom, p.fail("unterminated bracket atom")
	}
	switch c := p.src[p.pos]; {
	case c >= 'A' && c <= 'Z':
		sym := string(c)
		p.pos++
		if p.pos < len(p.src) && p.src[p.pos] >= 'a' && p.src[p.pos] <= 'z' {
			if knownElements[sym+string(p.src[p.pos])] {
				sym += string(p.src[p.pos])
				p.pos++
			}
		}
		if !knownElements[sym] {
			return atom, p.fail("unknown element " + sym)
		}
		atom.Symbol = sym
	case c >= 'a' && c <= 'z':
		sym := strings.ToUpper(string(c))
		p.pos++
		if p.pos < len(p.src) && p.src[p.pos] >= 'a' && p.src[p.pos] <= 'z' {
			two := sym + string(p.src[p.pos])
			if aromaticSubset[two] {
				sym = two
				p.pos++
			}
		}
		if !aromaticSubset[sym] {
			return atom, p.fail("element cannot be aromatic: " + sym)
		}
		atom.Symbol = sym
		atom.Aromatic = true
	default:
		return atom, p.fail("expected element symbol in bracket atom")
	}

	// Chirality markers are accepted and discarded.
	for p.pos < len(p.src) && p.src[p.pos] == '@' {
		p.pos++
	}

	// Explicit hydrogen count.
	if p.pos < len(p.src) && p.src[p.pos] == 'H' {
		p.pos++
		atom.HCount = 1
		if p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			atom.HCount = int(p.src[p.pos] - '0')
			p.pos++
		}
	}

	// Charge: "+", "-", repeated signs, or sign followed by digits.
	if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
		sign := 1
		if p.src[p.pos] == '-' {
			sign = -1
		}
		first := p.src[p.pos]
		n := 0
		for p.pos < len(p.src) && p.src[p.pos] == first {
			n++
			p.pos++
		}
		if n == 1 && p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			n = 0
			for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
				n = n*10 + int(p.src[p.pos]-'0')
				p.pos++
			}
		}
		atom.Charge = sign * n
	}

	// Atom map, discarded.
	if p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		if p.pos >= len(p.src) || !isDigit(p.src[p.pos]) {
			return atom, p.fail("malformed atom map")
		}
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}

	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return atom, p.fail("unterminated bracket atom")
	}
	p.pos++
	return atom, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
