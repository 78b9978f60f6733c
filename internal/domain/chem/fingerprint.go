package chem

import (
	"encoding/binary"
	"hash/fnv"
	"math/bits"
	"sort"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

// Default Morgan fingerprint parameters. Radius 2 corresponds to ECFP4.
const (
	DefaultMorganRadius = 2
	DefaultMorganBits   = 2048
)

// Fingerprint is a fixed-length binary fingerprint packed into 64-bit words.
type Fingerprint struct {
	bits   []uint64
	nBits  int
	onBits int
}

// NewFingerprint allocates an all-zero fingerprint of the given length.
func NewFingerprint(nBits int) *Fingerprint {
	return &Fingerprint{
		bits:  make([]uint64, (nBits+63)/64),
		nBits: nBits,
	}
}

// Length returns the fingerprint length in bits.
func (fp *Fingerprint) Length() int { return fp.nBits }

// OnBits returns the number of set bits.
func (fp *Fingerprint) OnBits() int { return fp.onBits }

// SetBit sets bit i. Out-of-range indices are ignored.
func (fp *Fingerprint) SetBit(i int) {
	if i < 0 || i >= fp.nBits {
		return
	}
	word, mask := i/64, uint64(1)<<(uint(i)%64)
	if fp.bits[word]&mask == 0 {
		fp.bits[word] |= mask
		fp.onBits++
	}
}

// GetBit reports whether bit i is set.
func (fp *Fingerprint) GetBit(i int) bool {
	if i < 0 || i >= fp.nBits {
		return false
	}
	return fp.bits[i/64]&(uint64(1)<<(uint(i)%64)) != 0
}

// IntersectionCount returns the number of bits set in both fingerprints.
// The fingerprints must have equal length.
func (fp *Fingerprint) IntersectionCount(other *Fingerprint) (int, error) {
	if fp.nBits != other.nBits {
		return 0, errors.Newf(errors.ErrCodeDimensionMismatch,
			"fingerprint lengths differ: %d vs %d", fp.nBits, other.nBits)
	}
	n := 0
	for w := range fp.bits {
		n += bits.OnesCount64(fp.bits[w] & other.bits[w])
	}
	return n, nil
}

// UnionCount returns the number of bits set in either fingerprint.
func (fp *Fingerprint) UnionCount(other *Fingerprint) (int, error) {
	if fp.nBits != other.nBits {
		return 0, errors.Newf(errors.ErrCodeDimensionMismatch,
			"fingerprint lengths differ: %d vs %d", fp.nBits, other.nBits)
	}
	n := 0
	for w := range fp.bits {
		n += bits.OnesCount64(fp.bits[w] | other.bits[w])
	}
	return n, nil
}

// hashFeature hashes a sequence of uint64 components into one feature value.
func hashFeature(parts ...uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(buf[:], p)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// atomInvariant returns the initial (radius 0) invariant of atom i.
func atomInvariant(m *Mol, i int) uint64 {
	a := m.Atoms[i]
	sym := fnv.New64a()
	sym.Write([]byte(a.Symbol))
	var arom, chg uint64
	if a.Aromatic {
		arom = 1
	}
	chg = uint64(int64(a.Charge) + 16) // offset keeps negatives distinct
	return hashFeature(sym.Sum64(), uint64(m.Degree(i)), uint64(m.Hydrogens(i)), arom, chg)
}

// MorganFingerprint computes a circular (Morgan/ECFP-style) fingerprint of
// the molecule: atom environments of growing radius are hashed into feature
// values and folded into nBits positions. Every non-empty molecule sets at
// least one bit, because every atom contributes its radius-0 environment.
func MorganFingerprint(m *Mol, radius, nBits int) (*Fingerprint, error) {
	if m == nil || m.NumAtoms() == 0 {
		return nil, errors.New(errors.ErrCodeFingerprintFailed, "cannot fingerprint an empty molecule")
	}
	if radius < 0 || nBits <= 0 {
		return nil, errors.Newf(errors.ErrCodeFingerprintFailed,
			"invalid fingerprint parameters: radius=%d nBits=%d", radius, nBits)
	}

	fp := NewFingerprint(nBits)
	inv := make([]uint64, m.NumAtoms())
	for i := range inv {
		inv[i] = atomInvariant(m, i)
		fp.SetBit(int(inv[i] % uint64(nBits)))
	}

	for r := 0; r < radius; r++ {
		next := make([]uint64, len(inv))
		for i := range inv {
			env := make([]uint64, 0, len(m.Bonds[i]))
			for _, b := range m.Bonds[i] {
				env = append(env, uint64(bondKey(b))<<56|inv[b.To]>>8)
			}
			sort.Slice(env, func(a, b int) bool { return env[a] < env[b] })
			next[i] = hashFeature(append([]uint64{uint64(r + 1), inv[i]}, env...)...)
			fp.SetBit(int(next[i] % uint64(nBits)))
		}
		inv = next
	}
	return fp, nil
}
