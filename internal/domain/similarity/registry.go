package similarity

import (
	"sort"
	"sync"

	"github.com/turtacn/ChemPrep/internal/domain/chem"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

// Canonical similarity function names.
const (
	MetricTanimoto = "tanimoto"
	MetricTversky  = "tversky"
	MetricMCS      = "mcs"
)

// Func computes the similarity of a query molecule a against a reference
// molecule b. Implementations need not be symmetric: Tversky and MCS
// normalise by the reference molecule.
type Func func(a, b *Molecule) (float64, error)

// Registry maps similarity function names to implementations. Registering a
// name twice silently replaces the previous function, so callers can
// override a built-in metric with a custom one.
type Registry struct {
	mu     sync.RWMutex
	funcs  map[string]Func
	logger logging.Logger
}

// NewRegistry returns a Registry pre-populated with the built-in metrics:
// tanimoto, tversky and mcs.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	r := &Registry{
		funcs:  map[string]Func{},
		logger: logger.Named("similarity"),
	}
	r.Register(MetricTanimoto, Tanimoto)
	r.Register(MetricTversky, Tversky)
	r.Register(MetricMCS, MCS)
	return r
}

// Register stores fn under name, replacing any existing registration.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	_, replaced := r.funcs[name]
	r.funcs[name] = fn
	r.mu.Unlock()
	if replaced {
		r.logger.Debug("similarity function replaced", logging.String("name", name))
	}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownMetric,
			"similarity function %q could not be found", name)
	}
	return fn, nil
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Tanimoto returns |A∩B| / |A∪B| over the molecules' fingerprints. Two
// fingerprints with no set bits at all yield 0.
func Tanimoto(a, b *Molecule) (float64, error) {
	inter, err := a.FP.IntersectionCount(b.FP)
	if err != nil {
		return 0, err
	}
	union, err := a.FP.UnionCount(b.FP)
	if err != nil {
		return 0, err
	}
	if union == 0 {
		return 0, nil
	}
	return float64(inter) / float64(union), nil
}

// Tversky returns the Tversky index with alpha=0, beta=1, which reduces to
// |A∩B| / |B|: the fraction of the reference molecule's features present in
// the query. A reference with an empty fingerprint cannot be normalised.
func Tversky(a, b *Molecule) (float64, error) {
	inter, err := a.FP.IntersectionCount(b.FP)
	if err != nil {
		return 0, err
	}
	if b.FP.OnBits() == 0 {
		return 0, errors.New(errors.ErrCodeEmptyFingerprint,
			"reference fingerprint has no set bits")
	}
	return float64(inter) / float64(b.FP.OnBits()), nil
}

// MCS returns the maximum-common-substructure similarity: the atom count of
// the largest common substructure divided by the reference molecule's atom
// count.
func MCS(a, b *Molecule) (float64, error) {
	n, err := chem.MCSAtomCount(a.Mol, b.Mol)
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(b.Mol.NumAtoms()), nil
}
