package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemPrep/pkg/errors"
)

func newTestEngine(workers int) *Engine {
	return NewEngine(NewRegistry(nil), nil, workers)
}

func TestEngine_PairwiseMatrix(t *testing.T) {
	queries := []*Molecule{prepare(t, "CCO")}
	refs := []*Molecule{prepare(t, "CCO"), prepare(t, "CCN")}

	m, err := newTestEngine(4).PairwiseMatrix(MetricTanimoto, queries, refs)
	require.NoError(t, err)
	require.NoError(t, m.CheckShape(1, 2))

	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Less(t, m.At(0, 1), 1.0)
}

func TestEngine_Deterministic(t *testing.T) {
	mols, err := PrepareMolecules(
		[]string{"CCO", "CCN", "CCCO", "c1ccccc1", "CC(=O)O"},
		DefaultPrepareOptions(),
	)
	require.NoError(t, err)

	first, err := newTestEngine(8).PairwiseMatrix(MetricTanimoto, mols, mols)
	require.NoError(t, err)
	second, err := newTestEngine(2).PairwiseMatrix(MetricTanimoto, mols, mols)
	require.NoError(t, err)

	// Worker count and scheduling never change the result.
	assert.Equal(t, first.Data, second.Data)
}

func TestEngine_UnknownMetric(t *testing.T) {
	mols := []*Molecule{prepare(t, "CCO"), prepare(t, "CCN")}
	_, err := newTestEngine(1).PairwiseMatrix("cosine", mols, mols)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownMetric))
}

func TestEngine_EmptyInput(t *testing.T) {
	mols := []*Molecule{prepare(t, "CCO")}
	_, err := newTestEngine(1).PairwiseMatrix(MetricTanimoto, nil, mols)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))
	_, err = newTestEngine(1).PairwiseMatrix(MetricTanimoto, mols, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))
}

func TestEngine_CellErrorIsFatal(t *testing.T) {
	engine := newTestEngine(4)
	engine.Registry().Register("always-fails", func(a, b *Molecule) (float64, error) {
		return 0, errors.New(errors.ErrCodeInternal, "boom")
	})

	mols := []*Molecule{prepare(t, "CCO"), prepare(t, "CCN")}
	_, err := engine.PairwiseMatrix("always-fails", mols, mols)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}

func TestEngine_SelfMatrix(t *testing.T) {
	mols := []*Molecule{prepare(t, "CCO"), prepare(t, "CCN")}
	m, err := newTestEngine(2).SelfMatrix(MetricTanimoto, mols)
	require.NoError(t, err)
	require.NoError(t, m.CheckShape(2, 2))
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(1, 1))
	assert.Equal(t, m.At(0, 1), m.At(1, 0))

	_, err = newTestEngine(2).SelfMatrix(MetricTanimoto, mols[:1])
	assert.True(t, errors.IsCode(err, errors.ErrCodeSelfComparisonTooSmall))
}

func TestEngine_MCSMatrixAsymmetry(t *testing.T) {
	// MCS similarity normalises by the reference, so the matrix need not be
	// symmetric.
	mols := []*Molecule{prepare(t, "CC"), prepare(t, "CCO")}
	m, err := newTestEngine(2).SelfMatrix(MetricMCS, mols)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(1, 1))
	// Ethane fits fully in ethanol; only 2 of ethanol's 3 atoms match back.
	assert.Equal(t, 1.0, m.At(1, 0))
	assert.InDelta(t, 2.0/3.0, m.At(0, 1), 1e-12)
}

func TestReduceMax(t *testing.T) {
	m := NewMatrix(3, 3)
	// Row 0: tie between columns 1 and 2 at 0.8 → lowest index wins.
	m.Set(0, 0, 1.0)
	m.Set(0, 1, 0.8)
	m.Set(0, 2, 0.8)
	m.Set(1, 0, 0.3)
	m.Set(1, 1, 1.0)
	m.Set(1, 2, 0.9)
	m.Set(2, 0, 0.1)
	m.Set(2, 1, 0.2)
	m.Set(2, 2, 1.0)

	t.Run("cross_set_keeps_diagonal", func(t *testing.T) {
		out, err := ReduceMax(m, false)
		require.NoError(t, err)
		assert.Equal(t, []RowMax{{0, 1.0}, {1, 1.0}, {2, 1.0}}, out)
	})

	t.Run("self_set_masks_diagonal", func(t *testing.T) {
		out, err := ReduceMax(m, true)
		require.NoError(t, err)
		assert.Equal(t, []RowMax{{1, 0.8}, {2, 0.9}, {1, 0.2}}, out)
	})
}

func TestReduceMax_Errors(t *testing.T) {
	_, err := ReduceMax(NewMatrix(2, 3), true)
	assert.True(t, errors.IsCode(err, errors.ErrCodeShapeMismatch))

	_, err = ReduceMax(NewMatrix(1, 1), true)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSelfComparisonTooSmall))

	_, err = ReduceMax(NewMatrix(0, 0), false)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))
}
