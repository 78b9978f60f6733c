// Package matching implements dataset-level similarity workflows: pairwise
// similarity matrices between CSV datasets, nearest-neighbor annotation of a
// query dataset against a reference dataset, and per-row maximum-similarity
// annotation within a single dataset or against a reference dataset.
package matching

import (
	"sort"
	"strconv"

	"github.com/turtacn/ChemPrep/internal/application/dataset"
	"github.com/turtacn/ChemPrep/internal/domain/similarity"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
)

// Service wires the similarity engine to tabular datasets.
type Service struct {
	engine   *similarity.Engine
	prepOpts similarity.PrepareOptions
	logger   logging.Logger
}

// NewService constructs a matching Service around an Engine.
func NewService(engine *similarity.Engine, prepOpts similarity.PrepareOptions, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{engine: engine, prepOpts: prepOpts, logger: logger.Named("matching")}
}

// MatrixOptions controls a matrix computation between two datasets.
type MatrixOptions struct {
	// Metric is the similarity function name.
	Metric string

	// QueryColumn is the SMILES column of the query dataset.
	QueryColumn string

	// ReferenceColumn is the SMILES column of the reference dataset. When
	// empty it defaults to QueryColumn.
	ReferenceColumn string
}

func (o *MatrixOptions) referenceColumn() string {
	if o.ReferenceColumn != "" {
		return o.ReferenceColumn
	}
	return o.QueryColumn
}

// MatrixResult is a computed similarity matrix together with the SMILES
// labels of its axes.
type MatrixResult struct {
	Matrix     *similarity.Matrix
	Queries    []string
	References []string
}

// Matrix computes the full similarity matrix of the query dataset against
// the reference dataset. Passing the same table twice yields a
// self-comparison matrix.
func (s *Service) Matrix(query, reference *dataset.Table, opts MatrixOptions) (*MatrixResult, error) {
	querySmiles, err := query.Column(opts.QueryColumn)
	if err != nil {
		return nil, err
	}
	refSmiles, err := reference.Column(opts.referenceColumn())
	if err != nil {
		return nil, err
	}

	queryMols, err := similarity.PrepareMolecules(querySmiles, s.prepOpts)
	if err != nil {
		return nil, err
	}
	refMols, err := similarity.PrepareMolecules(refSmiles, s.prepOpts)
	if err != nil {
		return nil, err
	}

	m, err := s.engine.PairwiseMatrix(opts.Metric, queryMols, refMols)
	if err != nil {
		return nil, err
	}
	return &MatrixResult{Matrix: m, Queries: querySmiles, References: refSmiles}, nil
}

// Table renders the matrix as a CSV table: one row per query, one column per
// reference labeled by its SMILES, with the query SMILES in a leading
// "smiles" column.
func (r *MatrixResult) Table() *dataset.Table {
	t := &dataset.Table{Columns: append([]string{"smiles"}, r.References...)}
	for i, q := range r.Queries {
		row := make([]string, 0, len(r.References)+1)
		row = append(row, q)
		for _, v := range r.Matrix.Row(i) {
			row = append(row, formatSimilarity(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// MatchOptions controls nearest-neighbor annotation.
type MatchOptions struct {
	// Metric is the similarity function name.
	Metric string

	// QueryColumn is the SMILES column of the query dataset.
	QueryColumn string

	// ReferenceColumn is the SMILES column of the reference dataset,
	// defaulting to QueryColumn.
	ReferenceColumn string

	// Prefix is prepended to the names of the two appended columns, so
	// several reference sets can annotate the same dataset.
	Prefix string
}

// Match finds, for every query row, the most similar reference molecule and
// appends two columns to a copy of the query table:
//
//	{prefix}nearest_neighbor            the reference SMILES
//	{prefix}nearest_neighbor_similarity its similarity to the query
//
// Reference SMILES are deduplicated and sorted before matching, so duplicate
// reference rows cannot skew tie-breaking and the output is independent of
// reference row order. Ties go to the lexicographically smallest reference.
func (s *Service) Match(query, reference *dataset.Table, opts MatchOptions) (*dataset.Table, error) {
	refColumn := opts.ReferenceColumn
	if refColumn == "" {
		refColumn = opts.QueryColumn
	}
	refSmiles, err := reference.Column(refColumn)
	if err != nil {
		return nil, err
	}
	refs := dedupSorted(refSmiles)
	s.logger.Info("matching against reference set",
		logging.Int("query_rows", query.NumRows()),
		logging.Int("reference_rows", len(refSmiles)),
		logging.Int("reference_unique", len(refs)),
		logging.String("metric", opts.Metric),
	)

	refTable := &dataset.Table{Columns: []string{refColumn}}
	for _, smi := range refs {
		refTable.Rows = append(refTable.Rows, []string{smi})
	}

	res, err := s.Matrix(query, refTable, MatrixOptions{
		Metric:          opts.Metric,
		QueryColumn:     opts.QueryColumn,
		ReferenceColumn: refColumn,
	})
	if err != nil {
		return nil, err
	}
	// The matrix must line up with the datasets it annotates.
	if err := res.Matrix.CheckShape(query.NumRows(), len(refs)); err != nil {
		return nil, err
	}

	maxima, err := similarity.ReduceMax(res.Matrix, false)
	if err != nil {
		return nil, err
	}

	neighbors := make([]string, len(maxima))
	values := make([]string, len(maxima))
	for i, rm := range maxima {
		neighbors[i] = refs[rm.Index]
		values[i] = formatSimilarity(rm.Value)
	}

	out := query.Filter(func(int) bool { return true })
	for i := range out.Rows {
		out.Rows[i] = append([]string(nil), out.Rows[i]...)
	}
	if err := out.AddColumn(opts.Prefix+"nearest_neighbor", neighbors); err != nil {
		return nil, err
	}
	if err := out.AddColumn(opts.Prefix+"nearest_neighbor_similarity", values); err != nil {
		return nil, err
	}
	return out, nil
}

// AnnotateOptions controls maximum-similarity annotation.
type AnnotateOptions struct {
	// Metric is the similarity function name.
	Metric string

	// QueryColumn is the SMILES column of the query dataset.
	QueryColumn string

	// ReferenceColumn is the SMILES column of the reference dataset,
	// defaulting to QueryColumn. Ignored without a reference dataset.
	ReferenceColumn string
}

// AnnotateMaxSimilarity appends a "max_{metric}_similarity" column holding,
// for every row of query, its highest similarity to any reference row. With
// a nil reference the table is compared against itself: the diagonal is
// excluded, so the table then needs at least two rows.
func (s *Service) AnnotateMaxSimilarity(query, reference *dataset.Table, opts AnnotateOptions) (*dataset.Table, error) {
	smiles, err := query.Column(opts.QueryColumn)
	if err != nil {
		return nil, err
	}
	mols, err := similarity.PrepareMolecules(smiles, s.prepOpts)
	if err != nil {
		return nil, err
	}

	self := reference == nil
	var m *similarity.Matrix
	if self {
		m, err = s.engine.SelfMatrix(opts.Metric, mols)
	} else {
		refColumn := opts.ReferenceColumn
		if refColumn == "" {
			refColumn = opts.QueryColumn
		}
		refSmiles, cerr := reference.Column(refColumn)
		if cerr != nil {
			return nil, cerr
		}
		var refMols []*similarity.Molecule
		refMols, err = similarity.PrepareMolecules(refSmiles, s.prepOpts)
		if err != nil {
			return nil, err
		}
		m, err = s.engine.PairwiseMatrix(opts.Metric, mols, refMols)
	}
	if err != nil {
		return nil, err
	}
	maxima, err := similarity.ReduceMax(m, self)
	if err != nil {
		return nil, err
	}

	values := make([]string, len(maxima))
	for i, rm := range maxima {
		values[i] = formatSimilarity(rm.Value)
	}
	out := query.Filter(func(int) bool { return true })
	for i := range out.Rows {
		out.Rows[i] = append([]string(nil), out.Rows[i]...)
	}
	if err := out.AddColumn("max_"+opts.Metric+"_similarity", values); err != nil {
		return nil, err
	}
	return out, nil
}

// dedupSorted returns the unique values of in, sorted lexicographically.
func dedupSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func formatSimilarity(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
