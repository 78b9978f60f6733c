// Package curation implements the dataset canonicalization pipeline: parse
// every SMILES in a CSV column, drop the rows that fail, optionally strip
// salt fragments, rewrite the column in canonical form and optionally drop
// molecules that are still disconnected afterwards.
package curation

import (
	"strings"

	"github.com/turtacn/ChemPrep/internal/application/dataset"
	"github.com/turtacn/ChemPrep/internal/domain/chem"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
)

// Options controls a curation run.
type Options struct {
	// SMILESColumn names the column holding SMILES strings.
	SMILESColumn string

	// RemoveSalts strips salt and solvent fragments before canonicalizing.
	RemoveSalts bool

	// RemoveDisconnected drops rows whose curated SMILES still contains
	// more than one fragment.
	RemoveDisconnected bool
}

// Result reports what a curation run did to the dataset.
type Result struct {
	// Table is the curated dataset.
	Table *dataset.Table

	// Total is the row count of the input dataset.
	Total int

	// Invalid is the number of rows dropped because their SMILES failed to
	// parse.
	Invalid int

	// Disconnected is the number of rows dropped because their curated
	// SMILES was still multi-fragment. Zero unless RemoveDisconnected.
	Disconnected int
}

// Kept returns the number of rows that survived curation.
func (r *Result) Kept() int { return r.Total - r.Invalid - r.Disconnected }

// Service runs curation pipelines.
type Service struct {
	logger logging.Logger
}

// NewService constructs a curation Service.
func NewService(logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{logger: logger.Named("curation")}
}

// CanonicalizeOne curates a single SMILES string: optional salt stripping
// followed by canonical rewriting.
func (s *Service) CanonicalizeOne(smiles string, removeSalts bool) (string, error) {
	mol, err := chem.ParseSMILES(smiles)
	if err != nil {
		return "", err
	}
	if removeSalts {
		mol = chem.StripSalts(mol)
	}
	return mol.CanonicalSMILES(), nil
}

// CurateTable curates the table in three passes. Invalid rows are dropped
// first, then the survivors are canonicalized in place, then disconnected
// molecules are dropped when requested. The input table is not modified.
func (s *Service) CurateTable(t *dataset.Table, opts Options) (*Result, error) {
	raw, err := t.Column(opts.SMILESColumn)
	if err != nil {
		return nil, err
	}
	res := &Result{Total: t.NumRows()}

	curated := make([]string, 0, len(raw))
	valid := make([]bool, len(raw))
	for i, smiles := range raw {
		canon, cErr := s.CanonicalizeOne(smiles, opts.RemoveSalts)
		if cErr != nil {
			res.Invalid++
			s.logger.Warn("dropping unparsable SMILES",
				logging.Int("row", i),
				logging.String("smiles", smiles),
				logging.Err(cErr),
			)
			continue
		}
		valid[i] = true
		curated = append(curated, canon)
	}

	out := t.Filter(func(i int) bool { return valid[i] })
	// Filter shares row slices with the input, so copy before rewriting.
	for i := range out.Rows {
		out.Rows[i] = append([]string(nil), out.Rows[i]...)
	}
	if err := out.SetColumn(opts.SMILESColumn, curated); err != nil {
		return nil, err
	}

	if opts.RemoveDisconnected {
		idx, _ := out.ColumnIndex(opts.SMILESColumn)
		connected := out.Filter(func(i int) bool {
			return !strings.Contains(out.Rows[i][idx], ".")
		})
		res.Disconnected = out.NumRows() - connected.NumRows()
		out = connected
	}

	res.Table = out
	s.logger.Info("dataset curated",
		logging.Int("total", res.Total),
		logging.Int("invalid", res.Invalid),
		logging.Int("disconnected", res.Disconnected),
		logging.Int("kept", res.Kept()),
		logging.Bool("remove_salts", opts.RemoveSalts),
	)
	return res, nil
}

// CurateFile loads a CSV file, curates it and saves the result. Parent
// directories of outPath are created as needed.
func (s *Service) CurateFile(inPath, outPath string, opts Options) (*Result, error) {
	t, err := dataset.Load(inPath)
	if err != nil {
		return nil, err
	}
	res, err := s.CurateTable(t, opts)
	if err != nil {
		return nil, err
	}
	if err := res.Table.Save(outPath); err != nil {
		return nil, err
	}
	s.logger.Info("curated dataset saved",
		logging.String("input", inPath),
		logging.String("output", outPath),
		logging.Int("rows", res.Table.NumRows()),
	)
	return res, nil
}
