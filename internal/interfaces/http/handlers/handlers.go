// Package handlers implements the chemprep HTTP API: JSON endpoints mirroring
// the canonicalize, similarity and neighbors commands, plus a health probe.
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemPrep/internal/application/curation"
	"github.com/turtacn/ChemPrep/internal/application/dataset"
	"github.com/turtacn/ChemPrep/internal/application/matching"
	"github.com/turtacn/ChemPrep/internal/domain/similarity"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemPrep/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

// API bundles the services behind the HTTP endpoints.
type API struct {
	curation *curation.Service
	matching *matching.Service
	engine   *similarity.Engine
	metrics  *prometheus.Metrics
	logger   logging.Logger
}

// New constructs the API handler set. metrics may be nil when the metrics
// endpoint is disabled.
func New(
	cur *curation.Service,
	match *matching.Service,
	engine *similarity.Engine,
	metrics *prometheus.Metrics,
	logger logging.Logger,
) *API {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &API{
		curation: cur,
		matching: match,
		engine:   engine,
		metrics:  metrics,
		logger:   logger.Named("http"),
	}
}

// Register mounts all endpoints under r.
func (a *API) Register(r gin.IRouter) {
	r.GET("/healthz", a.health)
	v1 := r.Group("/api/v1")
	v1.POST("/canonicalize", a.canonicalize)
	v1.POST("/similarity", a.similarityMatrix)
	v1.POST("/neighbors", a.neighbors)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForCode maps error codes to HTTP statuses: user input problems are
// 400s, everything unexpected is a 500.
func statusForCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidParam, errors.ErrCodeValidation,
		errors.ErrCodeInvalidSMILES, errors.ErrCodeUnknownMetric,
		errors.ErrCodeSelfComparisonTooSmall, errors.ErrCodeColumnNotFound,
		errors.ErrCodeEmptyFingerprint:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) abort(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", logging.Err(err))
	}
	c.AbortWithStatusJSON(status, errorResponse{Code: code.String(), Message: err.Error()})
}

func (a *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CanonicalizeRequest is the body of POST /api/v1/canonicalize.
type CanonicalizeRequest struct {
	SMILES             []string `json:"smiles" binding:"required"`
	RemoveSalts        bool     `json:"remove_salts"`
	RemoveDisconnected bool     `json:"remove_disconnected"`
}

// CanonicalizeEntry is the per-molecule outcome.
type CanonicalizeEntry struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical,omitempty"`
	Status    string `json:"status"` // ok, invalid or disconnected
	Error     string `json:"error,omitempty"`
}

// CanonicalizeResponse summarises a canonicalization batch.
type CanonicalizeResponse struct {
	Results      []CanonicalizeEntry `json:"results"`
	Total        int                 `json:"total"`
	Invalid      int                 `json:"invalid"`
	Disconnected int                 `json:"disconnected"`
}

func (a *API) canonicalize(c *gin.Context) {
	var req CanonicalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abort(c, errors.Wrap(err, errors.ErrCodeInvalidParam, "invalid request body"))
		return
	}
	if len(req.SMILES) == 0 {
		a.abort(c, errors.InvalidParam("smiles list must not be empty"))
		return
	}

	resp := CanonicalizeResponse{Total: len(req.SMILES)}
	for _, smi := range req.SMILES {
		entry := CanonicalizeEntry{Input: smi, Status: "ok"}
		canonical, err := a.curation.CanonicalizeOne(smi, req.RemoveSalts)
		switch {
		case err != nil:
			entry.Status = "invalid"
			entry.Error = err.Error()
			resp.Invalid++
			if a.metrics != nil {
				a.metrics.MoleculesInvalid.Inc()
			}
		case req.RemoveDisconnected && strings.Contains(canonical, "."):
			entry.Status = "disconnected"
			resp.Disconnected++
			if a.metrics != nil {
				a.metrics.MoleculesParsed.Inc()
			}
		default:
			entry.Canonical = canonical
			if a.metrics != nil {
				a.metrics.MoleculesParsed.Inc()
			}
		}
		resp.Results = append(resp.Results, entry)
	}
	c.JSON(http.StatusOK, resp)
}

// SimilarityRequest is the body of POST /api/v1/similarity. With an empty
// references list the molecule set is compared against itself.
type SimilarityRequest struct {
	Metric     string   `json:"metric"`
	SMILES     []string `json:"smiles" binding:"required"`
	References []string `json:"references"`
}

// SimilarityResponse carries the dense similarity matrix.
type SimilarityResponse struct {
	Metric string      `json:"metric"`
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Matrix [][]float64 `json:"matrix"`
}

func (a *API) similarityMatrix(c *gin.Context) {
	var req SimilarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abort(c, errors.Wrap(err, errors.ErrCodeInvalidParam, "invalid request body"))
		return
	}
	if req.Metric == "" {
		req.Metric = similarity.MetricTanimoto
	}

	queries, err := similarity.PrepareMolecules(req.SMILES, similarity.DefaultPrepareOptions())
	if err != nil {
		a.abort(c, err)
		return
	}

	start := time.Now()
	var m *similarity.Matrix
	if len(req.References) == 0 {
		m, err = a.engine.SelfMatrix(req.Metric, queries)
	} else {
		var refs []*similarity.Molecule
		refs, err = similarity.PrepareMolecules(req.References, similarity.DefaultPrepareOptions())
		if err == nil {
			m, err = a.engine.PairwiseMatrix(req.Metric, queries, refs)
		}
	}
	if err != nil {
		a.abort(c, err)
		return
	}
	if a.metrics != nil {
		a.metrics.ObserveMatrix(req.Metric, m.Rows*m.Cols, time.Since(start))
	}

	rows := make([][]float64, m.Rows)
	for i := range rows {
		rows[i] = append([]float64(nil), m.Row(i)...)
	}
	c.JSON(http.StatusOK, SimilarityResponse{
		Metric: req.Metric,
		Rows:   m.Rows,
		Cols:   m.Cols,
		Matrix: rows,
	})
}

// NeighborsRequest is the body of POST /api/v1/neighbors.
type NeighborsRequest struct {
	Metric     string   `json:"metric"`
	Query      []string `json:"query" binding:"required"`
	References []string `json:"references" binding:"required"`
}

// NeighborEntry pairs a query molecule with its nearest reference.
type NeighborEntry struct {
	SMILES          string  `json:"smiles"`
	NearestNeighbor string  `json:"nearest_neighbor"`
	Similarity      float64 `json:"similarity"`
}

func (a *API) neighbors(c *gin.Context) {
	var req NeighborsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.abort(c, errors.Wrap(err, errors.ErrCodeInvalidParam, "invalid request body"))
		return
	}
	if req.Metric == "" {
		req.Metric = similarity.MetricTanimoto
	}

	queryTable := smilesTable(req.Query)
	refTable := smilesTable(req.References)
	out, err := a.matching.Match(queryTable, refTable, matching.MatchOptions{
		Metric:      req.Metric,
		QueryColumn: "smiles",
	})
	if err != nil {
		a.abort(c, err)
		return
	}

	nn, err := out.Column("nearest_neighbor")
	if err != nil {
		a.abort(c, err)
		return
	}
	simCol, err := out.Column("nearest_neighbor_similarity")
	if err != nil {
		a.abort(c, err)
		return
	}

	entries := make([]NeighborEntry, len(req.Query))
	for i := range entries {
		entries[i] = NeighborEntry{
			SMILES:          req.Query[i],
			NearestNeighbor: nn[i],
			Similarity:      parseFloat(simCol[i]),
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": entries})
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func smilesTable(smiles []string) *dataset.Table {
	t := &dataset.Table{Columns: []string{"smiles"}}
	for _, s := range smiles {
		t.Rows = append(t.Rows, []string{s})
	}
	return t
}
