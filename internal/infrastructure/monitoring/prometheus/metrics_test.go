package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP("POST", "/api/v1/similarity", "200", 120*time.Millisecond)
	m.ObserveHTTP("POST", "/api/v1/similarity", "200", 80*time.Millisecond)
	m.ObserveHTTP("POST", "/api/v1/similarity", "400", time.Millisecond)

	ok := m.HTTPRequests.WithLabelValues("POST", "/api/v1/similarity", "200")
	assert.Equal(t, 2.0, testutil.ToFloat64(ok))
	bad := m.HTTPRequests.WithLabelValues("POST", "/api/v1/similarity", "400")
	assert.Equal(t, 1.0, testutil.ToFloat64(bad))
}

func TestObserveMatrix(t *testing.T) {
	m := New()
	m.ObserveMatrix("tanimoto", 9, 50*time.Millisecond)
	m.ObserveMatrix("tanimoto", 4, 10*time.Millisecond)

	cells := m.MatrixCells.WithLabelValues("tanimoto")
	assert.Equal(t, 13.0, testutil.ToFloat64(cells))
}

func TestMoleculeCounters(t *testing.T) {
	m := New()
	m.MoleculesParsed.Inc()
	m.MoleculesParsed.Inc()
	m.MoleculesInvalid.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MoleculesParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MoleculesInvalid))
}

func TestHandler(t *testing.T) {
	m := New()
	m.MoleculesParsed.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "chemprep_molecules_parsed_total 1")
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.MoleculesParsed.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.MoleculesParsed))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.MoleculesParsed))
}
