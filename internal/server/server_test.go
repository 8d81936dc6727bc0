package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dataprep/internal/analysis"
	"github.com/KaramelBytes/dataprep/internal/metrics"
	"github.com/KaramelBytes/dataprep/internal/preprocess"
)

const sampleBody = `{
  "columns": ["a", "b"],
  "rows": [
    {"a": 1, "b": "x"},
    {"a": 2, "b": "y"},
    {"a": 3, "b": "x"},
    {"a": null, "b": "x"},
    {"a": 100, "b": "z"}
  ]`

func body(extra string) string {
	if extra == "" {
		return sampleBody + "}"
	}
	return sampleBody + "," + extra + "}"
}

func newTestServer() *Server {
	rec := metrics.New()
	tr := preprocess.New(analysis.DefaultOptions(), nil, rec)
	return New(Config{BodyLimit: "1M"}, tr, nil, rec)
}

func do(t *testing.T, s *Server, method, target, payload string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if payload != "" {
		r = strings.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestAnalyzeEndpoint(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/api/analyze", body(""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	m := decode(t, rec)
	assert.Equal(t, 5.0, m["rowCount"])
	assert.Equal(t, []any{"a"}, m["numericColumns"])
	cols := m["columns"].(map[string]any)
	a := cols["a"].(map[string]any)
	assert.Equal(t, "numeric", a["type"])
	assert.Equal(t, 1.0, a["missing"])
	assert.Equal(t, "20.0", a["missingPercent"])
	assert.Equal(t, 4.0, a["unique"])
}

func TestAnalyzeMarkdown(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/api/analyze?format=markdown", body(""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[DATASET SUMMARY]")
}

func TestPreprocessEndpoint(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/api/preprocess", body(`"missingValueMethod": "fillMean"`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	m := decode(t, rec)
	rows := m["data"].([]any)
	assert.Equal(t, 26.5, rows[3].(map[string]any)["a"])
	assert.Equal(t, []any{"Filled 1 missing values using mean"}, m["preprocessingSteps"])
	assert.Contains(t, m, "analysis")
}

func TestPreprocessUnknownMethod(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/api/preprocess", body(`"encodingMethod": "binary"`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `unknown encoding method`)
}

func TestAutomateEndpoint(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/api/automate", body(""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	m := decode(t, rec)
	metricsOut := m["metrics"].(map[string]any)
	assert.Equal(t, 5.0, metricsOut["rowsProcessed"])
	assert.Equal(t, 1.0, metricsOut["valuesFilled"])
	assert.Len(t, m["preprocessingSteps"], 3)
}

func TestDownloadCSV(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/api/download?format=csv", body(""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "a,b\n1,x\n2,y\n3,x\n,x\n100,z\n", rec.Body.String())
}

func TestDownloadJSONAndBadFormat(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/api/download?format=json", body(""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"columns"`)

	rec = do(t, s, http.MethodPost, "/api/download?format=xml", body(""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOutliersEndpoint(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/api/outliers?column=a", body(""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := decode(t, rec)
	assert.Equal(t, 1.0, m["count"])
	assert.Equal(t, []any{4.0}, m["indices"])

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, s, http.MethodPost, "/api/outliers?column=b", body("")).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/api/outliers?column=zz", body("")).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/outliers", body("")).Code)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer()
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/analyze", "{not json").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/analyze", `{"columns": ["a"]}`).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	do(t, s, http.MethodPost, "/api/analyze", body(""))
	rec = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dataprep_analyses_total 1")
	assert.Contains(t, rec.Body.String(), `dataprep_http_requests_total{code="200",route="/api/analyze"} 1`)
}
