package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabinspect/internal/export"
	"github.com/JonMunkholm/tabinspect/internal/ingest"
	"github.com/JonMunkholm/tabinspect/internal/metrics"
	"github.com/JonMunkholm/tabinspect/internal/summary"
)

type fixture struct {
	srv *Server
	dir string
	csv string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(src, []byte("id,name\n1,Ana\n,\n2,Luis\n"), 0o644))

	rec := metrics.NewRecorder()
	loader := ingest.NewLoader(
		nil,
		nil,
		ingest.WithObserver(rec),
	)
	srv := NewServer(loader, export.NewWriter(dir), Options{Metrics: rec.Handler()})
	return fixture{srv: srv, dir: dir, csv: src}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rec, req)
	return rec
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestInspect(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/inspect", mustJSON(t, InspectRequest{Path: f.csv}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got summary.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Rows)
	assert.Equal(t, "utf-8", got.Encoding)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, summary.TypeNumber, got.Columns[0].Type)
	assert.Equal(t, 1, got.Columns[1].Missing)
}

func TestInspect_FailureStatus(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		req    InspectRequest
		status int
		code   string
		kind   string
		detail string
	}{
		{
			name:   "wrong extension",
			req:    InspectRequest{Path: "/tmp/notes.txt"},
			status: http.StatusBadRequest,
			code:   "FILE001",
			kind:   "InvalidFormat",
			detail: "expected .csv",
		},
		{
			name:   "csv requested for workbook",
			req:    InspectRequest{Path: "/tmp/book.xlsx", Kind: "csv"},
			status: http.StatusBadRequest,
			code:   "FILE001",
			kind:   "InvalidFormat",
			detail: "expected .csv",
		},
		{
			name:   "missing file",
			req:    InspectRequest{Path: filepath.Join(f.dir, "nope.csv")},
			status: http.StatusNotFound,
			code:   "FILE002",
			kind:   "NotFound",
			detail: filepath.Join(f.dir, "nope.csv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/inspect", mustJSON(t, tt.req))

			require.Equal(t, tt.status, rec.Code)
			var got ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.detail, got.Detail)
		})
	}
}

func TestInspect_ParseErrorIs422(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(f.dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,b\n1,2,3\n"), 0o644))

	rec := f.do(t, http.MethodPost, "/api/inspect", mustJSON(t, InspectRequest{Path: bad}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"FILE004"`)
}

func TestInspect_InvalidRequest(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty path", body: `{"path":""}`},
		{name: "bad kind", body: `{"path":"a.csv","kind":"parquet"}`},
		{name: "unknown field", body: `{"path":"a.csv","extra":1}`},
		{name: "not json", body: `path=a.csv`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/inspect", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"REQ001"`)
		})
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/export", mustJSON(t, ExportRequest{
		Path:   f.csv,
		Format: "json",
		Output: "clean",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, filepath.Join(f.dir, "clean.json"), got.Path)
	assert.Equal(t, 2, got.Rows)

	data, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Ana"},{"id":2,"name":"Luis"}]`, string(data))
}

func TestExport_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		req    ExportRequest
		status int
		code   string
	}{
		{
			name:   "unknown format",
			req:    ExportRequest{Path: f.csv, Format: "parquet", Output: "x"},
			status: http.StatusBadRequest,
			code:   "EXP001",
		},
		{
			name:   "postgres without database",
			req:    ExportRequest{Path: f.csv, Format: "postgres", Output: "x"},
			status: http.StatusBadRequest,
			code:   "EXP002",
		},
		{
			name:   "output with separator",
			req:    ExportRequest{Path: f.csv, Format: "csv", Output: "../x"},
			status: http.StatusBadRequest,
			code:   "REQ001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/export", mustJSON(t, tt.req))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/inspect", mustJSON(t, InspectRequest{Path: f.csv}))

	rec := f.do(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tabinspect_loads_total{kind="delimited",result="loaded"} 1`)
	assert.Contains(t, rec.Body.String(), `tabinspect_encoding_attempts_total{encoding="utf-8",outcome="decoded"} 1`)
}
