package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/Catneko-0422/tuerulebase"
	httpAdapter "github.com/Catneko-0422/tuerulebase/pkg/adapters/http"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/dsl"
	"github.com/Catneko-0422/tuerulebase/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler http.Handler
	series  *dsl.NodeBuilder
	fixed   *dsl.NodeBuilder
	value   *dsl.NodeBuilder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	b := dsl.New()
	series := b.Rule("Resistors", 5).Static("Series").Option("A", "TypeA").Option("B", "TypeB")
	fixed := series.Fixed("Fixed9", "9")
	value := fixed.Input("Resistor Value", 3)
	store, err := b.Build()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng := tuerulebase.New(
		tuerulebase.WithStore(store),
		tuerulebase.WithHooks(metrics.Hooks(domain.DecodeHooks{})),
	)
	h, err := httpAdapter.NewHandler(eng, httpAdapter.WithGatherer(reg))
	require.NoError(t, err)
	return fixture{handler: h, series: series, fixed: fixed, value: value}
}

func (f fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestDecode(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{"Success", map[string]any{"code": "B94K7"}, http.StatusOK, "Decode successful"},
		{"Padded", map[string]any{"code": "  A9102 "}, http.StatusOK, "Decode successful"},
		{"No Match", map[string]any{"code": "C9102"}, http.StatusNotFound, "Decoding failed: No matching rule found or code is incomplete"},
		{"Incomplete", map[string]any{"code": "A910"}, http.StatusNotFound, "Decoding failed: No matching rule found or code is incomplete"},
		{"Missing Code", map[string]any{}, http.StatusBadRequest, "Code is required"},
		{"Blank Code", map[string]any{"code": "   "}, http.StatusBadRequest, "Code is required"},
		{"Unknown Rule", map[string]any{"code": "A9102", "rule_id": 9}, http.StatusNotFound, ""},
		{"Scoped", map[string]any{"code": "A9102", "rule_id": "1"}, http.StatusOK, "Decode successful"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := f.do(t, http.MethodPost, "/api/coding-rules/decode", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, out["message"])
			}
		})
	}

	_, out := f.do(t, http.MethodPost, "/api/coding-rules/decode", map[string]any{"code": "B94K7"})
	data, ok := out["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 3)
	assert.Equal(t, map[string]any{
		"node_name": "Resistor Value",
		"value":     "4K7",
		"meaning":   "4.7kΩ",
		"type":      "INPUT",
	}, data[2])
}

func TestDecode_InvalidBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/coding-rules/decode", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRules(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, http.MethodPost, "/api/coding-rules", map[string]any{"name": "Capacitors"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Rule created", out["message"])
	assert.Equal(t, 2.0, out["id"])

	rec, _ = f.do(t, http.MethodPost, "/api/coding-rules", map[string]any{"total_length": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = f.do(t, http.MethodGet, "/api/coding-rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rules := out["data"].([]any)
	require.Len(t, rules, 2)
	assert.Equal(t, map[string]any{"id": 2.0, "name": "Capacitors", "total_length": 16.0, "is_active": true}, rules[1])
}

func TestNodes(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, http.MethodGet, "/api/coding-rules/1/nodes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roots := out["data"].([]any)
	require.Len(t, roots, 1)
	root := roots[0].(map[string]any)
	assert.Equal(t, "Series", root["name"])
	assert.Equal(t, true, root["has_children"])
	assert.Nil(t, root["parent_id"])

	rec, out = f.do(t, http.MethodGet, "/api/coding-rules/1/nodes?parent_id=1&sort=code_length", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["data"], 3)

	rec, _ = f.do(t, http.MethodGet, "/api/coding-rules/1/nodes?sort=password_hash", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = f.do(t, http.MethodPost, "/api/coding-rules/nodes", map[string]any{
		"rule_id": 1, "parent_id": f.value.ID(), "name": "Tolerance", "segment_length": "1", "node_type": "serial",
	})
	require.Equal(t, http.StatusCreated, rec.Code, out)
	assert.Equal(t, "Node created", out["message"])

	rec, out = f.do(t, http.MethodPost, "/api/coding-rules/nodes", map[string]any{"rule_id": 1, "name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: rule_id, name, segment_length", out["message"])

	rec, _ = f.do(t, http.MethodPost, "/api/coding-rules/nodes", map[string]any{"rule_id": 9, "name": "x", "segment_length": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/coding-rules/nodes", map[string]any{"rule_id": 1, "parent_id": 99, "name": "x", "segment_length": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/coding-rules/nodes", map[string]any{"rule_id": 1, "name": "x", "segment_length": 1, "node_type": "GROUP"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteNode(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodDelete, "/api/coding-rules/nodes/1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, out := f.do(t, http.MethodDelete, "/api/coding-rules/nodes/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, out)

	rec, out = f.do(t, http.MethodDelete, "/api/coding-rules/nodes/"+strconv.FormatInt(f.value.ID(), 10), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Node deleted", out["message"])
}

func TestCompose(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, http.MethodPost, "/api/coding-rules/compose", map[string]any{
		"picks": []map[string]any{
			{"node_id": f.series.ID(), "option_id": f.series.OptionID("A")},
			{"node_id": f.fixed.ID()},
			{"node_id": f.value.ID(), "value": "102"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, out)
	assert.Equal(t, "A9102", out["code"])
	assert.Equal(t, true, out["complete"])
	assert.Equal(t, true, out["length_ok"])

	rec, _ = f.do(t, http.MethodPost, "/api/coding-rules/compose", map[string]any{
		"picks": []map[string]any{{"node_id": f.fixed.ID()}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAmbientRoutes(t *testing.T) {
	f := newFixture(t)

	rec, out := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])

	rec, out = f.do(t, http.MethodGet, "/info", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0.0", out["api_version"])
	assert.Equal(t, "tuerulebase-http", out["app"])

	rec, _ = f.do(t, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	f.do(t, http.MethodPost, "/api/coding-rules/decode", map[string]any{"code": "B94K7"})
	rec, _ = f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tuerulebase_decode_total{outcome="ok"} 1`)

	req := httptest.NewRequest(http.MethodOptions, "/api/coding-rules/decode", nil)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoadSpec(t *testing.T) {
	spec, err := httpAdapter.LoadSpec()
	require.NoError(t, err)
	assert.NotNil(t, spec.Paths.Find("/api/coding-rules/decode"))
}
