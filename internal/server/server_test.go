package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"qviz/internal/analysis"
	"qviz/internal/config"
	"qviz/internal/demo"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{
		Log: zerolog.Nop(),
		Config: &config.Config{
			Port:           8000,
			AllowedOrigins: []string{"http://localhost:3000"},
			LogLevel:       "info",
			Shots:          100,
			DevMode:        true,
		},
		Analyzer: analysis.NewAnalyzer(analysis.WithSeed(1), analysis.WithTrajectories(0)),
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestRequestLogComponent(t *testing.T) {
	var buf bytes.Buffer
	s := New(Config{
		Log:    zerolog.New(&buf),
		Config: &config.Config{Port: 8000, Shots: 100},
	})
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"component":"server"`)
	assert.Contains(t, buf.String(), "HTTP request")
}

func TestSystemStatus(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "running", body["status"])
	assert.Contains(t, body, "cpu_percent")
	assert.Contains(t, body, "memory")
}

func TestVisualize(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/api/visualize", map[string]any{"code": demo.DefaultQASM})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp visualizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	for _, img := range []string{resp.CircuitImage, resp.StateImage} {
		raw, err := base64.StdEncoding.DecodeString(img)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
	}

	total := 0.0
	for _, p := range resp.Probabilities {
		total += p
	}
	assert.InDelta(t, 1, total, 1e-9)
	assert.Len(t, resp.BlochVectors, 4)
	assert.Equal(t, "qubit 0", resp.QubitLabels[0])
}

func TestVisualizeErrors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"bad gate", `{"code": "OPENQASM 2.0;\nqreg q[1];\nfoo q[0];"}`},
		{"empty code", `{"code": ""}`},
		{"64 qubits", `{"code": "OPENQASM 2.0;\nqreg q[64];\nh q[0];"}`},
		{"63 qubits", `{"code": "OPENQASM 2.0;\nqreg q[63];"}`},
		{"30 qubits", `{"code": "OPENQASM 3;\nqubit[30] q;"}`},
		{"malformed json", `{"code": `},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/visualize", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var e errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
			assert.NotEmpty(t, e.Detail)
		})
	}
}

func TestBloch(t *testing.T) {
	s := newTestServer(t)

	t.Run("statevector", func(t *testing.T) {
		// |0⟩ ⊗ |1⟩ with qubit 0 in |1⟩
		rec := doJSON(t, s, http.MethodPost, "/api/bloch", map[string]any{
			"statevector": []any{0, 1, 0, []float64{0, 0}},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp blochResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.BlochVectors, 2)
		assert.InDelta(t, -1, resp.BlochVectors[0].Z(), 1e-12)
		assert.InDelta(t, 1, resp.BlochVectors[1].Z(), 1e-12)
	})

	t.Run("density matrix reversed", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/bloch", map[string]any{
			"density_matrix": [][]float64{{0.5, 0, 0, 0}, {0, 0.5, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
			"reverse_bits":   true,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp blochResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{"qubit 1", "qubit 0"}, resp.QubitLabels)
		assert.InDelta(t, 1, resp.BlochVectors[0].Z(), 1e-12)
		assert.InDelta(t, 0, resp.BlochVectors[1].Norm(), 1e-12)
	})

	t.Run("code", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/bloch", map[string]any{
			"code": "OPENQASM 2.0;\nqreg q[1];\nh q[0];",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp blochResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.InDelta(t, 1, resp.BlochVectors[0].X(), 1e-12)
	})

	t.Run("invalid state", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/bloch", map[string]any{
			"statevector": []float64{1, 0, 0},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "detail")
	})

	t.Run("oversized statevector", func(t *testing.T) {
		amps := make([]float64, 4096)
		amps[0] = 1
		rec := doJSON(t, s, http.MethodPost, "/api/bloch", map[string]any{
			"statevector": amps,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var e errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
		assert.Contains(t, e.Detail, "exceed the limit")
	})

	t.Run("oversized program", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/bloch", map[string]any{
			"code": "OPENQASM 2.0;\nqreg q[64];",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "limit is 8")
	})

	t.Run("ambiguous input", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/bloch", map[string]any{
			"statevector": []float64{1, 0},
			"code":        "OPENQASM 2.0;\nqreg q[1];",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMsgpackNegotiation(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	enc := msgpack.NewEncoder(&body)
	enc.SetCustomStructTag("json")
	require.NoError(t, enc.Encode(blochRequest{Statevector: []Complex{1, 0}}))

	req := httptest.NewRequest(http.MethodPost, "/api/bloch", &body)
	req.Header.Set("Content-Type", "application/msgpack")
	req.Header.Set("Accept", "application/msgpack")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var resp struct {
		BlochVectors [][]float64 `msgpack:"bloch_vectors"`
		QubitLabels  []string    `msgpack:"qubit_labels"`
	}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"qubit 0"}, resp.QubitLabels)
	assert.InDelta(t, 1, resp.BlochVectors[0][2], 1e-12)
}

func TestDemos(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/demos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []demoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 6)
	assert.Equal(t, "error_detection", list[0].Slug)
	assert.Equal(t, 8, list[0].Metrics.Depth)

	rec = doJSON(t, s, http.MethodGet, "/api/demos/pipeline", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var one demoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Contains(t, one.QASM, "OPENQASM 2.0;")
	assert.Equal(t, 4, one.Metrics.GateCounts["barrier"])

	rec = doJSON(t, s, http.MethodGet, "/api/demos/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeDemo(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/api/demos/arithmetic/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var m analysis.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 5, m.Depth)
	assert.Equal(t, 100, m.ErrorAnalysis.IdealCounts["1011 0000"])
}

func TestWebSocket(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"code": demo.EditorQASM}))
	var resp visualizeResponse
	require.NoError(t, wsjson.Read(ctx, conn, &resp))
	assert.Len(t, resp.BlochVectors, 2)
	assert.NotEmpty(t, resp.CircuitImage)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"code": "qreg"}))
	var failed errorResponse
	require.NoError(t, wsjson.Read(ctx, conn, &failed))
	assert.NotEmpty(t, failed.Detail)

	require.NoError(t, wsjson.Write(ctx, conn, map[string]string{"code": "OPENQASM 2.0;\nqreg q[64];"}))
	var oversized errorResponse
	require.NoError(t, wsjson.Read(ctx, conn, &oversized))
	assert.Contains(t, oversized.Detail, "limit is 8")

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestOriginPatterns(t *testing.T) {
	s := newTestServer(t)
	s.cfg.AllowedOrigins = []string{"http://localhost:3000", "example.com"}
	assert.Equal(t, []string{"localhost:3000", "example.com"}, s.originPatterns())
}
