package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const lineGraph = "1 2\n2 3\n"

func newService() *Service {
	return NewService(pagerank.DefaultParams(), nil)
}

// startGRPC serves the ranker over an in-memory listener
func startGRPC(t *testing.T) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer(newService())
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	client, err := Dial("bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestGRPC_Compute(t *testing.T) {
	client := startGRPC(t)

	out, err := client.Compute(context.Background(), []byte(lineGraph), pagerank.DefaultParams(), pagerank.ModeFull)
	require.NoError(t, err)

	resp := out.AsMap()
	assert.NotEmpty(t, resp["run_id"])
	assert.Equal(t, true, resp["converged"])
	assert.Equal(t, 3.0, resp["vertices"])
	rows := resp["rows"].([]any)
	require.Len(t, rows, 3)
	last := rows[2].(map[string]any)
	assert.Equal(t, 3.0, last["external_id"])
	assert.InDelta(t, 0.47441217150760717, last["rank"].(float64), 1e-6)
}

func TestGRPC_ComputeReduced(t *testing.T) {
	client := startGRPC(t)

	out, err := client.Compute(context.Background(), []byte(lineGraph), pagerank.DefaultParams(), pagerank.ModeReduced)
	require.NoError(t, err)

	first := out.AsMap()["rows"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"external_id": 1.0, "out_count": 1.0}, first)
}

func TestGRPC_ErrorCodes(t *testing.T) {
	client := startGRPC(t)
	bad := pagerank.DefaultParams()
	bad.DampingFactor = 1

	_, err := client.Compute(context.Background(), []byte(lineGraph), bad, pagerank.ModeFull)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Compute(context.Background(), []byte("1 x\n"), pagerank.DefaultParams(), pagerank.ModeFull)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPC_Health(t *testing.T) {
	client := startGRPC(t)

	st, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)
}

func TestHTTP_Compute(t *testing.T) {
	e := NewHTTPServer(newService())
	req := httptest.NewRequest(http.MethodPost, "/pagerank?damping_factor=0.85&max_iterations=100", strings.NewReader(lineGraph))
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp computeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Converged)
	assert.Equal(t, 2, resp.Edges)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, 0.0, resp.Rows[0]["local_id"])
	assert.InDelta(t, 0.18441678192715538, resp.Rows[0]["rank"].(float64), 1e-6)
}

func TestHTTP_Errors(t *testing.T) {
	e := NewHTTPServer(newService())
	tests := []struct {
		name  string
		query string
		body  string
		code  int
	}{
		{"bad damping", "?damping_factor=abc", lineGraph, http.StatusBadRequest},
		{"damping out of range", "?damping_factor=1.2", lineGraph, http.StatusBadRequest},
		{"bad mode", "?mode=partial", lineGraph, http.StatusBadRequest},
		{"bad graph", "", "1 x\n", http.StatusBadRequest},
		{"no graph", "", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/pagerank"+tt.query, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestHTTP_Health(t *testing.T) {
	e := NewHTTPServer(newService())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		grpc codes.Code
		http int
	}{
		{pagerank.ErrInvalidParameter, codes.InvalidArgument, http.StatusBadRequest},
		{pagerank.ErrSourceUnavailable, codes.Unavailable, http.StatusServiceUnavailable},
		{pagerank.ErrInconsistentGraphState, codes.FailedPrecondition, http.StatusUnprocessableEntity},
		{pagerank.ErrNumericDegenerate, codes.FailedPrecondition, http.StatusUnprocessableEntity},
		{pagerank.ErrSinkWriteFailed, codes.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		g, h := classify(tt.err)
		assert.Equal(t, tt.grpc, g, tt.err.Error())
		assert.Equal(t, tt.http, h, tt.err.Error())
	}
}
