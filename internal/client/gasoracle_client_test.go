package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type seenRequest struct {
	mu    sync.Mutex
	path  string
	query url.Values
}

func (s *seenRequest) get() (string, url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, s.query
}

func newOracleServer(t *testing.T, status int, body string) (*httptest.Server, *seenRequest) {
	t.Helper()
	last := &seenRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.mu.Lock()
		last.path, last.query = r.URL.Path, r.URL.Query()
		last.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, last
}

func TestGetGasOracle(t *testing.T) {
	srv, last := newOracleServer(t, http.StatusOK, `{"status":"1","message":"OK","result":{"LastBlock":"19876543","SafeGasPrice":"1.5","ProposeGasPrice":"2","FastGasPrice":"2.75","suggestBaseFee":"1.4","gasUsedRatio":"0.5,0.4"}}`)

	c := NewGasOracleClient(srv.URL+"/api/", "KEY", time.Second, zap.NewNop())
	ref, err := c.GetGasOracle(context.Background())
	require.NoError(t, err)

	require.Equal(t, uint64(19876543), ref.LastBlock)
	require.Equal(t, 1.5, ref.SafeGwei)
	require.Equal(t, 2.0, ref.ProposeGwei)
	require.Equal(t, 2.75, ref.FastGwei)
	require.Equal(t, srv.URL+"/api", ref.Source)
	require.False(t, ref.FetchedAt.IsZero())

	path, query := last.get()
	require.Equal(t, "/api", path)
	require.Equal(t, "gastracker", query.Get("module"))
	require.Equal(t, "gasoracle", query.Get("action"))
	require.Equal(t, "KEY", query.Get("apikey"))
}

func TestGetGasOracleErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errText string
	}{
		{name: "http error", status: http.StatusInternalServerError, body: "oops", errText: "status 500"},
		{name: "rejected", status: http.StatusOK, body: `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`, errText: "Invalid API Key"},
		{name: "malformed", status: http.StatusOK, body: `{"status":`, errText: "unmarshal"},
		{name: "bad price", status: http.StatusOK, body: `{"status":"1","message":"OK","result":{"ProposeGasPrice":"abc"}}`, errText: "ProposeGasPrice"},
		{name: "zero propose", status: http.StatusOK, body: `{"status":"1","message":"OK","result":{"ProposeGasPrice":"0"}}`, errText: "positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newOracleServer(t, tt.status, tt.body)
			c := NewGasOracleClient(srv.URL, "", time.Second, zap.NewNop())
			_, err := c.GetGasOracle(context.Background())
			require.ErrorContains(t, err, tt.errText)
		})
	}
}

func TestGetGasOracleRejectedIsTyped(t *testing.T) {
	srv, _ := newOracleServer(t, http.StatusOK, `{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`)
	c := NewGasOracleClient(srv.URL, "", time.Second, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := c.GetGasOracle(ctx)
	require.ErrorIs(t, err, ErrOracleRejected)
}
