package fxclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := New(Config{Endpoint: endpoint, Logger: &mockLogger{}})
	require.NoError(t, err)
	return c
}

func TestRate_EqualCurrenciesSkipNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	r, err := c.Rate(context.Background(), "usd", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)
	assert.Equal(t, int32(0), calls.Load(), "equal codes must not hit the API")
}

func TestRate_FetchesAndParses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		assert.Equal(t, "EUR", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	r, err := c.Rate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 0.92, r, 1e-9)
}

func TestRate_FallsBackToLastGoodRate(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"rates":{"EUR":0.92}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	r, err := c.Rate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 0.92, r, 1e-9)

	fail.Store(true)
	r, err = c.Rate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 0.92, r, 1e-9, "should reuse the last good rate on failure")
}

func TestRate_NeutralFallbackWhenNeverFetched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	r, err := c.Rate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r, "unfetchable pair should degrade to the neutral rate")
}

func TestRate_RejectsNonPositiveRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"rates":{"EUR":0}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	r, err := c.Rate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r, "a zero rate is unusable and should fall back")
}
