package ledger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPClient_AssetSupply(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-API-Token")
		assert.Equal(t, "/v2/assets/101", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"asset":{"index":101,"params":{"total":10000,"decimals":0}}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{Endpoint: srv.URL, Token: "sekrit", TimeoutSeconds: 2}, zap.NewNop())
	supply, err := c.AssetSupply(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), supply.Total)
	assert.Equal(t, "sekrit", gotToken)
}

func TestHTTPClient_AccountBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/accounts/HOLDER1/assets/101":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"balance":600}`))
		case "/v2/accounts/STRANGER/assets/101":
			// Never opted in.
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{Endpoint: srv.URL, TimeoutSeconds: 2}, zap.NewNop())

	balance, err := c.AccountBalance(context.Background(), "HOLDER1", 101)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), balance)

	balance, err = c.AccountBalance(context.Background(), "STRANGER", 101)
	require.NoError(t, err)
	assert.Zero(t, balance)

	_, err = c.AccountBalance(context.Background(), "BROKEN", 101)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
