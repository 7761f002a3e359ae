package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 认证走 project_id 头
		assert.Equal(t, "test-project-id", r.Header.Get("project_id"))
		assert.Equal(t, "/txs/abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hash":"abc123","block_height":10542600,"fees":"172585"}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "test-project-id")
	tx, err := c.GetTransaction(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", tx.Hash)
	assert.Equal(t, int64(10542600), tx.BlockHeight)
}

func TestClient_GetTransactionUTXOs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/txs/abc123/utxos", r.URL.Path)
		w.Write([]byte(`{
			"hash": "abc123",
			"outputs": [
				{"address": "addr1qxreceiver", "amount": [{"unit": "lovelace", "quantity": "42000000"}]}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "pid")
	utxos, err := c.GetTransactionUTXOs(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, utxos.Outputs, 1)
	assert.Equal(t, "addr1qxreceiver", utxos.Outputs[0].Address)
	assert.Equal(t, "42000000", utxos.Outputs[0].Amount[0].Quantity)
}

func TestClient_NotFoundIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_code":404,"error":"Not Found"}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "pid")
	_, err := c.GetTransaction(context.Background(), "notyetindexed")
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestClient_ServerErrorKeepsDiagnostics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("indexer unavailable"))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, "pid")
	_, err := c.GetTransaction(context.Background(), "tx1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Contains(t, apiErr.Body, "indexer unavailable")
}

func TestNewClient_NetworkSelection(t *testing.T) {
	c, err := NewClient(NetworkMainnet, "pid")
	require.NoError(t, err)
	assert.Contains(t, c.baseURL, "cardano-mainnet")

	c, err = NewClient(NetworkPreprod, "pid")
	require.NoError(t, err)
	assert.Contains(t, c.baseURL, "cardano-preprod")

	// 不填默认主网
	c, err = NewClient("", "pid")
	require.NoError(t, err)
	assert.Contains(t, c.baseURL, "cardano-mainnet")

	_, err = NewClient("testnet-legacy", "pid")
	assert.Error(t, err)
}
