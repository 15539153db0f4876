package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpClient_FetchRates(t *testing.T) {
	t.Run("should extract rates from the configured JSONPath", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"USD":1,"eur":0.92,"JPY":149.3}}`))
		}))
		defer server.Close()
		client := NewHttpClient(server.URL, "$.rates", "usd")

		// when
		snapshot, err := client.FetchRates(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "USD", snapshot.Base)
		assert.Len(t, snapshot.Rates, 3)
		assert.Equal(t, "0.92", snapshot.Rates["EUR"].String())
		assert.Equal(t, "149.3", snapshot.Rates["JPY"].String())
	})

	t.Run("should work with a nested rates object", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"quotes":{"EUR":0.5}}}`))
		}))
		defer server.Close()
		client := NewHttpClient(server.URL, "$.data.quotes", "USD")

		// when
		snapshot, err := client.FetchRates(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "0.5", snapshot.Rates["EUR"].String())
	})

	t.Run("should fail on a non-OK response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()
		client := NewHttpClient(server.URL, "$.rates", "USD")

		// when
		_, err := client.FetchRates(context.Background())

		// then
		assert.Error(t, err)
	})

	t.Run("should fail when the path matches nothing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"quotes":{"EUR":0.92}}`))
		}))
		defer server.Close()
		client := NewHttpClient(server.URL, "$.rates", "USD")

		// when
		_, err := client.FetchRates(context.Background())

		// then
		assert.Error(t, err)
	})

	t.Run("should fail when no rate is numeric", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":{"EUR":"not-a-number"}}`))
		}))
		defer server.Close()
		client := NewHttpClient(server.URL, "$.rates", "USD")

		// when
		_, err := client.FetchRates(context.Background())

		// then
		assert.Error(t, err)
	})
}
