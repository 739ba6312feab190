package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
)

type recorded struct {
	Method string
	Path   string
	Body   string
}

func newTestClient(t *testing.T, h func(w http.ResponseWriter, r *http.Request)) (*Client, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recorded{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{URL: srv.URL, Index: "products"})
	require.NoError(t, err)
	return c, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), seen...)
	}
}

func TestClient_Search(t *testing.T) {
	t.Parallel()
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":7,"name":"T-Shirt","price":"12.99"}}]}}`)
	})

	total, items, err := c.Search(context.Background(), "shirt", 10, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.EqualValues(t, 7, items[0].ID)
	assert.True(t, decimal.RequireFromString("12.99").Equal(items[0].Price))

	reqs := seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/products/_search", reqs[0].Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
	assert.EqualValues(t, 10, body["from"])
	assert.EqualValues(t, 5, body["size"])
	assert.Contains(t, reqs[0].Body, `"name^2"`)
}

func TestClient_SearchError(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	})

	_, _, err := c.Search(context.Background(), "shirt", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestClient_IndexAndDelete(t *testing.T) {
	t.Parallel()
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})
	ctx := context.Background()

	p := &models.Product{ID: 3, Name: "Suit", Price: decimal.RequireFromString("99.99")}
	require.NoError(t, c.Index(ctx, p))
	require.NoError(t, c.Delete(ctx, 3))

	reqs := seen()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/products/_doc/3", reqs[0].Path)
	assert.Contains(t, reqs[0].Body, `"name":"Suit"`)
	assert.Equal(t, "/products/_doc/3", reqs[1].Path)
}

func TestClient_EnsureIndex(t *testing.T) {
	t.Parallel()
	c, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	})

	require.NoError(t, c.EnsureIndex(context.Background()))

	reqs := seen()
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodHead, reqs[0].Method)
	assert.Equal(t, http.MethodPut, reqs[1].Method)
	assert.Contains(t, reqs[1].Body, "scaled_float")
}
