package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

func TestCollection_BareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`[{"id": 1, "name": "Tomatoes", "price": "20.5"}]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got, err := c.Collection(context.Background(), model.KindProducts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "Tomatoes", got[0].Name)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, 20.5, *got[0].Price)
}

func TestCollection_Envelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artisans", r.URL.Path)
		w.Write([]byte(`{"artisans": [{"id": "a1", "title": "Kente Weaver"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got, err := c.Collection(context.Background(), model.KindArtisans)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kente Weaver", got[0].Name)
}

func TestCollection_ServicesPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/marketplace/services", r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Collection(context.Background(), model.KindServices)
	require.NoError(t, err)
}

func TestCollection_UnknownKind(t *testing.T) {
	c := NewClient()
	_, err := c.Collection(context.Background(), model.Kind("bogus"))
	require.Error(t, err)
}

func TestSearch_Params(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "shea butter", q.Get("q"))
		assert.Equal(t, "products", q.Get("type"))
		assert.Equal(t, "25", q.Get("limit"))
		w.Write([]byte(`{"results": [{"id": "r1", "name": "Shea Butter"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	got, err := c.Search(context.Background(), model.KindProducts, "shea butter", 25)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestSearch_DefaultLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), model.KindProducts, "x", 0)
	require.NoError(t, err)
}

func TestGet_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Collection(context.Background(), model.KindProducts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDecodeEntities_MalformedRecordDegrades(t *testing.T) {
	// Mis-typed fields on one record must not sink the collection.
	body := []byte(`[{"id": "ok", "price": 5}, {"id": "odd", "price": {"amount": 5}, "lat": "north"}]`)
	got, err := decodeEntities(body)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[1].Price)
	assert.Nil(t, got[1].Lat)
}
