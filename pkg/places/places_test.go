package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, resolve http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var handshakes atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		handshakes.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/resolve", resolve)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &handshakes
}

func TestResolver_HandshakeOnce(t *testing.T) {
	srv, handshakes := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"places": [{"formatted": "Accra, Ghana", "lat": 5.6037, "lng": -0.187}]}`))
	})

	r := New("key", WithBaseURL(srv.URL))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := r.Resolve(ctx, "accra")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Accra, Ghana", p.Formatted)
		assert.InDelta(t, 5.6037, p.Lat, 1e-9)
	}
	assert.Equal(t, int64(1), handshakes.Load())
}

func TestResolver_HandshakeFailureSticks(t *testing.T) {
	var handshakes atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handshakes.Add(1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := New("bad-key", WithBaseURL(srv.URL))
	ctx := context.Background()

	_, err := r.Resolve(ctx, "accra")
	require.Error(t, err)
	_, err = r.Resolve(ctx, "kumasi")
	require.Error(t, err)

	// The failed handshake is cached; the provider is not re-probed.
	assert.Equal(t, int64(1), handshakes.Load())
}

func TestResolver_NotFound(t *testing.T) {
	srv, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	r := New("key", WithBaseURL(srv.URL))
	p, err := r.Resolve(context.Background(), "nowhere at all")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestResolver_EmptyTextShortCircuits(t *testing.T) {
	srv, handshakes := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("resolve must not be called")
	})

	r := New("key", WithBaseURL(srv.URL))
	p, err := r.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, int64(0), handshakes.Load())
}

func TestResolver_QueryParam(t *testing.T) {
	srv, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bolga market", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"places": []}`))
	})

	r := New("key", WithBaseURL(srv.URL))
	p, err := r.Resolve(context.Background(), "bolga market")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestShared_SameBaseURLSameResolver(t *testing.T) {
	a := Shared("key", WithBaseURL("http://one.test"))
	b := Shared("key", WithBaseURL("http://one.test"))
	c := Shared("key", WithBaseURL("http://two.test"))

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
