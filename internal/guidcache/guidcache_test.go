package guidcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripFunc redirects every outbound request to a local httptest server
// regardless of the hardcoded apiURL, so fetch's HTTP behavior can be
// exercised without reaching PodcastIndex.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func clientFor(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

func TestResolveFetchesAndCachesOnMiss(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "feed-1", r.URL.Query().Get("podcastguid"))
		assert.Equal(t, "item-1", r.URL.Query().Get("episodeguid"))
		w.Write([]byte(`{"status":"true","query":{"podcastguid":"feed-1","episodeguid":"item-1"},"value":{"feedTitle":"Remote Show","title":"Remote Episode"}}`))
	}))
	defer srv.Close()

	c, err := New(8, "test", clientFor(srv))
	require.NoError(t, err)

	podcast, episode, err := c.Resolve(context.Background(), "feed-1", "item-1")
	require.NoError(t, err)
	require.NotNil(t, podcast)
	require.NotNil(t, episode)
	assert.Equal(t, "Remote Show", *podcast)
	assert.Equal(t, "Remote Episode", *episode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	// second call is a cache hit: no further HTTP request.
	podcast2, _, err := c.Resolve(context.Background(), "feed-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, "Remote Show", *podcast2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestResolveNotFoundCachesEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"false"}`))
	}))
	defer srv.Close()

	c, err := New(8, "test", clientFor(srv))
	require.NoError(t, err)

	podcast, episode, err := c.Resolve(context.Background(), "feed-2", "item-2")
	require.NoError(t, err)
	assert.Nil(t, podcast)
	assert.Nil(t, episode)
}

func TestResolveNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(8, "test", clientFor(srv))
	require.NoError(t, err)

	_, _, err = c.Resolve(context.Background(), "feed-3", "item-3")
	assert.Error(t, err)
}

func TestResolveMalformedBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c, err := New(8, "test", clientFor(srv))
	require.NoError(t, err)

	_, _, err = c.Resolve(context.Background(), "feed-4", "item-4")
	assert.Error(t, err)
}

func TestResolveDedupesConcurrentLookups(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.Write([]byte(`{"status":"true","value":{"feedTitle":"Show","title":"Episode"}}`))
	}))
	defer srv.Close()

	c, err := New(8, "test", clientFor(srv))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Resolve(context.Background(), "feed-5", "item-5")
			assert.NoError(t, err)
		}()
	}
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "a_b", cacheKey("a", "b"))
}
