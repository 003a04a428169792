package outboost

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLNAddress(t *testing.T) {
	user, host, err := splitLNAddress("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "example.com", host)

	_, _, err = splitLNAddress("not-an-address")
	assert.Error(t, err)

	_, _, err = splitLNAddress("@example.com")
	assert.Error(t, err)

	_, _, err = splitLNAddress("alice@")
	assert.Error(t, err)
}

func TestResolveBarePubkeyIsKeysend(t *testing.T) {
	r := NewResolver()
	target, err := r.Resolve(context.Background(), "03aabbccdd", 696969, "wallet-id")
	require.NoError(t, err)
	require.NotNil(t, target.Keysend)
	assert.Nil(t, target.Lnurlp)
	assert.Equal(t, "03aabbccdd", target.Keysend.Pubkey)
	assert.Equal(t, uint64(696969), target.Keysend.CustomKey)
}

func TestResolveKeysendWellKnown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/.well-known/keysend/") {
			fmt.Fprint(w, `{"status":"OK","tag":"keysend","pubkey":"03deadbeef","customData":[{"customKey":"696969","customValue":"abc"}]}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver()
	kt, err := r.resolveKeysend(context.Background(), "alice", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	require.NotNil(t, kt)
	assert.Equal(t, "03deadbeef", kt.Pubkey)
	assert.Equal(t, uint64(696969), kt.CustomKey)
	assert.Equal(t, "abc", kt.CustomValue)
}

func TestResolveKeysend404FallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewResolver()
	kt, err := r.resolveKeysend(context.Background(), "alice", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	assert.Nil(t, kt)
}

func TestResolveLnurlpWellKnown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"status":"OK","tag":"payRequest","callback":"https://example.com/cb","minSendable":1000,"maxSendable":100000000,"commentAllowed":150}`)
	}))
	defer srv.Close()

	r := NewResolver()
	lt, err := r.resolveLnurlp(context.Background(), "alice", strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	require.NotNil(t, lt)
	assert.Equal(t, "https://example.com/cb", lt.Callback)
	assert.Equal(t, int64(1000), lt.MinSendableMsat)
	assert.Equal(t, 150, lt.CommentAllowed)
}
