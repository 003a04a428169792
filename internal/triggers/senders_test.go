package triggers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
)

// newOKServer returns an httptest.Server that replies 200 OK and signals
// received once per request.
func newOKServer(t *testing.T, received chan struct{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case received <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newFlagServer returns an httptest.Server that sets *called to true if it
// is ever hit.
func newFlagServer(t *testing.T, called *bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendWebhookSuccess(t *testing.T) {
	received := make(chan struct{}, 1)
	srv := newOKServer(t, received)
	s := newEffectSender()

	bwe := &BoostWithEffects{Record: &boost.Record{Index: 1, Sender: "alice"}}
	ok := s.sendWebhook(context.Background(), &WebhookEffect{URL: srv.URL, Token: "secret"}, bwe)
	assert.True(t, ok)
}

func TestSendWebhookNonOKStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newEffectSender()
	bwe := &BoostWithEffects{Record: &boost.Record{Index: 1}}
	ok := s.sendWebhook(context.Background(), &WebhookEffect{URL: srv.URL}, bwe)
	assert.False(t, ok)
}

func TestSendWebhookUnreachableURLIsFailure(t *testing.T) {
	s := newEffectSender()
	bwe := &BoostWithEffects{Record: &boost.Record{Index: 1}}
	ok := s.sendWebhook(context.Background(), &WebhookEffect{URL: "http://127.0.0.1:0"}, bwe)
	assert.False(t, ok)
}

func TestSendWebhookSetsDirectionFromPaymentInfo(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		gotBody = buf[:n]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := newEffectSender()
	bwe := &BoostWithEffects{Record: &boost.Record{Index: 1, PaymentInfo: &boost.PaymentInfo{}}}
	ok := s.sendWebhook(context.Background(), &WebhookEffect{URL: srv.URL}, bwe)
	require.True(t, ok)
	assert.Contains(t, string(gotBody), `"direction": "outgoing"`)
}

func TestParseOSCArgs(t *testing.T) {
	cases := []struct {
		name string
		args string
		want []any
	}{
		{"empty", "", []any{}},
		{"single int", "42", []any{int32(42)}},
		{"negative int", "-7", []any{int32(-7)}},
		{"float", "3.14", []any{float32(3.14)}},
		{"bool true", "true", []any{true}},
		{"bool false", "False", []any{false}},
		{"quoted string", `"hello"`, []any{"hello"}},
		{"bare string", "hello", []any{"hello"}},
		{"mixed with whitespace", "1, 2.5, true, hello", []any{int32(1), float32(2.5), true, "hello"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseOSCArgs(tc.args)
			assert.Equal(t, tc.want, got)
		})
	}
}
