package clnrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal lightning-rpc socket peer: it decodes each incoming
// request and hands it to respond, which decides what (if anything) to write
// back.
type fakeServer struct {
	ln net.Listener
}

func startFakeServer(t *testing.T, respond func(req request) *rawResponse) *fakeServer {
	t.Helper()
	sockPath := filepath.Join(t.TempDir(), "lightning-rpc")
	ln, err := net.Listen("unix", sockPath)
	require.NoError(t, err)

	srv := &fakeServer{ln: ln}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		dec := json.NewDecoder(bufio.NewReader(conn))
		for {
			var req request
			if err := dec.Decode(&req); err != nil {
				return
			}
			resp := respond(req)
			if resp == nil {
				continue
			}
			data, err := json.Marshal(resp)
			if err != nil {
				return
			}
			if _, err := conn.Write(data); err != nil {
				return
			}
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return srv
}

func (s *fakeServer) path() string { return s.ln.Addr().String() }

func TestCallSuccessDecodesResult(t *testing.T) {
	srv := startFakeServer(t, func(req request) *rawResponse {
		assert.Equal(t, "getinfo", req.Method)
		result, _ := json.Marshal(map[string]string{"id": "03deadbeef"})
		return &rawResponse{ID: req.ID, Result: result}
	})

	c, err := Dial(srv.path())
	require.NoError(t, err)
	defer c.Close()

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, c.Call("getinfo", nil, &out))
	assert.Equal(t, "03deadbeef", out.ID)
}

func TestCallReturnsRPCError(t *testing.T) {
	srv := startFakeServer(t, func(req request) *rawResponse {
		return &rawResponse{ID: req.ID, Error: &rpcError{Code: 100, Message: "unknown command"}}
	})

	c, err := Dial(srv.path())
	require.NoError(t, err)
	defer c.Close()

	err = c.Call("bogus", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestCallTimesOutWhenNoResponse(t *testing.T) {
	srv := startFakeServer(t, func(req request) *rawResponse { return nil })

	c, err := Dial(srv.path())
	require.NoError(t, err)
	defer c.Close()
	c.SetTimeout(50 * time.Millisecond)

	err = c.Call("waitforinvoice", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestCallAfterCloseIsError(t *testing.T) {
	srv := startFakeServer(t, func(req request) *rawResponse {
		result, _ := json.Marshal(map[string]string{})
		return &rawResponse{ID: req.ID, Result: result}
	})

	c, err := Dial(srv.path())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	err = c.Call("getinfo", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestCallMultiplexesConcurrentRequestsById(t *testing.T) {
	srv := startFakeServer(t, func(req request) *rawResponse {
		result, _ := json.Marshal(map[string]string{"echo": req.ID})
		return &rawResponse{ID: req.ID, Result: result}
	})

	c, err := Dial(srv.path())
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var out struct {
				Echo string `json:"echo"`
			}
			assert.NoError(t, c.Call(fmt.Sprintf("method-%d", n), nil, &out))
			assert.NotEmpty(t, out.Echo)
		}(i)
	}
	wg.Wait()
}
