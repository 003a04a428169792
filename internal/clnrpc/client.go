// Package clnrpc is a minimal JSON-RPC client for Core Lightning's
// lightning-rpc Unix domain socket.
package clnrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// request is one outbound JSON-RPC call.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// rpcError is the error object CLN returns on a failed call.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("clnrpc: %s (code %d)", e.Message, e.Code)
}

type rawResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Client dials a single persistent connection to the lightning-rpc socket
// and multiplexes concurrent Call invocations over it by request id, the
// same shape as glightning's stdio jrpc2.Client adapted to a long-lived
// socket transport.
type Client struct {
	conn    net.Conn
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan *rawResponse

	counter int64
	timeout time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to the lightning-rpc socket at path and starts the
// response-reader goroutine.
func Dial(path string) (*Client, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("clnrpc: dial %s: %w", path, err)
	}

	c := &Client{
		conn:    conn,
		pending: make(map[string]chan *rawResponse),
		timeout: 30 * time.Second,
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// SetTimeout overrides the default 30s per-call timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

func (c *Client) readLoop() {
	dec := json.NewDecoder(bufio.NewReader(c.conn))
	for {
		var resp rawResponse
		if err := dec.Decode(&resp); err != nil {
			c.failAllPending(err)
			return
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()
		if !ok {
			continue
		}
		r := resp
		ch <- &r
	}
}

func (c *Client) failAllPending(err error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	_ = err
}

// Call issues method with params and decodes the result into out (which may
// be nil if the caller doesn't need the result). Blocks until the response
// arrives or the client's timeout elapses.
func (c *Client) Call(method string, params any, out any) error {
	select {
	case <-c.closed:
		return fmt.Errorf("clnrpc: client is closed")
	default:
	}

	id := fmt.Sprintf("%d", atomic.AddInt64(&c.counter, 1))
	replyCh := make(chan *rawResponse, 1)

	c.pendingMu.Lock()
	c.pending[id] = replyCh
	c.pendingMu.Unlock()

	req := request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("clnrpc: marshal request: %w", err)
	}

	c.writeMu.Lock()
	_, err = c.conn.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("clnrpc: write request: %w", err)
	}

	select {
	case resp, ok := <-replyCh:
		if !ok || resp == nil {
			return fmt.Errorf("clnrpc: connection closed before response")
		}
		if resp.Error != nil {
			return resp.Error
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("clnrpc: decode result for %s: %w", method, err)
		}
		return nil
	case <-time.After(c.timeout):
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return fmt.Errorf("clnrpc: %s timed out after %s", method, c.timeout)
	}
}

// Close closes the underlying socket connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}
