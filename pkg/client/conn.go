// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

// Package client is the transport collaborator for the synchronization
// engine: a frame stream connection with request/response correlation,
// plus the checkin/login/member-fetch requests the engine delegates.
//
// Frames travel as JSON envelopes over a single TCP stream. Wire
// framing and transport security for the production protocol live
// outside this repository; this client speaks the decoded-frame
// contract directly, which is also what the gateway's debug listener
// serves.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hbak/talkward/pkg/wire"
)

// A FrameHandler consumes inbound frames. req carries the correlated
// request when the frame answers one, nil otherwise.
type FrameHandler interface {
	HandleFrame(f *wire.Frame, req *wire.Frame)
}

// envelope is the on-wire shape of one frame. Replies echo the id of
// the request they answer; pushed frames carry no id.
type envelope struct {
	ID   int64     `json:"id,omitempty"`
	Name string    `json:"name"`
	Body wire.Body `json:"body,omitempty"`
}

type pendingRequest struct {
	req  *wire.Frame
	resp chan *wire.Frame
}

// A Conn is one frame stream connection. Its read loop starts
// immediately and runs until the connection drops; Done reports when.
type Conn struct {
	log  *logrus.Logger
	conn net.Conn
	done chan struct{}

	encMu sync.Mutex
	enc   *json.Encoder

	mu      sync.Mutex
	nextID  int64
	pending map[int64]pendingRequest
	closed  bool
	err     error
}

// NewConn wraps an established connection and starts reading frames
// into h.
func NewConn(log *logrus.Logger, conn net.Conn, h FrameHandler) *Conn {
	c := &Conn{
		log:     log,
		conn:    conn,
		done:    make(chan struct{}),
		enc:     json.NewEncoder(conn),
		pending: make(map[int64]pendingRequest),
	}
	go c.listen(h)
	return c
}

// Send writes one uncorrelated frame.
func (c *Conn) Send(f *wire.Frame) error {
	c.encMu.Lock()
	defer c.encMu.Unlock()
	if err := c.enc.Encode(envelope{Name: f.Name, Body: f.Body}); err != nil {
		return errors.Wrap(err, "Send frame")
	}
	return nil
}

// Request writes a frame and waits for the reply correlated to it. The
// reply is also dispatched to the FrameHandler, with this request
// attached, before Request returns it.
func (c *Conn) Request(ctx context.Context, f *wire.Frame) (*wire.Frame, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New("connection closed")
	}
	c.nextID++
	id := c.nextID
	p := pendingRequest{req: f, resp: make(chan *wire.Frame, 1)}
	c.pending[id] = p
	c.mu.Unlock()

	c.encMu.Lock()
	err := c.enc.Encode(envelope{ID: id, Name: f.Name, Body: f.Body})
	c.encMu.Unlock()
	if err != nil {
		c.dropPending(id)
		return nil, errors.Wrap(err, "Send request")
	}

	select {
	case resp, ok := <-p.resp:
		if !ok {
			return nil, errors.Errorf("Connection closed awaiting %s reply", f.Name)
		}
		return resp, nil
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	}
}

func (c *Conn) dropPending(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Conn) listen(h FrameHandler) {
	defer close(c.done)
	dec := json.NewDecoder(c.conn)
	for {
		var env envelope
		if err := dec.Decode(&env); err != nil {
			c.mu.Lock()
			if !c.closed && err != io.EOF {
				c.err = errors.Wrap(err, "Read frame")
			}
			c.closed = true
			c.mu.Unlock()
			c.failPending()
			c.conn.Close()
			return
		}

		f := &wire.Frame{Name: env.Name, Body: env.Body}

		if env.ID != 0 {
			c.mu.Lock()
			p, ok := c.pending[env.ID]
			if ok {
				delete(c.pending, env.ID)
			}
			c.mu.Unlock()
			if ok {
				h.HandleFrame(f, p.req)
				p.resp <- f
				continue
			}
		}

		h.HandleFrame(f, nil)
	}
}

// failPending releases every Request caller still waiting.
func (c *Conn) failPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[int64]pendingRequest)
	c.mu.Unlock()
	for _, p := range pending {
		close(p.resp)
	}
}

// Done is closed when the read loop exits.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the read error that ended the connection, or nil for a
// deliberate close or clean EOF. Valid after Done.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close tears the connection down. Idempotent.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.conn.Close()
}
