// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"fmt"

	"github.com/hbak/talkward/pkg/wire"
)

// A HandlerFunc processes one inbound frame. req is the correlated
// request frame when the inbound frame is a direct reply to a request
// tracked by the transport, and nil otherwise; handlers that need
// request context must tolerate its absence.
type HandlerFunc func(f *wire.Frame, req *wire.Frame)

// A Router dispatches frames to handlers by wire name. Registration
// happens at construction time only; at most one handler per name.
type Router struct {
	handlers map[string]HandlerFunc
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to a wire name. Registering a name twice or
// registering a nil handler is a programmer error and panics.
func (r *Router) Register(name string, h HandlerFunc) {
	if h == nil {
		panic(fmt.Sprintf("talk: nil handler for frame %q", name))
	}
	if _, ok := r.handlers[name]; ok {
		panic(fmt.Sprintf("talk: duplicate handler for frame %q", name))
	}
	r.handlers[name] = h
}

// Dispatch routes a frame to its handler, reporting whether one was
// registered. Frames with unregistered names are expected and are
// silently dropped.
func (r *Router) Dispatch(f *wire.Frame, req *wire.Frame) bool {
	h, ok := r.handlers[f.Name]
	if !ok {
		return false
	}
	h(f, req)
	return true
}
