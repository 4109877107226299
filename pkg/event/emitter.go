// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

// Package event provides the synchronous listener fan-out used by the
// client, channel and user event sinks.
package event

import "sync"

// A Listener receives an emitted event's positional arguments.
type Listener func(args ...interface{})

// An Emitter fans events out to listeners registered per event name.
// Emission is synchronous: Emit returns only after every listener for
// the name has run, in registration order. This keeps event ordering
// identical to the order in which handlers emitted them.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[string][]Listener),
	}
}

// On registers fn to run whenever an event with the given name is emitted.
// Listeners cannot be removed; subscriptions live as long as the entity
// owning the emitter.
func (e *Emitter) On(name string, fn Listener) {
	e.mu.Lock()
	e.listeners[name] = append(e.listeners[name], fn)
	e.mu.Unlock()
}

// Emit calls every listener registered for name with args, in
// registration order. Unknown names fan out to nobody.
func (e *Emitter) Emit(name string, args ...interface{}) {
	e.mu.RLock()
	registered := e.listeners[name]
	fns := make([]Listener, len(registered))
	copy(fns, registered)
	e.mu.RUnlock()

	for _, fn := range fns {
		fn(args...)
	}
}
