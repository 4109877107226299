// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import "sync"

// A pipeline runs work serially per key while letting different keys
// proceed concurrently. The engine keys work by channel id, which gives
// exactly the ordering the protocol needs: events caused by an earlier
// frame precede events caused by a later frame on the same channel,
// even when the earlier handler suspends on a secondary request, and
// channels never block each other.
type pipeline struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	queues map[int64][]func()
	active map[int64]bool
}

func newPipeline() *pipeline {
	return &pipeline{
		queues: make(map[int64][]func()),
		active: make(map[int64]bool),
	}
}

// do enqueues fn on the key's queue. Work enqueued for one key runs in
// enqueue order, one function at a time.
func (p *pipeline) do(key int64, fn func()) {
	p.mu.Lock()
	p.wg.Add(1)
	p.queues[key] = append(p.queues[key], fn)
	if !p.active[key] {
		p.active[key] = true
		go p.drain(key)
	}
	p.mu.Unlock()
}

func (p *pipeline) drain(key int64) {
	for {
		p.mu.Lock()
		q := p.queues[key]
		if len(q) == 0 {
			p.active[key] = false
			delete(p.queues, key)
			p.mu.Unlock()
			return
		}
		fn := q[0]
		p.queues[key] = q[1:]
		p.mu.Unlock()

		fn()
		p.wg.Done()
	}
}

// wait blocks until every function enqueued so far has finished. The
// caller must not enqueue concurrently with wait.
func (p *pipeline) wait() {
	p.wg.Wait()
}
