// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestPipelineRunsInOrderPerKey(t *testing.T) {
	p := newPipeline()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 20; i++ {
		i := i
		p.do(1, func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	p.wait()

	wanted := make([]int, 20)
	for i := range wanted {
		wanted[i] = i
	}
	if !reflect.DeepEqual(wanted, got) {
		t.Errorf("Invalid order; wanted %v, got %v", wanted, got)
	}
}

func TestPipelineSuspensionBlocksOnlyItsKey(t *testing.T) {
	p := newPipeline()

	release := make(chan struct{})
	firstStarted := make(chan struct{})
	otherRan := make(chan struct{})
	var laterRan bool
	var mu sync.Mutex

	p.do(1, func() {
		close(firstStarted)
		<-release
	})
	p.do(1, func() {
		mu.Lock()
		laterRan = true
		mu.Unlock()
	})
	<-firstStarted
	p.do(2, func() {
		close(otherRan)
	})

	// Key 2 proceeds while key 1 is suspended.
	select {
	case <-otherRan:
	case <-time.After(2 * time.Second):
		t.Fatalf("Other key blocked behind a suspended key")
	}

	// Key 1's second task must not have run yet.
	mu.Lock()
	ran := laterRan
	mu.Unlock()
	if ran {
		t.Fatalf("Later task on the suspended key ran early")
	}

	close(release)
	p.wait()

	mu.Lock()
	ran = laterRan
	mu.Unlock()
	if !ran {
		t.Errorf("Later task never ran after release")
	}
}

func TestPipelineReusesDrainedKey(t *testing.T) {
	p := newPipeline()

	ran := 0
	p.do(1, func() { ran++ })
	p.wait()
	p.do(1, func() { ran++ })
	p.wait()

	if ran != 2 {
		t.Errorf("Wanted 2 runs, got %d", ran)
	}
}
