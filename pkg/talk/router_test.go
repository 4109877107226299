// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"testing"

	"github.com/hbak/talkward/pkg/wire"
)

func TestDispatch(t *testing.T) {
	r := NewRouter()

	var gotFrame, gotReq *wire.Frame
	r.Register("MSG", func(f *wire.Frame, req *wire.Frame) {
		gotFrame, gotReq = f, req
	})

	f := &wire.Frame{Name: "MSG", Body: wire.Body{}}
	req := &wire.Frame{Name: "WRITE", Body: wire.Body{}}
	if !r.Dispatch(f, req) {
		t.Fatalf("Registered frame was not dispatched")
	}
	if gotFrame != f || gotReq != req {
		t.Errorf("Handler got wrong frames: %+v, %+v", gotFrame, gotReq)
	}
}

func TestDispatchUnknownNameIsDropped(t *testing.T) {
	r := NewRouter()
	if r.Dispatch(&wire.Frame{Name: "PING"}, nil) {
		t.Errorf("Unregistered frame should be dropped")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	r := NewRouter()
	r.Register("MSG", func(f *wire.Frame, req *wire.Frame) {})

	defer func() {
		if recover() == nil {
			t.Errorf("Duplicate registration should panic")
		}
	}()
	r.Register("MSG", func(f *wire.Frame, req *wire.Frame) {})
}

func TestNilHandlerPanics(t *testing.T) {
	r := NewRouter()

	defer func() {
		if recover() == nil {
			t.Errorf("Nil handler registration should panic")
		}
	}()
	r.Register("MSG", nil)
}
