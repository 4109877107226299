// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package event

import (
	"reflect"
	"testing"
)

func TestEmitFansOutInRegistrationOrder(t *testing.T) {
	em := NewEmitter()

	var got []string
	em.On("message", func(args ...interface{}) {
		got = append(got, "first")
	})
	em.On("message", func(args ...interface{}) {
		got = append(got, "second")
	})
	em.On("other", func(args ...interface{}) {
		got = append(got, "other")
	})

	em.Emit("message")

	wanted := []string{"first", "second"}
	if !reflect.DeepEqual(wanted, got) {
		t.Errorf("Invalid fan-out order; wanted %v, got %v", wanted, got)
	}
}

func TestEmitPassesArgs(t *testing.T) {
	em := NewEmitter()

	var got []interface{}
	em.On("message", func(args ...interface{}) {
		got = args
	})

	em.Emit("message", int64(42), "hello", true)

	wanted := []interface{}{int64(42), "hello", true}
	if !reflect.DeepEqual(wanted, got) {
		t.Errorf("Invalid args; wanted %v, got %v", wanted, got)
	}
}

func TestEmitUnknownNameIsNoop(t *testing.T) {
	em := NewEmitter()
	em.Emit("nobody-listens")
}

func TestEmitIsSynchronous(t *testing.T) {
	em := NewEmitter()

	ran := false
	em.On("message", func(args ...interface{}) {
		ran = true
	})

	em.Emit("message")
	if !ran {
		t.Errorf("Listener had not run by the time Emit returned")
	}
}
