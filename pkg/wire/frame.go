// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

// Package wire defines the decoded form of Talk protocol frames.
//
// The transport layer turns raw bytes into a Frame: a wire name plus a
// loosely-typed key-value body. Each frame type the engine cares about
// reads its fields out of the body by short wire key; missing scalar
// keys default to their zero-equivalent and missing sequence keys to an
// empty sequence, because the protocol routinely omits optional fields.
package wire

import "encoding/json"

// A Frame is one decoded protocol message, identified by its wire name.
type Frame struct {
	Name string `json:"name"`
	Body Body   `json:"body"`
}

// Status reads the protocol status code carried in the frame body.
func (f *Frame) Status() int {
	return f.Body.Int("status")
}

// Body is the loosely-typed payload of a decoded frame.
type Body map[string]interface{}

// Int64 reads a 64-bit id field, defaulting to 0 when absent.
func (b Body) Int64(key string) int64 {
	switch v := b[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

// Int reads a small integer field, defaulting to 0 when absent.
func (b Body) Int(key string) int {
	return int(b.Int64(key))
}

// String reads a string field, defaulting to "" when absent.
func (b Body) String(key string) string {
	s, _ := b[key].(string)
	return s
}

// Bool reads a flag field, defaulting to false when absent.
func (b Body) Bool(key string) bool {
	v, _ := b[key].(bool)
	return v
}

// Has reports whether key is present in the body at all.
func (b Body) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Int64List reads a sequence of 64-bit ids, defaulting to empty.
func (b Body) Int64List(key string) []int64 {
	raw, ok := b[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		out = append(out, Body{"v": v}.Int64("v"))
	}
	return out
}

// IntList reads a sequence of small integers, defaulting to empty.
func (b Body) IntList(key string) []int {
	raw, ok := b[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		out = append(out, Body{"v": v}.Int("v"))
	}
	return out
}

// Map reads a nested substructure, or nil when absent.
func (b Body) Map(key string) Body {
	switch v := b[key].(type) {
	case Body:
		return v
	case map[string]interface{}:
		return Body(v)
	default:
		return nil
	}
}

// MapList reads a sequence of nested substructures, defaulting to empty.
func (b Body) MapList(key string) []Body {
	raw, ok := b[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]Body, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, Body(m))
		}
	}
	return out
}
