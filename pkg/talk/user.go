// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import "github.com/hbak/talkward/pkg/event"

// A User is one account known to the session, identified by its opaque
// 64-bit id. It doubles as the per-user event sink. Per-channel state
// (nickname, role) lives on the channel roster, not here.
type User struct {
	*event.Emitter
	ID int64
}

func newUser(id int64) *User {
	return &User{
		Emitter: event.NewEmitter(),
		ID:      id,
	}
}
