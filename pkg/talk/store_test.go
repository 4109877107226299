// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"testing"

	"github.com/hbak/talkward/pkg/wire"
)

func TestMaterializeIsIdempotent(t *testing.T) {
	store := NewStore(1)

	first := store.Materialize(7, &wire.ChannelData{
		ChannelID: 7,
		Members:   []wire.MemberData{{UserID: 2, Nickname: "a"}},
	})
	second := store.Materialize(7, &wire.ChannelData{ChannelID: 7})

	if first != second {
		t.Errorf("Materialize returned a different channel for the same id")
	}
	if second.Member(2) == nil {
		t.Errorf("Repeated materialize reset the roster")
	}
}

func TestChannelLookupAbsent(t *testing.T) {
	store := NewStore(1)
	if got := store.Channel(999); got != nil {
		t.Errorf("Unknown channel should look up as nil, got %+v", got)
	}
}

func TestRemoveChannel(t *testing.T) {
	store := NewStore(1)
	store.Materialize(7, nil)
	store.Remove(7)

	if store.Channel(7) != nil {
		t.Errorf("Channel still tracked after removal")
	}
	// Removing twice is fine.
	store.Remove(7)
}

func TestUserNeverFails(t *testing.T) {
	store := NewStore(1)

	u := store.User(42)
	if u == nil || u.ID != 42 {
		t.Fatalf("Unknown user should be minted, got %+v", u)
	}
	if store.User(42) != u {
		t.Errorf("Repeated lookup minted a second user")
	}
}

func TestChannelByLink(t *testing.T) {
	store := NewStore(1)
	store.Materialize(7, &wire.ChannelData{ChannelID: 7, Type: "OM", LinkID: 4242})
	store.Materialize(8, nil)

	if got := store.ChannelByLink(4242); got == nil || got.ID() != 7 {
		t.Errorf("Cannot find open channel by link; got %+v", got)
	}
	if got := store.ChannelByLink(1); got != nil {
		t.Errorf("Unknown link should look up as nil, got %+v", got)
	}
	if got := store.ChannelByLink(0); got != nil {
		t.Errorf("Zero link id should look up as nil, got %+v", got)
	}
}

func TestChannelKindFromInfo(t *testing.T) {
	store := NewStore(1)

	open := store.Materialize(7, &wire.ChannelData{ChannelID: 7, Type: "OM", LinkID: 4242})
	if !open.IsOpen() {
		t.Errorf("OM channel should be open")
	}

	basic := store.Materialize(8, &wire.ChannelData{ChannelID: 8, Type: "MultiChat"})
	if basic.IsOpen() {
		t.Errorf("MultiChat channel should be basic")
	}

	bare := store.Materialize(9, nil)
	if bare.IsOpen() {
		t.Errorf("Channel materialized without info should be basic")
	}
}
