// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"strings"
	"sync"

	"github.com/hbak/talkward/pkg/event"
	"github.com/hbak/talkward/pkg/wire"
)

// Kind distinguishes the two channel variants.
type Kind int

const (
	// KindBasic is a one-to-one or plain group channel.
	KindBasic Kind = iota
	// KindOpen is a link-joinable channel with role-based membership.
	KindOpen
)

// Role is an open-channel member's role.
type Role int

// Open-channel member roles as carried on the wire. The zero value
// means the role is unknown or not applicable (basic channels).
const (
	RoleOwner   Role = 1
	RoleNone    Role = 2
	RoleManager Role = 4
	RoleBot     Role = 16
)

// UserInfo is one participant's per-channel state. It is owned by the
// channel roster and mutated in place through the channel's update
// methods.
type UserInfo struct {
	UserID     int64
	Nickname   string
	ProfileURL string
	Role       Role
}

// A Channel is one conversation the client is a member of. It owns its
// participant roster and last-message pointer, and doubles as the
// channel-scoped event sink. All mutation goes through its methods;
// lookups hand out the live roster entries, never copies.
type Channel struct {
	*event.Emitter

	id     int64
	kind   Kind
	linkID int64

	mu       sync.RWMutex
	name     string
	meta     wire.Body
	lastChat *Chat
	members  map[int64]*UserInfo
}

func newChannel(id int64, info *wire.ChannelData) *Channel {
	ch := &Channel{
		Emitter: event.NewEmitter(),
		id:      id,
		members: make(map[int64]*UserInfo),
	}
	if info == nil {
		return ch
	}
	ch.linkID = info.LinkID
	ch.name = info.Name
	// Open channel wire types are prefixed "O" (OM, OD); anything
	// carrying a link id is open as well.
	if info.LinkID != 0 || strings.HasPrefix(info.Type, "O") {
		ch.kind = KindOpen
	}
	for i := range info.Members {
		m := info.Members[i]
		ch.members[m.UserID] = &UserInfo{
			UserID:     m.UserID,
			Nickname:   m.Nickname,
			ProfileURL: m.ProfileURL,
			Role:       Role(m.MemberType),
		}
	}
	return ch
}

// ID returns the channel's opaque id.
func (ch *Channel) ID() int64 { return ch.id }

// Kind returns the channel variant.
func (ch *Channel) Kind() Kind { return ch.kind }

// IsOpen reports whether this is an open channel.
func (ch *Channel) IsOpen() bool { return ch.kind == KindOpen }

// LinkID returns the open channel's link id, or 0 for basic channels.
func (ch *Channel) LinkID() int64 { return ch.linkID }

// Name returns the channel's display name.
func (ch *Channel) Name() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.name
}

// Member looks up a participant's roster entry, or nil if the user is
// not tracked on this channel.
func (ch *Channel) Member(userID int64) *UserInfo {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.members[userID]
}

// MemberCount returns the number of tracked participants.
func (ch *Channel) MemberCount() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.members)
}

// UpdateMember overwrites a participant's roster entry. A nil info
// removes the participant.
func (ch *Channel) UpdateMember(userID int64, info *UserInfo) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if info == nil {
		delete(ch.members, userID)
		return
	}
	ch.members[userID] = info
}

// UpdateMemberRole updates a tracked participant's role, reporting
// whether the participant was tracked. Untracked ids are skipped.
func (ch *Channel) UpdateMemberRole(userID int64, role Role) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	info, ok := ch.members[userID]
	if !ok {
		return false
	}
	info.Role = role
	return true
}

// UpdateNickname updates a tracked participant's nickname if it
// changed. Untracked ids and empty nicknames are skipped.
func (ch *Channel) UpdateNickname(userID int64, nickname string) {
	if nickname == "" {
		return
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if info, ok := ch.members[userID]; ok && info.Nickname != nickname {
		info.Nickname = nickname
	}
}

// LastChat returns the channel's last-known message, or nil.
func (ch *Channel) LastChat() *Chat {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.lastChat
}

// UpdateLastChat moves the channel's last-message pointer.
func (ch *Channel) UpdateLastChat(c *Chat) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.lastChat = c
}

// Meta returns the channel's metadata payload, or nil.
func (ch *Channel) Meta() wire.Body {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.meta
}

// UpdateMeta overwrites the channel's metadata wholesale.
func (ch *Channel) UpdateMeta(meta wire.Body) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.meta = meta
}
