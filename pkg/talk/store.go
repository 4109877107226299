// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"sync"

	"github.com/hbak/talkward/pkg/wire"
)

// A Store holds the session's in-memory model: every channel the
// client is a member of and every user the session has seen. It is the
// only shared mutable state in the engine; all reads and writes go
// through its methods. State lives until an explicit removal; there is
// no eviction.
type Store struct {
	selfID int64

	mu       sync.RWMutex
	channels map[int64]*Channel
	users    map[int64]*User
}

// NewStore creates an empty store for the session belonging to selfID.
func NewStore(selfID int64) *Store {
	return &Store{
		selfID:   selfID,
		channels: make(map[int64]*Channel),
		users:    make(map[int64]*User),
	}
}

// SelfID returns the client's own user id.
func (s *Store) SelfID() int64 { return s.selfID }

// Channel looks up a channel by id, or nil if it is not tracked.
func (s *Store) Channel(id int64) *Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channels[id]
}

// ChannelByLink looks up an open channel by its link id, or nil.
func (s *Store) ChannelByLink(linkID int64) *Channel {
	if linkID == 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.channels {
		if ch.LinkID() == linkID {
			return ch
		}
	}
	return nil
}

// Materialize returns the channel with the given id, constructing it
// from info on first sight. Idempotent: if the channel already exists
// it is returned untouched, roster and all, and info is ignored.
func (s *Store) Materialize(id int64, info *wire.ChannelData) *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.channels[id]; ok {
		return ch
	}
	ch := newChannel(id, info)
	s.channels[id] = ch
	return ch
}

// Remove drops a channel from the store. Removing an unknown id is a
// no-op.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, id)
}

// ChannelCount returns the number of tracked channels.
func (s *Store) ChannelCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}

// User looks up a user by id. Unknown ids get a freshly minted entry;
// this never fails, since participant identity is assumed valid.
func (s *Store) User(id int64) *User {
	s.mu.RLock()
	u, ok := s.users[id]
	s.mu.RUnlock()
	if ok {
		return u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u
	}
	u = newUser(id)
	s.users[id] = u
	return u
}
