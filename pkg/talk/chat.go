// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"sync"

	"github.com/hbak/talkward/pkg/feed"
	"github.com/hbak/talkward/pkg/wire"
)

// Chat type tags as carried on the wire. Type 0 marks a system feed;
// the rest are ordinary user messages.
const (
	ChatFeed    = 0
	ChatText    = 1
	ChatPhoto   = 2
	ChatVideo   = 3
	ChatContact = 4
	ChatAudio   = 5
)

// A Chat is one message in a channel. When its type marks it as a
// feed, the text payload classifies into a structured Feed on demand;
// parsing is lazy because most messages are not feeds.
type Chat struct {
	LogID      int64
	Type       int
	SenderID   int64
	Text       string
	Attachment wire.Body
	SendAt     int64
	Channel    *Channel

	feedOnce sync.Once
	feed     *feed.Feed
	feedErr  error
}

func newChat(log *wire.Chatlog, ch *Channel) *Chat {
	return &Chat{
		LogID:      log.LogID,
		Type:       log.Type,
		SenderID:   log.AuthorID,
		Text:       log.Message,
		Attachment: log.Attachment,
		SendAt:     log.SendAt,
		Channel:    ch,
	}
}

// IsFeed reports whether this message is a system feed.
func (c *Chat) IsFeed() bool {
	return c.Type == ChatFeed
}

// Feed parses this message's text into its feed variant. The result is
// cached; repeated calls return the same value.
func (c *Chat) Feed() (*feed.Feed, error) {
	c.feedOnce.Do(func() {
		c.feed, c.feedErr = feed.Parse(c.Text)
	})
	return c.feed, c.feedErr
}
