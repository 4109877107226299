// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"strings"

	"github.com/hbak/talkward/pkg/wire"
)

// A ChatBuilder accumulates text and attachment data for an outgoing
// message.
type ChatBuilder struct {
	typ        int
	text       strings.Builder
	attachment wire.Body
}

// NewChatBuilder starts a builder for a message of the given chat type.
func NewChatBuilder(typ int) *ChatBuilder {
	return &ChatBuilder{
		typ:        typ,
		attachment: make(wire.Body),
	}
}

// Append appends text to the message body.
func (b *ChatBuilder) Append(text string) *ChatBuilder {
	b.text.WriteString(text)
	return b
}

// Attach sets one attachment key.
func (b *ChatBuilder) Attach(key string, value interface{}) *ChatBuilder {
	b.attachment[key] = value
	return b
}

// Build assembles the message. The log id, sender and channel are
// filled in by the server once the message is sent.
func (b *ChatBuilder) Build() *Chat {
	return &Chat{
		Type:       b.typ,
		Text:       b.text.String(),
		Attachment: b.attachment,
	}
}
