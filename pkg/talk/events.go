// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

// Event names emitted by the engine on the client, channel and user
// sinks. The positional arguments for each are fixed:
//
//	EventMessage        channel sink: (*Chat); client sink: (*Chat)
//	EventFeed           client sink: (*Chat)
//	EventMessageRead    user sink: (*Channel, watermark int64);
//	                    client sink: (*Channel, *User, watermark int64)
//	EventMessageDeleted client sink: (logID int64, hidden bool)
//	EventJoin           user sink: (*Channel, *Chat);
//	                    channel sink: (*User, *Chat)
//	EventJoinChannel    client sink: (*Channel) or (*Channel, *Chat)
//	EventLeft           user sink: (*Channel, *Chat);
//	                    channel sink: (*User, *Chat)
//	EventLeftChannel    client sink: (*Channel)
//	EventUserLeft       client sink: (*User, *Chat)
//	EventLogin          client sink: ()
//	EventDisconnected   client sink: (KickReason)
const (
	EventMessage        = "message"
	EventFeed           = "feed"
	EventMessageRead    = "message_read"
	EventMessageDeleted = "message_deleted"
	EventJoin           = "join"
	EventJoinChannel    = "join_channel"
	EventLeft           = "left"
	EventLeftChannel    = "left_channel"
	EventUserLeft       = "user_left"
	EventLogin          = "login"
	EventDisconnected   = "disconnected"
)
