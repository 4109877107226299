// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hbak/talkward/pkg/feed"
	"github.com/hbak/talkward/pkg/wire"
)

// Handlers decode their frame synchronously in dispatch order, then run
// the stateful step on the owning channel's queue. Frames that carry no
// channel affinity (KICKOUT, CHANGESVR, LOGINLIST) act inline.
//
// Missing optional substructures are normal protocol traffic, so
// handlers no-op on them without logging an error.

func (e *Engine) onLogin(f *wire.Frame, _ *wire.Frame) {
	e.Emit(EventLogin)
}

func (e *Engine) onMessage(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadMessageRes(f.Body)
	if p.Chatlog == nil {
		return
	}

	e.pipe.do(p.Chatlog.ChannelID, func() {
		chat := e.chatFromChatlog(p.Chatlog)
		if chat == nil {
			return
		}
		ch := chat.Channel

		ch.UpdateNickname(chat.SenderID, p.SenderNickname)
		ch.UpdateLastChat(chat)

		ch.Emit(EventMessage, chat)
		e.Emit(EventMessage, chat)

		if chat.IsFeed() {
			e.Emit(EventFeed, chat)
		}
	})
}

func (e *Engine) onMessageRead(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadMessageReadRes(f.Body)

	e.pipe.do(p.ChannelID, func() {
		ch := e.store.Channel(p.ChannelID)
		if ch == nil {
			return
		}
		reader := e.store.User(p.ReaderID)

		// The watermark is relayed as-is; monotonicity is not enforced
		// here.
		reader.Emit(EventMessageRead, ch, p.Watermark)
		e.Emit(EventMessageRead, ch, reader, p.Watermark)
	})
}

func (e *Engine) onNewMember(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadNewMemberRes(f.Body)
	if p.Chatlog == nil {
		return
	}

	e.pipe.do(p.Chatlog.ChannelID, func() {
		chat := e.chatFromChatlog(p.Chatlog)
		if chat == nil || !chat.IsFeed() {
			return
		}
		ch := chat.Channel

		fd, err := chat.Feed()
		if err != nil {
			return
		}
		ids := fd.JoinedIDs()

		var infos []UserInfo
		if len(ids) > 0 {
			// Suspends this channel's queue until the lookup resolves;
			// other channels keep dispatching.
			infos, err = e.users.RequestUserInfoList(context.Background(), ch, ids)
			if err != nil || len(infos) != len(ids) {
				// Abort the whole frame: no partial roster, no events.
				e.log.WithFields(logrus.Fields{
					"channel_id": ch.ID(),
					"error":      err,
				}).Warn("Member info request failed")
				return
			}
		}

		for i, id := range ids {
			if id == e.store.SelfID() {
				e.Emit(EventJoinChannel, ch)
				continue
			}

			info := infos[i]
			ch.UpdateMember(id, &info)

			user := e.store.User(id)
			user.Emit(EventJoin, ch, chat)
			ch.Emit(EventJoin, user, chat)
		}

		e.Emit(EventFeed, chat)
	})
}

func (e *Engine) syncMessageDelete(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadSyncDeleteMessageRes(f.Body)
	if p.Chatlog == nil {
		return
	}

	e.pipe.do(p.Chatlog.ChannelID, func() {
		chat := e.chatFromChatlog(p.Chatlog)
		if chat == nil || !chat.IsFeed() {
			return
		}

		fd, err := chat.Feed()
		if err != nil || fd.Type != feed.DeleteAll {
			return
		}

		// Absent fields default rather than fail: log id to the zero
		// identity, hidden to false. The protocol has been observed to
		// omit both.
		hidden := false
		if fd.Hidden != nil {
			hidden = *fd.Hidden
		}

		e.Emit(EventMessageDeleted, fd.LogID, hidden)
		e.Emit(EventFeed, chat)
	})
}

func (e *Engine) onLeft(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadLeftRes(f.Body)

	e.pipe.do(p.ChannelID, func() {
		e.leaveChannel(p.ChannelID)
	})
}

func (e *Engine) onLeaveReply(_ *wire.Frame, req *wire.Frame) {
	if req == nil {
		return
	}
	q := wire.ReadLeaveReq(req.Body)
	if q.ChannelID == 0 {
		return
	}

	e.pipe.do(q.ChannelID, func() {
		e.leaveChannel(q.ChannelID)
	})
}

// leaveChannel emits left_channel and then removes the channel, in that
// order, so listeners can still inspect the channel's final state.
func (e *Engine) leaveChannel(id int64) {
	ch := e.store.Channel(id)
	if ch == nil {
		return
	}
	e.Emit(EventLeftChannel, ch)
	e.store.Remove(id)
}

func (e *Engine) onLinkKicked(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadLinkKickedRes(f.Body)
	if p.Chatlog == nil {
		return
	}

	e.pipe.do(p.Chatlog.ChannelID, func() {
		chat := e.chatFromChatlog(p.Chatlog)
		if chat == nil {
			return
		}

		e.Emit(EventLeftChannel, chat.Channel)
		e.store.Remove(chat.Channel.ID())

		if chat.IsFeed() {
			e.Emit(EventFeed, chat)
		}
	})
}

func (e *Engine) onChannelJoin(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadChanJoinRes(f.Body)
	if p.Chatlog == nil || p.ChannelID == 0 {
		return
	}

	e.pipe.do(p.ChannelID, func() {
		ch := e.store.Materialize(p.ChannelID, nil)
		chat := newChat(p.Chatlog, ch)
		if !chat.IsFeed() {
			return
		}

		e.Emit(EventJoinChannel, ch, chat)
		e.Emit(EventFeed, chat)
	})
}

func (e *Engine) onOpenChannelJoin(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadJoinLinkRes(f.Body)
	if p.ChatInfo == nil || p.Chatlog == nil {
		return
	}

	e.pipe.do(p.ChatInfo.ChannelID, func() {
		ch := e.store.Materialize(p.ChatInfo.ChannelID, p.ChatInfo)
		chat := newChat(p.Chatlog, ch)
		if !chat.IsFeed() {
			return
		}

		e.Emit(EventJoinChannel, ch, chat)
		e.Emit(EventFeed, chat)
	})
}

func (e *Engine) syncOpenChannelCreate(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadSyncLinkCreateRes(f.Body)
	if p.ChatInfo == nil {
		return
	}

	e.pipe.do(p.ChatInfo.ChannelID, func() {
		if e.store.Channel(p.ChatInfo.ChannelID) != nil {
			return
		}
		ch := e.store.Materialize(p.ChatInfo.ChannelID, p.ChatInfo)
		e.Emit(EventJoinChannel, ch)
	})
}

func (e *Engine) syncMemberType(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadSyncMemberTypeRes(f.Body)

	e.pipe.do(p.ChannelID, func() {
		ch := e.store.Channel(p.ChannelID)
		if ch == nil || !ch.IsOpen() {
			return
		}

		// The two lists are positionally correlated; if their lengths
		// disagree, apply the pairs that exist and ignore the rest.
		n := len(p.MemberIDs)
		if len(p.MemberTypes) < n {
			n = len(p.MemberTypes)
		}
		for i := 0; i < n; i++ {
			ch.UpdateMemberRole(p.MemberIDs[i], Role(p.MemberTypes[i]))
		}
	})
}

func (e *Engine) syncProfile(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadSyncProfileRes(f.Body)
	if p.OpenMember == nil {
		return
	}

	e.pipe.do(p.ChannelID, func() {
		ch := e.store.Channel(p.ChannelID)
		if ch == nil || !ch.IsOpen() {
			return
		}
		ch.UpdateMember(p.OpenMember.UserID, userInfoFromMember(p.OpenMember))
	})
}

func (e *Engine) syncClientProfile(f *wire.Frame, req *wire.Frame) {
	if req == nil {
		return
	}
	p := wire.ReadUpLinkProfileRes(f.Body)
	if p.UpdatedProfile == nil {
		return
	}
	q := wire.ReadUpLinkProfileReq(req.Body)

	ch := e.store.ChannelByLink(q.LinkID)
	if ch == nil {
		return
	}

	e.pipe.do(ch.ID(), func() {
		ch.UpdateMember(p.UpdatedProfile.UserID, userInfoFromMember(p.UpdatedProfile))
	})
}

func (e *Engine) onMetaChange(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadMetaRes(f.Body)
	if p.Meta == nil {
		return
	}

	e.pipe.do(p.ChannelID, func() {
		ch := e.store.Channel(p.ChannelID)
		if ch == nil {
			return
		}
		ch.UpdateMeta(p.Meta)
	})
}

func (e *Engine) onKickMember(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadKickMemberRes(f.Body)
	if p.Chatlog == nil {
		return
	}

	e.pipe.do(p.Chatlog.ChannelID, func() {
		// The client's own membership is cleaned up by the leave or
		// link-kicked path, never here.
		e.removeFeedMember(p.Chatlog, true)
	})
}

func (e *Engine) onMemberDelete(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadDeleteMemberRes(f.Body)
	if p.Chatlog == nil {
		return
	}

	e.pipe.do(p.Chatlog.ChannelID, func() {
		e.removeFeedMember(p.Chatlog, false)
	})
}

// removeFeedMember applies a kick/delete feed naming a single member:
// emit the left events, then drop the member from the roster. With
// exemptSelf, the client's own roster entry is left alone.
func (e *Engine) removeFeedMember(log *wire.Chatlog, exemptSelf bool) {
	chat := e.chatFromChatlog(log)
	if chat == nil || !chat.IsFeed() {
		return
	}
	ch := chat.Channel

	fd, err := chat.Feed()
	if err != nil || fd.Member == nil {
		return
	}

	user := e.store.User(fd.Member.UserID)

	user.Emit(EventLeft, ch, chat)
	ch.Emit(EventLeft, user, chat)
	e.Emit(EventUserLeft, user, chat)
	e.Emit(EventFeed, chat)

	if exemptSelf && user.ID == e.store.SelfID() {
		return
	}
	ch.UpdateMember(user.ID, nil)
}

func (e *Engine) onChangeServer(_ *wire.Frame, _ *wire.Frame) {
	go func() {
		err := e.session.Migrate(context.Background())
		switch err {
		case nil:
		case ErrMigrationInFlight:
			e.log.Debug("Ignoring CHANGESVR during migration")
		default:
			// The transport layer owns retry; the reason stays at
			// change_server so the pending disconnect stays internal.
			e.log.WithFields(logrus.Fields{
				"error": err,
			}).Error("Server migration failed")
		}
	}()
}

func (e *Engine) onKickout(f *wire.Frame, _ *wire.Frame) {
	p := wire.ReadKickoutRes(f.Body)
	e.session.RecordKick(KickReason(p.Reason))
}

func userInfoFromMember(m *wire.MemberData) *UserInfo {
	return &UserInfo{
		UserID:     m.UserID,
		Nickname:   m.Nickname,
		ProfileURL: m.ProfileURL,
		Role:       Role(m.MemberType),
	}
}
