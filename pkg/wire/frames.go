// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package wire

// Wire names of the frames the synchronization engine handles. Frames
// with other names are dropped by the router.
const (
	NameLoginList      = "LOGINLIST"
	NameMessage        = "MSG"
	NameMessageRead    = "DECUNREAD"
	NameNewMember      = "NEWMEM"
	NameSyncDeleteMsg  = "SYNCDLMSG"
	NameLeft           = "LEFT"
	NameLeave          = "LEAVE"
	NameLinkKicked     = "LINKKICKED"
	NameSyncJoin       = "SYNCJOIN"
	NameJoinLink       = "JOINLINK"
	NameSyncLinkCreate = "SYNCLINKCR"
	NameSyncMemberType = "SYNCMEMT"
	NameSyncProfile    = "SYNCLINKPF"
	NameUpLinkProfile  = "UPLINKPROF"
	NameSetMeta        = "SETMETA"
	NameChangeMeta     = "CHGMETA"
	NameKickMember     = "KICKMEM"
	NameDeleteMember   = "DELMEM"
	NameChangeServer   = "CHANGESVR"
	NameKickout        = "KICKOUT"
	NameGetMember      = "GETMEM"
	NameCheckin        = "CHECKIN"
)

// A Chatlog is the wire form of a single message in a channel.
type Chatlog struct {
	LogID      int64
	ChannelID  int64
	Type       int
	AuthorID   int64
	Message    string
	Attachment Body
	SendAt     int64
}

// ReadChatlog reads a chat log substructure, or nil when absent.
func ReadChatlog(b Body, key string) *Chatlog {
	m := b.Map(key)
	if m == nil {
		return nil
	}
	return &Chatlog{
		LogID:      m.Int64("logId"),
		ChannelID:  m.Int64("chatId"),
		Type:       m.Int("type"),
		AuthorID:   m.Int64("authorId"),
		Message:    m.String("message"),
		Attachment: m.Map("attachment"),
		SendAt:     m.Int64("sendAt"),
	}
}

// MemberData is the wire form of one participant's info.
type MemberData struct {
	UserID     int64
	Nickname   string
	ProfileURL string
	MemberType int
}

// ReadMember reads a member substructure, or nil when absent.
func ReadMember(b Body, key string) *MemberData {
	m := b.Map(key)
	if m == nil {
		return nil
	}
	md := readMemberBody(m)
	return &md
}

// ReadMemberList reads a sequence of member substructures, defaulting
// to empty.
func ReadMemberList(b Body, key string) []MemberData {
	var out []MemberData
	for _, m := range b.MapList(key) {
		out = append(out, readMemberBody(m))
	}
	return out
}

func readMemberBody(m Body) MemberData {
	return MemberData{
		UserID:     m.Int64("userId"),
		Nickname:   m.String("nickName"),
		ProfileURL: m.String("pi"),
		MemberType: m.Int("mt"),
	}
}

// ChannelData is the wire form of a channel's creation info.
type ChannelData struct {
	ChannelID int64
	Type      string
	LinkID    int64
	Name      string
	Members   []MemberData
}

// ReadChannelData reads a channel info substructure, or nil when absent.
func ReadChannelData(b Body, key string) *ChannelData {
	m := b.Map(key)
	if m == nil {
		return nil
	}
	cd := &ChannelData{
		ChannelID: m.Int64("chatId"),
		Type:      m.String("type"),
		LinkID:    m.Int64("li"),
		Name:      m.String("title"),
	}
	cd.Members = ReadMemberList(m, "members")
	return cd
}

// MessageRes is a MSG frame: a new message arrived in a channel.
type MessageRes struct {
	ChannelID      int64
	SenderNickname string
	Chatlog        *Chatlog
}

// ReadMessageRes reads a MSG frame body.
func ReadMessageRes(b Body) MessageRes {
	return MessageRes{
		ChannelID:      b.Int64("chatId"),
		SenderNickname: b.String("authorNickname"),
		Chatlog:        ReadChatlog(b, "chatLog"),
	}
}

// MessageReadRes is a DECUNREAD frame: a user advanced their read watermark.
type MessageReadRes struct {
	ChannelID int64
	ReaderID  int64
	Watermark int64
}

// ReadMessageReadRes reads a DECUNREAD frame body.
func ReadMessageReadRes(b Body) MessageReadRes {
	return MessageReadRes{
		ChannelID: b.Int64("chatId"),
		ReaderID:  b.Int64("userId"),
		Watermark: b.Int64("watermark"),
	}
}

// NewMemberRes is a NEWMEM frame: members joined, described by a feed.
type NewMemberRes struct {
	Chatlog *Chatlog
}

// ReadNewMemberRes reads a NEWMEM frame body.
func ReadNewMemberRes(b Body) NewMemberRes {
	return NewMemberRes{Chatlog: ReadChatlog(b, "chatLog")}
}

// SyncDeleteMessageRes is a SYNCDLMSG frame: a message was deleted for all.
type SyncDeleteMessageRes struct {
	Chatlog *Chatlog
}

// ReadSyncDeleteMessageRes reads a SYNCDLMSG frame body.
func ReadSyncDeleteMessageRes(b Body) SyncDeleteMessageRes {
	return SyncDeleteMessageRes{Chatlog: ReadChatlog(b, "chatLog")}
}

// LeftRes is a LEFT frame: the client left a channel on another device.
type LeftRes struct {
	ChannelID   int64
	LastTokenID int64
}

// ReadLeftRes reads a LEFT frame body.
func ReadLeftRes(b Body) LeftRes {
	return LeftRes{
		ChannelID:   b.Int64("chatId"),
		LastTokenID: b.Int64("lastTokenId"),
	}
}

// LeaveReq is the request side of a LEAVE round trip; the reply carries
// no channel id, so the handler reads it from the correlated request.
type LeaveReq struct {
	ChannelID int64
}

// ReadLeaveReq reads a LEAVE request body.
func ReadLeaveReq(b Body) LeaveReq {
	return LeaveReq{ChannelID: b.Int64("chatId")}
}

// LinkKickedRes is a LINKKICKED frame: the client was kicked from an
// open channel, described by a feed.
type LinkKickedRes struct {
	ChannelID int64
	Chatlog   *Chatlog
}

// ReadLinkKickedRes reads a LINKKICKED frame body.
func ReadLinkKickedRes(b Body) LinkKickedRes {
	return LinkKickedRes{
		ChannelID: b.Int64("c"),
		Chatlog:   ReadChatlog(b, "chatLog"),
	}
}

// ChanJoinRes is a SYNCJOIN frame: the client joined a channel elsewhere.
type ChanJoinRes struct {
	ChannelID int64
	Chatlog   *Chatlog
}

// ReadChanJoinRes reads a SYNCJOIN frame body.
func ReadChanJoinRes(b Body) ChanJoinRes {
	return ChanJoinRes{
		ChannelID: b.Int64("c"),
		Chatlog:   ReadChatlog(b, "chatLog"),
	}
}

// JoinLinkRes is a JOINLINK frame: the client joined an open channel
// through its link.
type JoinLinkRes struct {
	ChatInfo *ChannelData
	Chatlog  *Chatlog
}

// ReadJoinLinkRes reads a JOINLINK frame body.
func ReadJoinLinkRes(b Body) JoinLinkRes {
	return JoinLinkRes{
		ChatInfo: ReadChannelData(b, "chatRoom"),
		Chatlog:  ReadChatlog(b, "chatLog"),
	}
}

// SyncLinkCreateRes is a SYNCLINKCR frame: an open channel was created
// by this account elsewhere.
type SyncLinkCreateRes struct {
	ChatInfo *ChannelData
}

// ReadSyncLinkCreateRes reads a SYNCLINKCR frame body.
func ReadSyncLinkCreateRes(b Body) SyncLinkCreateRes {
	return SyncLinkCreateRes{ChatInfo: ReadChannelData(b, "chatRoom")}
}

// SyncMemberTypeRes is a SYNCMEMT frame: open-channel member roles
// changed. MemberIDs and MemberTypes are positionally correlated.
type SyncMemberTypeRes struct {
	LinkID      int64
	ChannelID   int64
	MemberIDs   []int64
	MemberTypes []int
}

// ReadSyncMemberTypeRes reads a SYNCMEMT frame body.
func ReadSyncMemberTypeRes(b Body) SyncMemberTypeRes {
	return SyncMemberTypeRes{
		LinkID:      b.Int64("li"),
		ChannelID:   b.Int64("c"),
		MemberIDs:   b.Int64List("mids"),
		MemberTypes: b.IntList("mts"),
	}
}

// SyncProfileRes is a SYNCLINKPF frame: an open-channel member's
// profile changed.
type SyncProfileRes struct {
	LinkID     int64
	ChannelID  int64
	OpenMember *MemberData
}

// ReadSyncProfileRes reads a SYNCLINKPF frame body.
func ReadSyncProfileRes(b Body) SyncProfileRes {
	return SyncProfileRes{
		LinkID:     b.Int64("li"),
		ChannelID:  b.Int64("c"),
		OpenMember: ReadMember(b, "olu"),
	}
}

// UpLinkProfileReq is the request side of an UPLINKPROF round trip:
// the client changed its own profile on an open channel link.
type UpLinkProfileReq struct {
	LinkID int64
}

// ReadUpLinkProfileReq reads an UPLINKPROF request body.
func ReadUpLinkProfileReq(b Body) UpLinkProfileReq {
	return UpLinkProfileReq{LinkID: b.Int64("li")}
}

// UpLinkProfileRes is the reply to an UPLINKPROF request.
type UpLinkProfileRes struct {
	UpdatedProfile *MemberData
}

// ReadUpLinkProfileRes reads an UPLINKPROF reply body.
func ReadUpLinkProfileRes(b Body) UpLinkProfileRes {
	return UpLinkProfileRes{UpdatedProfile: ReadMember(b, "olu")}
}

// MetaRes is a SETMETA or CHGMETA frame: a channel's metadata changed.
type MetaRes struct {
	ChannelID int64
	Meta      Body
}

// ReadMetaRes reads a SETMETA/CHGMETA frame body.
func ReadMetaRes(b Body) MetaRes {
	return MetaRes{
		ChannelID: b.Int64("chatId"),
		Meta:      b.Map("meta"),
	}
}

// KickMemberRes is a KICKMEM frame: a member was kicked from an open
// channel, described by a feed.
type KickMemberRes struct {
	ChannelID int64
	Chatlog   *Chatlog
}

// ReadKickMemberRes reads a KICKMEM frame body.
func ReadKickMemberRes(b Body) KickMemberRes {
	return KickMemberRes{
		ChannelID: b.Int64("c"),
		Chatlog:   ReadChatlog(b, "chatLog"),
	}
}

// DeleteMemberRes is a DELMEM frame: a membership was administratively
// deleted, described by a feed.
type DeleteMemberRes struct {
	Chatlog *Chatlog
}

// ReadDeleteMemberRes reads a DELMEM frame body.
func ReadDeleteMemberRes(b Body) DeleteMemberRes {
	return DeleteMemberRes{Chatlog: ReadChatlog(b, "chatLog")}
}

// KickoutRes is a KICKOUT frame: the server is about to drop the
// session for the carried reason.
type KickoutRes struct {
	Reason int
}

// ReadKickoutRes reads a KICKOUT frame body.
func ReadKickoutRes(b Body) KickoutRes {
	return KickoutRes{Reason: b.Int("reason")}
}
