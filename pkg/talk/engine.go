// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

// Package talk implements the client-side synchronization engine for
// the Talk protocol: it routes decoded frames to handlers, keeps the
// in-memory channel/user model consistent, and republishes the model's
// changes as ordered domain events.
package talk

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hbak/talkward/pkg/event"
	"github.com/hbak/talkward/pkg/wire"
)

// An InfoRequester resolves full participant info for user ids a frame
// named without detail. The result is positionally matched to ids.
type InfoRequester interface {
	RequestUserInfoList(ctx context.Context, ch *Channel, ids []int64) ([]UserInfo, error)
}

// Config carries the engine's collaborators.
type Config struct {
	Log         *logrus.Logger
	SelfID      int64
	Credentials Credentials
	Transport   Transport
	Users       InfoRequester
}

// An Engine is the frame dispatch and state synchronization runtime
// for one session. It is also the client-global event sink.
//
// Frames are handed to HandleFrame in arrival order. Each handler's
// stateful step runs on a per-channel queue, so events for one channel
// come out in frame-arrival order even when a handler suspends on a
// secondary request, while other channels keep flowing.
type Engine struct {
	*event.Emitter

	log     *logrus.Logger
	store   *Store
	router  *Router
	session *Session
	users   InfoRequester
	pipe    *pipeline
}

// New creates an engine and registers every frame handler. The handler
// table is fixed for the engine's lifetime.
func New(cfg Config) *Engine {
	e := &Engine{
		Emitter: event.NewEmitter(),
		log:     cfg.Log,
		store:   NewStore(cfg.SelfID),
		router:  NewRouter(),
		session: NewSession(cfg.Log, cfg.Transport, cfg.Credentials),
		users:   cfg.Users,
		pipe:    newPipeline(),
	}

	e.router.Register(wire.NameLoginList, e.onLogin)
	e.router.Register(wire.NameMessage, e.onMessage)
	e.router.Register(wire.NameMessageRead, e.onMessageRead)
	e.router.Register(wire.NameNewMember, e.onNewMember)
	e.router.Register(wire.NameSyncDeleteMsg, e.syncMessageDelete)
	e.router.Register(wire.NameLeft, e.onLeft)
	e.router.Register(wire.NameLeave, e.onLeaveReply)
	e.router.Register(wire.NameLinkKicked, e.onLinkKicked)
	e.router.Register(wire.NameSyncJoin, e.onChannelJoin)
	e.router.Register(wire.NameJoinLink, e.onOpenChannelJoin)
	e.router.Register(wire.NameSyncLinkCreate, e.syncOpenChannelCreate)
	e.router.Register(wire.NameSyncMemberType, e.syncMemberType)
	e.router.Register(wire.NameSyncProfile, e.syncProfile)
	e.router.Register(wire.NameUpLinkProfile, e.syncClientProfile)
	e.router.Register(wire.NameSetMeta, e.onMetaChange)
	e.router.Register(wire.NameChangeMeta, e.onMetaChange)
	e.router.Register(wire.NameKickMember, e.onKickMember)
	e.router.Register(wire.NameDeleteMember, e.onMemberDelete)
	e.router.Register(wire.NameChangeServer, e.onChangeServer)
	e.router.Register(wire.NameKickout, e.onKickout)

	return e
}

// Store returns the engine's channel/user model.
func (e *Engine) Store() *Store { return e.store }

// Session returns the engine's session lifecycle machine.
func (e *Engine) Session() *Session { return e.session }

// HandleFrame routes one decoded frame. req is the correlated request
// when the frame is a reply, nil otherwise. Frames with no registered
// handler are dropped without comment; that is normal protocol traffic.
func (e *Engine) HandleFrame(f *wire.Frame, req *wire.Frame) {
	if e.router.Dispatch(f, req) {
		e.log.WithFields(logrus.Fields{
			"frame": f.Name,
		}).Debug("Dispatched frame")
	}
}

// HandleDisconnect reacts to the transport dropping. Disconnects caused
// by an in-flight migration stay internal; anything else surfaces the
// recorded kick reason on the client sink.
func (e *Engine) HandleDisconnect() {
	reason, visible := e.session.ConsumeDisconnect()
	if !visible {
		e.log.Debug("Transport disconnected during migration")
		return
	}
	e.log.WithFields(logrus.Fields{
		"reason": reason,
	}).Info("Session disconnected")
	e.Emit(EventDisconnected, reason)
}

// Flush blocks until every frame handed to HandleFrame so far has been
// fully applied. Intended for orderly shutdown and tests; do not call
// it concurrently with HandleFrame.
func (e *Engine) Flush() {
	e.pipe.wait()
}

// chatFromChatlog builds the in-memory message for a wire chat log,
// resolving its channel from the store. Returns nil when the channel is
// not tracked; handlers treat that as a frame to ignore.
func (e *Engine) chatFromChatlog(log *wire.Chatlog) *Chat {
	if log == nil {
		return nil
	}
	ch := e.store.Channel(log.ChannelID)
	if ch == nil {
		return nil
	}
	return newChat(log, ch)
}
