// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

// Package gateway implements a local frame gateway: a listener speaking
// the client's JSON envelope protocol, answering the handful of request
// frames a session makes and pushing injected frames to logged-in
// sessions. It exists to run and exercise clients without the
// production service.
package gateway

import (
	"encoding/json"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hbak/talkward/pkg/wire"
)

// envelope mirrors the client's on-wire frame shape.
type envelope struct {
	ID   int64     `json:"id,omitempty"`
	Name string    `json:"name"`
	Body wire.Body `json:"body,omitempty"`
}

// Config carries the gateway's collaborators and served state.
type Config struct {
	Log *logrus.Logger

	// Members is the roster served to member info requests, keyed by
	// channel id.
	Members map[int64][]wire.MemberData
}

// A Gateway serves the frame protocol to local clients.
type Gateway struct {
	log *logrus.Logger

	mu       sync.Mutex
	listener net.Listener
	nextID   uint64
	sessions map[uint64]*session
	members  map[int64][]wire.MemberData
	closed   bool
}

// New creates a gateway. Call ListenAndServe to start it.
func New(cfg Config) *Gateway {
	members := cfg.Members
	if members == nil {
		members = make(map[int64][]wire.MemberData)
	}
	return &Gateway{
		log:      cfg.Log,
		sessions: make(map[uint64]*session),
		members:  members,
	}
}

// SetMembers replaces the roster served for one channel.
func (g *Gateway) SetMembers(channelID int64, members []wire.MemberData) {
	g.mu.Lock()
	g.members[channelID] = members
	g.mu.Unlock()
}

// ListenAndServe listens on addr and serves clients until Close.
func (g *Gateway) ListenAndServe(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "Listen")
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		listener.Close()
		return errors.New("Gateway closed")
	}
	g.listener = listener
	g.mu.Unlock()

	g.log.WithFields(logrus.Fields{
		"addr": listener.Addr().String(),
	}).Info("Gateway listening")

	for {
		conn, err := listener.Accept()
		if err != nil {
			g.mu.Lock()
			closed := g.closed
			g.mu.Unlock()
			if closed {
				return nil
			}
			g.log.WithFields(logrus.Fields{
				"error": err,
			}).Error("Error accepting connection")
			continue
		}

		s := g.addSession(conn)
		g.log.WithFields(logrus.Fields{
			"session_id":  s.id,
			"remote_addr": conn.RemoteAddr().String(),
		}).Info("Client connected")
		go g.serve(s)
	}
}

// Addr returns the bound listen address, or "" before ListenAndServe.
func (g *Gateway) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listener == nil {
		return ""
	}
	return g.listener.Addr().String()
}

// Close stops the listener and tears down every session. Idempotent.
func (g *Gateway) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	listener := g.listener
	sessions := make([]*session, 0, len(g.sessions))
	for _, s := range g.sessions {
		sessions = append(sessions, s)
	}
	g.mu.Unlock()

	if listener != nil {
		listener.Close()
	}
	for _, s := range sessions {
		s.conn.Close()
	}
}

// Push sends one frame to every logged-in session.
func (g *Gateway) Push(f *wire.Frame) {
	g.mu.Lock()
	sessions := make([]*session, 0, len(g.sessions))
	for _, s := range g.sessions {
		if s.loggedIn() {
			sessions = append(sessions, s)
		}
	}
	g.mu.Unlock()

	for _, s := range sessions {
		if err := s.write(envelope{Name: f.Name, Body: f.Body}); err != nil {
			g.log.WithFields(logrus.Fields{
				"session_id": s.id,
				"frame":      f.Name,
				"error":      err,
			}).Warn("Push failed")
		}
	}
}

// A session is one connected client.
type session struct {
	id   uint64
	conn net.Conn

	encMu sync.Mutex
	enc   *json.Encoder

	mu     sync.Mutex
	userID int64
	authed bool
}

func (g *Gateway) addSession(conn net.Conn) *session {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := &session{
		id:   g.nextID,
		conn: conn,
		enc:  json.NewEncoder(conn),
	}
	g.nextID++
	g.sessions[s.id] = s
	return s
}

func (g *Gateway) removeSession(s *session) {
	g.mu.Lock()
	delete(g.sessions, s.id)
	g.mu.Unlock()
	s.conn.Close()
}

func (s *session) write(env envelope) error {
	s.encMu.Lock()
	defer s.encMu.Unlock()
	return s.enc.Encode(env)
}

func (s *session) login(userID int64) {
	s.mu.Lock()
	s.userID = userID
	s.authed = true
	s.mu.Unlock()
}

func (s *session) loggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

// serve reads envelopes from one client and answers its requests until
// the connection drops.
func (g *Gateway) serve(s *session) {
	defer g.removeSession(s)
	dec := json.NewDecoder(s.conn)

	for {
		var env envelope
		if err := dec.Decode(&env); err != nil {
			if err != io.EOF {
				g.log.WithFields(logrus.Fields{
					"session_id": s.id,
					"error":      err,
				}).Debug("Client read ended")
			}
			g.log.WithFields(logrus.Fields{
				"session_id": s.id,
			}).Info("Client disconnected")
			return
		}

		reply := g.answer(s, env)
		if env.ID == 0 {
			continue
		}
		if err := s.write(envelope{ID: env.ID, Name: env.Name, Body: reply}); err != nil {
			g.log.WithFields(logrus.Fields{
				"session_id": s.id,
				"frame":      env.Name,
				"error":      err,
			}).Warn("Reply failed")
			return
		}
	}
}

// answer builds the reply body for one request frame. Every request
// gets an answer; unknown requests succeed with a bare status so
// clients under test never hang on an unimplemented frame.
func (g *Gateway) answer(s *session, env envelope) wire.Body {
	switch env.Name {
	case wire.NameCheckin:
		host, port, err := net.SplitHostPort(g.Addr())
		if err != nil {
			return wire.Body{"status": -1}
		}
		return wire.Body{"status": 0, "host": host, "port": port}

	case wire.NameLoginList:
		userID := env.Body.Int64("userId")
		s.login(userID)
		g.log.WithFields(logrus.Fields{
			"session_id": s.id,
			"user_id":    userID,
		}).Info("Client logged in")
		return wire.Body{"status": 0}

	case wire.NameGetMember:
		return wire.Body{
			"status":  0,
			"members": g.memberReply(env.Body.Int64("chatId"), env.Body.Int64List("memberIds")),
		}

	default:
		return wire.Body{"status": 0}
	}
}

// memberReply resolves ids against the channel's roster, positionally.
// Ids with no roster entry get a bare entry so the reply always matches
// the request's length.
func (g *Gateway) memberReply(channelID int64, ids []int64) []interface{} {
	g.mu.Lock()
	roster := g.members[channelID]
	g.mu.Unlock()

	byID := make(map[int64]wire.MemberData, len(roster))
	for _, m := range roster {
		byID[m.UserID] = m
	}

	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			m = wire.MemberData{UserID: id}
		}
		out = append(out, map[string]interface{}{
			"userId":   m.UserID,
			"nickName": m.Nickname,
			"pi":       m.ProfileURL,
			"mt":       m.MemberType,
		})
	}
	return out
}
