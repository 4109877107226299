// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package client

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hbak/talkward/pkg/talk"
	"github.com/hbak/talkward/pkg/wire"
)

// A CheckinFunc resolves which gateway address the session should
// connect to. force true must bypass any cached answer.
type CheckinFunc func(ctx context.Context, userID int64, force bool) (addr string, err error)

// A Client owns the connection to the gateway on behalf of one engine.
// It implements the engine's Transport and InfoRequester collaborator
// interfaces, so the session machine can tear it down and re-login
// through it, and the NEWMEM handler can fetch member info through it.
type Client struct {
	log     *logrus.Logger
	checkin CheckinFunc

	mu     sync.Mutex
	addr   string
	conn   *Conn
	engine *talk.Engine
}

// New creates a client. addr is the gateway address used until a
// checkin resolves a different one; checkin may be nil when the address
// is static.
func New(log *logrus.Logger, addr string, checkin CheckinFunc) *Client {
	return &Client{
		log:     log,
		checkin: checkin,
		addr:    addr,
	}
}

// Run checks in, logs in, and then pumps the connection into the
// engine until the session ends. A server-directed migration replaces
// the connection underneath Run without it returning.
func (c *Client) Run(ctx context.Context, e *talk.Engine, creds talk.Credentials) error {
	c.mu.Lock()
	c.engine = e
	c.mu.Unlock()

	if err := c.Checkin(ctx, creds.UserID, false); err != nil {
		return err
	}
	if err := c.Login(ctx, creds); err != nil {
		return err
	}

	for {
		conn := c.current()
		if conn == nil {
			return errors.New("No connection")
		}

		select {
		case <-conn.Done():
			e.HandleDisconnect()
			if _, ok := c.awaitReplacement(ctx, e, conn); !ok {
				return conn.Err()
			}
		case <-ctx.Done():
			c.Disconnect()
			<-conn.Done()
			e.HandleDisconnect()
			return ctx.Err()
		}
	}
}

// awaitReplacement waits for an in-flight migration to install a new
// connection. It gives up when the session machine is no longer
// migrating and no replacement appeared, which means re-login failed.
func (c *Client) awaitReplacement(ctx context.Context, e *talk.Engine, old *Conn) (*Conn, bool) {
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if cur := c.current(); cur != nil && cur != old {
			return cur, true
		}
		if !e.Session().Migrating() {
			if cur := c.current(); cur != nil && cur != old {
				return cur, true
			}
			return nil, false
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-tick.C:
		}
	}
}

func (c *Client) current() *Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Disconnect tears down the current connection. Part of the engine's
// Transport contract.
func (c *Client) Disconnect() {
	if conn := c.current(); conn != nil {
		conn.Close()
	}
}

// Checkin resolves the gateway address for the session. With no
// CheckinFunc configured the static address stands.
func (c *Client) Checkin(ctx context.Context, userID int64, force bool) error {
	if c.checkin == nil {
		return nil
	}
	addr, err := c.checkin(ctx, userID, force)
	if err != nil {
		return errors.Wrap(err, "Checkin")
	}
	c.mu.Lock()
	c.addr = addr
	c.mu.Unlock()
	c.log.WithFields(logrus.Fields{
		"addr":  addr,
		"force": force,
	}).Debug("Checked in")
	return nil
}

// Login dials the gateway and authenticates, installing the new
// connection on success. Idempotent in effect: a repeated login simply
// replaces the connection.
func (c *Client) Login(ctx context.Context, creds talk.Credentials) error {
	c.mu.Lock()
	addr := c.addr
	engine := c.engine
	c.mu.Unlock()
	if engine == nil {
		return errors.New("Client is not running")
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "Dial gateway")
	}
	conn := NewConn(c.log, nc, engine)

	resp, err := conn.Request(ctx, &wire.Frame{
		Name: wire.NameLoginList,
		Body: wire.Body{
			"duuid":       creds.DeviceUUID,
			"userId":      creds.UserID,
			"accessToken": creds.AccessToken,
		},
	})
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "Login")
	}
	if status := resp.Status(); status != 0 {
		conn.Close()
		return errors.Errorf("Login rejected with status %d", status)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"addr":    addr,
		"user_id": creds.UserID,
	}).Info("Logged in")
	return nil
}

// RequestUserInfoList fetches full participant info for ids on a
// channel. The reply list positionally matches ids. Part of the
// engine's InfoRequester contract.
func (c *Client) RequestUserInfoList(ctx context.Context, ch *talk.Channel, ids []int64) ([]talk.UserInfo, error) {
	conn := c.current()
	if conn == nil {
		return nil, errors.New("Not connected")
	}

	resp, err := conn.Request(ctx, &wire.Frame{
		Name: wire.NameGetMember,
		Body: wire.Body{
			"chatId":    ch.ID(),
			"memberIds": ids,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "Request member info")
	}

	members := wire.ReadMemberList(resp.Body, "members")
	infos := make([]talk.UserInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, talk.UserInfo{
			UserID:     m.UserID,
			Nickname:   m.Nickname,
			ProfileURL: m.ProfileURL,
			Role:       talk.Role(m.MemberType),
		})
	}
	return infos, nil
}
