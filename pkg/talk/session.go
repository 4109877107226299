// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// KickReason says why the server ended (or is about to end) the
// session. The values match the wire encoding of the KICKOUT frame.
type KickReason int

const (
	// KickReasonUnknown is the default when the server gave no reason.
	KickReasonUnknown KickReason = -1
	// KickReasonLoginAnother means the account logged in elsewhere.
	KickReasonLoginAnother KickReason = 0
	// KickReasonAccountDeleted means the account no longer exists.
	KickReasonAccountDeleted KickReason = 1
	// KickReasonChangeServer means the server directed the client to
	// migrate to another endpoint. Not a failure; the disconnect it
	// causes stays internal.
	KickReasonChangeServer KickReason = 2
)

// String names the reason for logs.
func (r KickReason) String() string {
	switch r {
	case KickReasonLoginAnother:
		return "login_another"
	case KickReasonAccountDeleted:
		return "account_deleted"
	case KickReasonChangeServer:
		return "change_server"
	default:
		return "unknown"
	}
}

// Credentials identify the session to the server on (re)login.
type Credentials struct {
	DeviceUUID  string
	UserID      int64
	AccessToken string
}

// Transport is the connection collaborator the session machine drives.
// Checkin and Login are idempotent; Checkin with force true must bypass
// any cached endpoint.
type Transport interface {
	Disconnect()
	Checkin(ctx context.Context, userID int64, force bool) error
	Login(ctx context.Context, creds Credentials) error
}

// ErrMigrationInFlight is returned by Migrate when a migration is
// already running; only one may be in flight at a time.
var ErrMigrationInFlight = errors.New("migration already in flight")

// A Session tracks why the transport session ended and drives
// server-directed migration. It owns the single kick-reason value:
// recorded by KICKOUT and CHANGESVR, consulted exactly once when the
// transport drops, then reset.
type Session struct {
	log       *logrus.Logger
	transport Transport
	creds     Credentials

	mu        sync.Mutex
	reason    KickReason
	migrating bool
}

// NewSession creates a session machine in the Normal state.
func NewSession(log *logrus.Logger, transport Transport, creds Credentials) *Session {
	return &Session{
		log:       log,
		transport: transport,
		creds:     creds,
		reason:    KickReasonUnknown,
	}
}

// RecordKick records the reason carried by a KICKOUT frame. The
// subsequent transport disconnect surfaces it.
func (s *Session) RecordKick(r KickReason) {
	s.mu.Lock()
	s.reason = r
	s.mu.Unlock()
}

// KickReason returns the currently recorded reason.
func (s *Session) KickReason() KickReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Migrating reports whether a migration is in flight.
func (s *Session) Migrating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.migrating
}

// ConsumeDisconnect decides what a transport-level disconnect means.
// It returns the reason to surface and whether the disconnect is
// user-visible. A disconnect during migration is internal and keeps the
// recorded reason for the machine to reset on login; any other
// disconnect surfaces the recorded reason and resets it to unknown.
func (s *Session) ConsumeDisconnect() (KickReason, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reason == KickReasonChangeServer {
		return s.reason, false
	}
	r := s.reason
	s.reason = KickReasonUnknown
	return r, true
}

// Migrate performs a server-directed migration: tear down the current
// transport, re-run checkin with a forced refresh, and log in again
// with the same credentials. On success the kick reason resets to
// unknown so later disconnects surface normally. At most one migration
// runs at a time; concurrent calls get ErrMigrationInFlight.
func (s *Session) Migrate(ctx context.Context) error {
	s.mu.Lock()
	if s.migrating {
		s.mu.Unlock()
		return ErrMigrationInFlight
	}
	s.migrating = true
	s.reason = KickReasonChangeServer
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.migrating = false
		s.mu.Unlock()
	}()

	s.transport.Disconnect()

	if err := s.transport.Checkin(ctx, s.creds.UserID, true); err != nil {
		return errors.Wrap(err, "Checkin")
	}
	if err := s.transport.Login(ctx, s.creds); err != nil {
		return errors.Wrap(err, "Login")
	}

	s.mu.Lock()
	s.reason = KickReasonUnknown
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"user_id": s.creds.UserID,
	}).Info("Migrated to new server")
	return nil
}
