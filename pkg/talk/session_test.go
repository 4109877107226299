// Copyright © 2026 Hana Bak <hana@hbak.dev>
//
// This source code is governed by the MIT license, which can be found in the LICENSE file.

package talk

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

// fakeTransport scripts the collaborator calls the session machine makes.
type fakeTransport struct {
	mu           sync.Mutex
	disconnects  int
	checkins     []bool // force flags, in call order
	logins       int
	checkinErr   error
	loginErr     error
	checkinGate  chan struct{} // if set, Checkin blocks until closed
	disconnected chan struct{} // if set, closed on first Disconnect
}

func (tr *fakeTransport) Disconnect() {
	tr.mu.Lock()
	tr.disconnects++
	n := tr.disconnects
	tr.mu.Unlock()
	if tr.disconnected != nil && n == 1 {
		close(tr.disconnected)
	}
}

func (tr *fakeTransport) Checkin(ctx context.Context, userID int64, force bool) error {
	if tr.checkinGate != nil {
		<-tr.checkinGate
	}
	tr.mu.Lock()
	tr.checkins = append(tr.checkins, force)
	tr.mu.Unlock()
	return tr.checkinErr
}

func (tr *fakeTransport) Login(ctx context.Context, creds Credentials) error {
	tr.mu.Lock()
	tr.logins++
	tr.mu.Unlock()
	return tr.loginErr
}

func testCreds() Credentials {
	return Credentials{DeviceUUID: "dev-1", UserID: 1, AccessToken: "token"}
}

func TestKickoutSurfacesOnDisconnect(t *testing.T) {
	s := NewSession(discardLogger(), &fakeTransport{}, testCreds())

	s.RecordKick(KickReasonLoginAnother)

	reason, visible := s.ConsumeDisconnect()
	if !visible {
		t.Fatalf("Kick disconnect should be user visible")
	}
	if reason != KickReasonLoginAnother {
		t.Errorf("Invalid reason; wanted %v, got %v", KickReasonLoginAnother, reason)
	}

	// Consulted exactly once, then reset.
	reason, visible = s.ConsumeDisconnect()
	if !visible || reason != KickReasonUnknown {
		t.Errorf("Reason should reset to unknown; got %v (visible %v)", reason, visible)
	}
}

func TestMigrationRoundTrip(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSession(discardLogger(), tr, testCreds())

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %s", err)
	}

	if tr.disconnects != 1 || tr.logins != 1 {
		t.Errorf("Wanted 1 disconnect and 1 login, got %d and %d", tr.disconnects, tr.logins)
	}
	if len(tr.checkins) != 1 || !tr.checkins[0] {
		t.Errorf("Migration checkin should force a refresh; got %v", tr.checkins)
	}
	if got := s.KickReason(); got != KickReasonUnknown {
		t.Errorf("Reason should reset to unknown after re-login, got %v", got)
	}
}

func TestDisconnectDuringMigrationIsInternal(t *testing.T) {
	gate := make(chan struct{})
	tr := &fakeTransport{checkinGate: gate, disconnected: make(chan struct{})}
	s := NewSession(discardLogger(), tr, testCreds())

	done := make(chan error, 1)
	go func() { done <- s.Migrate(context.Background()) }()
	<-tr.disconnected

	// The teardown disconnect arrives while the reason is change_server.
	if _, visible := s.ConsumeDisconnect(); visible {
		t.Errorf("Disconnect during migration should stay internal")
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("Migrate: %s", err)
	}

	// A second, unrelated drop after the reset is user visible again.
	reason, visible := s.ConsumeDisconnect()
	if !visible || reason != KickReasonUnknown {
		t.Errorf("Post-migration disconnect should surface unknown; got %v (visible %v)", reason, visible)
	}
}

func TestOnlyOneMigrationInFlight(t *testing.T) {
	gate := make(chan struct{})
	tr := &fakeTransport{checkinGate: gate, disconnected: make(chan struct{})}
	s := NewSession(discardLogger(), tr, testCreds())

	done := make(chan error, 1)
	go func() { done <- s.Migrate(context.Background()) }()
	<-tr.disconnected

	if err := s.Migrate(context.Background()); err != ErrMigrationInFlight {
		t.Errorf("Second migration should be rejected, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("Migrate: %s", err)
	}
	if s.Migrating() {
		t.Errorf("Migration still marked in flight after completion")
	}
}

func TestReloginFailureKeepsDisconnectInternal(t *testing.T) {
	tr := &fakeTransport{loginErr: errors.New("server rejected token")}
	s := NewSession(discardLogger(), tr, testCreds())

	if err := s.Migrate(context.Background()); err == nil {
		t.Fatalf("Migrate should surface the login failure")
	}

	// The failed migration leaves the reason in place: the torn-down
	// transport's disconnect is still not a user-visible failure. The
	// transport layer owns surfacing the login error.
	if _, visible := s.ConsumeDisconnect(); visible {
		t.Errorf("Disconnect after failed re-login should stay internal")
	}
	if s.Migrating() {
		t.Errorf("Failed migration still marked in flight")
	}
}

func TestCheckinFailureAbortsMigration(t *testing.T) {
	tr := &fakeTransport{checkinErr: errors.New("checkin unreachable")}
	s := NewSession(discardLogger(), tr, testCreds())

	if err := s.Migrate(context.Background()); err == nil {
		t.Fatalf("Migrate should surface the checkin failure")
	}
	if tr.logins != 0 {
		t.Errorf("Login should not be attempted after a failed checkin")
	}
}
