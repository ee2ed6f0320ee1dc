package session

import (
	"testing"
	"time"
)

func TestManagerPutGetDelete(t *testing.T) {
	m := NewManager()

	if got := m.Get("missing"); got != nil {
		t.Errorf("expected nil for unknown JTI, got %v", got)
	}

	s := New(nil, "operator1", time.Now().Add(time.Hour))
	m.Put("jti-1", s)

	if got := m.Get("jti-1"); got != s {
		t.Error("expected registered session back")
	}

	m.Delete("jti-1")
	if got := m.Get("jti-1"); got != nil {
		t.Error("expected nil after delete")
	}
}

func TestManagerDropsExpiredSessions(t *testing.T) {
	m := NewManager()
	m.Put("jti-1", New(nil, "operator1", time.Now().Add(-time.Minute)))

	if got := m.Get("jti-1"); got != nil {
		t.Error("expected expired session to be dropped")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager()
	a := New(nil, "a", time.Now().Add(time.Hour))
	b := New(nil, "b", time.Now().Add(time.Hour))
	m.Put("jti-a", a)
	m.Put("jti-b", b)

	if a.Ledger == b.Ledger {
		t.Error("sessions must not share a ledger")
	}
}
