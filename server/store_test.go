package server

import (
	"testing"
	"time"

	"podcast_studio/studio"
)

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start
	st := newStore(10, 1, time.Hour)
	st.now = func() time.Time { return now }

	st.set(&studio.Session{ID: "old", Owner: "user_1", CreatedAt: start})
	st.set(&studio.Session{ID: "busy", Owner: "user_1", CreatedAt: start})

	now = start.Add(50 * time.Minute)
	if _, ok := st.get("busy", "user_1"); !ok {
		t.Fatal("busy session should still be there")
	}

	// old is idle past the TTL; busy was touched 20 minutes ago.
	now = start.Add(70 * time.Minute)
	st.set(&studio.Session{ID: "new", Owner: "user_1", CreatedAt: now})

	st.mu.Lock()
	_, oldKept := st.sessions["old"]
	n := len(st.sessions)
	st.mu.Unlock()
	if oldKept || n != 2 {
		t.Fatalf("old kept=%v sessions=%d, want old dropped and 2 left", oldKept, n)
	}
	if _, ok := st.get("busy", "user_1"); !ok {
		t.Fatal("recently used session should survive the sweep")
	}
}

func TestSessionStoreGetTreatsExpiredAsMissing(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start
	st := newStore(10, 1, time.Hour)
	st.now = func() time.Time { return now }
	st.set(&studio.Session{ID: "s1", Owner: "user_1", CreatedAt: start})

	if _, ok := st.get("s1", "user_2"); ok {
		t.Fatal("session must not be visible to another user")
	}
	now = start.Add(2 * time.Hour)
	if _, ok := st.get("s1", "user_1"); ok {
		t.Fatal("expired session should be reported missing")
	}
	st.mu.Lock()
	n := len(st.sessions)
	st.mu.Unlock()
	if n != 0 {
		t.Fatalf("expired session should be removed, %d left", n)
	}
}

func TestNewStoreDefaultsTTL(t *testing.T) {
	if st := newStore(0, 0, 0); st.ttl != 24*time.Hour || st.burst != 1 {
		t.Fatalf("ttl=%v burst=%d", st.ttl, st.burst)
	}
}
