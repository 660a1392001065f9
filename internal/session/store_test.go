package session

import (
	"sync"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	if _, ok := m.Get("s1"); ok {
		t.Fatal("expected empty store")
	}
	m.Put(&Session{ID: "a", StudentID: "s1"})
	m.Put(&Session{ID: "b", StudentID: "s2"})
	if got, ok := m.Get("s1"); !ok || got.ID != "a" {
		t.Fatalf("Get(s1) = %v, %v", got, ok)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	m.Delete("s1")
	if _, ok := m.Get("s1"); ok {
		t.Fatal("expected s1 deleted")
	}
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	k := newKeyedMutex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("s1")
			defer unlock()
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
	if len(k.locks) != 0 {
		t.Fatalf("expected lock entries released, got %d", len(k.locks))
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("s1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		k.Lock("s2")()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on s2 blocked behind s1")
	}
}

func TestSessionElapsed(t *testing.T) {
	s := &Session{StartTime: base}
	if got := s.Elapsed(base.Add(time.Minute)); got != time.Minute {
		t.Fatalf("Elapsed = %v", got)
	}
	s.Paused, s.PausedAt = true, base.Add(30*time.Second)
	if got := s.Elapsed(base.Add(time.Hour)); got != 30*time.Second {
		t.Fatalf("Elapsed while paused = %v", got)
	}
}
