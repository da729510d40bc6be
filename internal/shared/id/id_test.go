package id

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateString(t *testing.T) {
	gen := NewGenerator()

	id := gen.GenerateString()

	if len(id) != 26 {
		t.Errorf("ULID should be 26 characters, got %d", len(id))
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	id := gen.GenerateWithPrefix("helper")

	parts := strings.Split(id, "_")
	if len(parts) != 2 || parts[0] != "helper" {
		t.Fatalf("Prefixed ID should have format 'helper_ulid', got: %s", id)
	}
	if !IsValid(parts[1]) {
		t.Errorf("ULID part should be valid: %s", parts[1])
	}
}

func TestSessionID(t *testing.T) {
	sess := NewSessionID()

	if !strings.HasPrefix(sess.String(), "helper_") {
		t.Errorf("SessionID should start with 'helper_', got: %s", sess)
	}
	if !sess.Valid() {
		t.Errorf("SessionID should be valid: %s", sess)
	}

	for _, bad := range []SessionID{"", "helper_", "helper_nope", "sess_01ARZ3NDEKTSV4RRFFQ69G5FAV"} {
		if bad.Valid() {
			t.Errorf("%q should not be valid", bad)
		}
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	sess := NewSessionID()

	ts, err := Timestamp(sess.String())
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Errorf("timestamp %v out of range", ts)
	}

	if _, err := Timestamp("garbage"); err == nil {
		t.Error("expected error for invalid ULID")
	}
}

func TestSessionStarted(t *testing.T) {
	before := time.Now().Add(-time.Second)
	sess := NewSessionID()

	started, err := sess.Started()
	if err != nil {
		t.Fatalf("Started failed: %v", err)
	}
	if started.Before(before) {
		t.Errorf("session start %v is before %v", started, before)
	}

	if _, err := SessionID("helper_nope").Started(); err == nil {
		t.Error("expected error for invalid session")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	const n = 1000

	var mu sync.Mutex
	seen := make(map[string]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.GenerateString()

			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate ID generated: %s", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("expected %d unique IDs, got %d", n, len(seen))
	}
}

func TestDefaultSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default should return the same generator")
	}
}
