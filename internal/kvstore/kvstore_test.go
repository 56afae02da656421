package kvstore

import "testing"

func testStore(t *testing.T, s Store) {
	t.Helper()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Get on a missing key: ok=%v err=%v", ok, err)
	}
	if err := s.Set("k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get("k")
	if err != nil || !ok || v != "v1" {
		t.Fatalf("Get after Set: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := s.Set("k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, _, _ := s.Get("k"); v != "v2" {
		t.Fatalf("expected overwritten value, got %q", v)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Fatalf("key should be gone after Delete")
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete must be idempotent: %v", err)
	}
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestFile(t *testing.T) {
	s, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	testStore(t, s)
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := s.Set("narrative:abc", "cached text"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := NewFile(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, err := reopened.Get("narrative:abc")
	if err != nil || !ok || v != "cached text" {
		t.Fatalf("expected value to survive reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestFileDistinctKeys(t *testing.T) {
	s, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := s.Set("a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("b", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _, _ := s.Get("a"); v != "1" {
		t.Fatalf("keys must not collide, got %q", v)
	}
}
