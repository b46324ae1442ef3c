package cache

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/phobologic/funcseg/internal/model"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestPutGet(t *testing.T) {
	t.Parallel()

	s, _ := openTemp(t)
	defer s.Close()

	key := Key([]byte("x = 1\n"), "normalized")
	if _, ok, err := s.Get(key); err != nil || ok {
		t.Fatalf("Get on empty cache: ok=%v err=%v", ok, err)
	}

	segs := []model.Segment{
		{Start: 0, End: 1, Kind: model.Code, Text: "x = 1"},
		{Start: 1, End: 3, Kind: model.Function, Text: "def f():\n    pass"},
	}
	if err := s.Put(key, segs); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != len(segs) {
		t.Fatalf("got %d segments, want %d", len(got), len(segs))
	}
	for i := range segs {
		if got[i] != segs[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], segs[i])
		}
	}

	if n, err := s.Len(); err != nil || n != 1 {
		t.Errorf("Len() = %d, %v; want 1", n, err)
	}
}

func TestEmptySegmentsAreAHit(t *testing.T) {
	t.Parallel()

	s, _ := openTemp(t)
	defer s.Close()

	key := Key([]byte("# nothing\n"), "normalized")
	if err := s.Put(key, nil); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get(key)
	if err != nil || !ok || len(got) != 0 {
		t.Errorf("Get = %v, %v, %v; want empty hit", got, ok, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	t.Parallel()

	s, path := openTemp(t)
	key := Key([]byte("a"), "v")
	if err := s.Put(key, []model.Segment{{Kind: model.Code, Text: "a"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, ok, _ := s.Get(key); !ok {
		t.Error("entry lost after reopen")
	}
}

func TestKeyVaries(t *testing.T) {
	t.Parallel()

	a := Key([]byte("x"), "normalized")
	b := Key([]byte("x"), "raw")
	c := Key([]byte("y"), "normalized")
	if bytes.Equal(a, b) || bytes.Equal(a, c) {
		t.Error("keys should differ by source and variant")
	}
	if !bytes.Equal(a, Key([]byte("x"), "normalized")) {
		t.Error("key is not deterministic")
	}
}
