package solstore

import (
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save("game.swf", "progress", `{"level":3}`); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load("game.swf", "progress")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"level":3}` {
		t.Errorf("loaded %s", got)
	}

	// Saving again replaces.
	if err := s.Save("game.swf", "progress", `{"level":4}`); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Load("game.swf", "progress")
	if got != `{"level":4}` {
		t.Errorf("after replace loaded %s", got)
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Load("game.swf", "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestObjectsAreScopedByMovie(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save("a.swf", "save", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("b.swf", "save", "2"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load("b.swf", "save")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2" {
		t.Errorf("b.swf/save = %s, want 2", got)
	}
}

func TestDeleteAndNames(t *testing.T) {
	s := openTestStore(t)
	s.Save("m.swf", "b", "1")
	s.Save("m.swf", "a", "2")

	names, err := s.Names("m.swf")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("names = %v", names)
	}

	ok, err := s.Delete("m.swf", "a")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, _ = s.Delete("m.swf", "a")
	if ok {
		t.Error("second delete reported true")
	}
	names, _ = s.Names("m.swf")
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("names after delete = %v", names)
	}
}
