package ui

import "testing"

func TestHistoryAddSkipsEmptyAndDuplicates(t *testing.T) {
	h := NewHistory()
	h.Add("")
	h.Add("one")
	h.Add("one")
	h.Add("two")
	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}
}

func TestHistoryRecall(t *testing.T) {
	h := NewHistory()
	h.Add("first")
	h.Add("second")

	if s, ok := h.Up(); !ok || s != "second" {
		t.Fatalf("Up = %q %v", s, ok)
	}
	if s, ok := h.Up(); !ok || s != "first" {
		t.Fatalf("Up = %q %v", s, ok)
	}
	if _, ok := h.Up(); ok {
		t.Fatal("Up past the oldest must fail")
	}
	if s, ok := h.Down(); !ok || s != "second" {
		t.Fatalf("Down = %q %v", s, ok)
	}
	if _, ok := h.Down(); ok {
		t.Fatal("Down past the newest must fail")
	}

	h.Reset()
	if _, ok := h.Down(); ok {
		t.Fatal("Down after Reset must fail")
	}
	if s, ok := h.Up(); !ok || s != "second" {
		t.Fatalf("Up after Reset = %q %v", s, ok)
	}
}

func TestLookupAction(t *testing.T) {
	cases := []struct {
		key  string
		want action
	}{
		{"j", actDown},
		{"down", actDown},
		{"ctrl+f", actPageDown},
		{"G", actBottom},
		{"q", actQuit},
		{"ctrl+e", actExitMarked},
		{"z", actNone},
	}
	for _, c := range cases {
		if got := lookupAction(c.key); got != c.want {
			t.Errorf("lookupAction(%q) = %v, want %v", c.key, got, c.want)
		}
	}
}
