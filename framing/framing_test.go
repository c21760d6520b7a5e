package framing

import (
	"bytes"
	"testing"
)

func TestFrame_SplitSensitive(t *testing.T) {
	cases := []struct {
		name string
		a, b ContentSet
	}{
		{"moved boundary", Strings("file1", "file2"), Strings("file1f", "ile2")},
		{"merged segments", Strings("a", "b"), Strings("ab")},
		{"trailing empty", Strings("x"), Strings("x", "")},
		{"leading empty", Strings("x"), Strings("", "x")},
		{"order", Strings("a", "b"), Strings("b", "a")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if bytes.Equal(Frame(tc.a), Frame(tc.b)) {
				t.Fatalf("expected distinct framing for %q and %q", tc.a, tc.b)
			}
		})
	}
}

func TestFrame_EmptySet(t *testing.T) {
	got := Frame(nil)
	want := make([]byte, CountSize)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestFrame_SingleEmptyBuffer(t *testing.T) {
	got := Frame(ContentSet{{}})
	want := []byte{StartDelimiter, EndDelimiter, 0, 0, 0, 0, 0, 0, 0, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
}

func TestFrame_Layout(t *testing.T) {
	got := Frame(Strings("ab", "c"))
	want := []byte{0x02, 'a', 'b', 0x03, 0x02, 'c', 0x03, 0, 0, 0, 0, 0, 0, 0, 2}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
	if len(got) != FramedSize(Strings("ab", "c")) {
		t.Fatalf("FramedSize mismatch: %d vs %d", FramedSize(Strings("ab", "c")), len(got))
	}
}

func TestFrame_Deterministic(t *testing.T) {
	set := Strings("hello", "", "world")
	if !bytes.Equal(Frame(set), Frame(set)) {
		t.Fatalf("expected identical framing across calls")
	}
}

func TestFrame_DoesNotMutateInput(t *testing.T) {
	set := Strings("abc", "def")
	_ = Frame(set)
	if string(set[0]) != "abc" || string(set[1]) != "def" {
		t.Fatalf("input mutated: %q", set)
	}
}
