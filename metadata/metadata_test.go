package metadata

import (
	"testing"

	"github.com/composable-auto-assessment/generator/errs"
)

func TestSequence_YieldsPagesInOrder(t *testing.T) {
	seq, err := NewSequence(Metadata{SetID: 5, Page: 3})
	if err != nil {
		t.Fatalf("NewSequence: %v", err)
	}
	want := []Metadata{{5, 1}, {5, 2}, {5, 3}}
	for i, w := range want {
		if seq.Remaining() != len(want)-i {
			t.Fatalf("Remaining = %d want %d", seq.Remaining(), len(want)-i)
		}
		got, ok := seq.Next()
		if !ok {
			t.Fatalf("sequence ended early at %d", i)
		}
		if got != w {
			t.Fatalf("value %d: got %v want %v", i, got, w)
		}
	}
	if _, ok := seq.Next(); ok {
		t.Fatalf("expected sequence to terminate")
	}
	if _, ok := seq.Next(); ok {
		t.Fatalf("exhausted sequence must not restart")
	}
	if seq.Remaining() != 0 {
		t.Fatalf("expected 0 remaining")
	}
}

func TestSequence_MaxPage(t *testing.T) {
	seq, err := NewSequence(Metadata{SetID: 255, Page: MaxPage})
	if err != nil {
		t.Fatalf("NewSequence: %v", err)
	}
	n := 0
	var last Metadata
	for m, ok := seq.Next(); ok; m, ok = seq.Next() {
		n++
		last = m
	}
	if n != MaxPage || last.Page != MaxPage {
		t.Fatalf("got %d values ending at %v", n, last)
	}
}

func TestNewSequence_ZeroPage(t *testing.T) {
	_, err := NewSequence(Metadata{SetID: 1, Page: 0})
	if !errs.IsKind(err, errs.KindInvalidPageCount) {
		t.Fatalf("expected InvalidPageCount, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		setID, page int
		kind        errs.Kind
	}{
		{0, 0, errs.KindInvalidPageCount},
		{-1, 1, errs.KindInvalidMetadata},
		{256, 1, errs.KindInvalidMetadata},
		{0, 256, errs.KindInvalidMetadata},
		{0, -3, errs.KindInvalidMetadata},
		{0, 1, ""},
		{255, 255, ""},
	}
	for _, tc := range cases {
		m, err := New(tc.setID, tc.page)
		if tc.kind == "" {
			if err != nil {
				t.Fatalf("New(%d,%d): %v", tc.setID, tc.page, err)
			}
			if int(m.SetID) != tc.setID || int(m.Page) != tc.page {
				t.Fatalf("New(%d,%d) = %v", tc.setID, tc.page, m)
			}
			continue
		}
		if !errs.IsKind(err, tc.kind) {
			t.Fatalf("New(%d,%d): expected %s, got %v", tc.setID, tc.page, tc.kind, err)
		}
	}
}

func TestString_AndParse(t *testing.T) {
	m := Metadata{SetID: 0, Page: 2}
	if m.String() != "0-2" {
		t.Fatalf("String = %q", m.String())
	}
	got, err := ParseString("12-7")
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if got != (Metadata{SetID: 12, Page: 7}) {
		t.Fatalf("ParseString = %v", got)
	}
	for _, bad := range []string{"", "12", "a-1", "1-b", "1-0"} {
		if _, err := ParseString(bad); err == nil {
			t.Fatalf("ParseString(%q): expected error", bad)
		}
	}
}

func TestBinary(t *testing.T) {
	b, err := Metadata{SetID: 9, Page: 4}.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(b) != EncodedSize || b[0] != 9 || b[1] != 4 {
		t.Fatalf("unexpected encoding %x", b)
	}
	var m Metadata
	if err := m.UnmarshalBinary([]byte{9, 0}); !errs.IsKind(err, errs.KindInvalidPageCount) {
		t.Fatalf("expected InvalidPageCount for page 0, got %v", err)
	}
	if err := m.UnmarshalBinary([]byte{9}); !errs.IsKind(err, errs.KindInvalidMetadata) {
		t.Fatalf("expected InvalidMetadata for short input, got %v", err)
	}
}
