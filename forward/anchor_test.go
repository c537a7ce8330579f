package forward

import (
	"strings"
	"testing"
)

func TestDetectAnchor(t *testing.T) {
	cases := []struct {
		line string
		id   string
		ok   bool
	}{
		{"foo ^ab12c", "ab12c", true},
		{"^ab12c", "ab12c", true},
		{"foo ^ab12c   ", "ab12c", true},
		{"foo\t^xy-9", "xy-9", true},
		{"foo^ab12c", "", false},
		{"foo ^AB12C", "", false},
		{"foo ^ab12c bar", "", false},
		{"foo ^", "", false},
		{"plain line", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		id, ok := detectAnchor(c.line)
		if ok != c.ok || id != c.id {
			t.Fatalf("detectAnchor(%q): expected (%q, %v), got (%q, %v)", c.line, c.id, c.ok, id, ok)
		}
	}
}

func TestAnchorIndex(t *testing.T) {
	cases := []struct {
		line string
		at   int
	}{
		{"foo ^ab12c", 4},
		{"^ab12c", 0},
		{"foo ^ab12c   ", 4},
		{"für ^ab12c", 5},
		{"no anchor", -1},
		{"", -1},
	}
	for _, c := range cases {
		if got := AnchorIndex(c.line); got != c.at {
			t.Fatalf("AnchorIndex(%q): expected %d, got %d", c.line, c.at, got)
		}
	}
}

func TestMintAnchorReplacesTrailingWhitespace(t *testing.T) {
	if got := mintAnchor("foo   ", "zz9"); got != "foo ^zz9" {
		t.Fatalf("expected trailing whitespace replaced, got %q", got)
	}
	if got := mintAnchor("foo", "zz9"); got != "foo ^zz9" {
		t.Fatalf("expected anchor appended with a space, got %q", got)
	}
	if got := mintAnchor("   ", "zz9"); got != "^zz9" {
		t.Fatalf("expected bare token on whitespace-only line, got %q", got)
	}
	if got := mintAnchor("", "zz9"); got != "^zz9" {
		t.Fatalf("expected bare token on empty line, got %q", got)
	}
}

func TestStripAnchor(t *testing.T) {
	if got := stripAnchor("foo ^ab12c"); got != "foo" {
		t.Fatalf("expected anchor and separator stripped, got %q", got)
	}
	if got := stripAnchor("foo   ^ab12c"); got != "foo" {
		t.Fatalf("expected all separating whitespace stripped, got %q", got)
	}
	if got := stripAnchor("^ab12c"); got != "" {
		t.Fatalf("expected empty string for bare token, got %q", got)
	}
	if got := stripAnchor("no anchor here"); got != "no anchor here" {
		t.Fatalf("expected line without anchor untouched, got %q", got)
	}
}

func TestRandomIDsShapeAndLength(t *testing.T) {
	ids := RandomIDs(5)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := ids.NewID()
		if len(id) != 5 {
			t.Fatalf("expected 5-character id, got %q", id)
		}
		for _, r := range id {
			if !strings.ContainsRune(idAlphabet, r) {
				t.Fatalf("unexpected character %q in id %q", r, id)
			}
		}
		if _, found := detectAnchor("line ^" + id); !found {
			t.Fatalf("minted id %q is not detectable as an anchor", id)
		}
		seen[id] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected varied ids, got %v", seen)
	}
}

func TestRandomIDsClampLength(t *testing.T) {
	if got := RandomIDs(0).NewID(); len(got) != MinIDLength {
		t.Fatalf("expected length clamped to %d, got %q", MinIDLength, got)
	}
	if got := RandomIDs(100).NewID(); len(got) != MaxIDLength {
		t.Fatalf("expected length clamped to %d, got %q", MaxIDLength, got)
	}
}
