package picker

import "testing"

func TestGutterCountsAnchoredLines(t *testing.T) {
	g := NewAnchorGutter()
	g.Update([]string{"plain", "linked ^ab12c", "", "also ^zz9yy"})

	if g.Count() != 2 {
		t.Fatalf("expected 2 anchored lines, got %d", g.Count())
	}
	if g.MarkAt(0) || g.MarkAt(2) {
		t.Fatalf("expected no marks on plain lines")
	}
	if !g.MarkAt(1) || !g.MarkAt(3) {
		t.Fatalf("expected marks on anchored lines")
	}
}

func TestGutterUpdateReplacesOldMarks(t *testing.T) {
	g := NewAnchorGutter()
	g.Update([]string{"one ^aaaaa"})
	g.Update([]string{"one", "two ^bbbbb"})

	if g.MarkAt(0) {
		t.Fatalf("expected stale mark dropped after update")
	}
	if !g.MarkAt(1) || g.Count() != 1 {
		t.Fatalf("expected one mark on line 1, got count %d", g.Count())
	}
}
