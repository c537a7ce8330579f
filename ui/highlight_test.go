package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func flatten(sl StyledLine) string {
	var b strings.Builder
	for _, tok := range sl.Tokens {
		b.WriteString(tok.Text)
	}
	return b.String()
}

func TestHighlightReconstructsLines(t *testing.T) {
	h := NewHighlighter(tcell.ColorGreen)
	lines := []string{"# Title", "", "some **bold** prose", "- a list item"}

	styled := h.Highlight(lines, 0, len(lines))
	if len(styled) != len(lines) {
		t.Fatalf("expected %d styled lines, got %d", len(lines), len(styled))
	}
	for i, sl := range styled {
		if got := flatten(sl); got != lines[i] {
			t.Fatalf("line %d: expected %q, got %q", i, lines[i], got)
		}
	}
}

func TestHighlightWindowSlices(t *testing.T) {
	h := NewHighlighter(tcell.ColorGreen)
	lines := []string{"one", "two", "three"}

	styled := h.Highlight(lines, 1, 2)
	if len(styled) != 1 {
		t.Fatalf("expected one styled line, got %d", len(styled))
	}
	if got := flatten(styled[0]); got != "two" {
		t.Fatalf("expected window to start at line 1, got %q", got)
	}
}

func TestHighlightStylesTrailingAnchor(t *testing.T) {
	h := NewHighlighter(tcell.ColorGreen)
	lines := []string{"some prose ^ab12c"}

	styled := h.Highlight(lines, 0, 1)
	if got := flatten(styled[0]); got != lines[0] {
		t.Fatalf("expected text preserved, got %q", got)
	}

	var anchorTokens []Token
	for _, tok := range styled[0].Tokens {
		if strings.Contains(tok.Text, "^") || strings.Contains(tok.Text, "ab12c") {
			anchorTokens = append(anchorTokens, tok)
		}
	}
	if len(anchorTokens) == 0 {
		t.Fatalf("expected the anchor to appear in some token, got %+v", styled[0].Tokens)
	}
	for _, tok := range anchorTokens {
		fg, _, _ := tok.Style.Decompose()
		if fg != tcell.ColorGreen {
			t.Fatalf("expected anchor token %q in the anchor color, got %v", tok.Text, fg)
		}
	}
}

func TestHighlightAnchorColorChangeTakesEffect(t *testing.T) {
	h := NewHighlighter(tcell.ColorGreen)
	lines := []string{"prose ^zz9aa"}

	h.Highlight(lines, 0, 1)
	h.SetAnchorColor(tcell.ColorRed)
	styled := h.Highlight(lines, 0, 1)

	found := false
	for _, tok := range styled[0].Tokens {
		if strings.Contains(tok.Text, "zz9aa") {
			fg, _, _ := tok.Style.Decompose()
			if fg != tcell.ColorRed {
				t.Fatalf("expected restyled anchor after color change, got %v", fg)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("anchor token missing from styled line: %+v", styled[0].Tokens)
	}
}

func TestRestyleTailSplitsStraddlingToken(t *testing.T) {
	style := tcell.StyleDefault.Foreground(tcell.ColorRed)
	tokens := []Token{{Text: "hello world", Style: tcell.StyleDefault}}

	out := restyleTail(tokens, 6, style)
	if len(out) != 2 {
		t.Fatalf("expected token split in two, got %+v", out)
	}
	if out[0].Text != "hello " || out[1].Text != "world" {
		t.Fatalf("expected split at rune 6, got %q and %q", out[0].Text, out[1].Text)
	}
	if fg, _, _ := out[1].Style.Decompose(); fg != tcell.ColorRed {
		t.Fatalf("expected tail restyled, got %v", fg)
	}
}
