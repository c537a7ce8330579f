package forward

import (
	"regexp"
	"testing"
)

func TestExpandLinkAliasSuffix(t *testing.T) {
	got := ExpandLink("(see {{LINK|alt}})", "[[note#^ab12c]]")
	if got != "(see [[note#^ab12c|alt]])" {
		t.Fatalf("expected alias spliced before closing brackets, got %q", got)
	}
}

func TestExpandLinkPlain(t *testing.T) {
	got := ExpandLink("from {{LINK}}", "[[note#^ab12c]]")
	if got != "from [[note#^ab12c]]" {
		t.Fatalf("expected plain substitution, got %q", got)
	}
}

func TestExpandLinkMultiplePlaceholders(t *testing.T) {
	got := ExpandLink("{{LINK}} and {{LINK|two}}", "[[n#^x1]]")
	if got != "[[n#^x1]] and [[n#^x1|two]]" {
		t.Fatalf("expected every placeholder substituted, got %q", got)
	}
}

func TestExpandLinkWithoutPlaceholder(t *testing.T) {
	got := ExpandLink("no placeholder here", "[[n#^x1]]")
	if got != "no placeholder here" {
		t.Fatalf("expected template used literally, got %q", got)
	}
}

func TestExpandLinkEmptySuffix(t *testing.T) {
	got := ExpandLink("{{LINK|}}", "[[n#^x1]]")
	if got != "[[n#^x1|]]" {
		t.Fatalf("expected empty alias carried through, got %q", got)
	}
}

func TestExpandLinkMarkdownDisplay(t *testing.T) {
	got := ExpandLink("{{LINK|alt}}", "[note](dir/note.md#^ab12c)")
	if got != "[alt](dir/note.md#^ab12c)" {
		t.Fatalf("expected alias to replace the display portion, got %q", got)
	}
}

func TestExpandLinkMarkdownEmbed(t *testing.T) {
	got := ExpandLink("{{LINK|alt}}", "![note](note.md#^ab12c)")
	if got != "![alt](note.md#^ab12c)" {
		t.Fatalf("expected embed prefix preserved, got %q", got)
	}
}

func TestReplaceFirstExpandsInsideReplacementOnly(t *testing.T) {
	// A literal {{LINK}} in the line text must survive; only the
	// replacement template is expanded.
	re := regexp.MustCompile(`\s*$`)
	got := replaceFirst(re, "keep {{LINK}} literal", " -> {{LINK}}", "[[n#^x1]]")
	if got != "keep {{LINK}} literal -> [[n#^x1]]" {
		t.Fatalf("expected placeholder in line text untouched, got %q", got)
	}
}

func TestReplaceFirstNoMatch(t *testing.T) {
	re := regexp.MustCompile(`\d{4}`)
	got := replaceFirst(re, "no digits", "X", "[[n#^x1]]")
	if got != "no digits" {
		t.Fatalf("expected text untouched without a match, got %q", got)
	}
}

func TestReplaceFirstUnicode(t *testing.T) {
	re := regexp.MustCompile(`\p{L}+$`)
	got := replaceFirst(re, "préfixe café", "{{LINK}}", "[[n#^x1]]")
	if got != "préfixe [[n#^x1]]" {
		t.Fatalf("expected unicode-aware match, got %q", got)
	}
}
