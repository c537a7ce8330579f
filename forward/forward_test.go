package forward

import (
	"strings"
	"testing"
)

// seqIDs hands out identifiers from a fixed list.
type seqIDs struct {
	ids []string
	n   int
}

func (s *seqIDs) NewID() string {
	id := s.ids[s.n%len(s.ids)]
	s.n++
	return id
}

// failIDs fails the test if the transform tries to mint.
type failIDs struct {
	t *testing.T
}

func (f failIDs) NewID() string {
	f.t.Fatalf("minted a new id for a line that already carries an anchor")
	return ""
}

// wikiLinks renders [[note#^id]] style references.
type wikiLinks struct {
	target string
}

func (w wikiLinks) Link(id, display string) string {
	if display != "" {
		return "[[" + w.target + "#^" + id + "|" + display + "]]"
	}
	return "[[" + w.target + "#^" + id + "]]"
}

func testOpts(ids ...string) Options {
	return Options{
		CopiedLinkText:          "{{LINK}}",
		LineFormatFrom:          `\s*$`,
		LineFormatTo:            " (see {{LINK}})",
		RemoveLeadingWhitespace: true,
		IDs:                     &seqIDs{ids: ids},
		Links:                   wikiLinks{target: "note"},
	}
}

func joined(lines []string) string {
	return strings.Join(lines, "\n")
}

func TestCombinedLinesAnchorsFirstLineOnly(t *testing.T) {
	lines := []string{"foo", "bar"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 1, EndCol: 3}

	res, err := Transform(lines, span, CombinedLines, testOpts("ab12c"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := joined(res.Updated); got != "foo ^ab12c\nbar" {
		t.Fatalf("expected source rewrite on first line only, got %q", got)
	}
	if got := joined(res.Copied); got != "foo (see [[note#^ab12c]])\nbar" {
		t.Fatalf("expected link on first copy line only, got %q", got)
	}
}

func TestSeparateLinesAnchorsEveryLine(t *testing.T) {
	lines := []string{"alpha", "beta"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 1, EndCol: 4}

	res, err := Transform(lines, span, SeparateLines, testOpts("aaaaa", "bbbbb"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := joined(res.Updated); got != "alpha ^aaaaa\nbeta ^bbbbb" {
		t.Fatalf("expected an anchor per line, got %q", got)
	}
	if got := joined(res.Copied); got != "alpha (see [[note#^aaaaa]])\nbeta (see [[note#^bbbbb]])" {
		t.Fatalf("expected a link per copy line, got %q", got)
	}
}

func TestExistingAnchorReused(t *testing.T) {
	lines := []string{"foo ^ab12c"}
	span := Span{StartLine: 0, EndLine: 0}

	opts := testOpts()
	opts.IDs = failIDs{t: t}
	res, err := Transform(lines, span, CombinedLines, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Updated[0]; got != "foo ^ab12c" {
		t.Fatalf("expected source line untouched on reuse, got %q", got)
	}
	if got := res.Copied[0]; got != "foo (see [[note#^ab12c]])" {
		t.Fatalf("expected copy linked to the existing anchor, got %q", got)
	}
}

func TestForwardingIsIdempotent(t *testing.T) {
	lines := []string{"task item"}
	span := Span{StartLine: 0, EndLine: 0}

	first, err := Transform(lines, span, CombinedLines, testOpts("zz9zz"))
	if err != nil {
		t.Fatalf("first transform failed: %v", err)
	}

	// Apply the rewrite, then forward the same line again.
	opts := testOpts()
	opts.IDs = failIDs{t: t}
	second, err := Transform(first.Updated, span, CombinedLines, opts)
	if err != nil {
		t.Fatalf("second transform failed: %v", err)
	}
	if got := joined(second.Updated); got != joined(first.Updated) {
		t.Fatalf("expected stable source after re-forwarding, got %q", got)
	}
	if got := second.Copied[0]; got != first.Copied[0] {
		t.Fatalf("expected both copies to reference the same anchor, got %q vs %q", first.Copied[0], got)
	}
}

func TestReusedAnchorStrippedFromCopy(t *testing.T) {
	lines := []string{"remember this ^xy-1z"}
	span := Span{StartLine: 0, EndLine: 0}

	opts := testOpts()
	opts.IDs = failIDs{t: t}
	res, err := Transform(lines, span, SeparateLines, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "remember this (see [[note#^xy-1z]])" {
		t.Fatalf("expected anchor stripped from copy text, got %q", got)
	}
}

func TestSeparateLinesCopyCountMatchesSelection(t *testing.T) {
	lines := []string{"one", "two", "three"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 2, EndCol: 5}

	res, err := Transform(lines, span, SeparateLines, testOpts("aaaaa", "bbbbb", "ccccc"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if len(res.Copied) != 3 || len(res.Updated) != 3 {
		t.Fatalf("expected 3 copy and 3 update lines, got %d and %d", len(res.Copied), len(res.Updated))
	}
}

func TestLinkOnlyEmitsSingleCopyLine(t *testing.T) {
	lines := []string{"first", "second", "third"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 2, EndCol: 5}

	res, err := Transform(lines, span, LinkOnly, testOpts("ld1nk"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if len(res.Copied) != 1 {
		t.Fatalf("expected exactly one copy line, got %d: %q", len(res.Copied), res.Copied)
	}
	if got := res.Copied[0]; got != "[[note#^ld1nk]]" {
		t.Fatalf("expected bare link copy, got %q", got)
	}
	if got := joined(res.Updated); got != "first ^ld1nk\nsecond\nthird" {
		t.Fatalf("expected only the first source line anchored, got %q", got)
	}
}

func TestLinkOnlyUsesCopiedLinkTemplate(t *testing.T) {
	lines := []string{"first"}
	span := Span{StartLine: 0, EndLine: 0}

	opts := testOpts("ld1nk")
	opts.CopiedLinkText = "source: {{LINK|here}}"
	res, err := Transform(lines, span, LinkOnly, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "source: [[note#^ld1nk|here]]" {
		t.Fatalf("expected templated link copy, got %q", got)
	}
}

func TestLinkOnlyEmbedBypassesTemplate(t *testing.T) {
	lines := []string{"first", "second"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 1, EndCol: 6}

	opts := testOpts("emb3d")
	opts.CopiedLinkText = "should not appear: {{LINK}}"
	res, err := Transform(lines, span, LinkOnlyEmbed, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if len(res.Copied) != 1 {
		t.Fatalf("expected exactly one copy line, got %d", len(res.Copied))
	}
	if got := res.Copied[0]; got != "![[note#^emb3d]]" {
		t.Fatalf("expected embed-prefixed link used verbatim, got %q", got)
	}
}

func TestInvalidLineFormatAborts(t *testing.T) {
	lines := []string{"foo"}
	span := Span{StartLine: 0, EndLine: 0}

	opts := testOpts("aaaaa")
	opts.LineFormatFrom = "[abc"
	res, err := Transform(lines, span, CombinedLines, opts)
	if err == nil {
		t.Fatalf("expected error for invalid pattern, got result %+v", res)
	}
	if !strings.Contains(err.Error(), "[abc") {
		t.Fatalf("expected error to carry the offending pattern, got %v", err)
	}
	if len(res.Updated) != 0 || len(res.Copied) != 0 {
		t.Fatalf("expected empty result on abort, got %+v", res)
	}
}

func TestBlankLinePassesThroughUnchanged(t *testing.T) {
	lines := []string{"above", "   ", "below"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 2, EndCol: 5}

	res, err := Transform(lines, span, SeparateLines, testOpts("aaaaa", "bbbbb"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Updated[1]; got != "   " {
		t.Fatalf("expected blank source line byte-identical, got %q", got)
	}
	if got := res.Copied[1]; got != "   " {
		t.Fatalf("expected blank copy line byte-identical, got %q", got)
	}
	if got := res.Updated[2]; got != "below ^bbbbb" {
		t.Fatalf("expected anchor minting to continue past the blank, got %q", got)
	}
}

func TestCollapsedCursorStripsLeadingWhitespace(t *testing.T) {
	lines := []string{"   - item"}
	span := Span{StartLine: 0, StartCol: 5, EndLine: 0, EndCol: 5}

	res, err := Transform(lines, span, CombinedLines, testOpts("ab12c"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Updated[0]; got != "   - item ^ab12c" {
		t.Fatalf("expected source to keep its indent plus anchor, got %q", got)
	}
	if got := res.Copied[0]; got != "- item (see [[note#^ab12c]])" {
		t.Fatalf("expected copy without indent, got %q", got)
	}
}

func TestCollapsedCursorKeepsWhitespaceWhenDisabled(t *testing.T) {
	lines := []string{"   - item"}
	span := Span{StartLine: 0, StartCol: 2, EndLine: 0, EndCol: 2}

	opts := testOpts("ab12c")
	opts.RemoveLeadingWhitespace = false
	res, err := Transform(lines, span, CombinedLines, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "   - item (see [[note#^ab12c]])" {
		t.Fatalf("expected copy to keep its indent, got %q", got)
	}
}

func TestPartialSingleLineSelection(t *testing.T) {
	lines := []string{"hello world again"}
	span := Span{StartLine: 0, StartCol: 6, EndLine: 0, EndCol: 11}

	res, err := Transform(lines, span, CombinedLines, testOpts("p4rtl"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "world (see [[note#^p4rtl]])" {
		t.Fatalf("expected copy sliced to the selected range, got %q", got)
	}
	if got := res.Updated[0]; got != "hello world again ^p4rtl" {
		t.Fatalf("expected whole source line anchored, got %q", got)
	}
}

func TestMultiLineSelectionSlicesBoundaryLines(t *testing.T) {
	lines := []string{"first line", "middle", "last line"}
	span := Span{StartLine: 0, StartCol: 6, EndLine: 2, EndCol: 4}

	res, err := Transform(lines, span, CombinedLines, testOpts("bnd1x"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	want := "line (see [[note#^bnd1x]])\nmiddle\nlast"
	if got := joined(res.Copied); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestReversedSelectionNormalizes(t *testing.T) {
	lines := []string{"foo", "bar"}
	fwd := Span{StartLine: 0, StartCol: 0, EndLine: 1, EndCol: 3}
	rev := Span{StartLine: 1, StartCol: 3, EndLine: 0, EndCol: 0}

	a, err := Transform(lines, fwd, CombinedLines, testOpts("ab12c"))
	if err != nil {
		t.Fatalf("forward span failed: %v", err)
	}
	b, err := Transform(lines, rev, CombinedLines, testOpts("ab12c"))
	if err != nil {
		t.Fatalf("reversed span failed: %v", err)
	}
	if joined(a.Copied) != joined(b.Copied) || joined(a.Updated) != joined(b.Updated) {
		t.Fatalf("expected identical results, got %+v vs %+v", a, b)
	}
}

func TestCollapsedCursorIgnoresColumn(t *testing.T) {
	lines := []string{"whole line here"}
	span := Span{StartLine: 0, StartCol: 9, EndLine: 0, EndCol: 9}

	res, err := Transform(lines, span, CombinedLines, testOpts("wh0le"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "whole line here (see [[note#^wh0le]])" {
		t.Fatalf("expected full-line copy for collapsed cursor, got %q", got)
	}
}

func TestWhitespaceOnlySoleLineStillAnchors(t *testing.T) {
	lines := []string{"   "}
	span := Span{StartLine: 0, StartCol: 1, EndLine: 0, EndCol: 1}

	res, err := Transform(lines, span, CombinedLines, testOpts("bl4nk"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Updated[0]; got != "^bl4nk" {
		t.Fatalf("expected bare anchor on whitespace-only line, got %q", got)
	}
}

func TestLineFormatReplacesFirstMatchOnly(t *testing.T) {
	lines := []string{"say hello hello"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 15}

	opts := testOpts("f1rst")
	opts.LineFormatFrom = "hello"
	opts.LineFormatTo = "bye"
	res, err := Transform(lines, span, CombinedLines, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "say bye hello" {
		t.Fatalf("expected first match only replaced, got %q", got)
	}
}

func TestLineFormatExpandsCaptures(t *testing.T) {
	lines := []string{"TODO: fix the hinge"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 19}

	opts := testOpts("c4ptr")
	opts.LineFormatFrom = `^TODO: (.+)$`
	opts.LineFormatTo = "$1 ({{LINK}})"
	res, err := Transform(lines, span, CombinedLines, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "fix the hinge ([[note#^c4ptr]])" {
		t.Fatalf("expected capture expansion with link, got %q", got)
	}
}

func TestLineFormatWithoutMatchLeavesCopy(t *testing.T) {
	lines := []string{"plain text"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 10}

	opts := testOpts("n0mtc")
	opts.LineFormatFrom = `ZZZ\d+`
	res, err := Transform(lines, span, CombinedLines, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "plain text" {
		t.Fatalf("expected copy untouched when pattern has no match, got %q", got)
	}
	if got := res.Updated[0]; got != "plain text ^n0mtc" {
		t.Fatalf("expected source still anchored, got %q", got)
	}
}

func TestLinkTextBecomesDisplayText(t *testing.T) {
	lines := []string{"foo"}
	span := Span{StartLine: 0, EndLine: 0}

	opts := testOpts("d1spl")
	opts.LinkText = "origin"
	res, err := Transform(lines, span, CombinedLines, opts)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if got := res.Copied[0]; got != "foo (see [[note#^d1spl|origin]])" {
		t.Fatalf("expected configured display text in link, got %q", got)
	}
}

func TestEmptyDocument(t *testing.T) {
	res, err := Transform(nil, Span{}, CombinedLines, testOpts("aaaaa"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if len(res.Updated) != 0 || len(res.Copied) != 0 {
		t.Fatalf("expected empty result for empty document, got %+v", res)
	}
}

func TestSelectionClampedToDocument(t *testing.T) {
	lines := []string{"only"}
	span := Span{StartLine: 0, StartCol: 0, EndLine: 9, EndCol: 9}

	res, err := Transform(lines, span, CombinedLines, testOpts("cl4mp"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if len(res.Updated) != 1 {
		t.Fatalf("expected span clamped to one line, got %d", len(res.Updated))
	}
}

func TestResultReportsFirstReplacedLine(t *testing.T) {
	lines := []string{"zero", "one", "two"}
	span := Span{StartLine: 2, StartCol: 3, EndLine: 1, EndCol: 0}

	res, err := Transform(lines, span, SeparateLines, testOpts("aaaaa", "bbbbb"))
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if res.First != 1 {
		t.Fatalf("expected replacement to start at line 1, got %d", res.First)
	}
	if len(res.Updated) != 2 {
		t.Fatalf("expected two replacement lines, got %d", len(res.Updated))
	}
}
