package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tether/forward"
)

// selectionFlags are the three ways a transform command names its target.
// Lines are 1-based on the command line; columns are 0-based byte offsets
// into the line, with len(line) naming the position past the last byte.
type selectionFlags struct {
	lines  string
	sel    string
	cursor string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.lines, "lines", "", "whole lines, A or A-B (1-based)")
	f.StringVar(&s.sel, "sel", "", "exact range A:C-B:C (1-based lines, byte columns)")
	f.StringVar(&s.cursor, "cursor", "", "collapsed cursor, L or L:C")
	cmd.MarkFlagsOneRequired("lines", "sel", "cursor")
	cmd.MarkFlagsMutuallyExclusive("lines", "sel", "cursor")
}

// span converts whichever flag was given into the span it names,
// rejecting positions outside the document.
func (s *selectionFlags) span(doc []string) (forward.Span, error) {
	switch {
	case s.lines != "":
		return s.lineSpan(doc)
	case s.sel != "":
		return s.selSpan(doc)
	case s.cursor != "":
		return s.cursorSpan(doc)
	}
	return forward.Span{}, fmt.Errorf("one of --lines, --sel or --cursor is required")
}

// lineSpan covers whole lines: column 0 of the first through the full
// length of the last.
func (s *selectionFlags) lineSpan(doc []string) (forward.Span, error) {
	first, last, ranged := strings.Cut(s.lines, "-")
	if !ranged {
		last = first
	}
	a, err := parseLineNo(first, len(doc))
	if err != nil {
		return forward.Span{}, fmt.Errorf("--lines: %w", err)
	}
	b, err := parseLineNo(last, len(doc))
	if err != nil {
		return forward.Span{}, fmt.Errorf("--lines: %w", err)
	}
	if b < a {
		a, b = b, a
	}
	return forward.Span{StartLine: a, StartCol: 0, EndLine: b, EndCol: len(doc[b])}, nil
}

func (s *selectionFlags) selSpan(doc []string) (forward.Span, error) {
	from, to, ok := strings.Cut(s.sel, "-")
	if !ok {
		return forward.Span{}, fmt.Errorf("--sel expects A:C-B:C, got %q", s.sel)
	}
	a, err := parsePoint(from, doc)
	if err != nil {
		return forward.Span{}, fmt.Errorf("--sel: %w", err)
	}
	b, err := parsePoint(to, doc)
	if err != nil {
		return forward.Span{}, fmt.Errorf("--sel: %w", err)
	}
	return forward.Span{StartLine: a.line, StartCol: a.col, EndLine: b.line, EndCol: b.col}, nil
}

func (s *selectionFlags) cursorSpan(doc []string) (forward.Span, error) {
	lineStr, colStr, hasCol := strings.Cut(s.cursor, ":")
	line, err := parseLineNo(lineStr, len(doc))
	if err != nil {
		return forward.Span{}, fmt.Errorf("--cursor: %w", err)
	}
	col := 0
	if hasCol {
		if col, err = parseColNo(colStr, doc[line]); err != nil {
			return forward.Span{}, fmt.Errorf("--cursor: %w", err)
		}
	}
	return forward.Span{StartLine: line, StartCol: col, EndLine: line, EndCol: col}, nil
}

type point struct{ line, col int }

func parsePoint(s string, doc []string) (point, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		return point{}, fmt.Errorf("endpoint %q expects L:C", s)
	}
	line, err := parseLineNo(lineStr, len(doc))
	if err != nil {
		return point{}, err
	}
	col, err := parseColNo(colStr, doc[line])
	if err != nil {
		return point{}, err
	}
	return point{line, col}, nil
}

// parseLineNo maps a 1-based line number onto its index.
func parseLineNo(s string, lineCount int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad line number %q", s)
	}
	if n < 1 || n > lineCount {
		return 0, fmt.Errorf("line %d outside 1-%d", n, lineCount)
	}
	return n - 1, nil
}

func parseColNo(s, line string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad column %q", s)
	}
	if n < 0 || n > len(line) {
		return 0, fmt.Errorf("column %d outside 0-%d", n, len(line))
	}
	return n, nil
}
