package forward

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how the copied output is shaped.
type Mode int

const (
	SeparateLines Mode = iota // every line anchored, every copy transformed
	CombinedLines             // first line anchored, rest copied verbatim
	LinkOnly                  // single reference through the copied-link template
	LinkOnlyEmbed             // single embed-prefixed reference, used verbatim
)

func (m Mode) String() string {
	switch m {
	case SeparateLines:
		return "separate-lines"
	case CombinedLines:
		return "combined-lines"
	case LinkOnly:
		return "link-only"
	case LinkOnlyEmbed:
		return "link-only-embed"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Span is a selected region of the document. Lines and columns are
// zero-based, columns are byte offsets into the line. Endpoints may be
// given in either order.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Collapsed reports whether the span is a bare cursor with no range.
func (s Span) Collapsed() bool {
	return s.StartLine == s.EndLine && s.StartCol == s.EndCol
}

func (s Span) normalized() Span {
	if s.EndLine < s.StartLine || (s.EndLine == s.StartLine && s.EndCol < s.StartCol) {
		return Span{StartLine: s.EndLine, StartCol: s.EndCol, EndLine: s.StartLine, EndCol: s.StartCol}
	}
	return s
}

// IDSource yields new block identifiers.
type IDSource interface {
	NewID() string
}

// LinkResolver renders a navigable reference to an anchored line of the
// document being transformed. Implementations carry the document identity.
// display overrides the visible text when non-empty.
type LinkResolver interface {
	Link(id, display string) string
}

// Options carries the settings and host capabilities for a transform.
type Options struct {
	LinkText                string // display text for generated links, empty shows the target itself
	CopiedLinkText          string // template for link-only copies, expects a {{LINK}} placeholder
	LineFormatFrom          string // pattern matched against each copied line
	LineFormatTo            string // replacement text, captures and {{LINK}} expand
	RemoveLeadingWhitespace bool   // strip indent from collapsed-cursor copies

	IDs   IDSource
	Links LinkResolver
}

// Result of a transform. Updated replaces lines First through
// First+len(Updated)-1 of the source document, Copied is the annotated
// text destined for the clipboard.
type Result struct {
	First   int
	Updated []string
	Copied  []string
}

// CopiedText joins the copy lines for clipboard delivery.
func (r Result) CopiedText() string {
	return strings.Join(r.Copied, "\n")
}

// Transform rewrites the selected lines to carry block anchors and builds
// the annotated copy for the given mode. It fails before doing anything
// else if the line format pattern does not compile, so callers can abort
// without having mutated the document or the clipboard.
func Transform(lines []string, span Span, mode Mode, opts Options) (Result, error) {
	re, err := regexp.Compile(opts.LineFormatFrom)
	if err != nil {
		return Result{}, fmt.Errorf("line format %q: %w", opts.LineFormatFrom, err)
	}

	res := Result{}
	if len(lines) == 0 {
		return res, nil
	}

	span = span.normalized()
	// Validate line bounds
	if span.StartLine < 0 {
		span.StartLine = 0
	}
	if span.EndLine > len(lines)-1 {
		span.EndLine = len(lines) - 1
	}
	if span.StartLine > span.EndLine {
		span.StartLine = span.EndLine
	}
	res.First = span.StartLine
	collapsed := span.Collapsed()
	singleLine := span.StartLine == span.EndLine
	linkOnly := mode == LinkOnly || mode == LinkOnlyEmbed

	for i := span.StartLine; i <= span.EndLine; i++ {
		raw := lines[i]

		copyText := copySlice(raw, i, span, collapsed)
		if collapsed && opts.RemoveLeadingWhitespace {
			copyText = strings.TrimLeft(copyText, " \t")
		}

		// Blank lines inside a larger selection pass through untouched
		// on both sides, with no anchor handling.
		if strings.TrimSpace(raw) == "" && !singleLine {
			res.Copied = append(res.Copied, raw)
			res.Updated = append(res.Updated, raw)
			continue
		}

		source := raw
		if mode == SeparateLines || i == span.StartLine {
			id, found := detectAnchor(raw)
			if found {
				// Reused anchors stay in the source but must not leak
				// into the forwarded copy.
				copyText = stripAnchor(copyText)
			} else {
				id = opts.IDs.NewID()
				source = mintAnchor(raw, id)
			}
			link := opts.Links.Link(id, opts.LinkText)

			switch mode {
			case LinkOnly:
				copyText = ExpandLink(opts.CopiedLinkText, link)
			case LinkOnlyEmbed:
				copyText = "!" + link
			default:
				copyText = replaceFirst(re, copyText, opts.LineFormatTo, link)
			}
		}

		if !linkOnly || i == span.StartLine {
			res.Copied = append(res.Copied, copyText)
		}
		res.Updated = append(res.Updated, source)
	}
	return res, nil
}

// copySlice picks the part of the line that belongs to the copy: column
// bounds apply only on the boundary lines of a ranged selection, a
// collapsed cursor always takes the whole line.
func copySlice(raw string, i int, span Span, collapsed bool) string {
	if collapsed {
		return raw
	}
	if span.StartLine == span.EndLine {
		return raw[clampCol(span.StartCol, raw):clampCol(span.EndCol, raw)]
	}
	switch i {
	case span.StartLine:
		return raw[clampCol(span.StartCol, raw):]
	case span.EndLine:
		return raw[:clampCol(span.EndCol, raw)]
	}
	return raw
}

func clampCol(col int, line string) int {
	if col < 0 {
		return 0
	}
	if col > len(line) {
		return len(line)
	}
	return col
}
