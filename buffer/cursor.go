package buffer

import "tether/forward"

type Cursor struct {
	Line, Col int
}

func (c Cursor) Before(other Cursor) bool {
	if c.Line != other.Line {
		return c.Line < other.Line
	}
	return c.Col < other.Col
}

func (c Cursor) Equal(other Cursor) bool {
	return c.Line == other.Line && c.Col == other.Col
}

type Selection struct {
	Start, End Cursor
}

func NewSelection(a, b Cursor) Selection {
	if a.Before(b) {
		return Selection{Start: a, End: b}
	}
	return Selection{Start: b, End: a}
}

func (s Selection) Contains(c Cursor) bool {
	if c.Before(s.Start) || s.End.Before(c) {
		return false
	}
	return true
}

func (s Selection) Empty() bool {
	return s.Start.Equal(s.End)
}

// LineRange returns the ordered first and last line the selection touches.
func (s Selection) LineRange() (int, int) {
	if s.End.Line < s.Start.Line {
		return s.End.Line, s.Start.Line
	}
	return s.Start.Line, s.End.Line
}

// Span converts the selection into the transformer's input form. A nil
// selection is expressed as a collapsed span at the cursor.
func (s Selection) Span() forward.Span {
	return forward.Span{
		StartLine: s.Start.Line, StartCol: s.Start.Col,
		EndLine: s.End.Line, EndCol: s.End.Col,
	}
}

// SpanAt returns the span a host should transform: the selection when one
// is active, otherwise a collapsed span at the cursor.
func SpanAt(sel *Selection, cur Cursor) forward.Span {
	if sel != nil && !sel.Empty() {
		return sel.Span()
	}
	return forward.Span{StartLine: cur.Line, StartCol: cur.Col, EndLine: cur.Line, EndCol: cur.Col}
}
