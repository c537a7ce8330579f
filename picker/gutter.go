package picker

import "tether/forward"

// AnchorGutter tracks which lines of the open note already carry a block
// identifier. The render loop reads it for the gutter mark, the status bar
// for the anchor count.
type AnchorGutter struct {
	marks map[int]bool
	count int
}

func NewAnchorGutter() *AnchorGutter {
	return &AnchorGutter{
		marks: make(map[int]bool),
	}
}

// Update rescans the note after any edit or reload.
func (g *AnchorGutter) Update(lines []string) {
	g.marks = make(map[int]bool)
	g.count = 0
	for i, line := range lines {
		if forward.HasAnchor(line) {
			g.marks[i] = true
			g.count++
		}
	}
}

// MarkAt reports whether a line (0-indexed) carries an anchor.
func (g *AnchorGutter) MarkAt(line int) bool {
	return g.marks[line]
}

// Count returns how many lines carry anchors.
func (g *AnchorGutter) Count() int {
	return g.count
}
