package picker

import (
	"unicode/utf8"

	"tether/buffer"
	"tether/forward"

	"github.com/gdamore/tcell/v2"
)

func (p *Picker) handleKey(ev *tcell.EventKey) {
	p.mouseScrolling = false

	// Overlays swallow keys first
	if p.prompt != nil {
		p.prompt.HandleKey(ev)
		return
	}
	if p.form != nil {
		p.form.HandleKey(ev)
		return
	}
	if p.palette != nil {
		p.palette.HandleKey(ev)
		return
	}
	if p.quickOpen != nil {
		p.quickOpen.HandleKey(ev)
		return
	}
	if p.help != nil {
		p.help.HandleKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		p.quit = true
		return
	case tcell.KeyCtrlP:
		p.openQuickOpen()
		return
	case tcell.KeyCtrlD:
		p.moveHalfPage(1)
		return
	case tcell.KeyCtrlU:
		p.moveHalfPage(-1)
		return
	case tcell.KeyUp:
		p.moveLine(-1)
		return
	case tcell.KeyDown:
		p.moveLine(1)
		return
	case tcell.KeyLeft:
		p.moveCol(-1)
		return
	case tcell.KeyRight:
		p.moveCol(1)
		return
	case tcell.KeyEnter:
		p.applyForward(forward.Mode(p.modeBar.Active))
		return
	case tcell.KeyEscape:
		p.dropSelection()
		return
	}

	if ev.Key() != tcell.KeyRune {
		return
	}
	switch ev.Rune() {
	case 'j':
		p.moveLine(1)
	case 'k':
		p.moveLine(-1)
	case 'g':
		p.moveTo(0)
	case 'G':
		if p.buf != nil {
			p.moveTo(len(p.buf.Lines) - 1)
		}
	case 'v':
		p.toggleSelection()
	case 'h':
		p.moveCol(-1)
	case 'l':
		p.moveCol(1)
	case '1':
		p.applyForward(forward.SeparateLines)
	case '2':
		p.applyForward(forward.CombinedLines)
	case '3':
		p.applyForward(forward.LinkOnly)
	case '4':
		p.applyForward(forward.LinkOnlyEmbed)
	case ',':
		p.openSettings()
	case 'p':
		p.openPalette()
	case '?':
		p.openHelp()
	case 'q':
		p.quit = true
	}
}

func (p *Picker) moveLine(delta int) {
	if p.buf == nil {
		return
	}
	p.moveTo(p.buf.Cursor.Line + delta)
}

func (p *Picker) moveTo(line int) {
	if p.buf == nil {
		return
	}
	if line < 0 {
		line = 0
	}
	if line > len(p.buf.Lines)-1 {
		line = len(p.buf.Lines) - 1
	}
	p.buf.Cursor.Line = line
	p.clampCursorCol()
	p.colRefined = false
	if p.selecting {
		p.extendSelection()
	}
}

func (p *Picker) moveHalfPage(direction int) {
	_, _, _, h := p.textLayout()
	step := h / 2
	if step < 1 {
		step = 1
	}
	p.moveLine(direction * step)
}

// moveCol moves the cursor one rune sideways. Inside a selection this
// narrows the cursor end to a column boundary.
func (p *Picker) moveCol(delta int) {
	if p.buf == nil {
		return
	}
	line := p.buf.Lines[p.buf.Cursor.Line]
	col := p.buf.Cursor.Col
	if delta > 0 && col < len(line) {
		_, size := utf8.DecodeRuneInString(line[col:])
		col += size
	}
	if delta < 0 && col > 0 {
		_, size := utf8.DecodeLastRuneInString(line[:col])
		col -= size
	}
	p.buf.Cursor.Col = col
	if p.selecting {
		p.colRefined = true
		p.extendSelection()
	}
}

// clampCursorCol keeps the column inside the line and on a rune boundary.
func (p *Picker) clampCursorCol() {
	line := p.buf.Lines[p.buf.Cursor.Line]
	col := p.buf.Cursor.Col
	if col > len(line) {
		col = len(line)
	}
	for col > 0 && col < len(line) && !utf8.RuneStart(line[col]) {
		col--
	}
	p.buf.Cursor.Col = col
}

// toggleSelection starts a line selection at the cursor, or drops the
// active one.
func (p *Picker) toggleSelection() {
	if p.buf == nil {
		return
	}
	if p.selecting {
		p.dropSelection()
		return
	}
	p.selecting = true
	p.selAnchor = p.buf.Cursor.Line
	p.colRefined = false
	p.extendSelection()
}

func (p *Picker) dropSelection() {
	p.selecting = false
	p.colRefined = false
	if p.buf != nil {
		p.buf.Selection = nil
	}
}

// extendSelection rebuilds the selection between the anchor line and the
// cursor. Lines are taken whole unless h/l narrowed the cursor end.
func (p *Picker) extendSelection() {
	buf := p.buf
	anchor := p.selAnchor
	if anchor > len(buf.Lines)-1 {
		anchor = len(buf.Lines) - 1
	}
	cur := buf.Cursor

	var a, b buffer.Cursor
	if cur.Line >= anchor {
		a = buffer.Cursor{Line: anchor, Col: 0}
		b = buffer.Cursor{Line: cur.Line, Col: len(buf.Lines[cur.Line])}
		if p.colRefined {
			b.Col = cur.Col
		}
	} else {
		a = buffer.Cursor{Line: cur.Line, Col: 0}
		if p.colRefined {
			a.Col = cur.Col
		}
		b = buffer.Cursor{Line: anchor, Col: len(buf.Lines[anchor])}
	}
	sel := buffer.NewSelection(a, b)
	buf.Selection = &sel
}

func (p *Picker) handleMouse(ev *tcell.EventMouse) {
	if p.form != nil {
		p.form.HandleMouse(ev)
		return
	}
	if p.palette != nil {
		p.palette.HandleMouse(ev)
		return
	}
	if p.quickOpen != nil {
		p.quickOpen.HandleMouse(ev)
		return
	}
	if p.help != nil {
		p.help.HandleMouse(ev)
		return
	}
	if p.prompt != nil {
		p.prompt.HandleMouse(ev)
		return
	}

	if p.modeBar.HandleMouse(ev) {
		return
	}

	mx, my := ev.Position()
	btn := ev.Buttons()
	_, screenH := p.screen.Size()

	// Status bar clicks have no action.
	if my == screenH-1 {
		return
	}
	if p.buf == nil {
		return
	}

	tx, ty, tw, th := p.textLayout()
	switch {
	case btn == tcell.WheelUp:
		p.scrollY -= 3
		if p.scrollY < 0 {
			p.scrollY = 0
		}
		p.mouseScrolling = true

	case btn == tcell.WheelDown:
		p.scrollY += 3
		maxScroll := len(p.buf.Lines) - th
		if maxScroll < 0 {
			maxScroll = 0
		}
		if p.scrollY > maxScroll {
			p.scrollY = maxScroll
		}
		p.mouseScrolling = true

	case btn == tcell.Button1:
		gutterW := p.gutterWidth()
		if mx < tx+gutterW || mx >= tx+tw || my < ty || my >= ty+th {
			return
		}
		line := p.scrollY + (my - ty)
		if line > len(p.buf.Lines)-1 {
			line = len(p.buf.Lines) - 1
		}
		if line < 0 {
			return
		}
		if !p.mouseDown {
			p.mouseDown = true
			p.mousePressX, p.mousePressY = mx, my
			p.pressLine = line
		} else if !p.selecting && (mx != p.mousePressX || my != p.mousePressY) {
			// Drag selects whole lines from the press position
			p.selecting = true
			p.selAnchor = p.pressLine
		}
		p.buf.Cursor.Line = line
		p.buf.Cursor.Col = byteColAt(p.buf.Lines[line], mx-tx-gutterW)
		if p.selecting {
			p.colRefined = false
			p.extendSelection()
		}

	case btn == tcell.ButtonNone && p.mouseDown:
		p.mouseDown = false
	}
}
