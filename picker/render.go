package picker

import (
	"fmt"
	"unicode/utf8"

	"tether/ui"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

func (p *Picker) render() {
	theme := p.cfg.GetTheme()
	defaultStyle := tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground)
	p.screen.SetStyle(defaultStyle)
	p.screen.Clear()

	screenW, screenH := p.screen.Size()

	p.modeBar.Theme = theme
	p.statusBar.Theme = theme
	p.syncStatus()
	p.syncImagePreview()

	p.modeBar.Render(p.screen, 0, 0, screenW, 1)

	tx, ty, tw, th := p.textLayout()
	p.renderText(tx, ty, tw, th)

	if p.preview != nil {
		p.preview.SetTheme(theme)
		ix := tx + tw
		p.preview.Render(p.screen, ix, ty, screenW-ix, th)
	}

	p.statusBar.Render(p.screen, 0, screenH-1, screenW, 1)
	if p.prompt != nil {
		p.prompt.Theme = theme
		p.prompt.Render(p.screen, 0, screenH-1, screenW, 1)
	}

	if p.form != nil {
		p.form.Theme = theme
		p.form.Render(p.screen, 0, 0, screenW, screenH)
	}
	if p.quickOpen != nil {
		p.quickOpen.Theme = theme
		p.quickOpen.Render(p.screen, 0, 0, screenW, screenH)
	}
	if p.palette != nil {
		p.palette.Theme = theme
		p.palette.Render(p.screen, 0, 0, screenW, screenH)
	}
	if p.help != nil {
		p.help.Theme = theme
		p.help.Render(p.screen, 0, 0, screenW, screenH)
	}

	p.renderCursor(tx, ty, tw, th)

	overlayVisible := p.overlayOpen()
	var sixel *ui.EmbedPreview
	if p.preview != nil && p.preview.NeedsSixel() {
		sixel = p.preview
	}
	if overlayVisible && sixel != nil && !p.sixelHidden {
		// Repaint the graphics plane before Show so overlay text wins.
		sixel.ClearSixel()
		p.sixelHidden = true
	}

	p.screen.Show()

	// Sixel streams go to the tty after Show. Skip while overlays are up
	// so they cannot draw above the popup.
	if sixel != nil {
		if overlayVisible {
			sixel.MarkDirty()
		} else {
			p.sixelHidden = false
			sixel.PaintSixel()
		}
	} else {
		p.sixelHidden = false
	}
}

// textLayout returns the note text area: below the mode bar, above the
// status bar, sharing the width with the image pane when one is open.
func (p *Picker) textLayout() (x, y, w, h int) {
	screenW, screenH := p.screen.Size()
	w = screenW
	if p.preview != nil {
		w = screenW / 2
	}
	h = screenH - 2
	if h < 0 {
		h = 0
	}
	return 0, 1, w, h
}

func (p *Picker) renderText(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	theme := p.cfg.GetTheme()

	gutterStyle := tcell.StyleDefault.Background(theme.Background).Foreground(theme.LineNumber)
	activeGutterStyle := tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground)
	lineStyle := tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground)
	selStyle := tcell.StyleDefault.Background(theme.Selection).Foreground(theme.Foreground)
	markStyle := tcell.StyleDefault.Background(theme.Background).Foreground(theme.AnchorMark)
	emptyStyle := gutterStyle

	if p.buf == nil {
		for row := 0; row < h; row++ {
			p.screen.SetContent(x, y+row, '~', nil, emptyStyle)
		}
		msg := "Ctrl+P to open a note"
		mx := x + (w-len(msg))/2
		my := y + h/2
		for i, ch := range msg {
			if mx+i >= x && mx+i < x+w {
				p.screen.SetContent(mx+i, my, ch, nil, lineStyle)
			}
		}
		return
	}

	buf := p.buf
	gutterW := p.gutterWidth()
	textW := w - gutterW
	if textW <= 0 {
		return
	}

	if !p.mouseScrolling {
		p.ensureCursorVisible(h)
	}

	startLine := p.scrollY
	endLine := startLine + h
	if endLine > len(buf.Lines) {
		endLine = len(buf.Lines)
	}
	styled := p.highlight.Highlight(buf.Lines, startLine, endLine)

	for row := 0; row < h; row++ {
		screenY := y + row
		lineIdx := startLine + row

		if lineIdx >= len(buf.Lines) {
			p.screen.SetContent(x, screenY, '~', nil, emptyStyle)
			continue
		}

		// Anchor mark in the first gutter column
		markCh := ' '
		if p.gutter.MarkAt(lineIdx) {
			markCh = '^'
		}
		p.screen.SetContent(x, screenY, markCh, nil, markStyle)

		// Line number, right-aligned before the separating space
		lineNum := fmt.Sprintf("%*d", gutterW-2, lineIdx+1)
		numStyle := gutterStyle
		if lineIdx == buf.Cursor.Line {
			numStyle = activeGutterStyle
		}
		for i, ch := range lineNum {
			if x+1+i < x+gutterW-1 {
				p.screen.SetContent(x+1+i, screenY, ch, nil, numStyle)
			}
		}
		p.screen.SetContent(x+gutterW-1, screenY, ' ', nil, gutterStyle)

		// Note text, token by token
		displayCol := 0
		byteCol := 0
		for _, tok := range styled[row].Tokens {
			tokStyle := tok.Style.Background(theme.Background)
			for _, r := range tok.Text {
				st := tokStyle
				if p.isSelected(lineIdx, byteCol) {
					st = selStyle
				}
				if r == '\t' {
					next := (displayCol/tabWidth + 1) * tabWidth
					for displayCol < next {
						sx := x + gutterW + displayCol
						if sx >= x+w {
							break
						}
						p.screen.SetContent(sx, screenY, ' ', nil, st)
						displayCol++
					}
					byteCol++
					continue
				}
				sx := x + gutterW + displayCol
				if sx >= x+w {
					break
				}
				p.screen.SetContent(sx, screenY, r, nil, st)
				displayCol += runewidth.RuneWidth(r)
				byteCol += utf8.RuneLen(r)
			}
		}

		for col := x + gutterW + displayCol; col < x+w; col++ {
			p.screen.SetContent(col, screenY, ' ', nil, lineStyle)
		}
	}
}

// gutterWidth is the anchor mark column plus right-aligned line numbers
// and a separating space.
func (p *Picker) gutterWidth() int {
	if p.buf == nil {
		return 2
	}
	digits := 1
	for lines := len(p.buf.Lines); lines >= 10; lines /= 10 {
		digits++
	}
	return digits + 3
}

func (p *Picker) ensureCursorVisible(textH int) {
	if p.buf == nil || textH <= 0 {
		return
	}
	if p.buf.Cursor.Line < p.scrollY {
		p.scrollY = p.buf.Cursor.Line
	}
	if p.buf.Cursor.Line >= p.scrollY+textH {
		p.scrollY = p.buf.Cursor.Line - textH + 1
	}
	maxScroll := len(p.buf.Lines) - 1
	if p.scrollY > maxScroll {
		p.scrollY = maxScroll
	}
	if p.scrollY < 0 {
		p.scrollY = 0
	}
}

// isSelected reports whether the cell at (line, byteCol) falls inside the
// active selection. Column bounds bind on the boundary lines only.
func (p *Picker) isSelected(line, byteCol int) bool {
	sel := p.buf.Selection
	if sel == nil || sel.Empty() {
		return false
	}
	lo, hi := sel.LineRange()
	if line < lo || line > hi {
		return false
	}
	if line == sel.Start.Line && byteCol < sel.Start.Col {
		return false
	}
	if line == sel.End.Line && byteCol >= sel.End.Col {
		return false
	}
	return true
}

func (p *Picker) renderCursor(x, y, w, h int) {
	if p.buf == nil || p.overlayOpen() {
		p.screen.HideCursor()
		return
	}
	buf := p.buf
	if buf.Cursor.Line < p.scrollY || buf.Cursor.Line >= p.scrollY+h {
		p.screen.HideCursor()
		return
	}
	line := buf.Lines[buf.Cursor.Line]
	cx := x + p.gutterWidth() + displayColOf(line, buf.Cursor.Col)
	cy := y + (buf.Cursor.Line - p.scrollY)
	if cx >= x+w {
		p.screen.HideCursor()
		return
	}
	p.screen.ShowCursor(cx, cy)
}

// displayColOf converts a byte offset into the on-screen column, expanding
// tabs to the next stop.
func displayColOf(line string, byteCol int) int {
	displayCol := 0
	for i, r := range line {
		if i >= byteCol {
			break
		}
		if r == '\t' {
			displayCol = (displayCol/tabWidth + 1) * tabWidth
		} else {
			displayCol += runewidth.RuneWidth(r)
		}
	}
	return displayCol
}

// byteColAt is the inverse: the byte offset of the rune covering a display
// column, clamped to the line length.
func byteColAt(line string, targetDisplayCol int) int {
	if targetDisplayCol <= 0 {
		return 0
	}
	displayCol := 0
	for i, r := range line {
		var width int
		if r == '\t' {
			width = (displayCol/tabWidth+1)*tabWidth - displayCol
		} else {
			width = runewidth.RuneWidth(r)
		}
		if displayCol+width > targetDisplayCol {
			return i
		}
		displayCol += width
	}
	return len(line)
}
