package ui

import (
	"tether/config"

	"github.com/gdamore/tcell/v2"
)

// Dropdown is a small anchored popup list, used by the settings form for
// choice fields.
type Dropdown struct {
	Items    []string
	Selected int
	X, Y     int // screen position to render at
	OnSelect func(item string)
	OnClose  func()
	Theme    *config.ColorScheme
}

func NewDropdown(items []string, x, y int, theme *config.ColorScheme) *Dropdown {
	return &Dropdown{
		Items: items,
		X:     x,
		Y:     y,
		Theme: theme,
	}
}

func (d *Dropdown) Render(screen tcell.Screen, x, y, width, height int) {
	if len(d.Items) == 0 {
		return
	}

	popupW := 12
	for _, item := range d.Items {
		if w := len([]rune(item)) + 4; w > popupW {
			popupW = w
		}
	}

	maxVisible := 10
	if len(d.Items) < maxVisible {
		maxVisible = len(d.Items)
	}

	posX := d.X
	posY := d.Y + 1 // below the row
	if posY+maxVisible > y+height {
		posY = d.Y - maxVisible
	}
	if posX+popupW > x+width {
		posX = x + width - popupW
	}
	if posX < x {
		posX = x
	}

	theme := d.Theme
	if theme == nil {
		theme = config.Themes["slate"]
	}

	bgStyle := tcell.StyleDefault.Background(theme.DialogInputBg).Foreground(theme.DialogFg)
	selStyle := tcell.StyleDefault.Background(theme.ListSelectionBg).Foreground(theme.Foreground).Bold(true)

	scrollOff := 0
	if d.Selected >= scrollOff+maxVisible {
		scrollOff = d.Selected - maxVisible + 1
	}
	if d.Selected < scrollOff {
		scrollOff = d.Selected
	}

	for i := 0; i < maxVisible; i++ {
		idx := scrollOff + i
		if idx >= len(d.Items) {
			break
		}
		style := bgStyle
		if idx == d.Selected {
			style = selStyle
		}

		for cx := posX; cx < posX+popupW && cx < x+width; cx++ {
			screen.SetContent(cx, posY+i, ' ', nil, style)
		}

		marker := ' '
		if idx == d.Selected {
			marker = '▸'
		}
		screen.SetContent(posX+1, posY+i, marker, nil, style)

		col := posX + 3
		for _, ch := range d.Items[idx] {
			if col < posX+popupW-1 && col < x+width {
				screen.SetContent(col, posY+i, ch, nil, style)
				col++
			}
		}
	}
}

func (d *Dropdown) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		if d.Selected > 0 {
			d.Selected--
		}
		return true
	case tcell.KeyDown:
		if d.Selected < len(d.Items)-1 {
			d.Selected++
		}
		return true
	case tcell.KeyEnter, tcell.KeyTab:
		if d.Selected >= 0 && d.Selected < len(d.Items) && d.OnSelect != nil {
			d.OnSelect(d.Items[d.Selected])
		}
		return true
	case tcell.KeyEscape:
		if d.OnClose != nil {
			d.OnClose()
		}
		return true
	}
	return true
}

func (d *Dropdown) HandleMouse(ev *tcell.EventMouse) bool { return true }
func (d *Dropdown) IsFocused() bool                       { return true }
func (d *Dropdown) SetFocused(f bool)                     {}
