package ui

import (
	"tether/config"

	"github.com/gdamore/tcell/v2"
)

// ModeBar shows the four forward modes across the top of the picker.
// Segments switch by mouse click; the picker maps the number keys.
type ModeBar struct {
	Labels  []string
	Active  int
	focused bool
	x, y, w int // layout coords set on render

	mouseX, mouseY int // current mouse position for hover effects

	// Mouse press tracking for proper click handling
	mousePressX, mousePressY int
	mousePressed             bool

	Theme *config.ColorScheme

	OnSwitch func(index int)
}

func NewModeBar(labels []string) *ModeBar {
	return &ModeBar{Labels: labels, mouseX: -1, mouseY: -1}
}

// segmentWidth reports the rendered width of one segment:
// space + digit + space + label + space, plus a separator between segments.
func (mb *ModeBar) segmentWidth(index int) int {
	if index < 0 || index >= len(mb.Labels) {
		return 0
	}
	w := 1 + 1 + 1 + len([]rune(mb.Labels[index])) + 1
	if index < len(mb.Labels)-1 {
		w++
	}
	return w
}

// segmentAt maps an x coordinate to a segment index, or -1.
func (mb *ModeBar) segmentAt(mx int) int {
	col := mb.x
	for i := range mb.Labels {
		w := mb.segmentWidth(i)
		if col >= mb.x+mb.w {
			break
		}
		if mx >= col && mx < col+w {
			return i
		}
		col += w
	}
	return -1
}

func (mb *ModeBar) Render(screen tcell.Screen, x, y, width, height int) {
	mb.x, mb.y, mb.w = x, y, width
	if mb.Active < 0 {
		mb.Active = 0
	}
	if mb.Active >= len(mb.Labels) {
		mb.Active = len(mb.Labels) - 1
	}

	theme := mb.Theme
	if theme == nil {
		theme = config.Themes["slate"]
	}

	barStyle := tcell.StyleDefault.Background(theme.StatusBarBg).Foreground(theme.StatusBarFg)
	activeStyle := tcell.StyleDefault.Background(theme.StatusBarModeBg).Foreground(tcell.ColorWhite).Bold(true)
	keyStyle := tcell.StyleDefault.Background(theme.StatusBarBg).Foreground(theme.Muted)

	for cx := x; cx < x+width; cx++ {
		screen.SetContent(cx, y, ' ', nil, barStyle)
	}

	col := x
	for i, label := range mb.Labels {
		if col >= x+width {
			break
		}

		style := barStyle
		digitStyle := keyStyle
		if i == mb.Active {
			style = activeStyle
			digitStyle = activeStyle
		} else if mb.mouseY == y {
			segW := mb.segmentWidth(i)
			if mb.mouseX >= col && mb.mouseX < col+segW {
				hoverColor := theme.StatusBarBg.TrueColor().Hex() + 0x101010
				style = style.Background(tcell.NewHexColor(int32(hoverColor)))
				digitStyle = digitStyle.Background(tcell.NewHexColor(int32(hoverColor)))
			}
		}

		if col < x+width {
			screen.SetContent(col, y, ' ', nil, style)
			col++
		}
		if col < x+width {
			screen.SetContent(col, y, rune('1'+i), nil, digitStyle)
			col++
		}
		if col < x+width {
			screen.SetContent(col, y, ' ', nil, style)
			col++
		}
		for _, ch := range label {
			if col >= x+width {
				break
			}
			screen.SetContent(col, y, ch, nil, style)
			col++
		}
		if col < x+width {
			screen.SetContent(col, y, ' ', nil, style)
			col++
		}
		if col < x+width && i < len(mb.Labels)-1 {
			screen.SetContent(col, y, '│', nil, barStyle)
			col++
		}
	}
}

func (mb *ModeBar) HandleKey(ev *tcell.EventKey) bool {
	return false
}

func (mb *ModeBar) HandleMouse(ev *tcell.EventMouse) bool {
	mx, my := ev.Position()
	btn := ev.Buttons()

	if my != mb.y || mx < mb.x || mx >= mb.x+mb.w {
		// Mouse outside the bar: clear hover state
		mb.mouseX, mb.mouseY = -1, -1
		mb.mousePressed = false
		return false
	}

	mb.mouseX, mb.mouseY = mx, my

	if btn == tcell.Button1 {
		if !mb.mousePressed {
			mb.mousePressX, mb.mousePressY = mx, my
			mb.mousePressed = true
		}
		return true
	}

	// Click fires on release at the press position
	if btn == tcell.ButtonNone && mb.mousePressed {
		mb.mousePressed = false
		if mx == mb.mousePressX && my == mb.mousePressY {
			if idx := mb.segmentAt(mx); idx >= 0 {
				mb.Active = idx
				if mb.OnSwitch != nil {
					mb.OnSwitch(idx)
				}
			}
		}
		return true
	}

	return true
}

func (mb *ModeBar) IsFocused() bool   { return mb.focused }
func (mb *ModeBar) SetFocused(f bool) { mb.focused = f }
