package ui

import (
	"tether/config"

	"github.com/gdamore/tcell/v2"
)

type Help struct {
	Theme   *config.ColorScheme
	OnClose func()
	focused bool
}

func NewHelp(theme *config.ColorScheme) *Help {
	return &Help{Theme: theme, focused: true}
}

func (h *Help) Render(screen tcell.Screen, x, y, width, height int) {
	theme := h.Theme
	if theme == nil {
		theme = config.Themes["slate"]
	}

	overlayStyle := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorBlack)
	bgStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.DialogFg)
	borderStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Border)
	titleStyle := tcell.StyleDefault.Background(theme.StatusBarModeBg).Foreground(tcell.ColorWhite).Bold(true)
	categoryStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Foreground).Bold(true)
	keyStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.AnchorMark)
	descStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.DialogFg)
	footerStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Muted).Italic(true)

	keybindings := []struct {
		category string
		key      string
		desc     string
	}{
		{"MOVEMENT", "", ""},
		{"", "j / k, arrows", "Line down / up"},
		{"", "g / G", "First / last line"},
		{"", "Ctrl+D / Ctrl+U", "Half page down / up"},
		{"", "", ""},
		{"FORWARDING", "", ""},
		{"", "v", "Start / drop line selection"},
		{"", "h / l", "Tighten selection columns"},
		{"", "1", "Separate lines"},
		{"", "2", "Combined lines"},
		{"", "3", "Link only"},
		{"", "4", "Link only, embed"},
		{"", "Enter", "Repeat active mode"},
		{"", "", ""},
		{"PANELS", "", ""},
		{"", "Ctrl+P", "Open another note"},
		{"", "p", "Command palette"},
		{"", ",", "Settings"},
		{"", "?", "This overlay"},
		{"", "Esc", "Close panel / clear selection"},
		{"", "q / Ctrl+Q", "Quit"},
	}

	dialogW := 52
	dialogH := len(keybindings) + 4
	if dialogW > width-4 {
		dialogW = width - 4
	}
	if dialogH > height-2 {
		dialogH = height - 2
	}
	if dialogW < 10 || dialogH < 5 {
		return
	}

	dialogX := x + (width-dialogW)/2
	dialogY := y + (height-dialogH)/2

	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			screen.SetContent(x+dx, y+dy, '░', nil, overlayStyle)
		}
	}

	for dy := 0; dy < dialogH; dy++ {
		for dx := 0; dx < dialogW; dx++ {
			screen.SetContent(dialogX+dx, dialogY+dy, ' ', nil, bgStyle)
		}
	}

	for dx := 0; dx < dialogW; dx++ {
		screen.SetContent(dialogX+dx, dialogY, '─', nil, borderStyle)
		screen.SetContent(dialogX+dx, dialogY+dialogH-1, '─', nil, borderStyle)
	}
	for dy := 0; dy < dialogH; dy++ {
		screen.SetContent(dialogX, dialogY+dy, '│', nil, borderStyle)
		screen.SetContent(dialogX+dialogW-1, dialogY+dy, '│', nil, borderStyle)
	}
	screen.SetContent(dialogX, dialogY, '┌', nil, borderStyle)
	screen.SetContent(dialogX+dialogW-1, dialogY, '┐', nil, borderStyle)
	screen.SetContent(dialogX, dialogY+dialogH-1, '└', nil, borderStyle)
	screen.SetContent(dialogX+dialogW-1, dialogY+dialogH-1, '┘', nil, borderStyle)

	title := " Keys "
	titleX := dialogX + (dialogW-len(title))/2
	for i, ch := range title {
		screen.SetContent(titleX+i, dialogY, ch, nil, titleStyle)
	}

	row := dialogY + 2
	for _, kb := range keybindings {
		if row >= dialogY+dialogH-2 {
			break
		}

		if kb.category != "" {
			col := dialogX + 3
			for _, ch := range kb.category {
				if col < dialogX+dialogW-3 {
					screen.SetContent(col, row, ch, nil, categoryStyle)
					col++
				}
			}
			row++
			continue
		}

		if kb.key == "" {
			row++
			continue
		}

		col := dialogX + 5
		for _, ch := range kb.key {
			if col < dialogX+dialogW-3 {
				screen.SetContent(col, row, ch, nil, keyStyle)
				col++
			}
		}

		col = dialogX + 24
		for _, ch := range kb.desc {
			if col < dialogX+dialogW-3 {
				screen.SetContent(col, row, ch, nil, descStyle)
				col++
			}
		}

		row++
	}

	footer := "Press Esc or ? to close"
	footerY := dialogY + dialogH - 1
	footerX := dialogX + (dialogW-len(footer))/2
	for i, ch := range footer {
		screen.SetContent(footerX+i, footerY, ch, nil, footerStyle)
	}
}

func (h *Help) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Rune() == '?' {
		if h.OnClose != nil {
			h.OnClose()
		}
	}
	return true
}

func (h *Help) HandleMouse(ev *tcell.EventMouse) bool { return true }
func (h *Help) IsFocused() bool                       { return h.focused }
func (h *Help) SetFocused(f bool)                     { h.focused = f }
