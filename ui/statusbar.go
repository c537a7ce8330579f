package ui

import (
	"fmt"

	"tether/config"

	"github.com/gdamore/tcell/v2"
)

type StatusBar struct {
	Mode     string // active forward mode label
	Note     string // vault-relative note name
	Line     int
	Col      int
	SelLines int // lines in the active selection (0 = collapsed cursor)
	Anchors  int // lines already carrying an anchor
	Dirty    bool
	Message  string // transient notice, shown instead of file info
	IsError  bool
	Theme    *config.ColorScheme
}

func NewStatusBar() *StatusBar {
	return &StatusBar{Mode: "COMBINE"}
}

func (s *StatusBar) Render(screen tcell.Screen, x, y, width, height int) {
	theme := s.Theme
	if theme == nil {
		theme = config.Themes["slate"]
	}

	style := tcell.StyleDefault.Background(theme.StatusBarBg).Foreground(theme.StatusBarFg)
	modeStyle := tcell.StyleDefault.Background(theme.StatusBarModeBg).Foreground(tcell.ColorWhite).Bold(true)

	// Clear the line
	for cx := x; cx < x+width; cx++ {
		screen.SetContent(cx, y, ' ', nil, style)
	}

	col := x

	// Mode
	mode := " " + s.Mode + " "
	for _, ch := range mode {
		if col < x+width {
			screen.SetContent(col, y, ch, nil, modeStyle)
			col++
		}
	}

	// Separator
	if col < x+width {
		screen.SetContent(col, y, ' ', nil, style)
		col++
	}

	// A transient notice replaces the file info until it expires
	if s.Message != "" {
		msgStyle := style
		if s.IsError {
			msgStyle = style.Foreground(tcell.ColorRed).Bold(true)
		}
		for _, ch := range s.Message {
			if col < x+width {
				screen.SetContent(col, y, ch, nil, msgStyle)
				col++
			}
		}
		return
	}

	// Note name
	note := s.Note
	if note == "" {
		note = "untitled"
	}
	if s.Dirty {
		note = "*" + note
	}
	for _, ch := range note {
		if col < x+width {
			screen.SetContent(col, y, ch, nil, style)
			col++
		}
	}

	// Right-aligned info
	var right string
	anchorPart := ""
	if s.Anchors == 1 {
		anchorPart = "1 anchor │ "
	} else if s.Anchors > 1 {
		anchorPart = fmt.Sprintf("%d anchors │ ", s.Anchors)
	}
	if s.SelLines > 0 {
		right = fmt.Sprintf("%sSel: %d lines │ Ln %d, Col %d ", anchorPart, s.SelLines, s.Line+1, s.Col+1)
	} else {
		right = fmt.Sprintf("%sLn %d, Col %d ", anchorPart, s.Line+1, s.Col+1)
	}
	rightRunes := []rune(right)
	rightStart := x + width - len(rightRunes)
	if rightStart > col+2 {
		anchorRuneLen := len([]rune(anchorPart))
		for i, ch := range rightRunes {
			st := style
			if i < anchorRuneLen-2 {
				st = style.Foreground(theme.AnchorMark)
			}
			screen.SetContent(rightStart+i, y, ch, nil, st)
		}
	}
}

func (s *StatusBar) HandleKey(ev *tcell.EventKey) bool     { return false }
func (s *StatusBar) HandleMouse(ev *tcell.EventMouse) bool { return false }
func (s *StatusBar) IsFocused() bool                       { return false }
func (s *StatusBar) SetFocused(f bool)                     {}
