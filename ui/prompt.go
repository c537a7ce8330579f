package ui

import (
	"tether/config"

	"github.com/gdamore/tcell/v2"
)

// Prompt is a one-line confirm bar. Answers lists the accepted runes,
// lowercase; Escape maps to the last one.
type Prompt struct {
	Message  string
	Answers  string
	OnAnswer func(answer rune)
	Theme    *config.ColorScheme
	focused  bool
}

func NewPrompt(message, answers string) *Prompt {
	return &Prompt{
		Message: message,
		Answers: answers,
		focused: true,
	}
}

func (p *Prompt) Render(screen tcell.Screen, x, y, width, height int) {
	style := tcell.StyleDefault.Background(tcell.ColorOrange).Foreground(tcell.ColorBlack)

	for cx := x; cx < x+width; cx++ {
		screen.SetContent(cx, y, ' ', nil, style)
	}

	col := x
	for _, ch := range " " + p.Message + " " {
		if col < x+width {
			screen.SetContent(col, y, ch, nil, style)
			col++
		}
	}
}

func (p *Prompt) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape {
		if p.OnAnswer != nil && len(p.Answers) > 0 {
			p.OnAnswer(rune(p.Answers[len(p.Answers)-1]))
		}
		return true
	}
	ch := ev.Rune()
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}
	for _, a := range p.Answers {
		if ch == a {
			if p.OnAnswer != nil {
				p.OnAnswer(a)
			}
			return true
		}
	}
	return true
}

func (p *Prompt) HandleMouse(ev *tcell.EventMouse) bool { return true }
func (p *Prompt) IsFocused() bool                       { return p.focused }
func (p *Prompt) SetFocused(f bool)                     { p.focused = f }
