package ui

import (
	"fmt"
	"strings"
	"unicode"

	"tether/config"

	"github.com/gdamore/tcell/v2"
)

type Command struct {
	Name     string
	Shortcut string
	Action   func()
}

type scoredCommand struct {
	Command
	Score     int
	MatchIdxs []int
}

type Palette struct {
	Input     string
	CursorPos int
	Commands  []Command
	Filtered  []scoredCommand
	Selected  int
	OnClose   func()
	focused   bool
	Theme     *config.ColorScheme
	scrollOff int
}

func NewPalette(commands []Command, theme *config.ColorScheme) *Palette {
	p := &Palette{
		Commands: commands,
		focused:  true,
		Theme:    theme,
	}
	p.updateFilter()
	return p
}

func (p *Palette) updateFilter() {
	if p.Input == "" {
		p.Filtered = make([]scoredCommand, 0, len(p.Commands))
		for _, c := range p.Commands {
			p.Filtered = append(p.Filtered, scoredCommand{Command: c})
		}
		p.Selected = 0
		p.scrollOff = 0
		return
	}

	p.Filtered = p.Filtered[:0]
	query := strings.ToLower(p.Input)

	for _, c := range p.Commands {
		score, idxs := commandFuzzyScore(c.Name, query)
		if score > 0 {
			p.Filtered = append(p.Filtered, scoredCommand{
				Command:   c,
				Score:     score,
				MatchIdxs: idxs,
			})
		}
	}

	// Sort by score descending
	for i := 1; i < len(p.Filtered); i++ {
		for j := i; j > 0 && p.Filtered[j].Score > p.Filtered[j-1].Score; j-- {
			p.Filtered[j], p.Filtered[j-1] = p.Filtered[j-1], p.Filtered[j]
		}
	}

	p.Selected = 0
	p.scrollOff = 0
}

func commandFuzzyScore(name, query string) (int, []int) {
	lowerName := strings.ToLower(name)
	queryRunes := []rune(query)
	nameRunes := []rune(lowerName)
	origRunes := []rune(name)

	if len(queryRunes) == 0 {
		return 0, nil
	}
	if len(queryRunes) > len(nameRunes) {
		return 0, nil
	}

	// Match all query chars in order
	idxs := make([]int, 0, len(queryRunes))
	pi := 0
	for _, qr := range queryRunes {
		found := false
		for pi < len(nameRunes) {
			if nameRunes[pi] == qr {
				idxs = append(idxs, pi)
				pi++
				found = true
				break
			}
			pi++
		}
		if !found {
			return 0, nil
		}
	}

	score := 10

	// Consecutive match bonus
	for i := 1; i < len(idxs); i++ {
		if idxs[i] == idxs[i-1]+1 {
			score += 5
		}
	}

	// Word boundary bonus
	for _, idx := range idxs {
		if idx == 0 {
			score += 10
		} else {
			prev := origRunes[idx-1]
			if prev == ' ' || prev == '_' || prev == '-' {
				score += 8
			}
			if unicode.IsLower(rune(origRunes[idx-1])) && unicode.IsUpper(rune(origRunes[idx])) {
				score += 6
			}
		}
	}

	// Prefix match bonus
	if strings.HasPrefix(lowerName, query) {
		score += 20
	}

	return score, idxs
}

func (p *Palette) Render(screen tcell.Screen, x, y, width, height int) {
	theme := p.Theme
	if theme == nil {
		theme = config.Themes["slate"]
	}

	maxVisible := 15
	if maxVisible > height-6 {
		maxVisible = height - 6
	}
	if maxVisible < 3 {
		maxVisible = 3
	}

	dialogW := width * 60 / 100
	if dialogW < 40 {
		dialogW = 40
	}
	if dialogW > width-4 {
		dialogW = width - 4
	}

	listCount := len(p.Filtered)
	if listCount > maxVisible {
		listCount = maxVisible
	}
	dialogH := listCount + 4
	if dialogH < 5 {
		dialogH = 5
	}

	dialogX := x + (width-dialogW)/2
	dialogY := y + 2

	borderStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Border)
	bgStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.DialogFg)
	titleStyle := tcell.StyleDefault.Background(theme.StatusBarModeBg).Foreground(tcell.ColorWhite).Bold(true)
	inputStyle := tcell.StyleDefault.Background(theme.DialogInputBg).Foreground(theme.Foreground)
	itemStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.DialogFg)
	selectedStyle := tcell.StyleDefault.Background(theme.ListSelectionBg).Foreground(theme.Foreground)
	matchCharStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.AnchorMark).Bold(true)
	matchCharSelStyle := tcell.StyleDefault.Background(theme.ListSelectionBg).Foreground(theme.AnchorMark).Bold(true)
	countStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Muted)
	shortcutStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Muted)
	shortcutSelStyle := tcell.StyleDefault.Background(theme.ListSelectionBg).Foreground(theme.Muted)

	// Background
	for dy := 0; dy < dialogH; dy++ {
		for dx := 0; dx < dialogW; dx++ {
			screen.SetContent(dialogX+dx, dialogY+dy, ' ', nil, bgStyle)
		}
	}

	// Border
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

	title := " Commands "
	titleX := dialogX + (dialogW-len(title))/2
	for i, ch := range title {
		screen.SetContent(titleX+i, dialogY, ch, nil, titleStyle)
	}

	// Input line with "> " prefix
	inputY := dialogY + 1
	inputX := dialogX + 2
	inputW := dialogW - 4

	for dx := 0; dx < inputW; dx++ {
		screen.SetContent(inputX+dx, inputY, ' ', nil, inputStyle)
	}

	screen.SetContent(inputX, inputY, '>', nil, inputStyle)
	screen.SetContent(inputX+1, inputY, ' ', nil, inputStyle)

	inputRunes := []rune(p.Input)
	for i, ch := range inputRunes {
		if i+2 >= inputW {
			break
		}
		screen.SetContent(inputX+2+i, inputY, ch, nil, inputStyle)
	}

	cursorX := inputX + 2 + p.CursorPos
	if cursorX < inputX+inputW {
		if p.CursorPos < len(inputRunes) {
			screen.SetContent(cursorX, inputY, inputRunes[p.CursorPos], nil, inputStyle.Reverse(true))
		} else {
			screen.SetContent(cursorX, inputY, ' ', nil, inputStyle.Reverse(true))
		}
	}

	// Separator line
	sepY := dialogY + 2
	for dx := 1; dx < dialogW-1; dx++ {
		screen.SetContent(dialogX+dx, sepY, '─', nil, borderStyle)
	}
	screen.SetContent(dialogX, sepY, '├', nil, borderStyle)
	screen.SetContent(dialogX+dialogW-1, sepY, '┤', nil, borderStyle)

	countStr := fmt.Sprintf(" %d commands ", len(p.Filtered))
	countX := dialogX + dialogW - 1 - len(countStr)
	if countX > dialogX+1 {
		for i, ch := range countStr {
			screen.SetContent(countX+i, sepY, ch, nil, countStyle)
		}
	}

	// Ensure selected is visible
	if p.Selected < p.scrollOff {
		p.scrollOff = p.Selected
	}
	if p.Selected >= p.scrollOff+maxVisible {
		p.scrollOff = p.Selected - maxVisible + 1
	}

	listY := sepY + 1
	for i := 0; i < maxVisible && i+p.scrollOff < len(p.Filtered); i++ {
		idx := i + p.scrollOff
		entry := p.Filtered[idx]
		isSelected := idx == p.Selected

		baseStyle := itemStyle
		highlightStyle := matchCharStyle
		scStyle := shortcutStyle
		if isSelected {
			baseStyle = selectedStyle
			highlightStyle = matchCharSelStyle
			scStyle = shortcutSelStyle
		}

		rowY := listY + i
		for dx := 1; dx < dialogW-1; dx++ {
			screen.SetContent(dialogX+dx, rowY, ' ', nil, baseStyle)
		}

		matchSet := make(map[int]bool, len(entry.MatchIdxs))
		for _, mi := range entry.MatchIdxs {
			matchSet[mi] = true
		}

		nameRunes := []rune(entry.Name)
		col := dialogX + 2
		maxCol := dialogX + dialogW - 2
		shortcutLen := 0
		if entry.Shortcut != "" {
			shortcutLen = len([]rune(entry.Shortcut)) + 2
		}
		nameMaxCol := maxCol - shortcutLen
		for ci, ch := range nameRunes {
			if col >= nameMaxCol {
				break
			}
			style := baseStyle
			if matchSet[ci] {
				style = highlightStyle
			}
			screen.SetContent(col, rowY, ch, nil, style)
			col++
		}

		if entry.Shortcut != "" {
			scRunes := []rune(entry.Shortcut)
			scX := maxCol - len(scRunes)
			if scX > col {
				for i, ch := range scRunes {
					screen.SetContent(scX+i, rowY, ch, nil, scStyle)
				}
			}
		}
	}
}

func (p *Palette) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		if p.OnClose != nil {
			p.OnClose()
		}
		return true
	case tcell.KeyEnter:
		if p.Selected >= 0 && p.Selected < len(p.Filtered) {
			action := p.Filtered[p.Selected].Action
			if p.OnClose != nil {
				p.OnClose()
			}
			if action != nil {
				action()
			}
		}
		return true
	case tcell.KeyUp:
		if p.Selected > 0 {
			p.Selected--
		}
		return true
	case tcell.KeyDown:
		if p.Selected < len(p.Filtered)-1 {
			p.Selected++
		}
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.CursorPos > 0 {
			runes := []rune(p.Input)
			p.Input = string(runes[:p.CursorPos-1]) + string(runes[p.CursorPos:])
			p.CursorPos--
			p.updateFilter()
		}
		return true
	case tcell.KeyDelete:
		runes := []rune(p.Input)
		if p.CursorPos < len(runes) {
			p.Input = string(runes[:p.CursorPos]) + string(runes[p.CursorPos+1:])
			p.updateFilter()
		}
		return true
	case tcell.KeyLeft:
		if p.CursorPos > 0 {
			p.CursorPos--
		}
		return true
	case tcell.KeyRight:
		if p.CursorPos < len([]rune(p.Input)) {
			p.CursorPos++
		}
		return true
	case tcell.KeyHome:
		p.CursorPos = 0
		return true
	case tcell.KeyEnd:
		p.CursorPos = len([]rune(p.Input))
		return true
	case tcell.KeyRune:
		ch := ev.Rune()
		runes := []rune(p.Input)
		p.Input = string(runes[:p.CursorPos]) + string(ch) + string(runes[p.CursorPos:])
		p.CursorPos++
		p.updateFilter()
		return true
	}
	return true // absorb all keys while open
}

func (p *Palette) HandleMouse(ev *tcell.EventMouse) bool {
	return true // absorb mouse events
}

func (p *Palette) IsFocused() bool   { return p.focused }
func (p *Palette) SetFocused(f bool) { p.focused = f }
