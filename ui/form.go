package ui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tether/config"
	"tether/forward"

	"github.com/gdamore/tcell/v2"
)

// Form is the settings panel. Rows come from config.Fields; every accepted
// change goes through OnApply, which persists it and refreshes the values.
type Form struct {
	Fields []config.Field
	Values []string
	Index  int

	editing bool
	input   string
	cursor  int

	scroll  int
	maxVis  int
	focused bool

	dropdown *Dropdown

	// Layout from the last render, for anchoring the dropdown.
	lastX, lastY, lastW int

	Theme *config.ColorScheme

	OnApply func(field, value string)
	OnClose func()
}

func NewForm(cfg *config.Config, theme *config.ColorScheme) *Form {
	f := &Form{
		Fields:  config.Fields(),
		Theme:   theme,
		focused: true,
	}
	f.Refresh(cfg)
	return f
}

// Refresh re-reads every displayed value from the record. Called after each
// apply so the default-on-empty policy shows its result immediately.
func (f *Form) Refresh(cfg *config.Config) {
	f.Values = f.Values[:0]
	for _, fd := range f.Fields {
		f.Values = append(f.Values, cfg.ValueOf(fd.Name))
	}
}

// fieldProblem validates a candidate value for inline display. Only fields
// with a meaningful failure mode are checked.
func fieldProblem(name, value string) string {
	switch name {
	case "line_format_from":
		if _, err := regexp.Compile(value); err != nil {
			return compileProblem(err)
		}
	case "copied_link_text":
		if !strings.Contains(value, "{{LINK") {
			return "missing {{LINK}} placeholder"
		}
	case "anchor_length":
		n, err := strconv.Atoi(value)
		if err != nil {
			return "not a number"
		}
		if n < forward.MinIDLength || n > forward.MaxIDLength {
			return fmt.Sprintf("must be between %d and %d", forward.MinIDLength, forward.MaxIDLength)
		}
	case "notice_seconds":
		if n, err := strconv.Atoi(value); err != nil || n < 1 {
			return "must be a positive number"
		}
	}
	return ""
}

// compileProblem trims the "error parsing regexp: " prefix so the message
// fits the footer.
func compileProblem(err error) string {
	return strings.TrimPrefix(err.Error(), "error parsing regexp: ")
}

// selectedProblem reports the validity of the selected row, using the live
// input while editing.
func (f *Form) selectedProblem() string {
	if f.Index < 0 || f.Index >= len(f.Fields) {
		return ""
	}
	value := f.Values[f.Index]
	if f.editing {
		value = f.input
	}
	return fieldProblem(f.Fields[f.Index].Name, value)
}

func (f *Form) Render(screen tcell.Screen, x, y, width, height int) {
	theme := f.Theme
	if theme == nil {
		theme = config.Themes["slate"]
	}

	titleStyle := tcell.StyleDefault.Background(theme.StatusBarModeBg).Foreground(tcell.ColorWhite).Bold(true)
	borderStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Border)
	bgStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.DialogFg)
	selectedStyle := tcell.StyleDefault.Background(theme.ListSelectionBg).Foreground(theme.Foreground).Bold(true)
	labelStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Muted)
	valueStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Foreground)
	inputStyle := tcell.StyleDefault.Background(theme.DialogInputBg).Foreground(theme.Foreground)
	footerStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Muted)
	problemStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(tcell.ColorRed)

	dialogW := width / 3
	if dialogW < 38 {
		dialogW = 38
	}
	if dialogW > 56 {
		dialogW = 56
	}
	if dialogW > width-1 {
		dialogW = width - 1
	}
	if dialogW < 3 {
		return
	}
	dialogY := y
	dialogH := height
	if height > 2 {
		// Right sidebar sits between mode bar and status bar.
		dialogY = y + 1
		dialogH = height - 2
	}
	if dialogH < 3 {
		return
	}
	dialogX := x + width - dialogW

	f.lastX, f.lastY, f.lastW = dialogX, dialogY, dialogW

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

	title := " Settings "
	titleX := dialogX + (dialogW-len(title))/2
	for i, ch := range title {
		screen.SetContent(titleX+i, dialogY, ch, nil, titleStyle)
	}

	f.maxVis = dialogH - 4
	if f.maxVis < 1 {
		f.maxVis = 1
	}
	if f.Index < f.scroll {
		f.scroll = f.Index
	}
	if f.Index >= f.scroll+f.maxVis {
		f.scroll = f.Index - f.maxVis + 1
	}
	if f.scroll < 0 {
		f.scroll = 0
	}

	trimToWidth := func(s string, max int) string {
		if max <= 0 {
			return ""
		}
		r := []rune(s)
		if len(r) <= max {
			return s
		}
		if max <= 3 {
			return string(r[:max])
		}
		return string(r[:max-3]) + "..."
	}

	row := dialogY + 2
	for i := f.scroll; i < len(f.Fields) && i < f.scroll+f.maxVis; i++ {
		fd := f.Fields[i]
		value := f.Values[i]
		selected := i == f.Index
		editingRow := selected && f.editing

		style := bgStyle
		if selected {
			style = selectedStyle
		}
		for cx := dialogX + 1; cx < dialogX+dialogW-1; cx++ {
			screen.SetContent(cx, row, ' ', nil, style)
		}
		if selected {
			screen.SetContent(dialogX+2, row, '>', nil, selectedStyle)
		}

		col := dialogX + 4
		if editingRow {
			// Label, then the input area with a cursor
			lStyle := selectedStyle
			label := trimToWidth(fd.Label, dialogW/2-4)
			for _, ch := range label {
				screen.SetContent(col, row, ch, nil, lStyle)
				col++
			}
			col++
			inputW := dialogX + dialogW - 2 - col
			for dx := 0; dx < inputW; dx++ {
				screen.SetContent(col+dx, row, ' ', nil, inputStyle)
			}
			runes := []rune(f.input)
			start := 0
			if f.cursor >= inputW {
				start = f.cursor - inputW + 1
			}
			for vi := 0; vi < inputW && start+vi < len(runes); vi++ {
				ch := runes[start+vi]
				st := inputStyle
				if start+vi == f.cursor {
					st = st.Reverse(true)
				}
				screen.SetContent(col+vi, row, ch, nil, st)
			}
			if f.cursor >= len(runes) && f.cursor-start < inputW {
				screen.SetContent(col+f.cursor-start, row, ' ', nil, inputStyle.Reverse(true))
			}
		} else {
			optStyle := labelStyle
			valStyle := valueStyle
			if selected {
				optStyle = selectedStyle
				valStyle = selectedStyle
			}

			display := value
			if fd.Kind == config.FieldText && display == "" {
				display = `""`
			}
			marker := ""
			if fieldProblem(fd.Name, value) != "" {
				marker = "!"
			}

			valueX := dialogX + dialogW - len([]rune(display)) - len(marker) - 2
			if valueX <= col {
				valueX = col + 1
				display = trimToWidth(display, dialogX+dialogW-2-valueX-len(marker))
			}
			labelMax := valueX - col - 1
			label := trimToWidth(fd.Label, labelMax)
			for _, ch := range label {
				if col >= valueX {
					break
				}
				screen.SetContent(col, row, ch, nil, optStyle)
				col++
			}
			vc := valueX
			for _, ch := range display {
				if vc >= dialogX+dialogW-2 {
					break
				}
				screen.SetContent(vc, row, ch, nil, valStyle)
				vc++
			}
			if marker != "" && vc < dialogX+dialogW-1 {
				mStyle := problemStyle
				if selected {
					mStyle = selectedStyle.Foreground(tcell.ColorRed)
				}
				screen.SetContent(vc, row, '!', nil, mStyle)
			}
		}
		row++
	}

	// Footer: inline validity for the selected row, else key hints
	footerY := dialogY + dialogH - 1
	if problem := f.selectedProblem(); problem != "" {
		text := trimToWidth(" "+problem+" ", dialogW-2)
		for i, ch := range text {
			screen.SetContent(dialogX+1+i, footerY, ch, nil, problemStyle)
		}
	} else {
		hint := " Enter edit | < > change | Esc close "
		if f.editing {
			hint = " Enter apply | Esc cancel | empty = default "
		}
		hintX := dialogX + (dialogW-len(hint))/2
		if hintX < dialogX+1 {
			hintX = dialogX + 1
		}
		for i, ch := range hint {
			if hintX+i >= dialogX+dialogW-1 {
				break
			}
			screen.SetContent(hintX+i, footerY, ch, nil, footerStyle)
		}
	}

	if f.dropdown != nil {
		f.dropdown.Render(screen, x, y, width, height)
	}
}

func (f *Form) HandleKey(ev *tcell.EventKey) bool {
	if f.dropdown != nil {
		return f.dropdown.HandleKey(ev)
	}
	if f.editing {
		return f.handleEditKey(ev)
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		if f.OnClose != nil {
			f.OnClose()
		}
		return true
	case tcell.KeyUp:
		if f.Index > 0 {
			f.Index--
		}
		return true
	case tcell.KeyDown:
		if f.Index < len(f.Fields)-1 {
			f.Index++
		}
		return true
	case tcell.KeyEnter:
		return f.activateRow()
	case tcell.KeyLeft:
		return f.cycleRow(-1)
	case tcell.KeyRight:
		return f.cycleRow(1)
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			if f.field().Kind == config.FieldToggle {
				f.flipToggle()
				return true
			}
		}
	}
	return true // absorb all keys while open
}

func (f *Form) field() config.Field {
	if f.Index < 0 || f.Index >= len(f.Fields) {
		return config.Field{}
	}
	return f.Fields[f.Index]
}

func (f *Form) apply(value string) {
	if f.OnApply != nil {
		f.OnApply(f.field().Name, value)
	}
}

func (f *Form) activateRow() bool {
	fd := f.field()
	switch fd.Kind {
	case config.FieldToggle:
		f.flipToggle()
	case config.FieldChoice:
		f.openDropdown(fd)
	default:
		f.editing = true
		f.input = f.Values[f.Index]
		f.cursor = len([]rune(f.input))
	}
	return true
}

// cycleRow handles left/right on non-text rows: toggles flip, choices
// cycle, numbers step.
func (f *Form) cycleRow(delta int) bool {
	fd := f.field()
	switch fd.Kind {
	case config.FieldToggle:
		f.flipToggle()
	case config.FieldChoice:
		current := f.Values[f.Index]
		idx := 0
		for i, c := range fd.Choices {
			if c == current {
				idx = i
				break
			}
		}
		idx = (idx + delta + len(fd.Choices)) % len(fd.Choices)
		f.apply(fd.Choices[idx])
	case config.FieldInt:
		n, err := strconv.Atoi(f.Values[f.Index])
		if err != nil {
			return true
		}
		f.apply(strconv.Itoa(n + delta))
	}
	return true
}

func (f *Form) flipToggle() {
	if f.Values[f.Index] == "true" {
		f.apply("false")
	} else {
		f.apply("true")
	}
}

func (f *Form) openDropdown(fd config.Field) {
	rowY := f.lastY + 2 + (f.Index - f.scroll)
	d := NewDropdown(fd.Choices, f.lastX+4, rowY, f.Theme)
	for i, c := range fd.Choices {
		if c == f.Values[f.Index] {
			d.Selected = i
			break
		}
	}
	d.OnSelect = func(choice string) {
		f.apply(choice)
		f.dropdown = nil
	}
	d.OnClose = func() { f.dropdown = nil }
	f.dropdown = d
}

func (f *Form) handleEditKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		f.editing = false
		return true
	case tcell.KeyEnter:
		f.editing = false
		f.apply(f.input)
		return true
	case tcell.KeyCtrlU:
		f.input = ""
		f.cursor = 0
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if f.cursor > 0 {
			runes := []rune(f.input)
			f.input = string(runes[:f.cursor-1]) + string(runes[f.cursor:])
			f.cursor--
		}
		return true
	case tcell.KeyDelete:
		runes := []rune(f.input)
		if f.cursor < len(runes) {
			f.input = string(runes[:f.cursor]) + string(runes[f.cursor+1:])
		}
		return true
	case tcell.KeyLeft:
		if f.cursor > 0 {
			f.cursor--
		}
		return true
	case tcell.KeyRight:
		if f.cursor < len([]rune(f.input)) {
			f.cursor++
		}
		return true
	case tcell.KeyHome:
		f.cursor = 0
		return true
	case tcell.KeyEnd:
		f.cursor = len([]rune(f.input))
		return true
	case tcell.KeyRune:
		runes := []rune(f.input)
		f.input = string(runes[:f.cursor]) + string(ev.Rune()) + string(runes[f.cursor:])
		f.cursor++
		return true
	}
	return true
}

func (f *Form) HandleMouse(ev *tcell.EventMouse) bool { return true }
func (f *Form) IsFocused() bool                       { return f.focused }
func (f *Form) SetFocused(fo bool)                    { f.focused = fo }
