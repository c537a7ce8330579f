package ui

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode"

	"tether/config"

	"github.com/gdamore/tcell/v2"
)

// noteMatch is one quick-open candidate. Links address notes by bare name
// and fall back to the path only to disambiguate, so the name and folder
// are kept apart and scored and drawn separately.
type noteMatch struct {
	Rel        string // vault-relative path, what OnSelect receives
	Name       string // note name without its extension
	Folder     string // containing folder, "" at the vault root
	Score      int
	NameHits   []int // matched rune indices in Name
	FolderHits []int // matched rune indices in Folder
}

// splitNote breaks a vault-relative path into the parts the dialog works on.
func splitNote(rel string) noteMatch {
	base := path.Base(rel)
	m := noteMatch{Rel: rel, Name: strings.TrimSuffix(base, path.Ext(base))}
	if dir := path.Dir(rel); dir != "." {
		m.Folder = dir
	}
	return m
}

// QuickOpen is the Ctrl+P dialog: type a few characters of a note name to
// open the note.
type QuickOpen struct {
	Input     string
	CursorPos int
	Matches   []noteMatch
	Selected  int
	OnSelect  func(rel string)
	OnClose   func()
	Theme     *config.ColorScheme

	all       []noteMatch
	focused   bool
	scrollOff int
}

func NewQuickOpen(notes []string, theme *config.ColorScheme) *QuickOpen {
	qo := &QuickOpen{
		all:     make([]noteMatch, 0, len(notes)),
		focused: true,
		Theme:   theme,
	}
	for _, rel := range notes {
		qo.all = append(qo.all, splitNote(rel))
	}
	qo.updateFilter()
	return qo
}

func (qo *QuickOpen) updateFilter() {
	qo.Matches = qo.Matches[:0]
	query := strings.ToLower(qo.Input)
	for _, m := range qo.all {
		if query != "" && !matchNote(query, &m) {
			continue
		}
		qo.Matches = append(qo.Matches, m)
	}
	if query != "" {
		sort.SliceStable(qo.Matches, func(i, j int) bool {
			return qo.Matches[i].Score > qo.Matches[j].Score
		})
	}
	qo.Selected = 0
	qo.scrollOff = 0
}

// nameMatchBase puts every name-only match ahead of every folder-assisted
// one for any query short enough to type.
const nameMatchBase = 1000

// matchNote scores m against the lowercased query, filling Score and the
// hit indices. The bare name is tried first; the folder joins the match
// only when the name alone cannot absorb the query.
func matchNote(query string, m *noteMatch) bool {
	if s, hits, ok := subseqScore(query, m.Name); ok {
		m.Score = nameMatchBase + s - depth(m.Folder)
		m.NameHits = hits
		m.FolderHits = nil
		return true
	}
	if m.Folder == "" {
		return false
	}
	s, hits, ok := subseqScore(query, m.Folder+"/"+m.Name)
	if !ok {
		return false
	}
	m.Score = s - depth(m.Folder)
	m.NameHits = nil
	m.FolderHits = nil
	nameStart := len([]rune(m.Folder)) + 1
	for _, h := range hits {
		if h >= nameStart {
			m.NameHits = append(m.NameHits, h-nameStart)
		} else if h < nameStart-1 { // the joining slash belongs to neither part
			m.FolderHits = append(m.FolderHits, h)
		}
	}
	return true
}

// depth counts folder segments; shallower notes win ties.
func depth(folder string) int {
	if folder == "" {
		return 0
	}
	return strings.Count(folder, "/") + 1
}

// subseqScore greedily matches query as a subsequence of text. Contiguous
// runs and word-start hits score higher, and a dense match beats the same
// characters scattered across a longer span.
func subseqScore(query, text string) (int, []int, bool) {
	q := []rune(query)
	runes := []rune(text)
	if len(q) == 0 || len(q) > len(runes) {
		return 0, nil, false
	}
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	hits := make([]int, 0, len(q))
	score := 0
	ti := 0
	for _, qr := range q {
		found := false
		for ; ti < len(lower); ti++ {
			if lower[ti] != qr {
				continue
			}
			score++
			if n := len(hits); n > 0 && hits[n-1] == ti-1 {
				score += 4
			}
			if wordStart(runes, ti) {
				score += 6
			}
			hits = append(hits, ti)
			ti++
			found = true
			break
		}
		if !found {
			return 0, nil, false
		}
	}

	if hits[0] == 0 {
		score += 8
	}
	span := hits[len(hits)-1] - hits[0] + 1
	score += len(q) * 4 / span
	return score, hits, true
}

// wordStart reports whether runes[i] begins a word: the first rune, a rune
// after a separator, or an upper-case rune after a lower-case one.
func wordStart(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	switch runes[i-1] {
	case ' ', '-', '_', '.', '/':
		return true
	}
	return unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1])
}

func (qo *QuickOpen) Render(screen tcell.Screen, x, y, width, height int) {
	theme := qo.Theme
	if theme == nil {
		theme = config.Themes["slate"]
	}

	dialogW := width * 3 / 5
	if dialogW > 76 {
		dialogW = 76
	}
	if dialogW < 40 {
		dialogW = 40
	}
	if dialogW > width-2 {
		dialogW = width - 2
	}

	rows := len(qo.Matches)
	maxRows := height - 7
	if maxRows > 14 {
		maxRows = 14
	}
	if maxRows < 3 {
		maxRows = 3
	}
	if rows > maxRows {
		rows = maxRows
	}
	if rows < 1 {
		rows = 1
	}

	// Anchored near the top so rows stay put while the query is typed.
	dialogH := rows + 4
	dialogX := x + (width-dialogW)/2
	dialogY := y + 2

	drawFrame(screen, dialogX, dialogY, dialogW, dialogH, " Open Note ", theme)

	inputX, inputY := dialogX+2, dialogY+1
	inputW := dialogW - 4
	inputStyle := tcell.StyleDefault.Background(theme.DialogInputBg).Foreground(theme.Foreground)
	for dx := 0; dx < inputW; dx++ {
		screen.SetContent(inputX+dx, inputY, ' ', nil, inputStyle)
	}
	inputRunes := []rune(qo.Input)
	for i, ch := range inputRunes {
		if i >= inputW {
			break
		}
		screen.SetContent(inputX+i, inputY, ch, nil, inputStyle)
	}
	if qo.CursorPos < inputW {
		cur := ' '
		if qo.CursorPos < len(inputRunes) {
			cur = inputRunes[qo.CursorPos]
		}
		screen.SetContent(inputX+qo.CursorPos, inputY, cur, nil, inputStyle.Reverse(true))
	}

	borderStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Border)
	sepY := dialogY + 2
	for dx := 1; dx < dialogW-1; dx++ {
		screen.SetContent(dialogX+dx, sepY, '─', nil, borderStyle)
	}
	screen.SetContent(dialogX, sepY, '├', nil, borderStyle)
	screen.SetContent(dialogX+dialogW-1, sepY, '┤', nil, borderStyle)

	count := fmt.Sprintf(" %d / %d ", len(qo.Matches), len(qo.all))
	countStyle := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Muted)
	cx := dialogX + dialogW - 1 - len(count)
	if cx > dialogX+1 {
		for i, ch := range count {
			screen.SetContent(cx+i, sepY, ch, nil, countStyle)
		}
	}

	if qo.Selected < qo.scrollOff {
		qo.scrollOff = qo.Selected
	}
	if qo.Selected >= qo.scrollOff+rows {
		qo.scrollOff = qo.Selected - rows + 1
	}

	listY := sepY + 1
	for row := 0; row < rows; row++ {
		idx := row + qo.scrollOff
		if idx >= len(qo.Matches) {
			break
		}
		qo.drawMatch(screen, &qo.Matches[idx], dialogX, listY+row, dialogW, idx == qo.Selected, theme)
	}
}

// drawMatch draws one result row: the note name, then the folder dimmed
// after it, with matched runes highlighted in both parts.
func (qo *QuickOpen) drawMatch(screen tcell.Screen, m *noteMatch, x, y, w int, selected bool, theme *config.ColorScheme) {
	bg := theme.DialogBg
	fg := theme.DialogFg
	if selected {
		bg = theme.ListSelectionBg
		fg = theme.Foreground
	}
	nameStyle := tcell.StyleDefault.Background(bg).Foreground(fg)
	folderStyle := tcell.StyleDefault.Background(bg).Foreground(theme.Muted)
	hitStyle := tcell.StyleDefault.Background(bg).Foreground(theme.AnchorMark).Bold(true)

	for dx := 1; dx < w-1; dx++ {
		screen.SetContent(x+dx, y, ' ', nil, nameStyle)
	}

	col := x + 2
	maxCol := x + w - 2
	col = drawHits(screen, col, maxCol, y, m.Name, m.NameHits, nameStyle, hitStyle)
	if m.Folder != "" && col+3 < maxCol {
		col += 2
		drawHits(screen, col, maxCol, y, m.Folder+"/", m.FolderHits, folderStyle, hitStyle)
	}
}

// drawHits writes text at col, switching to hit style on the hit indices,
// and returns the column after the last rune drawn.
func drawHits(screen tcell.Screen, col, maxCol, y int, text string, hits []int, base, hit tcell.Style) int {
	set := make(map[int]bool, len(hits))
	for _, h := range hits {
		set[h] = true
	}
	for i, ch := range []rune(text) {
		if col >= maxCol {
			break
		}
		st := base
		if set[i] {
			st = hit
		}
		screen.SetContent(col, y, ch, nil, st)
		col++
	}
	return col
}

// drawFrame paints the dialog backdrop: filled background, single-line
// border, and a centered title on the top edge.
func drawFrame(screen tcell.Screen, x, y, w, h int, title string, theme *config.ColorScheme) {
	bg := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.DialogFg)
	border := tcell.StyleDefault.Background(theme.DialogBg).Foreground(theme.Border)
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			screen.SetContent(x+dx, y+dy, ' ', nil, bg)
		}
	}
	for dx := 1; dx < w-1; dx++ {
		screen.SetContent(x+dx, y, '─', nil, border)
		screen.SetContent(x+dx, y+h-1, '─', nil, border)
	}
	for dy := 1; dy < h-1; dy++ {
		screen.SetContent(x, y+dy, '│', nil, border)
		screen.SetContent(x+w-1, y+dy, '│', nil, border)
	}
	screen.SetContent(x, y, '┌', nil, border)
	screen.SetContent(x+w-1, y, '┐', nil, border)
	screen.SetContent(x, y+h-1, '└', nil, border)
	screen.SetContent(x+w-1, y+h-1, '┘', nil, border)

	titleStyle := tcell.StyleDefault.Background(theme.StatusBarModeBg).Foreground(tcell.ColorWhite).Bold(true)
	tx := x + (w-len(title))/2
	for i, ch := range title {
		screen.SetContent(tx+i, y, ch, nil, titleStyle)
	}
}

func (qo *QuickOpen) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		if qo.OnClose != nil {
			qo.OnClose()
		}
	case tcell.KeyEnter:
		if qo.Selected >= 0 && qo.Selected < len(qo.Matches) {
			if qo.OnSelect != nil {
				qo.OnSelect(qo.Matches[qo.Selected].Rel)
			}
		}
	case tcell.KeyUp:
		if qo.Selected > 0 {
			qo.Selected--
		}
	case tcell.KeyDown:
		if qo.Selected < len(qo.Matches)-1 {
			qo.Selected++
		}
	default:
		text, cur, changed := editLine(ev, qo.Input, qo.CursorPos)
		qo.CursorPos = cur
		if changed {
			qo.Input = text
			qo.updateFilter()
		}
	}
	return true // the dialog absorbs every key while open
}

// editLine applies one line-editing key to (text, cursor), returning the
// new pair and whether the text itself changed.
func editLine(ev *tcell.EventKey, text string, cursor int) (string, int, bool) {
	runes := []rune(text)
	switch ev.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if cursor > 0 {
			return string(runes[:cursor-1]) + string(runes[cursor:]), cursor - 1, true
		}
	case tcell.KeyDelete:
		if cursor < len(runes) {
			return string(runes[:cursor]) + string(runes[cursor+1:]), cursor, true
		}
	case tcell.KeyLeft:
		if cursor > 0 {
			cursor--
		}
	case tcell.KeyRight:
		if cursor < len(runes) {
			cursor++
		}
	case tcell.KeyHome:
		cursor = 0
	case tcell.KeyEnd:
		cursor = len(runes)
	case tcell.KeyRune:
		return string(runes[:cursor]) + string(ev.Rune()) + string(runes[cursor:]), cursor + 1, true
	}
	return text, cursor, false
}

func (qo *QuickOpen) HandleMouse(ev *tcell.EventMouse) bool {
	return true // absorb mouse events
}

func (qo *QuickOpen) IsFocused() bool   { return qo.focused }
func (qo *QuickOpen) SetFocused(f bool) { qo.focused = f }
