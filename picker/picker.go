// Package picker is the interactive host: it opens one note of a vault,
// lets the user walk and select lines, and applies the forward modes
// against the file on disk.
package picker

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"tether/buffer"
	"tether/clipboardx"
	"tether/config"
	"tether/forward"
	"tether/ui"
	"tether/vault"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

// Mode labels indexed by forward.Mode: long form for the bar, short form
// for the status line.
var (
	modeLabels = []string{"Separate lines", "Combined lines", "Link only", "Embed"}
	modeShort  = []string{"SEPARATE", "COMBINE", "LINK", "EMBED"}
)

type Picker struct {
	cfg    *config.Config
	log    zerolog.Logger
	screen tcell.Screen

	// VaultRoot overrides vault discovery when set.
	VaultRoot string

	buf    *buffer.Buffer
	index  *vault.Index
	gutter *AnchorGutter

	modeBar   *ui.ModeBar
	statusBar *ui.StatusBar
	highlight *ui.Highlighter

	// Overlays, at most one open at a time
	form      *ui.Form
	palette   *ui.Palette
	quickOpen *ui.QuickOpen
	help      *ui.Help
	prompt    *ui.Prompt

	preview     *ui.EmbedPreview
	previewPath string

	scrollY int

	// Selection state: v pins the anchor line, movement extends, h/l
	// narrows the cursor end to a column.
	selecting  bool
	selAnchor  int
	colRefined bool

	// An external change was declined; forwards are refused until reload.
	stale bool

	watcher *fsnotify.Watcher

	mouseDown      bool
	mousePressX    int
	mousePressY    int
	pressLine      int
	mouseScrolling bool

	sixelHidden bool

	noticeAt time.Time

	quit bool
}

// noticeEvent reports a finished clipboard hand-off back to the event loop.
type noticeEvent struct {
	tcell.EventTime
	text string
}

// watchEvent carries a file system change notification to the event loop.
type watchEvent struct {
	tcell.EventTime
	path string
	op   fsnotify.Op
}

// wakeEvent forces a render pass so an expired notice clears while idle.
type wakeEvent struct {
	tcell.EventTime
}

func New(cfg *config.Config, log zerolog.Logger) *Picker {
	return &Picker{
		cfg:    cfg,
		log:    log,
		gutter: NewAnchorGutter(),
	}
}

// Run opens the note (or the quick-open list when path is empty) and
// drives the event loop until quit.
func (p *Picker) Run(path string) error {
	root := p.VaultRoot
	if root == "" {
		start := path
		if start == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			start = cwd
		}
		found, err := vault.Find(start)
		if err != nil {
			return err
		}
		root = found
	}
	ix, err := vault.Scan(root, p.cfg.IgnoreGlobs)
	if err != nil {
		return err
	}
	p.index = ix

	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		b, err := buffer.NewBufferFromFile(abs)
		if err != nil {
			return err
		}
		p.buf = b
		p.gutter.Update(b.Lines)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	p.init(screen)

	if p.buf == nil {
		p.openQuickOpen()
	}

	p.setupWatcher()
	p.log.Info().Str("vault", root).Str("note", path).Msg("picker started")

	for !p.quit {
		p.clearExpiredNotice()
		p.render()

		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			p.handleKey(ev)
		case *tcell.EventMouse:
			p.handleMouse(ev)
		case *noticeEvent:
			p.notice(ev.text)
		case *watchEvent:
			p.handleWatch(ev)
		case *wakeEvent:
			// The render pass at the top of the loop does the work.
		}
	}

	if p.watcher != nil {
		p.watcher.Close()
	}
	p.closePreview()
	screen.Clear()
	screen.Fini()
	return nil
}

// init wires the permanent components to a ready screen.
func (p *Picker) init(screen tcell.Screen) {
	screen.EnableMouse()
	theme := p.cfg.GetTheme()
	screen.SetStyle(tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground))
	screen.Clear()
	p.screen = screen

	p.statusBar = ui.NewStatusBar()
	p.modeBar = ui.NewModeBar(modeLabels)
	p.modeBar.Active = int(forward.CombinedLines)
	p.modeBar.OnSwitch = func(idx int) {
		p.statusBar.Mode = modeShort[idx]
		p.notice("Mode: " + modeLabels[idx])
	}
	p.highlight = ui.NewHighlighter(theme.AnchorMark)
}

// applyForward runs one forward mode over the selection (or the cursor
// line), saves the note and hands the copy to the clipboard.
func (p *Picker) applyForward(mode forward.Mode) {
	if p.buf == nil {
		return
	}
	p.modeBar.Active = int(mode)
	p.statusBar.Mode = modeShort[mode]

	if p.stale {
		p.errorNotice("Note changed on disk - reload before forwarding")
		return
	}
	if p.buf.ModifiedOnDisk() {
		p.promptReload()
		return
	}

	resolver, err := p.index.Resolver(p.buf.Path, p.cfg.LinkStyle)
	if err != nil {
		p.errorNotice("Error: " + err.Error())
		return
	}
	opts := forward.Options{
		LinkText:                p.cfg.LinkText,
		CopiedLinkText:          p.cfg.CopiedLinkText,
		LineFormatFrom:          p.cfg.LineFormatFrom,
		LineFormatTo:            p.cfg.LineFormatTo,
		RemoveLeadingWhitespace: p.cfg.RemoveLeadingWhitespace,
		IDs:                     forward.RandomIDs(p.cfg.AnchorLength),
		Links:                   resolver,
	}

	span := buffer.SpanAt(p.buf.Selection, p.buf.Cursor)
	res, err := forward.Transform(p.buf.Lines, span, mode, opts)
	if err != nil {
		p.log.Debug().Err(err).Msg("transform refused")
		p.errorNotice("Error: " + err.Error())
		return
	}
	if len(res.Updated) == 0 {
		return
	}

	// A failed save must leave the note exactly as loaded.
	prev := make([]string, len(p.buf.Lines))
	copy(prev, p.buf.Lines)
	p.buf.ReplaceLines(res.First, res.First+len(res.Updated)-1, res.Updated)
	if err := p.buf.Save(); err != nil {
		p.buf.Lines = prev
		p.buf.Dirty = false
		p.buf.ClampSelection()
		p.log.Error().Err(err).Str("path", p.buf.Path).Msg("save failed")
		p.errorNotice("Save failed: " + err.Error())
		return
	}
	p.gutter.Update(p.buf.Lines)

	copied := res.CopiedText()
	lines := len(res.Copied)
	done := clipboardx.WriteAsync(copied)
	go func() {
		if !<-done {
			p.log.Debug().Msg("clipboard write failed")
			return
		}
		p.postNotice(forwardedNotice(lines))
	}()
	p.log.Info().
		Str("mode", modeShort[mode]).
		Int("lines", lines).
		Str("note", filepath.Base(p.buf.Path)).
		Msg("forwarded")
}

func forwardedNotice(lines int) string {
	if lines == 1 {
		return "Forwarded 1 line"
	}
	return fmt.Sprintf("Forwarded %d lines", lines)
}

// postNotice hands a message to the event loop from another goroutine.
func (p *Picker) postNotice(text string) {
	if p.screen == nil {
		return
	}
	ev := &noticeEvent{text: text}
	ev.SetEventNow()
	p.screen.PostEvent(ev)
}

func (p *Picker) notice(msg string) {
	p.statusBar.Message = msg
	p.statusBar.IsError = false
	p.noticeAt = time.Now()
	p.scheduleWake()
}

func (p *Picker) errorNotice(msg string) {
	p.statusBar.Message = msg
	p.statusBar.IsError = true
	p.noticeAt = time.Now()
	p.scheduleWake()
}

func (p *Picker) noticeTTL() time.Duration {
	secs := p.cfg.NoticeSeconds
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

func (p *Picker) clearExpiredNotice() {
	if !p.noticeAt.IsZero() && time.Since(p.noticeAt) > p.noticeTTL() {
		p.statusBar.Message = ""
		p.statusBar.IsError = false
		p.noticeAt = time.Time{}
	}
}

// scheduleWake posts an event shortly after the notice expires so the
// cleared status bar gets drawn even when the user is idle.
func (p *Picker) scheduleWake() {
	if p.screen == nil {
		return
	}
	screen := p.screen
	time.AfterFunc(p.noticeTTL()+100*time.Millisecond, func() {
		ev := &wakeEvent{}
		ev.SetEventNow()
		screen.PostEvent(ev)
	})
}

// openNote loads a vault-relative note into the picker.
func (p *Picker) openNote(rel string) {
	abs := filepath.Join(p.index.Root, filepath.FromSlash(rel))
	b, err := buffer.NewBufferFromFile(abs)
	if err != nil {
		p.errorNotice("Error: " + err.Error())
		return
	}
	p.buf = b
	p.scrollY = 0
	p.stale = false
	p.dropSelection()
	p.closePreview()
	p.gutter.Update(b.Lines)
	if p.watcher != nil {
		p.watcher.Add(filepath.Dir(abs))
	}
}

// reloadNote re-reads the note from disk, keeping the cursor where it was
// when still valid.
func (p *Picker) reloadNote() {
	if p.buf == nil {
		return
	}
	b, err := buffer.NewBufferFromFile(p.buf.Path)
	if err != nil {
		p.stale = true
		p.errorNotice("Reload failed: " + err.Error())
		return
	}
	b.Cursor = p.buf.Cursor
	p.buf = b
	p.buf.ClampSelection()
	p.clampCursorCol()
	p.dropSelection()
	p.stale = false
	p.gutter.Update(b.Lines)
	p.notice("Reloaded " + filepath.Base(b.Path))
}

func (p *Picker) promptReload() {
	if p.prompt != nil {
		return
	}
	pr := ui.NewPrompt("Note changed on disk. Reload?", "yn")
	pr.OnAnswer = func(answer rune) {
		p.prompt = nil
		if answer == 'y' {
			p.reloadNote()
			return
		}
		p.stale = true
		p.errorNotice("Note is stale - forwarding disabled until reload")
	}
	p.prompt = pr
}

func (p *Picker) setupWatcher() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Run without external change detection.
		p.log.Debug().Err(err).Msg("file watcher unavailable")
		return
	}
	p.watcher = watcher

	if p.buf != nil {
		watcher.Add(filepath.Dir(p.buf.Path))
	}
	if cp := config.ConfigPath(); cp != "" {
		watcher.Add(filepath.Dir(cp))
	}

	screen := p.screen
	go func() {
		// Debounce: collect events and send after a quiet period
		debounceTimer := time.NewTimer(100 * time.Millisecond)
		debounceTimer.Stop()
		var pending []fsnotify.Event

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				pending = append(pending, event)
				debounceTimer.Reset(100 * time.Millisecond)

			case <-debounceTimer.C:
				for _, event := range pending {
					ev := &watchEvent{path: event.Name, op: event.Op}
					ev.SetEventNow()
					screen.PostEvent(ev)
				}
				pending = nil

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				_ = err
			}
		}
	}()
}

func (p *Picker) handleWatch(ev *watchEvent) {
	if cp := config.ConfigPath(); cp != "" && ev.path == cp {
		p.reloadSettings()
		return
	}
	if p.buf == nil || ev.path != p.buf.Path {
		return
	}
	switch {
	case ev.op&fsnotify.Remove != 0:
		p.stale = true
		p.errorNotice(filepath.Base(ev.path) + " was deleted on disk")
	case ev.op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
		if !p.buf.ModifiedOnDisk() {
			// Our own save.
			return
		}
		p.promptReload()
	}
}

func (p *Picker) reloadSettings() {
	cfg, err := config.Load()
	if err != nil {
		p.errorNotice("Settings reload failed: " + err.Error())
		return
	}
	if reflect.DeepEqual(cfg, p.cfg) {
		// Our own save through the settings form.
		return
	}
	*p.cfg = *cfg
	p.applySettings()
	p.notice("Settings reloaded")
}

// applySettings pushes the current settings into the live components.
func (p *Picker) applySettings() {
	theme := p.cfg.GetTheme()
	if p.screen != nil {
		p.screen.SetStyle(tcell.StyleDefault.Background(theme.Background).Foreground(theme.Foreground))
	}
	if p.highlight != nil {
		p.highlight.SetAnchorColor(theme.AnchorMark)
	}
	if p.form != nil {
		p.form.Refresh(p.cfg)
		p.form.Theme = theme
	}
	for field, msg := range p.cfg.Validate() {
		p.errorNotice("Settings: " + field + ": " + msg)
		break
	}
}

func (p *Picker) openSettings() {
	f := ui.NewForm(p.cfg, p.cfg.GetTheme())
	f.OnApply = func(field, value string) {
		if err := p.cfg.Set(field, value); err != nil {
			p.errorNotice("Error: " + err.Error())
			f.Refresh(p.cfg)
			return
		}
		if err := p.cfg.Save(); err != nil {
			p.errorNotice("Settings save failed: " + err.Error())
		}
		p.applySettings()
	}
	f.OnClose = func() { p.form = nil }
	p.form = f
}

func (p *Picker) openQuickOpen() {
	qo := ui.NewQuickOpen(p.index.Notes(), p.cfg.GetTheme())
	qo.OnSelect = func(rel string) {
		p.quickOpen = nil
		p.openNote(rel)
	}
	qo.OnClose = func() { p.quickOpen = nil }
	p.quickOpen = qo
}

func (p *Picker) openHelp() {
	h := ui.NewHelp(p.cfg.GetTheme())
	h.OnClose = func() { p.help = nil }
	p.help = h
}

func (p *Picker) openPalette() {
	commands := []ui.Command{
		{Name: "Forward: separate lines", Shortcut: "1", Action: func() { p.applyForward(forward.SeparateLines) }},
		{Name: "Forward: combined lines", Shortcut: "2", Action: func() { p.applyForward(forward.CombinedLines) }},
		{Name: "Forward: link only", Shortcut: "3", Action: func() { p.applyForward(forward.LinkOnly) }},
		{Name: "Forward: embed link", Shortcut: "4", Action: func() { p.applyForward(forward.LinkOnlyEmbed) }},
		{Name: "Repeat active mode", Shortcut: "Enter", Action: func() { p.applyForward(forward.Mode(p.modeBar.Active)) }},
		{Name: "Reload note", Shortcut: "", Action: func() { p.reloadNote() }},
		{Name: "Open note", Shortcut: "Ctrl+P", Action: func() { p.openQuickOpen() }},
		{Name: "Settings", Shortcut: ",", Action: func() { p.openSettings() }},
		{Name: "Toggle image preview", Shortcut: "", Action: func() { p.toggleImagePreview() }},
		{Name: "Help", Shortcut: "?", Action: func() { p.openHelp() }},
		{Name: "Quit", Shortcut: "q", Action: func() { p.quit = true }},
	}
	pal := ui.NewPalette(commands, p.cfg.GetTheme())
	pal.OnClose = func() { p.palette = nil }
	p.palette = pal
}

func (p *Picker) toggleImagePreview() {
	p.cfg.ImagePreview = !p.cfg.ImagePreview
	if err := p.cfg.Save(); err != nil {
		p.errorNotice("Settings save failed: " + err.Error())
		return
	}
	if p.cfg.ImagePreview {
		p.notice("Image preview: ON")
	} else {
		p.notice("Image preview: OFF")
	}
}

// syncImagePreview opens or closes the side pane based on the cursor line.
func (p *Picker) syncImagePreview() {
	if p.buf == nil || !p.cfg.ImagePreview {
		p.closePreview()
		return
	}
	line := ""
	if p.buf.Cursor.Line < len(p.buf.Lines) {
		line = p.buf.Lines[p.buf.Cursor.Line]
	}
	target, ok := vault.EmbedTarget(line)
	if !ok {
		p.closePreview()
		return
	}
	path, ok := p.index.Asset(target)
	if !ok || !ui.IsImageAsset(path) {
		p.closePreview()
		return
	}
	if p.preview != nil && p.previewPath == path {
		return
	}
	p.closePreview()
	p.preview = ui.NewEmbedPreview(path)
	p.previewPath = path
}

func (p *Picker) closePreview() {
	if p.preview == nil {
		return
	}
	p.preview.Close()
	p.preview = nil
	p.previewPath = ""
}

// syncStatus refreshes the status bar fields from the open buffer.
func (p *Picker) syncStatus() {
	p.statusBar.Anchors = p.gutter.Count()
	if p.buf == nil {
		p.statusBar.Note = ""
		p.statusBar.Line = 0
		p.statusBar.Col = 0
		p.statusBar.SelLines = 0
		p.statusBar.Dirty = false
		return
	}
	p.statusBar.Note = p.noteLabel()
	p.statusBar.Line = p.buf.Cursor.Line + 1
	p.statusBar.Col = p.buf.Cursor.Col + 1
	p.statusBar.Dirty = p.buf.Dirty
	if p.buf.Selection != nil && !p.buf.Selection.Empty() {
		lo, hi := p.buf.Selection.LineRange()
		p.statusBar.SelLines = hi - lo + 1
	} else {
		p.statusBar.SelLines = 0
	}
}

func (p *Picker) noteLabel() string {
	rel, err := filepath.Rel(p.index.Root, p.buf.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(p.buf.Path)
	}
	return filepath.ToSlash(rel)
}

func (p *Picker) overlayOpen() bool {
	return p.form != nil || p.palette != nil || p.quickOpen != nil || p.help != nil || p.prompt != nil
}
