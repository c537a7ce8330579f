package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func openNotes(notes ...string) *QuickOpen {
	return NewQuickOpen(notes, nil)
}

func typeQuery(qo *QuickOpen, s string) {
	for _, r := range s {
		qo.HandleKey(runeKey(r))
	}
}

func matchedRels(qo *QuickOpen) []string {
	rels := make([]string, len(qo.Matches))
	for i, m := range qo.Matches {
		rels[i] = m.Rel
	}
	return rels
}

func TestSplitNoteSeparatesNameAndFolder(t *testing.T) {
	m := splitNote("daily/2026/log.md")
	if m.Name != "log" || m.Folder != "daily/2026" {
		t.Fatalf("expected name log folder daily/2026, got %q %q", m.Name, m.Folder)
	}
	m = splitNote("inbox.md")
	if m.Name != "inbox" || m.Folder != "" {
		t.Fatalf("expected name inbox with no folder, got %q %q", m.Name, m.Folder)
	}
}

func TestQuickOpenExtensionNeverMatches(t *testing.T) {
	qo := openNotes("plan.md", "md guide.md", "rendered/deck.md")
	typeQuery(qo, "md")

	rels := matchedRels(qo)
	if len(rels) != 1 || rels[0] != "md guide.md" {
		t.Fatalf("expected only the note whose name contains md, got %v", rels)
	}
}

func TestQuickOpenNameBeatsFolder(t *testing.T) {
	qo := openNotes("projects/alpha/notes.md", "alpha.md")
	typeQuery(qo, "alpha")

	rels := matchedRels(qo)
	if len(rels) != 2 {
		t.Fatalf("expected both notes to match, got %v", rels)
	}
	if rels[0] != "alpha.md" {
		t.Fatalf("expected the name match first, got %v", rels)
	}
}

func TestQuickOpenShallowerNoteWinsTies(t *testing.T) {
	qo := openNotes("archive/old/plan.md", "plan.md")
	typeQuery(qo, "plan")

	rels := matchedRels(qo)
	if len(rels) != 2 || rels[0] != "plan.md" {
		t.Fatalf("expected the root note first, got %v", rels)
	}
}

func TestQuickOpenFolderQuerySplitsHits(t *testing.T) {
	qo := openNotes("work/tasks.md")
	typeQuery(qo, "work/ta")

	if len(qo.Matches) != 1 {
		t.Fatalf("expected a match, got %v", matchedRels(qo))
	}
	m := qo.Matches[0]
	if len(m.FolderHits) != 4 || m.FolderHits[0] != 0 || m.FolderHits[3] != 3 {
		t.Fatalf("expected folder hits 0..3, got %v", m.FolderHits)
	}
	if len(m.NameHits) != 2 || m.NameHits[0] != 0 || m.NameHits[1] != 1 {
		t.Fatalf("expected name hits 0,1, got %v", m.NameHits)
	}
}

func TestQuickOpenEmptyQueryListsEverything(t *testing.T) {
	qo := openNotes("b.md", "a/c.md")
	rels := matchedRels(qo)
	if len(rels) != 2 || rels[0] != "b.md" || rels[1] != "a/c.md" {
		t.Fatalf("expected all notes in given order, got %v", rels)
	}
}

func TestQuickOpenSelectDeliversRelPath(t *testing.T) {
	qo := openNotes("daily/2026/log.md")
	var got string
	qo.OnSelect = func(rel string) { got = rel }

	typeQuery(qo, "log")
	qo.HandleKey(key(tcell.KeyEnter))
	if got != "daily/2026/log.md" {
		t.Fatalf("expected the full vault-relative path, got %q", got)
	}
}

func TestQuickOpenEditingRefilters(t *testing.T) {
	qo := openNotes("plan.md", "notes.md")

	typeQuery(qo, "p")
	if rels := matchedRels(qo); len(rels) != 1 || rels[0] != "plan.md" {
		t.Fatalf("expected plan.md alone, got %v", rels)
	}
	if qo.Input != "p" || qo.CursorPos != 1 {
		t.Fatalf("expected input p cursor 1, got %q %d", qo.Input, qo.CursorPos)
	}

	qo.HandleKey(key(tcell.KeyBackspace2))
	if len(qo.Matches) != 2 {
		t.Fatalf("expected backspace to restore the full list, got %v", matchedRels(qo))
	}

	typeQuery(qo, "an")
	qo.HandleKey(key(tcell.KeyHome))
	qo.HandleKey(runeKey('l'))
	if qo.Input != "lan" || qo.CursorPos != 1 {
		t.Fatalf("expected insertion at home, got %q cursor %d", qo.Input, qo.CursorPos)
	}
}

func TestQuickOpenRenderShowsNameBeforeFolder(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(100, 30)

	qo := openNotes("daily/log.md")
	qo.Render(screen, 0, 0, 100, 30)

	var rows []string
	for y := 0; y < 30; y++ {
		var b strings.Builder
		for x := 0; x < 100; x++ {
			ch, _, _, _ := screen.GetContent(x, y)
			b.WriteRune(ch)
		}
		rows = append(rows, b.String())
	}
	text := strings.Join(rows, "\n")
	if !strings.Contains(text, "log  daily/") {
		t.Fatal("expected the row to show the note name, then its folder")
	}
	if strings.Contains(text, "log.md") {
		t.Fatal("expected the extension to stay hidden")
	}
}
