package buffer

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrBinaryFile marks content that cannot be treated as a text note.
	ErrBinaryFile = errors.New("binary file")
	// ErrBadEncoding marks text that is not valid UTF-8.
	ErrBadEncoding = errors.New("not valid UTF-8")
)

const maxFileSize = 100 * 1024 * 1024 // 100MB

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Buffer struct {
	Lines      []string
	Path       string
	Cursor     Cursor
	Selection  *Selection
	Dirty      bool
	LineEnding string // "LF" or "CRLF" — detected from file, preserved on save
	Encoding   string // "UTF-8" or "UTF-8 BOM"

	// Whether the file ended with a newline; save reproduces it exactly.
	FinalNewline bool

	loadTime time.Time
	loadSize int64
}

func NewBufferFromFile(path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file too large (%d MB), max supported is 100 MB", info.Size()/(1024*1024))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Binary file detection: check first 8KB for null bytes
	checkLen := len(data)
	if checkLen > 8192 {
		checkLen = 8192
	}
	for i := 0; i < checkLen; i++ {
		if data[i] == 0 {
			return nil, fmt.Errorf("%s: %w", path, ErrBinaryFile)
		}
	}

	b, err := fromBytes(data, path)
	if err != nil {
		return nil, err
	}
	b.loadTime = info.ModTime()
	b.loadSize = info.Size()
	return b, nil
}

// NewBufferFromString builds an in-memory buffer with no backing file,
// parsed with the same rules as a file load.
func NewBufferFromString(content, path string) *Buffer {
	b, err := fromBytes([]byte(content), path)
	if err != nil {
		// Callers hand in known-good text; fall back to an empty note.
		return &Buffer{Lines: []string{""}, Path: path, LineEnding: "LF", Encoding: "UTF-8"}
	}
	return b
}

func fromBytes(data []byte, path string) (*Buffer, error) {
	encoding := "UTF-8"
	if len(data) >= 3 && data[0] == utf8BOM[0] && data[1] == utf8BOM[1] && data[2] == utf8BOM[2] {
		encoding = "UTF-8 BOM"
		data = data[3:]
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrBadEncoding)
	}

	// Line ending detection: check for CRLF before normalizing
	content := string(data)
	lineEnding := "LF"
	if strings.Contains(content, "\r\n") {
		lineEnding = "CRLF"
		content = strings.ReplaceAll(content, "\r\n", "\n")
	}

	// Strip exactly one trailing newline so interior and trailing blank
	// lines survive a load/save round trip.
	finalNewline := strings.HasSuffix(content, "\n")
	if finalNewline {
		content = strings.TrimSuffix(content, "\n")
	}
	lines := strings.Split(content, "\n")

	return &Buffer{
		Lines:        lines,
		Path:         path,
		LineEnding:   lineEnding,
		Encoding:     encoding,
		FinalNewline: finalNewline,
	}, nil
}

// ReplaceLines swaps lines start..end inclusive for repl in one step.
// Bounds are clamped; cursor and selection are clamped afterwards so the
// original endpoints survive the edit.
func (b *Buffer) ReplaceLines(start, end int, repl []string) {
	if len(b.Lines) == 0 {
		b.Lines = []string{""}
	}
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end > len(b.Lines)-1 {
		end = len(b.Lines) - 1
	}

	out := make([]string, 0, len(b.Lines)-(end-start+1)+len(repl))
	out = append(out, b.Lines[:start]...)
	out = append(out, repl...)
	out = append(out, b.Lines[end+1:]...)
	if len(out) == 0 {
		out = []string{""}
	}
	b.Lines = out
	b.Dirty = true
	b.clampCursor()
	b.ClampSelection()
}

func (b *Buffer) BuildSaveContent() string {
	eol := "\n"
	if b.LineEnding == "CRLF" {
		eol = "\r\n"
	}
	content := strings.Join(b.Lines, eol)
	if b.FinalNewline {
		content += eol
	}
	if b.Encoding == "UTF-8 BOM" {
		content = string(utf8BOM) + content
	}
	return content
}

func (b *Buffer) Save() error {
	if b.Path == "" {
		return fmt.Errorf("buffer has no path")
	}
	if err := os.WriteFile(b.Path, []byte(b.BuildSaveContent()), 0644); err != nil {
		return err
	}
	b.Dirty = false
	if info, err := os.Stat(b.Path); err == nil {
		b.loadTime = info.ModTime()
		b.loadSize = info.Size()
	}
	return nil
}

// ModifiedOnDisk reports whether the backing file changed after the last
// load or save, so hosts can refuse to apply an edit onto stale lines.
func (b *Buffer) ModifiedOnDisk() bool {
	if b.Path == "" || b.loadTime.IsZero() {
		return false
	}
	info, err := os.Stat(b.Path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(b.loadTime) || info.Size() != b.loadSize
}

func (b *Buffer) clampCursor() {
	if len(b.Lines) == 0 {
		b.Lines = []string{""}
	}
	if b.Cursor.Line < 0 {
		b.Cursor.Line = 0
	}
	if b.Cursor.Line >= len(b.Lines) {
		b.Cursor.Line = len(b.Lines) - 1
	}
	lineLen := len(b.Lines[b.Cursor.Line])
	if b.Cursor.Col < 0 {
		b.Cursor.Col = 0
	}
	if b.Cursor.Col > lineLen {
		b.Cursor.Col = lineLen
	}
}

// ClampSelection pulls the selection endpoints back inside the document.
func (b *Buffer) ClampSelection() {
	if b.Selection == nil {
		return
	}
	clamp := func(c Cursor) Cursor {
		if c.Line < 0 {
			c.Line = 0
		}
		if c.Line >= len(b.Lines) {
			c.Line = len(b.Lines) - 1
		}
		if c.Col < 0 {
			c.Col = 0
		}
		if c.Col > len(b.Lines[c.Line]) {
			c.Col = len(b.Lines[c.Line])
		}
		return c
	}
	b.Selection.Start = clamp(b.Selection.Start)
	b.Selection.End = clamp(b.Selection.End)
}
