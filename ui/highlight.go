package ui

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode/utf8"

	"tether/forward"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/gdamore/tcell/v2"
)

type Token struct {
	Text  string
	Style tcell.Style
}

type StyledLine struct {
	Tokens []Token
}

// Highlighter styles Markdown note lines through chroma, with trailing
// block identifiers restyled so they stand apart from the prose. Styled
// lines are cached per note content.
type Highlighter struct {
	anchor tcell.Color
	cache  map[string][]StyledLine
}

func NewHighlighter(anchor tcell.Color) *Highlighter {
	return &Highlighter{
		anchor: anchor,
		cache:  make(map[string][]StyledLine),
	}
}

// SetAnchorColor changes the block identifier color and drops the cache
// when it differs from the current one.
func (h *Highlighter) SetAnchorColor(c tcell.Color) {
	if c == h.anchor {
		return
	}
	h.anchor = c
	h.cache = make(map[string][]StyledLine)
}

// Highlight returns styled lines for the half-open window [start, end).
func (h *Highlighter) Highlight(lines []string, start, end int) []StyledLine {
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil
	}

	content := strings.Join(lines, "\n")
	key := fmt.Sprintf("%x:%x", sha256.Sum256([]byte(content)), h.anchor.Hex())
	all, ok := h.cache[key]
	if !ok {
		if len(h.cache) > 32 {
			h.cache = make(map[string][]StyledLine)
		}
		all = h.styleAll(lines, content)
		h.cache[key] = all
	}
	return all[start:end]
}

func (h *Highlighter) styleAll(lines []string, content string) []StyledLine {
	lexer := lexers.Get("markdown")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styled := make([]StyledLine, len(lines))
	iter, err := lexer.Tokenise(nil, content)
	if err != nil {
		// Fallback: unstyled lines
		for i, line := range lines {
			styled[i] = StyledLine{
				Tokens: []Token{{Text: line, Style: tcell.StyleDefault}},
			}
		}
		return styled
	}

	currentLine := 0
	for _, tok := range iter.Tokens() {
		style := markdownStyle(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				currentLine++
			}
			if currentLine >= len(styled) {
				break
			}
			if part != "" {
				styled[currentLine].Tokens = append(styled[currentLine].Tokens, Token{
					Text:  part,
					Style: style,
				})
			}
		}
	}

	anchorStyle := tcell.StyleDefault.Foreground(h.anchor)
	for i, line := range lines {
		if at := forward.AnchorIndex(line); at >= 0 {
			from := utf8.RuneCountInString(line[:at])
			styled[i].Tokens = restyleTail(styled[i].Tokens, from, anchorStyle)
		}
	}
	return styled
}

// restyleTail applies style to every rune from fromRune onward, splitting
// the token that straddles the boundary.
func restyleTail(tokens []Token, fromRune int, style tcell.Style) []Token {
	out := make([]Token, 0, len(tokens)+1)
	pos := 0
	for _, tok := range tokens {
		n := utf8.RuneCountInString(tok.Text)
		switch {
		case pos+n <= fromRune:
			out = append(out, tok)
		case pos >= fromRune:
			out = append(out, Token{Text: tok.Text, Style: style})
		default:
			runes := []rune(tok.Text)
			cut := fromRune - pos
			out = append(out, Token{Text: string(runes[:cut]), Style: tok.Style})
			out = append(out, Token{Text: string(runes[cut:]), Style: style})
		}
		pos += n
	}
	return out
}

func markdownStyle(t chroma.TokenType) tcell.Style {
	base := tcell.StyleDefault

	switch {
	case t == chroma.GenericHeading:
		return base.Foreground(tcell.ColorYellow).Bold(true)

	case t == chroma.GenericSubheading:
		return base.Foreground(tcell.ColorYellow)

	case t == chroma.GenericStrong:
		return base.Bold(true)

	case t == chroma.GenericEmph:
		return base.Italic(true)

	case t == chroma.GenericDeleted:
		return base.StrikeThrough(true)

	case t == chroma.Keyword || t == chroma.KeywordConstant || t == chroma.KeywordDeclaration:
		return base.Foreground(tcell.ColorBlue).Bold(true)

	case t == chroma.NameTag || t == chroma.NameAttribute || t == chroma.NameLabel ||
		t == chroma.NameDecorator:
		return base.Foreground(tcell.ColorBlue)

	case t == chroma.LiteralString || t == chroma.LiteralStringBacktick ||
		t == chroma.LiteralStringDouble || t == chroma.LiteralStringSingle ||
		t == chroma.LiteralStringOther:
		return base.Foreground(tcell.ColorGreen)

	case t == chroma.Comment || t == chroma.CommentMultiline || t == chroma.CommentSingle ||
		t == chroma.CommentSpecial || t == chroma.CommentPreproc:
		return base.Foreground(tcell.ColorGray).Italic(true)

	case t == chroma.LiteralNumber || t == chroma.LiteralNumberInteger || t == chroma.LiteralNumberFloat:
		return base.Foreground(tcell.ColorDarkCyan)

	case t == chroma.Punctuation:
		return base.Foreground(tcell.ColorSilver)

	default:
		return tcell.StyleDefault
	}
}
