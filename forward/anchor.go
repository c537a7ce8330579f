package forward

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

// Block identifier lengths accepted for minting.
const (
	MinIDLength     = 3
	MaxIDLength     = 32
	DefaultIDLength = 5
)

// An anchor is a caret-introduced identifier carried at the end of a line,
// preceded by whitespace or the start of the line.
var anchorPattern = regexp.MustCompile(`(?:^|\s)\^([a-z0-9-]+)$`)

// HasAnchor reports whether a line already carries a block identifier.
func HasAnchor(line string) bool {
	_, ok := detectAnchor(line)
	return ok
}

// AnchorIndex reports the byte offset of the caret opening a trailing
// block identifier, or -1 when the line carries none.
func AnchorIndex(line string) int {
	trimmed := strings.TrimRight(line, " \t")
	loc := anchorPattern.FindStringIndex(trimmed)
	if loc == nil {
		return -1
	}
	if trimmed[loc[0]] != '^' {
		return loc[0] + 1
	}
	return loc[0]
}

// detectAnchor reports the block identifier a line already carries, if any.
func detectAnchor(line string) (string, bool) {
	m := anchorPattern.FindStringSubmatch(strings.TrimRight(line, " \t"))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// mintAnchor appends a block identifier to the line, replacing any trailing
// whitespace. A whitespace-only line becomes the bare token.
func mintAnchor(line, id string) string {
	trimmed := strings.TrimRight(line, " \t")
	if trimmed == "" {
		return "^" + id
	}
	return trimmed + " ^" + id
}

// stripAnchor removes a trailing block identifier and the whitespace that
// separates it from the line text.
func stripAnchor(s string) string {
	trimmed := strings.TrimRight(s, " \t")
	loc := anchorPattern.FindStringIndex(trimmed)
	if loc == nil {
		return s
	}
	return strings.TrimRight(trimmed[:loc[0]], " \t")
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomIDs returns the production identifier source: length characters
// drawn from the lowercase alphanumerics. No uniqueness check is made
// against existing document content.
func RandomIDs(length int) IDSource {
	if length < MinIDLength {
		length = MinIDLength
	}
	if length > MaxIDLength {
		length = MaxIDLength
	}
	return randomIDs{length: length}
}

type randomIDs struct {
	length int
}

func (r randomIDs) NewID() string {
	b := make([]byte, r.length)
	for i := range b {
		b[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return string(b)
}
