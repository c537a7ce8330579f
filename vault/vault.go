package vault

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Find locates the vault root for a path: the nearest ancestor directory
// containing a .obsidian folder. Without one, the path's own directory is
// the vault.
func Find(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	dir := abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for d := dir; ; d = filepath.Dir(d) {
		if info, err := os.Stat(filepath.Join(d, ".obsidian")); err == nil && info.IsDir() {
			return d, nil
		}
		if filepath.Dir(d) == d {
			break
		}
	}
	return dir, nil
}

// Index holds the notes of a vault, keyed for shortest-unique-name link
// targets. Built once per invocation; never refreshed behind callers.
type Index struct {
	Root   string
	notes  []string            // vault-relative slash paths, sorted
	names  map[string][]string // base name without extension -> paths
	assets map[string][]string // non-note base name -> paths, walk order
}

// Scan walks the vault and indexes every Markdown note not matched by an
// ignore pattern. Non-note files are kept as embed targets.
func Scan(root string, ignore []string) (*Index, error) {
	ix := &Index{Root: root, names: map[string][]string{}, assets: map[string][]string{}}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if ignoredDir(rel, ignore) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignored(rel, ignore) {
			return nil
		}
		if !strings.EqualFold(path.Ext(rel), ".md") {
			ix.assets[path.Base(rel)] = append(ix.assets[path.Base(rel)], rel)
			return nil
		}
		ix.notes = append(ix.notes, rel)
		name := noteName(rel)
		ix.names[name] = append(ix.names[name], rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ix.notes)
	return ix, nil
}

func ignored(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ignoredDir also treats "dir/**" patterns as covering the directory
// itself, so the walk can skip the whole subtree.
func ignoredDir(rel string, patterns []string) bool {
	if ignored(rel, patterns) {
		return true
	}
	for _, p := range patterns {
		if trimmed := strings.TrimSuffix(p, "/**"); trimmed != p {
			if ok, err := doublestar.Match(trimmed, rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// noteName is the bare link name of a note, its base name without extension.
func noteName(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Notes returns the vault-relative note paths in sorted order.
func (ix *Index) Notes() []string {
	return ix.notes
}

// Contains reports whether the vault has a note with the given bare name.
func (ix *Index) Contains(name string) bool {
	return len(ix.names[name]) > 0
}

// Asset resolves an embed target to an absolute file path. Targets may be
// vault-relative paths or bare file names, the way Obsidian resolves them.
func (ix *Index) Asset(name string) (string, bool) {
	name = strings.TrimSpace(filepath.ToSlash(name))
	if name == "" {
		return "", false
	}
	paths := ix.assets[path.Base(name)]
	if len(paths) == 0 {
		return "", false
	}
	if strings.ContainsRune(name, '/') {
		for _, p := range paths {
			if p == name {
				return filepath.Join(ix.Root, filepath.FromSlash(p)), true
			}
		}
		return "", false
	}
	return filepath.Join(ix.Root, filepath.FromSlash(paths[0])), true
}

// Target returns the shortest unambiguous link target for a note: the bare
// name when unique in the vault, otherwise the relative path without
// extension.
func (ix *Index) Target(rel string) string {
	rel = filepath.ToSlash(rel)
	name := noteName(rel)
	if len(ix.names[name]) <= 1 {
		return name
	}
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// Resolver renders references to anchors in one note of the vault.
type Resolver struct {
	Style  string // "wiki" or "markdown"
	target string
	rel    string
}

// Resolver binds a link resolver to the given note file.
func (ix *Index) Resolver(notePath, style string) (*Resolver, error) {
	abs, err := filepath.Abs(notePath)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(ix.Root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		// The note lives outside the vault; reference it by bare name.
		rel = filepath.Base(abs)
	}
	rel = filepath.ToSlash(rel)
	return &Resolver{Style: style, target: ix.Target(rel), rel: rel}, nil
}

func (r *Resolver) Link(id, display string) string {
	if r.Style == "markdown" {
		if display == "" {
			display = noteName(r.rel)
		}
		return "[" + display + "](" + escapePath(r.rel) + "#^" + id + ")"
	}
	if display != "" {
		return "[[" + r.target + "#^" + id + "|" + display + "]]"
	}
	return "[[" + r.target + "#^" + id + "]]"
}

// Characters that would end or garble a markdown (...) destination. The
// percent itself goes first so escaped paths stay decodable.
var (
	pathEscaper   = strings.NewReplacer("%", "%25", " ", "%20", "(", "%28", ")", "%29")
	pathUnescaper = strings.NewReplacer("%25", "%", "%20", " ", "%28", "(", "%29", ")")
)

// escapePath makes a note path usable inside a markdown link destination.
func escapePath(p string) string {
	return pathEscaper.Replace(p)
}

// EmbedTarget extracts the target of the first embed on a line, accepting
// both the ![[target]] and ![alt](target) forms. Remote URLs are not
// embed targets.
func EmbedTarget(line string) (string, bool) {
	if i := strings.Index(line, "![["); i >= 0 {
		rest := line[i+3:]
		if j := strings.Index(rest, "]]"); j >= 0 {
			target := rest[:j]
			// Drop a size/alias suffix or a block reference
			if k := strings.IndexAny(target, "|#"); k >= 0 {
				target = target[:k]
			}
			if target = strings.TrimSpace(target); target != "" {
				return target, true
			}
		}
		return "", false
	}

	i := strings.Index(line, "![")
	if i < 0 {
		return "", false
	}
	rest := line[i+2:]
	j := strings.Index(rest, "](")
	if j < 0 {
		return "", false
	}
	rest = rest[j+2:]
	k := strings.IndexByte(rest, ')')
	if k < 0 {
		return "", false
	}
	target := rest[:k]
	if strings.HasPrefix(target, "<") {
		if e := strings.IndexByte(target, '>'); e > 0 {
			target = target[1:e]
		}
	} else if sp := strings.IndexByte(target, ' '); sp >= 0 {
		target = target[:sp] // drop a link title
	}
	target = strings.TrimSpace(pathUnescaper.Replace(target))
	if target == "" || strings.Contains(target, "://") {
		return "", false
	}
	return target, true
}
