package forward

import (
	"regexp"
	"strings"
)

var (
	linkPlaceholder = regexp.MustCompile(`\{\{LINK(\|[^{}]*)?\}\}`)
	markdownLink    = regexp.MustCompile(`^(!?)\[[^\]]*\]\((.*)\)$`)
)

// ExpandLink substitutes every {{LINK}} placeholder in template with link.
// The {{LINK|text}} form carries text into the link: a wiki link gets it
// spliced in before the closing brackets as a display override, a markdown
// link takes it as the bracketed display portion.
func ExpandLink(template, link string) string {
	return linkPlaceholder.ReplaceAllStringFunc(template, func(m string) string {
		sub := linkPlaceholder.FindStringSubmatch(m)
		if sub[1] == "" {
			return link
		}
		return withSuffix(link, sub[1])
	})
}

// withSuffix splices a "|text" suffix into a rendered link.
func withSuffix(link, suffix string) string {
	if strings.HasSuffix(link, "]]") {
		return strings.TrimSuffix(link, "]]") + suffix + "]]"
	}
	if m := markdownLink.FindStringSubmatch(link); m != nil {
		return m[1] + "[" + suffix[1:] + "](" + m[2] + ")"
	}
	return link + suffix
}

// replaceFirst applies the user line format: the first match of re in text
// is replaced by template, with capture references expanded first and the
// {{LINK}} placeholder substituted inside the expansion only.
func replaceFirst(re *regexp.Regexp, text, template, link string) string {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	repl := string(re.ExpandString(nil, template, text, loc))
	repl = ExpandLink(repl, link)
	return text[:loc[0]] + repl + text[loc[1]:]
}
