package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gdamore/tcell/v2"

	"tether/forward"
)

type Config struct {
	LinkText                string   `json:"link_text"`
	CopiedLinkText          string   `json:"copied_link_text"`
	LineFormatFrom          string   `json:"line_format_from"`
	LineFormatTo            string   `json:"line_format_to"`
	RemoveLeadingWhitespace bool     `json:"remove_leading_whitespace"`
	AnchorLength            int      `json:"anchor_length"`
	LinkStyle               string   `json:"link_style"`
	NoticeSeconds           int      `json:"notice_seconds"`
	Theme                   string   `json:"theme"`
	IgnoreGlobs             []string `json:"ignore_globs"`
	ImagePreview            bool     `json:"image_preview"`
}

func Default() *Config {
	return &Config{
		LinkText:                "",
		CopiedLinkText:          "{{LINK}}",
		LineFormatFrom:          `\s*$`,
		LineFormatTo:            " (see {{LINK}})",
		RemoveLeadingWhitespace: true,
		AnchorLength:            forward.DefaultIDLength,
		LinkStyle:               "wiki",
		NoticeSeconds:           5,
		Theme:                   "slate",
		IgnoreGlobs:             []string{".obsidian/**", ".trash/**", ".git/**"},
		ImagePreview:            true,
	}
}

// Validate reports per-field problems keyed by field name. An empty map
// means the record is usable.
func (c *Config) Validate() map[string]string {
	problems := map[string]string{}
	if _, err := regexp.Compile(c.LineFormatFrom); err != nil {
		problems["line_format_from"] = err.Error()
	}
	if !strings.Contains(c.CopiedLinkText, "{{LINK") {
		problems["copied_link_text"] = "missing {{LINK}} placeholder"
	}
	if c.AnchorLength < forward.MinIDLength || c.AnchorLength > forward.MaxIDLength {
		problems["anchor_length"] = fmt.Sprintf("must be between %d and %d", forward.MinIDLength, forward.MaxIDLength)
	}
	if c.LinkStyle != "wiki" && c.LinkStyle != "markdown" {
		problems["link_style"] = `must be "wiki" or "markdown"`
	}
	if c.NoticeSeconds < 1 {
		problems["notice_seconds"] = "must be at least 1"
	}
	if _, ok := Themes[c.Theme]; !ok {
		problems["theme"] = fmt.Sprintf("unknown theme %q", c.Theme)
	}
	for _, g := range c.IgnoreGlobs {
		if !doublestar.ValidatePattern(g) {
			problems["ignore_globs"] = fmt.Sprintf("invalid pattern %q", g)
		}
	}
	return problems
}

// FieldKind tells the settings surfaces how to edit a field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldToggle
	FieldInt
	FieldChoice
	FieldList
)

type Field struct {
	Name    string
	Label   string
	Kind    FieldKind
	Choices []string
}

// Fields is the declarative list the settings form and the settings
// subcommand are both built from, in display order.
func Fields() []Field {
	return []Field{
		{Name: "link_text", Label: "Link text", Kind: FieldText},
		{Name: "copied_link_text", Label: "Copied link text", Kind: FieldText},
		{Name: "line_format_from", Label: "Line format match", Kind: FieldText},
		{Name: "line_format_to", Label: "Line format replace", Kind: FieldText},
		{Name: "remove_leading_whitespace", Label: "Remove leading whitespace", Kind: FieldToggle},
		{Name: "anchor_length", Label: "Anchor length", Kind: FieldInt},
		{Name: "link_style", Label: "Link style", Kind: FieldChoice, Choices: []string{"wiki", "markdown"}},
		{Name: "notice_seconds", Label: "Notice seconds", Kind: FieldInt},
		{Name: "theme", Label: "Theme", Kind: FieldChoice, Choices: ThemeNames()},
		{Name: "ignore_globs", Label: "Ignore globs", Kind: FieldList},
		{Name: "image_preview", Label: "Image preview", Kind: FieldToggle},
	}
}

// ValueOf returns the string form of a field for display and editing.
func (c *Config) ValueOf(field string) string {
	switch field {
	case "link_text":
		return c.LinkText
	case "copied_link_text":
		return c.CopiedLinkText
	case "line_format_from":
		return c.LineFormatFrom
	case "line_format_to":
		return c.LineFormatTo
	case "remove_leading_whitespace":
		return strconv.FormatBool(c.RemoveLeadingWhitespace)
	case "anchor_length":
		return strconv.Itoa(c.AnchorLength)
	case "link_style":
		return c.LinkStyle
	case "notice_seconds":
		return strconv.Itoa(c.NoticeSeconds)
	case "theme":
		return c.Theme
	case "ignore_globs":
		return strings.Join(c.IgnoreGlobs, ", ")
	case "image_preview":
		return strconv.FormatBool(c.ImagePreview)
	}
	return ""
}

// DefaultFor returns the default string form of a field, the value an
// empty edit restores.
func DefaultFor(field string) string {
	return Default().ValueOf(field)
}

// Set assigns a field from its string form. Clearing a field to the empty
// string restores its default rather than storing the empty value.
func (c *Config) Set(field, value string) error {
	if value == "" {
		value = DefaultFor(field)
	}
	switch field {
	case "link_text":
		c.LinkText = value
	case "copied_link_text":
		c.CopiedLinkText = value
	case "line_format_from":
		c.LineFormatFrom = value
	case "line_format_to":
		c.LineFormatTo = value
	case "remove_leading_whitespace", "image_preview":
		b, err := parseToggle(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if field == "remove_leading_whitespace" {
			c.RemoveLeadingWhitespace = b
		} else {
			c.ImagePreview = b
		}
	case "anchor_length", "notice_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if field == "anchor_length" {
			c.AnchorLength = n
		} else {
			c.NoticeSeconds = n
		}
	case "link_style":
		c.LinkStyle = value
	case "theme":
		c.Theme = value
	case "ignore_globs":
		var globs []string
		for _, g := range strings.Split(value, ",") {
			if g = strings.TrimSpace(g); g != "" {
				globs = append(globs, g)
			}
		}
		c.IgnoreGlobs = globs
	default:
		return fmt.Errorf("unknown setting %q", field)
	}
	return nil
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(s)
}

type ColorScheme struct {
	Name            string
	Background      tcell.Color
	Foreground      tcell.Color
	Selection       tcell.Color
	LineNumber      tcell.Color
	AnchorMark      tcell.Color
	StatusBarBg     tcell.Color
	StatusBarFg     tcell.Color
	StatusBarModeBg tcell.Color
	DialogBg        tcell.Color
	DialogFg        tcell.Color
	DialogInputBg   tcell.Color
	ListSelectionBg tcell.Color
	Border          tcell.Color
	Muted           tcell.Color
}

var Themes = map[string]*ColorScheme{
	"slate": {
		Name:            "Slate",
		Background:      tcell.NewRGBColor(40, 44, 52),
		Foreground:      tcell.NewRGBColor(171, 178, 191),
		Selection:       tcell.NewRGBColor(61, 66, 77),
		LineNumber:      tcell.NewRGBColor(92, 99, 112),
		AnchorMark:      tcell.NewRGBColor(152, 195, 121),
		StatusBarBg:     tcell.NewRGBColor(61, 66, 77),
		StatusBarFg:     tcell.NewRGBColor(171, 178, 191),
		StatusBarModeBg: tcell.NewRGBColor(97, 175, 239),
		DialogBg:        tcell.NewRGBColor(40, 44, 52),
		DialogFg:        tcell.NewRGBColor(171, 178, 191),
		DialogInputBg:   tcell.NewRGBColor(61, 66, 77),
		ListSelectionBg: tcell.NewRGBColor(61, 66, 77),
		Border:          tcell.NewRGBColor(92, 99, 112),
		Muted:           tcell.NewRGBColor(92, 99, 112),
	},
	"paper": {
		Name:            "Paper",
		Background:      tcell.NewRGBColor(250, 246, 237),
		Foreground:      tcell.NewRGBColor(55, 53, 47),
		Selection:       tcell.NewRGBColor(222, 214, 196),
		LineNumber:      tcell.NewRGBColor(169, 162, 148),
		AnchorMark:      tcell.NewRGBColor(74, 134, 90),
		StatusBarBg:     tcell.NewRGBColor(234, 228, 214),
		StatusBarFg:     tcell.NewRGBColor(55, 53, 47),
		StatusBarModeBg: tcell.NewRGBColor(68, 131, 186),
		DialogBg:        tcell.NewRGBColor(250, 246, 237),
		DialogFg:        tcell.NewRGBColor(55, 53, 47),
		DialogInputBg:   tcell.NewRGBColor(234, 228, 214),
		ListSelectionBg: tcell.NewRGBColor(222, 214, 196),
		Border:          tcell.NewRGBColor(169, 162, 148),
		Muted:           tcell.NewRGBColor(169, 162, 148),
	},
	"ink": {
		Name:            "Ink",
		Background:      tcell.NewRGBColor(0, 0, 0),
		Foreground:      tcell.NewRGBColor(255, 255, 255),
		Selection:       tcell.NewRGBColor(0, 80, 160),
		LineNumber:      tcell.NewRGBColor(180, 180, 180),
		AnchorMark:      tcell.NewRGBColor(255, 255, 0),
		StatusBarBg:     tcell.NewRGBColor(0, 0, 200),
		StatusBarFg:     tcell.NewRGBColor(255, 255, 255),
		StatusBarModeBg: tcell.NewRGBColor(200, 200, 0),
		DialogBg:        tcell.NewRGBColor(0, 0, 0),
		DialogFg:        tcell.NewRGBColor(255, 255, 255),
		DialogInputBg:   tcell.NewRGBColor(40, 40, 40),
		ListSelectionBg: tcell.NewRGBColor(0, 80, 160),
		Border:          tcell.NewRGBColor(255, 255, 255),
		Muted:           tcell.NewRGBColor(180, 180, 180),
	},
}

func (c *Config) GetTheme() *ColorScheme {
	theme, ok := Themes[c.Theme]
	if !ok {
		return Themes["slate"]
	}
	return theme
}

// ThemeNames returns the theme keys in stable order.
func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tether", "settings.json")
}

func Load() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save() error {
	path := ConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
