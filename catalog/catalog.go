// Package catalog holds the static data shown next to the generator: the
// icon styles, the preset colors and a library of pre-generated icons.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"icon_studio/errclass"
)

//go:embed styles.yaml
var stylesYAML []byte

//go:embed library.yaml
var libraryYAML []byte

// Style is one selectable icon style.
type Style struct {
	ID              string `yaml:"id" json:"id"`
	Label           string `yaml:"label" json:"label"`
	Description     string `yaml:"description" json:"description"`
	DescriptionHTML string `yaml:"-" json:"description_html"`
}

// Icon is a pre-generated library entry.
type Icon struct {
	ID     string `yaml:"id" json:"id"`
	Prompt string `yaml:"prompt" json:"prompt"`
	Style  string `yaml:"style" json:"style"`
	SVG    string `yaml:"svg" json:"svg"`
}

// Catalog is the parsed static data.
type Catalog struct {
	Styles []Style
	Colors []string
	Icons  []Icon
}

type stylesFile struct {
	Styles []Style  `yaml:"styles"`
	Colors []string `yaml:"colors"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(stylesYAML, libraryYAML)
}

// Parse builds a catalog from styles and library documents. Style
// descriptions are rendered from markdown to HTML.
func Parse(styles, library []byte) (*Catalog, error) {
	var sf stylesFile
	if err := yaml.Unmarshal(styles, &sf); err != nil {
		return nil, fmt.Errorf("parse styles: %w", err)
	}
	var icons []Icon
	if err := yaml.Unmarshal(library, &icons); err != nil {
		return nil, fmt.Errorf("parse library: %w", err)
	}

	seen := make(map[string]bool, len(sf.Styles))
	for i := range sf.Styles {
		st := &sf.Styles[i]
		if st.ID == "" {
			return nil, fmt.Errorf("style %d has no id", i)
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("duplicate style %q", st.ID)
		}
		seen[st.ID] = true
		if st.Label == "" {
			st.Label = st.ID
		}
		html, err := renderMarkdown(st.Description)
		if err != nil {
			return nil, fmt.Errorf("style %q: %w", st.ID, err)
		}
		st.DescriptionHTML = html
	}
	return &Catalog{Styles: sf.Styles, Colors: sf.Colors, Icons: icons}, nil
}

func renderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Style returns the style with the given id, matched case-insensitively.
func (c *Catalog) Style(id string) (Style, bool) {
	for _, st := range c.Styles {
		if strings.EqualFold(st.ID, strings.TrimSpace(id)) {
			return st, true
		}
	}
	return Style{}, false
}

// ResolveStyle maps a user-supplied style name onto a catalog style id.
// An empty name resolves to "" so callers can apply their default.
func (c *Catalog) ResolveStyle(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	st, ok := c.Style(name)
	if !ok {
		return "", errclass.ErrInvalidRequest.WithDetailsf("unknown style %q", name)
	}
	return st.ID, nil
}

// Search returns the library icons whose prompt or style contains query,
// ignoring case. An empty query returns every icon.
func (c *Catalog) Search(query string) []Icon {
	q := strings.ToLower(query)
	out := []Icon{}
	for _, icon := range c.Icons {
		if strings.Contains(strings.ToLower(icon.Prompt), q) ||
			strings.Contains(strings.ToLower(icon.Style), q) {
			out = append(out, icon)
		}
	}
	return out
}

// Icon returns the library icon with the given id.
func (c *Catalog) Icon(id string) (Icon, bool) {
	for _, icon := range c.Icons {
		if icon.ID == id {
			return icon, true
		}
	}
	return Icon{}, false
}
