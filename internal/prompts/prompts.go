// Package prompts provides the prompt templates and style presets used to
// drive interior image generation.
//
// Templates ship embedded in the binary and are parsed once at startup. The
// furnishing prompt carries a {style} marker that is filled from a selectable
// style preset, and the inpaint prompt carries a {detail} marker filled from
// the user's free-form note.
package prompts

import (
	_ "embed"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/interera/interera/pkg/errors"
)

// Markers replaced at render time.
const (
	styleMarker  = "{style}"
	detailMarker = "{detail}"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Style is a furnishing style preset selectable per request.
type Style struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name,omitempty" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Prompt      string `yaml:"prompt" json:"-"`
}

// Library holds the parsed prompt templates and style presets.
type Library struct {
	furnishBase     string
	inpaintTemplate string
	defaultStyle    string
	styles          []Style
	byID            map[string]int
}

type document struct {
	Furnish struct {
		Base         string  `yaml:"base"`
		DefaultStyle string  `yaml:"default_style"`
		Styles       []Style `yaml:"styles"`
	} `yaml:"furnish"`
	Inpaint struct {
		Template string `yaml:"template"`
	} `yaml:"inpaint"`
}

// New parses the embedded prompt definitions.
func New() (*Library, error) {
	return parse(promptsYAML)
}

func parse(data []byte) (*Library, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConfigError("prompts", "parsing prompt definitions", err)
	}

	lib := &Library{
		furnishBase:     doc.Furnish.Base,
		inpaintTemplate: doc.Inpaint.Template,
		defaultStyle:    doc.Furnish.DefaultStyle,
		styles:          doc.Furnish.Styles,
		byID:            make(map[string]int, len(doc.Furnish.Styles)),
	}

	if !strings.Contains(lib.furnishBase, styleMarker) {
		return nil, errors.NewConfigError("prompts", "furnish base is missing the "+styleMarker+" marker", nil)
	}
	if !strings.Contains(lib.inpaintTemplate, detailMarker) {
		return nil, errors.NewConfigError("prompts", "inpaint template is missing the "+detailMarker+" marker", nil)
	}

	caser := cases.Title(language.English)
	for i := range lib.styles {
		s := &lib.styles[i]
		switch {
		case s.ID == "":
			return nil, errors.NewConfigError("prompts", "style preset is missing an id", nil)
		case s.Prompt == "":
			return nil, errors.NewConfigError("prompts", "style preset "+s.ID+" is missing a prompt", nil)
		}
		if _, dup := lib.byID[s.ID]; dup {
			return nil, errors.NewConfigError("prompts", "duplicate style preset "+s.ID, nil)
		}
		if s.Name == "" {
			s.Name = caser.String(s.ID)
		}
		lib.byID[s.ID] = i
	}

	if _, ok := lib.byID[lib.defaultStyle]; !ok {
		return nil, errors.NewConfigError("prompts", "default style "+lib.defaultStyle+" has no preset", nil)
	}

	return lib, nil
}

// DefaultStyle returns the id of the preset used when none is requested.
func (l *Library) DefaultStyle() string {
	return l.defaultStyle
}

// Styles returns the presets in declaration order.
func (l *Library) Styles() []Style {
	out := make([]Style, len(l.styles))
	copy(out, l.styles)
	return out
}

// Style returns the preset with the given id.
func (l *Library) Style(id string) (Style, error) {
	i, ok := l.byID[id]
	if !ok {
		return Style{}, errors.NewNotFoundError("style", id)
	}
	return l.styles[i], nil
}

// Furnish renders the furnishing prompt for the given style preset.
// An empty id selects the default style.
func (l *Library) Furnish(styleID string) (string, error) {
	if styleID == "" {
		styleID = l.defaultStyle
	}
	style, err := l.Style(styleID)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(l.furnishBase, styleMarker, style.Prompt), nil
}

// Inpaint renders the object-isolation prompt with the user's note inlined.
// The note may be empty.
func (l *Library) Inpaint(detail string) string {
	return strings.ReplaceAll(l.inpaintTemplate, detailMarker, strings.TrimSpace(detail))
}
