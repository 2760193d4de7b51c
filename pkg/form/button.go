package form

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultButtonName is used when a button is built with an empty name.
const DefaultButtonName = "submit"

// Button is an immutable form submit button.
type Button struct {
	name  string
	title string
	value string
}

// ButtonOption overrides a Button default.
type ButtonOption func(*buttonConfig)

type buttonConfig struct {
	title *string
	value *string
}

// WithButtonTitle sets the visible label.
func WithButtonTitle(title string) ButtonOption {
	return func(cfg *buttonConfig) {
		cfg.title = &title
	}
}

// WithButtonValue sets the value submitted with the button name.
func WithButtonValue(value string) ButtonOption {
	return func(cfg *buttonConfig) {
		cfg.value = &value
	}
}

// NewButton builds a Button. The title defaults to the capitalized name and
// the value to the name.
func NewButton(name string, options ...ButtonOption) Button {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultButtonName
	}
	var cfg buttonConfig
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	b := Button{name: name, title: capitalize(name), value: name}
	if cfg.title != nil {
		b.title = *cfg.title
	}
	if cfg.value != nil {
		b.value = *cfg.value
	}
	return b
}

// Name is the submit button's name attribute.
func (b Button) Name() string { return b.name }

// Title is the button label.
func (b Button) Title() string { return b.title }

// Value is submitted under Name when the button is pressed.
func (b Button) Value() string { return b.value }

func (b Button) templateData(i18n *localizer) map[string]any {
	return map[string]any{
		"name":  b.name,
		"title": i18n.text(b.title),
		"value": b.value,
	}
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
