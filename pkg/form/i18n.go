package form

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to the missing-translation handler when a
// locale is configured without a translator.
var ErrMissingTranslator = errors.New("form: translator not configured")

// Translator resolves a message id for a locale. The rendered titles,
// descriptions, error messages, choice labels and button titles are used as
// message ids.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler picks the text rendered when translation fails.
// err is ErrMissingTranslator, the translator's error, or nil for an empty
// translation.
type MissingTranslationHandler func(locale, key string, err error) string

// missingTranslationDefault keeps the untranslated text.
func missingTranslationDefault(_ string, key string, _ error) string {
	return key
}

type localizer struct {
	translator Translator
	locale     string
	onMissing  MissingTranslationHandler
}

// text translates msg. Empty text and fields without a translator or locale
// render msg unchanged.
func (l *localizer) text(msg string) string {
	if l == nil || strings.TrimSpace(msg) == "" {
		return msg
	}
	onMissing := l.onMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	if l.translator == nil {
		if l.locale == "" {
			return msg
		}
		return onMissing(l.locale, msg, ErrMissingTranslator)
	}

	result, err := l.translator.Translate(l.locale, msg)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(l.locale, msg, err)
}
