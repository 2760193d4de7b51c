package gotemplate

import (
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeFilter is the template filter that strips markup outside a small
// inline allow-list. Its output is marked safe.
const SanitizeFilter = "sanitize"

var (
	inlinePolicyOnce sync.Once
	inlinePolicy     *bluemonday.Policy
)

// Sanitize reduces raw to the inline markup allowed in field titles and
// descriptions.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(inlineSanitizer().Sanitize(trimmed))
}

func inlineSanitizer() *bluemonday.Policy {
	inlinePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "br", "small", "span")
		policy.AllowAttrs("href", "title").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AllowAttrs("class").OnElements("span", "code")
		inlinePolicy = policy
	})
	return inlinePolicy
}

func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in == nil || in.IsNil() {
		return pongo2.AsSafeValue(""), nil
	}
	return pongo2.AsSafeValue(Sanitize(in.String())), nil
}
