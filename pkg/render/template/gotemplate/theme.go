package gotemplate

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig asks selector for the named theme/variant and flattens the
// selection into a renderer configuration. Fallback partials fill template
// keys the theme does not override.
func ThemeConfig(selector theme.ThemeSelector, name, variant string, fallbacks map[string]string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, fmt.Errorf("gotemplate: theme selector is required")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: select theme %q/%q: %w", name, variant, err)
	}
	return RendererConfigFromSelection(selection, fallbacks), nil
}

// RendererConfigFromSelection merges manifest and variant templates, tokens
// and assets. Variant values win over manifest values; tokens are also
// exposed as "--name" CSS variables.
func RendererConfigFromSelection(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	cfg := &theme.RendererConfig{
		Partials: copyStringMap(fallbacks),
	}
	if selection == nil {
		return cfg
	}
	cfg.Theme = selection.Theme
	cfg.Variant = selection.Variant

	manifest := selection.Manifest
	if manifest == nil {
		return cfg
	}

	partials := make(map[string]string)
	tokens := make(map[string]string)
	for key, value := range fallbacks {
		partials[key] = value
	}
	for key, value := range manifest.Templates {
		partials[key] = value
	}
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}

	prefix := manifest.Assets.Prefix
	files := make(map[string]string)
	for key, value := range manifest.Assets.Files {
		files[key] = value
	}

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Templates {
			partials[key] = value
		}
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
		for key, value := range variant.Assets.Files {
			files[key] = value
		}
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cfg.Partials = nilIfEmpty(partials)
	cfg.Tokens = nilIfEmpty(tokens)
	if len(tokens) > 0 {
		cfg.CSSVars = make(map[string]string, len(tokens))
		for key, value := range tokens {
			cfg.CSSVars["--"+key] = value
		}
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return nil
	}
	return map[string]any{
		"name":    cfg.Theme,
		"variant": cfg.Variant,
		"tokens":  stringMapToAny(cfg.Tokens),
		"style":   cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";")
	}
	return b.String()
}

func stringMapToAny(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func nilIfEmpty(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	return in
}
