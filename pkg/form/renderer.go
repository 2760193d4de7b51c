package form

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/goliatone/go-formtree/pkg/render/template"
	"github.com/goliatone/go-formtree/pkg/render/template/gotemplate"
)

//go:embed templates/*.tpl
var templateFiles embed.FS

// Templates exposes the built-in widget templates, keyed by widget name
// (for example "textinput.tpl").
func Templates() fs.FS {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic(fmt.Sprintf("form: embedded templates: %v", err))
	}
	return sub
}

// NewRenderer builds a pongo2 engine over the built-in templates. Options
// are applied after the embedded FS, so WithBaseDir adds a directory whose
// templates take precedence and WithTheme swaps partials.
func NewRenderer(options ...gotemplate.Option) (*gotemplate.Engine, error) {
	opts := append([]gotemplate.Option{gotemplate.WithFS(Templates())}, options...)
	engine, err := gotemplate.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("form: new renderer: %w", err)
	}
	return engine, nil
}

var (
	defaultRendererOnce sync.Once
	defaultRenderer     template.TemplateRenderer
)

// DefaultRenderer returns the process-wide renderer used by fields built
// without WithRenderer.
func DefaultRenderer() template.TemplateRenderer {
	defaultRendererOnce.Do(func() {
		engine, err := NewRenderer()
		if err != nil {
			panic(err)
		}
		defaultRenderer = engine
	})
	return defaultRenderer
}
