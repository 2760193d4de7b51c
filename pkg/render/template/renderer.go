package template

import (
	"io"
)

// TemplateRenderer is the seam widgets render through: a named template plus
// a context produces markup. The default implementation lives in the
// gotemplate subpackage.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
