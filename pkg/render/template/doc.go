// Package template defines the renderer contract field widgets depend on.
// Widgets hand a template name and a context map to a TemplateRenderer; the
// gotemplate subpackage provides the pongo2-backed default.
package template
