package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-formtree/pkg/pstruct"
	"github.com/goliatone/go-formtree/pkg/render/template"
	"github.com/goliatone/go-formtree/pkg/schema"
)

const oidPrefix = "field"

// Field pairs a schema node with a widget and a renderer. A Field tree has
// the same shape as its schema tree; children appear in schema order.
//
// Name, Title, Description and Required are copied from the node when the
// Field is built and may be changed afterwards without touching the schema.
type Field struct {
	Name        string
	Title       string
	Description string
	Required    bool

	schema   *schema.Node
	renderer template.TemplateRenderer
	widgets  *WidgetRegistry
	logger   *slog.Logger
	tracer   trace.Tracer
	i18n     *localizer
	oid      string
	children []*Field

	widget      Widget
	def         any
	defResolved bool
	err         *schema.Invalid

	form *formAttrs
}

// NewField builds the field tree for node. Form-level options are ignored.
func NewField(node *schema.Node, options ...Option) *Field {
	cfg := newConfig(options)
	return newField(node, &cfg, oidPrefix)
}

func newField(node *schema.Node, cfg *config, parentOID string) *Field {
	if node == nil {
		node = schema.NewNode("", schema.Mapping{})
	}
	f := &Field{
		Name:        node.Name,
		Title:       node.Title,
		Description: node.Description,
		Required:    node.Required,
		schema:      node,
		renderer:    cfg.renderer,
		widgets:     cfg.widgets,
		logger:      cfg.logger,
		tracer:      cfg.tracer,
		i18n:        cfg.i18n,
		oid:         joinOID(parentOID, node.Name),
	}
	if len(node.Children) > 0 {
		f.children = make([]*Field, 0, len(node.Children))
		for _, child := range node.Children {
			f.children = append(f.children, newField(child, cfg, f.oid))
		}
	}
	return f
}

// Schema returns the node this field was built from.
func (f *Field) Schema() *schema.Node {
	return f.schema
}

// Renderer returns the template renderer shared by the tree.
func (f *Field) Renderer() template.TemplateRenderer {
	return f.renderer
}

// OID is the element id used by the rendered markup.
func (f *Field) OID() string {
	return f.oid
}

// Children returns the child fields in schema order.
func (f *Field) Children() []*Field {
	return f.children
}

// Child returns the direct child named name.
func (f *Field) Child(name string) (*Field, error) {
	for _, child := range f.children {
		if child.Name == name {
			return child, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
}

// Lookup resolves a dotted path of child names, for example "address.city".
func (f *Field) Lookup(path string) (*Field, error) {
	current := f
	for _, name := range strings.Split(path, ".") {
		child, err := current.Child(name)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// Widget returns the field's widget, resolving it from the registry on first
// use. The root of a Form always resolves to a FormWidget.
func (f *Field) Widget() Widget {
	if f.widget == nil {
		if f.form != nil {
			f.widget = &FormWidget{}
		} else {
			f.widget = f.widgets.Widget(f.schema)
		}
	}
	return f.widget
}

// SetWidget replaces the field's widget. Passing nil restores lazy
// resolution; on a Form root that means a fresh FormWidget.
func (f *Field) SetWidget(widget Widget) {
	f.widget = widget
}

// UseWidget replaces the field's widget with the one registered under name.
func (f *Field) UseWidget(name string) error {
	widget, ok := f.widgets.Lookup(name, f.schema)
	if !ok {
		return fmt.Errorf("form: unknown widget %q", name)
	}
	f.widget = widget
	return nil
}

// Default returns the node's serialized default, computed once.
func (f *Field) Default() any {
	if !f.defResolved {
		f.def = f.schema.SDefault()
		f.defResolved = true
	}
	return f.def
}

// Error returns the error recorded by the last failed validation.
func (f *Field) Error() *schema.Invalid {
	return f.err
}

// SetError records err on the field.
func (f *Field) SetError(err *schema.Invalid) {
	f.err = err
}

// Clone returns a copy of the field. Children are cloned recursively so the
// copy can be mutated independently; the schema and renderer are shared.
func (f *Field) Clone() *Field {
	cloned := *f
	if f.children != nil {
		cloned.children = make([]*Field, len(f.children))
		for i, child := range f.children {
			cloned.children[i] = child.Clone()
		}
	}
	if f.form != nil {
		cloned.form = f.form.clone()
	}
	return &cloned
}

// Render serializes cstruct through the field's widget. A nil cstruct
// renders the field's default.
func (f *Field) Render(cstruct any) (string, error) {
	return f.Widget().Serialize(f, cstruct)
}

// RenderAppstruct serializes appstruct through the schema before rendering.
func (f *Field) RenderAppstruct(appstruct any) (string, error) {
	cstruct, err := f.schema.Serialize(appstruct)
	if err != nil {
		return "", fmt.Errorf("form: serialize %q: %w", f.Name, err)
	}
	return f.Render(cstruct)
}

// Validate runs a submission through the widget and the schema. Schema
// rejections are returned as *ValidationFailure after the error tree has been
// distributed over the fields; any other error is returned unchanged.
func (f *Field) Validate(pairs []pstruct.Pair) (any, error) {
	return f.ValidateContext(context.Background(), pairs)
}

// ValidateContext is Validate with a span recorded on the configured tracer.
func (f *Field) ValidateContext(ctx context.Context, pairs []pstruct.Pair) (any, error) {
	if f.tracer == nil {
		return f.validate(pairs)
	}
	_, span := f.tracer.Start(ctx, "formtree.validate",
		trace.WithAttributes(
			attribute.String("formtree.field", f.Name),
			attribute.Int("formtree.pairs", len(pairs)),
		),
	)
	defer span.End()

	appstruct, err := f.validate(pairs)
	if err != nil {
		var failure *ValidationFailure
		if errors.As(err, &failure) {
			span.SetAttributes(attribute.Int("formtree.errors", len(failure.Err.AsMap())))
		} else {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
	}
	return appstruct, err
}

func (f *Field) validate(pairs []pstruct.Pair) (any, error) {
	f.clearErrors()

	parsed := pstruct.Parse(pairs)
	cstruct, err := f.Widget().Deserialize(f, parsed)
	if err != nil {
		return nil, err
	}

	appstruct, err := f.schema.Deserialize(cstruct)
	if err != nil {
		var invalid *schema.Invalid
		if !errors.As(err, &invalid) {
			return nil, err
		}
		f.Widget().HandleError(f, invalid)
		f.logger.Debug("form validation failed",
			"field", f.Name,
			"errors", invalid.AsMap(),
		)
		return nil, &ValidationFailure{Field: f, Cstruct: cstruct, Err: invalid}
	}
	return appstruct, nil
}

func (f *Field) clearErrors() {
	f.err = nil
	for _, child := range f.children {
		child.clearErrors()
	}
}

func (f *Field) setOID(oid string) {
	f.oid = oid
	for _, child := range f.children {
		child.setOID(joinOID(oid, child.Name))
	}
}

func joinOID(parent, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return parent
	}
	return parent + "-" + name
}
