package form

import (
	"fmt"

	"github.com/goliatone/go-formtree/pkg/schema"
)

const (
	templateMappingItem  = "mapping_item"
	templateSequenceItem = "sequence_item"
)

// MappingWidget renders each child inside a labelled item wrapper and
// brackets the group with mapping markers.
type MappingWidget struct {
	Template     string
	ItemTemplate string
}

func (w *MappingWidget) Serialize(field *Field, cstruct any) (string, error) {
	children, err := renderMappingChildren(field, cstruct, w.ItemTemplate)
	if err != nil {
		return "", err
	}
	data := widgetContext(field, nil)
	data["children"] = children
	return renderWidget(field, w.Template, WidgetMapping, data)
}

func (w *MappingWidget) Deserialize(field *Field, pstruct any) (any, error) {
	return deserializeMapping(field, pstruct)
}

func (w *MappingWidget) HandleError(field *Field, err *schema.Invalid) {
	handleMappingError(field, err)
}

// ErrorSummary heads the error block of a form that failed validation.
const ErrorSummary = "There was a problem with your submission"

// FormWidget renders the root mapping inside a form tag with the form's
// hidden inputs and buttons. It emits no mapping markers.
type FormWidget struct {
	Template     string
	ItemTemplate string
}

func (w *FormWidget) Serialize(field *Field, cstruct any) (string, error) {
	children, err := renderMappingChildren(field, cstruct, w.ItemTemplate)
	if err != nil {
		return "", err
	}

	attrs := field.form
	if attrs == nil {
		attrs = &formAttrs{action: DefaultAction, method: DefaultMethod}
	}
	buttons := make([]any, 0, len(attrs.buttons))
	for _, button := range attrs.buttons {
		buttons = append(buttons, button.templateData(field.i18n))
	}
	hidden := make([]any, 0, len(attrs.hidden))
	for _, input := range attrs.hidden {
		hidden = append(hidden, map[string]any{"name": input.Name, "value": input.Value})
	}

	data := widgetContext(field, nil)
	data["children"] = children
	data["action"] = attrs.action
	data["method"] = attrs.method
	data["buttons"] = buttons
	data["hidden"] = hidden
	data["error_summary"] = field.i18n.text(ErrorSummary)
	return renderWidget(field, w.Template, WidgetForm, data)
}

func (w *FormWidget) Deserialize(field *Field, pstruct any) (any, error) {
	return deserializeMapping(field, pstruct)
}

func (w *FormWidget) HandleError(field *Field, err *schema.Invalid) {
	handleMappingError(field, err)
}

// SequenceWidget renders one item per cstruct element. Items are rendered
// from clones of the single child field so each carries its own error.
// MinLen pads the rendering with empty items.
type SequenceWidget struct {
	Template     string
	ItemTemplate string
	MinLen       int
}

func (w *SequenceWidget) Serialize(field *Field, cstruct any) (string, error) {
	prototype, err := sequencePrototype(field)
	if err != nil {
		return "", err
	}
	if cstruct == nil {
		cstruct = field.Default()
	}
	items := sequenceItems(cstruct)
	for len(items) < w.MinLen {
		items = append(items, nil)
	}

	itemTemplate := templateOr(w.ItemTemplate, templateSequenceItem)
	rendered := make([]any, 0, len(items))
	for i, item := range items {
		clone := itemField(field, prototype, i)
		control, err := clone.Render(item)
		if err != nil {
			return "", err
		}
		data := widgetContext(clone, nil)
		data["control"] = control
		html, err := renderWidget(clone, "", itemTemplate, data)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, html)
	}

	blank := prototype.Clone()
	blank.setOID(field.oid + "-new")
	blank.clearErrors()
	prototypeHTML, err := blank.Render(nil)
	if err != nil {
		return "", err
	}

	data := widgetContext(field, nil)
	data["items"] = rendered
	data["prototype"] = prototypeHTML
	return renderWidget(field, w.Template, WidgetSequence, data)
}

func (w *SequenceWidget) Deserialize(field *Field, pstruct any) (any, error) {
	if pstruct == nil {
		return []any{}, nil
	}
	values, ok := pstruct.([]any)
	if !ok {
		return pstruct, nil
	}
	prototype, err := sequencePrototype(field)
	if err != nil {
		return nil, err
	}
	widget := prototype.Widget()
	result := make([]any, 0, len(values))
	for _, value := range values {
		item, err := widget.Deserialize(prototype, value)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

// HandleError records err on the sequence only. Item errors are applied to
// the per-item clones at render time.
func (w *SequenceWidget) HandleError(field *Field, err *schema.Invalid) {
	field.SetError(err)
}

func renderMappingChildren(field *Field, cstruct any, itemTemplate string) ([]any, error) {
	if cstruct == nil {
		cstruct = field.Default()
	}
	values, _ := cstruct.(map[string]any)
	itemTemplate = templateOr(itemTemplate, templateMappingItem)

	out := make([]any, 0, len(field.children))
	for _, child := range field.children {
		control, err := child.Render(values[child.Name])
		if err != nil {
			return nil, err
		}
		if _, hidden := child.Widget().(*HiddenWidget); hidden {
			out = append(out, control)
			continue
		}
		data := widgetContext(child, nil)
		data["control"] = control
		item, err := renderWidget(child, "", itemTemplate, data)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// deserializeMapping treats an absent mapping as empty so each child reports
// its own missing value.
func deserializeMapping(field *Field, pstruct any) (any, error) {
	if pstruct == nil {
		pstruct = map[string]any{}
	}
	values, ok := pstruct.(map[string]any)
	if !ok {
		return pstruct, nil
	}
	result := make(map[string]any, len(field.children))
	for _, child := range field.children {
		value, err := child.Widget().Deserialize(child, values[child.Name])
		if err != nil {
			return nil, err
		}
		result[child.Name] = value
	}
	return result, nil
}

func handleMappingError(field *Field, err *schema.Invalid) {
	field.SetError(err)
	if err == nil {
		return
	}
	for _, childErr := range err.Children {
		if childErr.Pos < 0 || childErr.Pos >= len(field.children) {
			continue
		}
		child := field.children[childErr.Pos]
		child.Widget().HandleError(child, childErr)
	}
}

func sequencePrototype(field *Field) (*Field, error) {
	if len(field.children) != 1 {
		return nil, fmt.Errorf("form: sequence %q: %w", field.Name, schema.ErrNoItemNode)
	}
	prototype := field.children[0]
	prototype.Widget()
	return prototype, nil
}

func itemField(field, prototype *Field, index int) *Field {
	clone := prototype.Clone()
	clone.setOID(fmt.Sprintf("%s-%d", field.oid, index))
	clone.clearErrors()
	if childErr, ok := field.err.Child(index); ok {
		clone.Widget().HandleError(clone, childErr)
	}
	return clone
}

func sequenceItems(cstruct any) []any {
	switch items := cstruct.(type) {
	case []any:
		return append([]any(nil), items...)
	case []string:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}

func templateOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
