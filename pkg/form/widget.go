package form

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formtree/pkg/schema"
)

// Widget converts between cstructs and markup for one field.
//
// Serialize renders cstruct (nil means "use the field default") as HTML.
// Deserialize turns the field's slice of a parsed submission into a cstruct;
// a non-nil error is treated as a defect, never as user error. HandleError
// distributes a schema error over the field and its descendants so the next
// Serialize can show it.
type Widget interface {
	Serialize(field *Field, cstruct any) (string, error)
	Deserialize(field *Field, pstruct any) (any, error)
	HandleError(field *Field, err *schema.Invalid)
}

// TextInputWidget renders a single-line text input. It is the fallback for
// nodes that resolve to no other widget.
type TextInputWidget struct {
	Template       string
	Placeholder    string
	KeepWhitespace bool
}

func (w *TextInputWidget) Serialize(field *Field, cstruct any) (string, error) {
	if cstruct == nil {
		cstruct = field.Default()
	}
	data := widgetContext(field, cstruct)
	data["placeholder"] = w.Placeholder
	return renderWidget(field, w.Template, WidgetTextInput, data)
}

func (w *TextInputWidget) Deserialize(_ *Field, pstruct any) (any, error) {
	return deserializeText(pstruct, !w.KeepWhitespace), nil
}

func (w *TextInputWidget) HandleError(field *Field, err *schema.Invalid) {
	field.SetError(err)
}

// PasswordWidget renders a password input. Submitted values are never
// echoed back.
type PasswordWidget struct {
	Template string
}

func (w *PasswordWidget) Serialize(field *Field, _ any) (string, error) {
	return renderWidget(field, w.Template, WidgetPassword, widgetContext(field, nil))
}

func (w *PasswordWidget) Deserialize(_ *Field, pstruct any) (any, error) {
	return deserializeText(pstruct, false), nil
}

func (w *PasswordWidget) HandleError(field *Field, err *schema.Invalid) {
	field.SetError(err)
}

// HiddenWidget renders a hidden input. Mapping and form widgets emit it
// without a label wrapper.
type HiddenWidget struct {
	Template string
}

func (w *HiddenWidget) Serialize(field *Field, cstruct any) (string, error) {
	if cstruct == nil {
		cstruct = field.Default()
	}
	return renderWidget(field, w.Template, WidgetHidden, widgetContext(field, cstruct))
}

func (w *HiddenWidget) Deserialize(_ *Field, pstruct any) (any, error) {
	return deserializeText(pstruct, false), nil
}

func (w *HiddenWidget) HandleError(field *Field, err *schema.Invalid) {
	field.SetError(err)
}

// TextAreaWidget renders a multi-line text input.
type TextAreaWidget struct {
	Template string
	Rows     int
	Cols     int
}

func (w *TextAreaWidget) Serialize(field *Field, cstruct any) (string, error) {
	if cstruct == nil {
		cstruct = field.Default()
	}
	data := widgetContext(field, cstruct)
	data["rows"] = w.Rows
	data["cols"] = w.Cols
	return renderWidget(field, w.Template, WidgetTextArea, data)
}

func (w *TextAreaWidget) Deserialize(_ *Field, pstruct any) (any, error) {
	return deserializeText(pstruct, false), nil
}

func (w *TextAreaWidget) HandleError(field *Field, err *schema.Invalid) {
	field.SetError(err)
}

// CheckboxWidget renders a single checkbox. An unchecked box is absent from
// the submission and deserializes to FalseValue.
type CheckboxWidget struct {
	Template   string
	TrueValue  string
	FalseValue string
}

func (w *CheckboxWidget) Serialize(field *Field, cstruct any) (string, error) {
	if cstruct == nil {
		cstruct = field.Default()
	}
	data := widgetContext(field, cstruct)
	data["true_value"] = w.trueValue()
	data["checked"] = cstring(cstruct) == w.trueValue()
	return renderWidget(field, w.Template, WidgetCheckbox, data)
}

func (w *CheckboxWidget) Deserialize(_ *Field, pstruct any) (any, error) {
	if pstruct == nil {
		return w.falseValue(), nil
	}
	if cstring(pstruct) == w.trueValue() {
		return w.trueValue(), nil
	}
	return w.falseValue(), nil
}

func (w *CheckboxWidget) HandleError(field *Field, err *schema.Invalid) {
	field.SetError(err)
}

// CheckedValue is the value submitted when the box is checked.
func (w *CheckboxWidget) CheckedValue() string {
	return w.trueValue()
}

func (w *CheckboxWidget) trueValue() string {
	if w.TrueValue == "" {
		return "true"
	}
	return w.TrueValue
}

func (w *CheckboxWidget) falseValue() string {
	if w.FalseValue == "" {
		return "false"
	}
	return w.FalseValue
}

// Choice is one option of a SelectWidget.
type Choice struct {
	Value string
	Label string
}

// SelectWidget renders a drop-down. Without explicit Values the choices of
// the node's OneOf validator are offered. Optional fields get a leading
// empty option.
type SelectWidget struct {
	Template string
	Values   []Choice
}

func (w *SelectWidget) Serialize(field *Field, cstruct any) (string, error) {
	if cstruct == nil {
		cstruct = field.Default()
	}
	selected := cstring(cstruct)

	choices := w.Choices(field)
	options := make([]any, 0, len(choices)+1)
	if !field.Required {
		options = append(options, map[string]any{"value": "", "label": "", "selected": selected == ""})
	}
	for _, choice := range choices {
		options = append(options, map[string]any{
			"value":    choice.Value,
			"label":    field.i18n.text(choice.Label),
			"selected": choice.Value == selected,
		})
	}

	data := widgetContext(field, cstruct)
	data["choices"] = options
	return renderWidget(field, w.Template, WidgetSelect, data)
}

func (w *SelectWidget) Deserialize(_ *Field, pstruct any) (any, error) {
	return deserializeText(pstruct, false), nil
}

func (w *SelectWidget) HandleError(field *Field, err *schema.Invalid) {
	field.SetError(err)
}

// Choices returns the options offered for field.
func (w *SelectWidget) Choices(field *Field) []Choice {
	if len(w.Values) > 0 {
		return w.Values
	}
	values, ok := schema.Choices(field.Schema())
	if !ok {
		return nil
	}
	out := make([]Choice, 0, len(values))
	for _, value := range values {
		serialized, err := field.Schema().Serialize(value)
		if err != nil {
			serialized = value
		}
		out = append(out, Choice{Value: cstring(serialized), Label: cstring(value)})
	}
	return out
}

func widgetContext(field *Field, cstruct any) map[string]any {
	return map[string]any{
		"field":   fieldContext(field),
		"cstruct": cstring(cstruct),
	}
}

func fieldContext(field *Field) map[string]any {
	message := ""
	if field.err != nil {
		message = strings.TrimSpace(field.err.Msg)
	}
	return map[string]any{
		"name":        field.Name,
		"title":       field.i18n.text(field.Title),
		"description": field.i18n.text(field.Description),
		"required":    field.Required,
		"oid":         field.oid,
		"error":       field.i18n.text(message),
		"has_error":   field.err != nil,
	}
}

func renderWidget(field *Field, override, name string, data map[string]any) (string, error) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		name = trimmed
	}
	out, err := field.Renderer().RenderTemplate(name, data)
	if err != nil {
		return "", fmt.Errorf("form: render %q with %q: %w", field.Name, name, err)
	}
	return out, nil
}

// deserializeText passes non-string values (uploads, nested structures)
// through so the schema can reject them.
func deserializeText(submitted any, trim bool) any {
	if value, ok := submitted.(string); ok && trim {
		return strings.TrimSpace(value)
	}
	return submitted
}

func cstring(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
