package form

import (
	"github.com/goliatone/go-formtree/pkg/schema"
)

// Defaults applied to forms built without WithAction or WithMethod.
const (
	DefaultAction = "."
	DefaultMethod = "POST"
)

// Form is the root Field of a tree. It always uses a FormWidget and carries
// the action, method, buttons and hidden inputs of the rendered form tag.
type Form struct {
	*Field
}

type formAttrs struct {
	action  string
	method  string
	buttons []Button
	hidden  []HiddenField
}

func (a *formAttrs) clone() *formAttrs {
	cloned := *a
	cloned.buttons = append([]Button(nil), a.buttons...)
	cloned.hidden = append([]HiddenField(nil), a.hidden...)
	return &cloned
}

// NewForm builds the field tree for node and installs a FormWidget on the
// root.
func NewForm(node *schema.Node, options ...Option) *Form {
	cfg := newConfig(options)
	root := newField(node, &cfg, oidPrefix)
	root.form = &formAttrs{
		action:  cfg.action,
		method:  cfg.method,
		buttons: append([]Button(nil), cfg.buttons...),
		hidden:  uniqueHidden(cfg.hidden),
	}
	root.widget = &FormWidget{}
	return &Form{Field: root}
}

// Action returns the URL the form submits to.
func (f *Form) Action() string {
	return f.form.action
}

// Method returns the HTTP method of the form.
func (f *Form) Method() string {
	return f.form.method
}

// Buttons returns the form's buttons in order.
func (f *Form) Buttons() []Button {
	return append([]Button(nil), f.form.buttons...)
}

// HiddenFields returns the hidden inputs rendered inside the form tag.
func (f *Form) HiddenFields() []HiddenField {
	return append([]HiddenField(nil), f.form.hidden...)
}

// Clone returns an independent copy of the form.
func (f *Form) Clone() *Form {
	return &Form{Field: f.Field.Clone()}
}
