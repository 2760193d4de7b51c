package form

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formtree/pkg/schema"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetTextInput = "textinput"
	WidgetPassword  = "password"
	WidgetHidden    = "hidden"
	WidgetTextArea  = "textarea"
	WidgetCheckbox  = schema.WidgetCheckbox
	WidgetSelect    = "select"
	WidgetMapping   = schema.WidgetMapping
	WidgetSequence  = schema.WidgetSequence
	WidgetForm      = "form"
)

// WidgetFactory builds a fresh widget for a schema node.
type WidgetFactory func(node *schema.Node) Widget

// Matcher decides whether a named widget should handle the supplied node.
type Matcher func(node *schema.Node) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// WidgetRegistry maps widget names to factories and picks a name for nodes
// that do not declare one. Resolution order: the node's Widget hint, the
// type's schema.WidgetHinter, then registered matchers by descending
// priority (ties fall back to registration order). Nodes that resolve to no
// known factory get a text input.
type WidgetRegistry struct {
	mu        sync.RWMutex
	factories map[string]WidgetFactory
	rules     []rule
}

// NewWidgetRegistry constructs a registry with the built-in factories and
// matchers registered.
func NewWidgetRegistry() *WidgetRegistry {
	reg := &WidgetRegistry{
		factories: make(map[string]WidgetFactory),
	}
	reg.registerBuiltins()
	return reg
}

var (
	defaultWidgetsOnce sync.Once
	defaultWidgets     *WidgetRegistry
)

// DefaultWidgets returns the process-wide registry used when a Field is
// built without WithWidgets.
func DefaultWidgets() *WidgetRegistry {
	defaultWidgetsOnce.Do(func() {
		defaultWidgets = NewWidgetRegistry()
	})
	return defaultWidgets
}

// RegisterFactory binds name to factory, replacing any previous binding.
func (r *WidgetRegistry) RegisterFactory(name string, factory WidgetFactory) {
	if r == nil || factory == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[trimmed] = factory
}

// Register adds a matcher that selects name for matching nodes. Higher
// priority values take precedence.
func (r *WidgetRegistry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name chosen for node.
func (r *WidgetRegistry) Resolve(node *schema.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	if explicit := strings.TrimSpace(node.Widget); explicit != "" {
		return explicit, true
	}
	if hinter, ok := node.Type.(schema.WidgetHinter); ok {
		if hint := strings.TrimSpace(hinter.DefaultWidget()); hint != "" {
			return hint, true
		}
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(node) {
			return entry.name, true
		}
	}
	return "", false
}

// Widget instantiates the widget resolved for node.
func (r *WidgetRegistry) Widget(node *schema.Node) Widget {
	name, ok := r.Resolve(node)
	if !ok || r.factory(name) == nil {
		name = WidgetTextInput
	}
	if factory := r.factory(name); factory != nil {
		if widget := factory(node); widget != nil {
			return widget
		}
	}
	return &TextInputWidget{}
}

// Lookup instantiates the widget registered under name.
func (r *WidgetRegistry) Lookup(name string, node *schema.Node) (Widget, bool) {
	factory := r.factory(strings.TrimSpace(name))
	if factory == nil {
		return nil, false
	}
	widget := factory(node)
	return widget, widget != nil
}

func (r *WidgetRegistry) factory(name string) WidgetFactory {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.factories[name]
}

func (r *WidgetRegistry) registerBuiltins() {
	r.RegisterFactory(WidgetTextInput, func(*schema.Node) Widget { return &TextInputWidget{} })
	r.RegisterFactory(WidgetPassword, func(*schema.Node) Widget { return &PasswordWidget{} })
	r.RegisterFactory(WidgetHidden, func(*schema.Node) Widget { return &HiddenWidget{} })
	r.RegisterFactory(WidgetTextArea, func(*schema.Node) Widget { return &TextAreaWidget{} })
	r.RegisterFactory(WidgetCheckbox, func(node *schema.Node) Widget {
		widget := &CheckboxWidget{}
		if b, ok := node.Type.(schema.Boolean); ok {
			widget.TrueValue, widget.FalseValue = b.True, b.False
		}
		return widget
	})
	r.RegisterFactory(WidgetSelect, func(*schema.Node) Widget { return &SelectWidget{} })
	r.RegisterFactory(WidgetMapping, func(*schema.Node) Widget { return &MappingWidget{} })
	r.RegisterFactory(WidgetSequence, func(*schema.Node) Widget { return &SequenceWidget{} })
	r.RegisterFactory(WidgetForm, func(*schema.Node) Widget { return &FormWidget{} })

	r.Register(WidgetSelect, 70, func(node *schema.Node) bool {
		switch node.Type.(type) {
		case schema.Mapping, *schema.Mapping, schema.Sequence, *schema.Sequence:
			return false
		}
		_, ok := schema.Choices(node)
		return ok
	})

	r.Register(WidgetTextArea, 40, func(node *schema.Node) bool {
		if _, ok := node.Type.(schema.String); !ok {
			return false
		}
		length, ok := node.Validator.(schema.Length)
		return ok && length.Max > 255
	})
}
