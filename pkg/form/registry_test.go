package form

import (
	"testing"

	"github.com/goliatone/go-formtree/pkg/schema"
)

func TestResolve_ExplicitWidgetWins(t *testing.T) {
	reg := NewWidgetRegistry()
	node := schema.NewNode("flag", schema.Boolean{}, schema.WithWidget("custom-toggle"))

	if got, ok := reg.Resolve(node); !ok || got != "custom-toggle" {
		t.Fatalf("expected explicit widget to win, got %q (ok=%v)", got, ok)
	}
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewWidgetRegistry()

	cases := []struct {
		name   string
		node   *schema.Node
		expect string
	}{
		{
			name:   "boolean checkbox",
			node:   schema.NewNode("flag", schema.Boolean{}),
			expect: WidgetCheckbox,
		},
		{
			name:   "boolean with choices keeps type hint",
			node:   schema.NewNode("flag", schema.Boolean{}, schema.WithValidator(schema.OneOf{Choices: []any{true}})),
			expect: WidgetCheckbox,
		},
		{
			name:   "mapping",
			node:   schema.NewNode("address", schema.Mapping{}),
			expect: WidgetMapping,
		},
		{
			name:   "sequence",
			node:   schema.NewNode("tags", schema.Sequence{}),
			expect: WidgetSequence,
		},
		{
			name:   "select choices",
			node:   schema.NewNode("color", schema.String{}, schema.WithValidator(schema.OneOf{Choices: []any{"a"}})),
			expect: WidgetSelect,
		},
		{
			name: "select choices inside all",
			node: schema.NewNode("n", schema.Integer{}, schema.WithValidator(schema.All{
				schema.Range{},
				schema.OneOf{Choices: []any{1, 2}},
			})),
			expect: WidgetSelect,
		},
		{
			name:   "textarea for long text",
			node:   schema.NewNode("bio", schema.String{}, schema.WithValidator(schema.Length{Max: 1000})),
			expect: WidgetTextArea,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.node)
			if !ok {
				t.Fatalf("expected widget %q to resolve", tc.expect)
			}
			if got != tc.expect {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestResolve_PriorityAndOrder(t *testing.T) {
	reg := &WidgetRegistry{factories: make(map[string]WidgetFactory)}
	always := func(*schema.Node) bool { return true }
	reg.Register("low", 10, always)
	reg.Register("first-high", 50, always)
	reg.Register("second-high", 50, always)

	if got, _ := reg.Resolve(schema.NewNode("x", schema.String{})); got != "first-high" {
		t.Fatalf("expected highest priority and earliest registration, got %q", got)
	}
}

func TestWidget_FallsBackToTextInput(t *testing.T) {
	reg := NewWidgetRegistry()

	if _, ok := reg.Widget(schema.NewNode("plain", schema.String{})).(*TextInputWidget); !ok {
		t.Fatalf("expected text input for plain string")
	}
	unknown := schema.NewNode("odd", schema.String{}, schema.WithWidget("does-not-exist"))
	if _, ok := reg.Widget(unknown).(*TextInputWidget); !ok {
		t.Fatalf("expected text input for unknown widget name")
	}
	if _, ok := (*WidgetRegistry)(nil).Widget(schema.NewNode("nil", schema.String{})).(*TextInputWidget); !ok {
		t.Fatalf("expected nil registry to fall back to text input")
	}
}

func TestCheckboxFactory_UsesBooleanValues(t *testing.T) {
	reg := NewWidgetRegistry()
	widget, ok := reg.Widget(schema.NewNode("agree", schema.Boolean{True: "yes", False: "no"})).(*CheckboxWidget)
	if !ok {
		t.Fatalf("expected checkbox widget")
	}
	if widget.trueValue() != "yes" || widget.falseValue() != "no" {
		t.Fatalf("checkbox values not copied: %+v", widget)
	}
}
